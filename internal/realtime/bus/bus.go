package bus

import (
	"context"

	"github.com/yungbote/ceustudio-backend/internal/realtime"
)

// Bus relays SSE messages between API instances so a learner's stream can be
// served by any replica.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
