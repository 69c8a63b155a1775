package services

import (
	"context"
	"time"

	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
	"github.com/yungbote/ceustudio-backend/internal/realtime/bus"
)

const emitTimeout = 2 * time.Second

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// RedisEmitter publishes through the bus; every replica's forwarder then
// broadcasts to its local hub. Publish failures are logged, not returned:
// a missed snapshot is repaired by the next one.
type RedisEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
	defer cancel()
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("SSE publish failed", "channel", msg.Channel, "event", msg.Event, "error", err)
	}
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, realtime.SSEMessage) {}
