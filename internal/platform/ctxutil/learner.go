package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type learnerDataKey struct{}

// LearnerData is attached by the auth middleware once a bearer token verifies.
type LearnerData struct {
	Token     string
	LearnerID uuid.UUID
	Email     string
}

func WithLearnerData(ctx context.Context, ld *LearnerData) context.Context {
	return context.WithValue(ctx, learnerDataKey{}, ld)
}

func GetLearnerData(ctx context.Context) *LearnerData {
	if ld, ok := ctx.Value(learnerDataKey{}).(*LearnerData); ok {
		return ld
	}
	return nil
}
