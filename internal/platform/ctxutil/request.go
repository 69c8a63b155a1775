package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData identifies one API call. The learner is read from LearnerData,
// which the auth middleware attaches later in the chain.
type RequestData struct {
	TraceID   string
	RequestID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// LogFields returns trace_id, request_id and learner_id pairs for whatever
// is attached to ctx, ready for logger.With or a log call.
func LogFields(ctx context.Context) []any {
	var fields []any
	if rd := GetRequestData(ctx); rd != nil {
		if rd.TraceID != "" {
			fields = append(fields, "trace_id", rd.TraceID)
		}
		if rd.RequestID != "" {
			fields = append(fields, "request_id", rd.RequestID)
		}
	}
	if ld := GetLearnerData(ctx); ld != nil && ld.LearnerID != uuid.Nil {
		fields = append(fields, "learner_id", ld.LearnerID.String())
	}
	return fields
}
