package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/ceustudio-backend/internal/platform/ctxutil"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// RequestContext stamps trace and request ids on the request and response,
// then logs the call once the handler chain is done. The learner id is known
// only after RequireAuth has run, so it is tagged on the span at the end.
func RequestContext(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		span := trace.SpanFromContext(c.Request.Context())

		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		traceID := strings.TrimSpace(c.GetHeader(headerTraceID))
		if traceID == "" && span.SpanContext().HasTraceID() {
			traceID = span.SpanContext().TraceID().String()
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			TraceID:   traceID,
			RequestID: reqID,
		}))
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)

		c.Next()

		if ld := ctxutil.GetLearnerData(c.Request.Context()); ld != nil && span.IsRecording() {
			span.SetAttributes(attribute.String("ceustudio.learner_id", ld.LearnerID.String()))
		}
		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []any{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
