package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control output format and the scrubbing of learner data.
type Options struct {
	Mode      string // development | production
	Level     string
	Redaction bool
	HashSalt  string
}

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	scrub         scrubber
}

func New(opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	level := zapcore.DebugLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{
		SugaredLogger: zl.Sugar(),
		scrub:         scrubber{enabled: opts.Redaction, salt: opts.HashSalt},
	}, nil
}

// NewNop discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...any) { l.SugaredLogger.Debugw(msg, l.scrub.kvs(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.SugaredLogger.Infow(msg, l.scrub.kvs(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.SugaredLogger.Warnw(msg, l.scrub.kvs(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.SugaredLogger.Errorw(msg, l.scrub.kvs(kv)...) }
func (l *Logger) Fatal(msg string, kv ...any) { l.SugaredLogger.Fatalw(msg, l.scrub.kvs(kv)...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.scrub.kvs(kv)...), scrub: l.scrub}
}

type scrubber struct {
	enabled bool
	salt    string
}

func (s scrubber) kvs(kv []any) []any {
	if !s.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := toString(kv[i])
		out = append(out, key, s.value(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	return out
}

func (s scrubber) value(key string, val any) any {
	switch {
	case key == "":
		return val
	case isSecretKey(key):
		return "[REDACTED]"
	case isPersonalKey(key):
		return s.hash(val)
	}
	if m, ok := val.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = s.value(strings.ToLower(k), v)
		}
		return out
	}
	if str, ok := val.(string); ok && looksLikeJWT(str) {
		return "[REDACTED]"
	}
	return val
}

func isSecretKey(key string) bool {
	for _, frag := range []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey"} {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

// Personal identifiers stay correlatable across lines without being readable.
func isPersonalKey(key string) bool {
	for _, frag := range []string{"email", "aia_number", "learner_id", "session_id"} {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

func (s scrubber) hash(val any) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	_, _ = h.Write([]byte(s.salt))
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
