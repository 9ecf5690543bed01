// Package logging wraps zap with a key/value API. Context-aware calls attach
// the request id and the active trace/span ids.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/riskibarqy/scutta-ladder/internal/platform/requestid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

type Logger struct {
	z *zap.Logger
}

var fallback atomic.Pointer[Logger]

func init() {
	fallback.Store(NewNop())
}

// ParseLevel maps APP_LOG_LEVEL values to a zap level. Unknown values return false.
func ParseLevel(raw string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug, true
	case "", "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// NewJSON logs JSON lines to stdout.
func NewJSON(level Level) *Logger {
	return NewJSONWriter(level, os.Stdout)
}

func NewJSONWriter(level Level, w io.Writer) *Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), level)
	return &Logger{z: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel))}
}

func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Default is the process-wide logger used by components built without one.
func Default() *Logger {
	return fallback.Load()
}

func SetDefault(logger *Logger) {
	if logger == nil {
		logger = NewNop()
	}
	fallback.Store(logger)
}

func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	err := l.z.Sync()
	// stdout and stderr cannot be fsynced on most platforms.
	if err != nil && strings.Contains(err.Error(), "invalid argument") {
		return nil
	}
	return err
}

// With returns a child logger carrying the key/value pairs on every line.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{z: l.orDefault().z.With(fields(args)...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.write(nil, LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.write(nil, LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.write(nil, LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.write(nil, LevelError, msg, args) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, msg, args)
}

func (l *Logger) orDefault() *Logger {
	if l == nil || l.z == nil {
		return Default()
	}
	return l
}

func (l *Logger) write(ctx context.Context, level Level, msg string, args []any) {
	ce := l.orDefault().z.Check(level, msg)
	if ce == nil {
		return
	}
	out := fields(args)
	if ctx != nil {
		out = append(out, contextFields(ctx)...)
	}
	ce.Write(out...)
}

func contextFields(ctx context.Context) []zap.Field {
	var out []zap.Field
	if id := requestid.FromContext(ctx); id != "" {
		out = append(out, zap.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		out = append(out,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return out
}

// fields turns alternating key/value args into zap fields. A dangling key is
// logged with a nil value; errors keep their message under the key.
func fields(args []any) []zap.Field {
	out := make([]zap.Field, 0, len(args)/2+3)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if key == "" {
			key = "arg"
		}
		if i+1 == len(args) {
			out = append(out, zap.Any(key, nil))
			break
		}
		switch v := args[i+1].(type) {
		case error:
			out = append(out, zap.NamedError(key, v))
		default:
			out = append(out, zap.Any(key, v))
		}
	}
	return out
}
