package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// New creates a slog.Logger that adds trace_id/span_id from the OTel context.
// Kubernetes and the dev/prod environments get JSON, local runs get colored text.
func New(env string) *slog.Logger {
	return NewWithWriter(os.Stdout, env)
}

func NewWithWriter(w io.Writer, env string) *slog.Logger {
	_, inK8s := os.LookupEnv("KUBERNETES_SERVICE_HOST")
	useJSON := inK8s || env == "prod" || env == "dev"

	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})
	} else {
		handler = newColorTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(newTraceContextHandler(handler))
}

func NewWithServiceContext(serviceName, version, env string) *slog.Logger {
	return New(env).With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", env),
	)
}

// newColorTextHandler is a TextHandler whose ERROR lines are painted red.
// TextHandler quotes control characters inside values, so the escape codes
// are applied to the formatted line by the writer instead.
func newColorTextHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return slog.NewTextHandler(&colorWriter{w: w}, opts)
}

const (
	colorRed   = "\x1b[31m"
	colorReset = "\x1b[0m"
)

var levelKey = []byte(" " + slog.LevelKey + "=")

// colorWriter relies on TextHandler emitting one Write per record with the
// level as the first key after the timestamp.
type colorWriter struct {
	w io.Writer
}

func (cw *colorWriter) Write(p []byte) (int, error) {
	if !isErrorLine(p) {
		return cw.w.Write(p)
	}

	line := bytes.TrimSuffix(p, []byte("\n"))
	colored := make([]byte, 0, len(p)+len(colorRed)+len(colorReset))
	colored = append(colored, colorRed...)
	colored = append(colored, line...)
	colored = append(colored, colorReset...)
	colored = append(colored, '\n')

	if _, err := cw.w.Write(colored); err != nil {
		return 0, err
	}
	return len(p), nil
}

func isErrorLine(p []byte) bool {
	i := bytes.Index(p, levelKey)
	if i < 0 {
		return false
	}
	return bytes.HasPrefix(p[i+len(levelKey):], []byte(slog.LevelError.String()))
}

type traceContextHandler struct {
	handler slog.Handler
}

func newTraceContextHandler(h slog.Handler) *traceContextHandler {
	return &traceContextHandler{handler: h}
}

func (h *traceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *traceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.handler.Handle(ctx, r)
}

func (h *traceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *traceContextHandler) WithGroup(name string) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithGroup(name)}
}
