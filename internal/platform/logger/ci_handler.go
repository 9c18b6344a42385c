package logger

import (
	"io"
	"log/slog"
	"maps"
	"slices"
)

// NewCIHandler returns a JSON handler that tags every record with the CI run
// metadata under a "ci" group and records the caller's source location.
// An empty meta yields a plain JSON handler with opts unchanged.
func NewCIHandler(out io.Writer, opts *slog.HandlerOptions, meta map[string]string) slog.Handler {
	handlerOpts := slog.HandlerOptions{}
	if opts != nil {
		handlerOpts = *opts
	}
	if len(meta) == 0 {
		return slog.NewJSONHandler(out, &handlerOpts)
	}

	handlerOpts.AddSource = true
	attrs := make([]any, 0, len(meta))
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		attrs = append(attrs, slog.String(k, meta[k]))
	}
	return slog.NewJSONHandler(out, &handlerOpts).
		WithAttrs([]slog.Attr{slog.Group("ci", attrs...)})
}
