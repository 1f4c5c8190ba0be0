package sink

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/abyssdigger/dbg"
)

// Attribute keys added to every record.
const (
	ATTR_NAMESPACE = "namespace"
	ATTR_DIFF      = "diff_ms"
	ATTR_COLOR     = "color"
)

// Slog forwards debug lines to a structured logger as Debug records stamped
// with the call time.
type Slog struct {
	mtx     sync.RWMutex
	logger  *slog.Logger
	level   slog.Level
	inspect dbg.Formatter
}

// NewSlog creates a sink recording at slog.LevelDebug through logger.
func NewSlog(logger *slog.Logger) *Slog {
	return &Slog{
		logger:  logger,
		level:   slog.LevelDebug,
		inspect: dbg.InspectLine(dbg.DEFAULT_INSPECT_DEPTH),
	}
}

// Sets the level records are emitted at.
func (s *Slog) SetLevel(level slog.Level) *Slog {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.level = level
	return s
}

// Sets the nesting limit used to inspect leftover non-string arguments.
func (s *Slog) SetInspectDepth(depth int) *Slog {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.inspect = dbg.InspectLine(depth)
	return s
}

// Render implements dbg.Sink. Records below the handler level are dropped
// without error.
func (s *Slog) Render(meta dbg.Meta, args []any) error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	ctx := context.Background()
	h := s.logger.Handler()
	if !h.Enabled(ctx, s.level) {
		return nil
	}
	r := slog.NewRecord(meta.Curr, s.level, message(args, s.inspect), 0)
	r.AddAttrs(
		slog.String(ATTR_NAMESPACE, meta.Namespace),
		slog.Int64(ATTR_DIFF, meta.Diff.Milliseconds()),
		slog.Int(ATTR_COLOR, meta.Color),
	)
	return h.Handle(ctx, r)
}

// NewSlogWriter builds a debug-level slog.Logger writing to w in the given
// format (FORMAT_TEXT or FORMAT_JSON; empty means text).
func NewSlogWriter(w io.Writer, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var handler slog.Handler
	switch format {
	case FORMAT_JSON:
		handler = slog.NewJSONHandler(w, opts)
	case FORMAT_TEXT, "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, errors.New(_ERROR_MESSAGE_BAD_FORMAT + format)
	}
	return slog.New(handler), nil
}
