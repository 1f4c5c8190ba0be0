package dbg

/*
A Logger is the handle instrumented code calls. It is bound to one namespace
for life and resolves its enabled state on every call:

  - a manual override (SetEnabled) always wins and bypasses the cache;
  - otherwise the decision cached for the registry generation it was computed
    under is reused, and recomputed only after an Enable/Disable.

The cache packs generation and decision in one word (generation<<1 | enabled)
so the check is a single atomic load and a comparison. Generations start at 1
(the registry enables once at construction), so a zero cache never matches.

Disabled calls return immediately: no coercion, no formatting, no timestamp
update, no sink call.
*/

import (
	"errors"
	"fmt"
	"time"
)

// Logger creates a Logger for namespace. The color is picked from the registry
// palette by namespace hash, so it is stable across runs.
func (r *Registry) Logger(namespace string) *Logger {
	r.sync.chngMtx.Lock()
	palette, useColors := r.palette, r.useColors
	r.sync.chngMtx.Unlock()
	return &Logger{
		registry:  r,
		namespace: namespace,
		color:     selectColor(namespace, palette),
		useColors: useColors,
	}
}

// Extend creates a Logger for "<namespace>:<suffix>" sharing this logger's sink.
// The manual override is not inherited.
func (lg *Logger) Extend(suffix string) *Logger {
	return lg.ExtendWith(suffix, DEFAULT_DELIMITER)
}

// ExtendWith is Extend with an explicit delimiter between the namespaces.
func (lg *Logger) ExtendWith(suffix, delimiter string) *Logger {
	child := lg.registry.Logger(lg.namespace + delimiter + suffix)
	child.sink = lg.sink
	return child
}

// Namespace returns the namespace the logger was created for.
func (lg *Logger) Namespace() string { return lg.namespace }

// Color returns the palette color assigned to the namespace.
func (lg *Logger) Color() int { return lg.color }

// UseColors reports whether the sink is asked for colored output.
func (lg *Logger) UseColors() bool { return lg.useColors }

// Registry returns the registry the logger was created from.
func (lg *Logger) Registry() *Registry { return lg.registry }

// Enabled reports whether calls to this logger produce output.
func (lg *Logger) Enabled() bool {
	switch lg.override.Load() {
	case _OVERRIDE_ON:
		return true
	case _OVERRIDE_OFF:
		return false
	}
	gen := lg.registry.generation.Load()
	if cached := lg.cache.Load(); cached>>1 == gen {
		return cached&1 == 1
	}
	enabled := lg.registry.Enabled(lg.namespace)
	cached := gen << 1
	if enabled {
		cached |= 1
	}
	lg.cache.Store(cached)
	return enabled
}

// SetEnabled forces the logger on or off regardless of the registry spec.
func (lg *Logger) SetEnabled(enabled bool) *Logger {
	if enabled {
		lg.override.Store(_OVERRIDE_ON)
	} else {
		lg.override.Store(_OVERRIDE_OFF)
	}
	return lg
}

// ResetEnabled drops a SetEnabled override; the registry spec decides again.
func (lg *Logger) ResetEnabled() *Logger {
	lg.override.Store(_OVERRIDE_UNSET)
	return lg
}

// SetSink routes this logger (and loggers extended from it afterwards) to s
// instead of the registry sink. nil restores the registry sink. Set it before
// the logger is shared between goroutines.
func (lg *Logger) SetSink(s Sink) *Logger {
	lg.sink = s
	return lg
}

// Log_with_err emits one debug line if the logger is enabled and returns the
// call time (zero when disabled) and the sink error, if any.
//
// The first argument is the template: a string is used as is, an error is
// replaced by its description, anything else is inspected via "%O". Each
// %<letter> with a registered formatter consumes the next positional argument,
// %% is a literal percent. Arguments left over are passed on to the sink.
//
// Formatter panics are not recovered. Sink panics are returned as errors.
func (lg *Logger) Log_with_err(args ...any) (t time.Time, err error) {
	if !lg.Enabled() {
		return t, nil
	}
	final := lg.registry.formatArgs(args)
	meta := lg.stamp()
	return meta.Curr, lg.render(meta, final)
}

// Log is Log_with_err with sink errors written to the registry fallback.
// Returns the call time or zero value when disabled.
func (lg *Logger) Log(args ...any) time.Time {
	t, err := lg.Log_with_err(args...)
	if err != nil {
		lg.registry.handleError(err.Error())
	}
	return t
}

// Logf is Log with the template spelled out, for call sites that read better
// with a format string first.
func (lg *Logger) Logf(format string, args ...any) time.Time {
	return lg.Log(append([]any{format}, args...)...)
}

// stamp records the call time and the delay since the previous enabled call.
func (lg *Logger) stamp() Meta {
	lg.timeMtx.Lock()
	defer lg.timeMtx.Unlock()
	curr := lg.registry.now()
	meta := Meta{
		Namespace: lg.namespace,
		Color:     lg.color,
		UseColors: lg.useColors,
		Prev:      lg.prev,
		Curr:      curr,
	}
	if !lg.prev.IsZero() {
		meta.Diff = curr.Sub(lg.prev)
	}
	lg.prev = curr
	return meta
}

// render hands the final arguments to the sink, converting a sink panic into
// an error.
func (lg *Logger) render(meta Meta, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(_ERROR_MESSAGE_SINK_PANIC + panicDesc(r))
		}
	}()
	s := lg.sink
	if s == nil {
		s = lg.registry.Sink()
	}
	if e := s.Render(meta, args); e != nil {
		err = fmt.Errorf(_ERROR_MESSAGE_SINK_FAILED+"%w", e)
	}
	return err
}
