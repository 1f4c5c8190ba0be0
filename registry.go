// Package dbg is a conditional debug logging facade. Code creates Loggers bound
// to namespaces ("http", "worker:a"); an operator switches subsets of them on
// with one specification string of names, '*' wildcards and '-' exclusions
// ("*,-connect:*"). A disabled Logger call costs an atomic load and a
// comparison, nothing is formatted.
package dbg

/*
The Registry is the explicit context object every Logger is created from. It
holds the active patterns, the generation token Logger caches are keyed on, the
placeholder formatter table and the default output sink.

Writers (Enable, Disable, SetFormatter and the Set* options) serialize on one
mutex and publish immutable snapshots; readers (Enabled, Logger calls) only do
atomic loads, so checking a namespace never blocks behind a writer.
*/

import (
	"errors"
	"io"
	"maps"
	"os"
	"time"
)

// Short form of InitWithParams: a Registry rendering to sink with nothing
// enabled, no persistence and [os.Stderr] as fallback for internal errors.
func Init(sink Sink) *Registry {
	return InitWithParams(sink, nil, os.Stderr)
}

// InitWithParams constructs a Registry with explicit collaborators. When store is
// not nil the last saved specification is loaded and enabled right away; a load
// failure is reported to fallback and leaves nothing enabled.
func InitWithParams(sink Sink, store Store, fallback io.Writer) *Registry {
	r := new(Registry)
	r.palette = BasicColors
	r.SetFallback(fallback)
	r.SetSink(sink)
	r.SetClock(nil)
	r.formatters.Store(&formatterTable{})
	for letter, f := range BuiltinFormatters(DEFAULT_INSPECT_DEPTH) {
		r.SetFormatter(letter, f)
	}
	spec := ""
	if store != nil {
		loaded, err := store.Load()
		if err != nil {
			r.handleError(_ERROR_MESSAGE_STORE_LOAD + err.Error())
		} else {
			spec = loaded
		}
	}
	r.enable(spec, false)
	r.store = store
	return r
}

// Enable replaces the active specification. The spec is saved through the store
// (failures go to the fallback writer and do not prevent enabling) and the
// generation token is bumped even when the text did not change, so every
// Logger re-evaluates on its next call.
func (r *Registry) Enable(spec string) *Registry {
	r.enable(spec, true)
	return r
}

func (r *Registry) enable(spec string, save bool) {
	r.sync.chngMtx.Lock()
	defer r.sync.chngMtx.Unlock()
	r.publish(spec, save)
}

// publish must be called with sync.chngMtx held.
func (r *Registry) publish(spec string, save bool) {
	if save && r.store != nil {
		if err := r.store.Save(spec); err != nil {
			r.handleError(_ERROR_MESSAGE_STORE_SAVE + err.Error())
		}
	}
	// patterns first, generation second: a Logger that reads the new
	// generation is guaranteed to see these patterns
	r.current.Store(&patterns{spec: ParseSpec(spec), raw: spec})
	r.generation.Add(1)
}

// Disable clears the active specification and returns one that restores it:
// Enable(Disable()) brings back the same decisions for every namespace.
func (r *Registry) Disable() string {
	r.sync.chngMtx.Lock()
	defer r.sync.chngMtx.Unlock()
	previous := r.current.Load().spec.String()
	r.publish("", true)
	return previous
}

// Enabled reports whether name is enabled by the active specification. It is a
// pure function of the name and the current patterns.
func (r *Registry) Enabled(name string) bool {
	return r.current.Load().spec.Enabled(name)
}

// Spec returns a copy of the active include and exclude patterns.
func (r *Registry) Spec() Spec {
	s := r.current.Load().spec
	return Spec{
		Includes: append([]string(nil), s.Includes...),
		Excludes: append([]string(nil), s.Excludes...),
	}
}

// Namespaces returns the raw text last passed to Enable.
func (r *Registry) Namespaces() string {
	return r.current.Load().raw
}

// Generation returns the token Logger caches compare against. It changes on
// every Enable/Disable.
func (r *Registry) Generation() uint64 {
	return r.generation.Load()
}

/////////////////////////////////////////////////////////////////////////////////////////
// Formatter table

// SetFormatter installs f as the handler of %<letter> for every Logger of this
// registry; a nil f removes the handler. The last write for a letter wins.
func (r *Registry) SetFormatter(letter rune, f Formatter) error {
	if !isLetter(letter) {
		return errors.New(_ERROR_MESSAGE_BAD_LETTER)
	}
	r.sync.chngMtx.Lock()
	defer r.sync.chngMtx.Unlock()
	table := maps.Clone(*r.formatters.Load())
	if f == nil {
		delete(table, letter)
	} else {
		table[letter] = f
	}
	r.formatters.Store(&table)
	return nil
}

// Formatter returns the handler of %<letter> or nil.
func (r *Registry) Formatter(letter rune) Formatter {
	return (*r.formatters.Load())[letter]
}

// SetInspectDepth reinstalls the built-in formatters with a new nesting limit
// for %o and %O (0 means unlimited). Custom formatters are kept.
func (r *Registry) SetInspectDepth(depth int) *Registry {
	for letter, f := range BuiltinFormatters(depth) {
		r.SetFormatter(letter, f)
	}
	return r
}

/////////////////////////////////////////////////////////////////////////////////////////
// Options

// Sets the default sink used by every Logger without its own. A nil sink
// discards output.
func (r *Registry) SetSink(s Sink) *Registry {
	if s == nil {
		s = Discard
	}
	r.sink.Store(&sinkHolder{s: s})
	return r
}

// Sink returns the default sink.
func (r *Registry) Sink() Sink {
	return r.sink.Load().s
}

// Sets the fallback output used to report sink and store failures, io.Discard is
// used instead of nil to silently drop them.
func (r *Registry) SetFallback(f io.Writer) *Registry {
	r.sync.fbckMtx.Lock()
	defer r.sync.fbckMtx.Unlock()
	if f != nil {
		r.fallbck = f
	} else {
		r.fallbck = io.Discard
	}
	return r
}

// Sets the palette namespace colors are picked from. Affects loggers created
// afterwards.
func (r *Registry) SetPalette(palette []int) *Registry {
	r.sync.chngMtx.Lock()
	defer r.sync.chngMtx.Unlock()
	r.palette = append([]int(nil), palette...)
	return r
}

// Sets whether loggers created afterwards ask the sink for colored output.
func (r *Registry) SetUseColors(use bool) *Registry {
	r.sync.chngMtx.Lock()
	defer r.sync.chngMtx.Unlock()
	r.useColors = use
	return r
}

// Sets the clock used for call timestamps and diffs, nil restores time.Now.
func (r *Registry) SetClock(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	r.clock.Store(&clockHolder{now: now})
	return r
}

func (r *Registry) now() time.Time {
	return r.clock.Load().now()
}

// handleError writes a single line to the fallback writer.
func (r *Registry) handleError(errormsg string) {
	r.sync.fbckMtx.RLock()
	defer r.sync.fbckMtx.RUnlock()
	if r.fallbck != nil {
		r.fallbck.Write([]byte(errormsg + "\n"))
	}
}

type discardSink struct{}

func (discardSink) Render(Meta, []any) error { return nil }

// Discard is a sink that drops everything.
var Discard Sink = discardSink{}
