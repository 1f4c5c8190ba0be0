package dbg

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

/*
types.go

Defines the core data structures of the debug facade:
  - Spec: an enable specification split into include and exclude patterns
  - patterns: the immutable snapshot the Registry swaps on every Enable
  - Registry: process-wide state (patterns, generation, formatter table, sink)
  - Logger: a handle bound to one namespace with a cached enabled decision
  - Meta: per-call metadata handed to the Sink together with the final arguments
  - Sink/Store: the external collaborators the core calls into
*/

// Formatter converts one positional argument into the text substituted for a
// %<letter> placeholder.
type Formatter func(v any) string

// formatterTable maps a placeholder letter to its handler. Tables are never
// mutated after publication: SetFormatter swaps in a modified copy.
type formatterTable map[rune]Formatter

// Sink renders the final argument list of an enabled call. args[0] is always the
// substituted template string; the rest are positional arguments no placeholder
// consumed.
type Sink interface {
	Render(meta Meta, args []any) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(meta Meta, args []any) error

func (f SinkFunc) Render(meta Meta, args []any) error { return f(meta, args) }

// Store persists the last used specification between runs (environment
// variable, file, etc).
type Store interface {
	Save(spec string) error
	Load() (string, error)
}

// Meta is the instance metadata handed to the Sink on every enabled call.
type Meta struct {
	Namespace string        // logger namespace
	Color     int           // palette color picked for the namespace
	UseColors bool          // whether the logger was created with colors on
	Diff      time.Duration // time since the previous enabled call of the same logger (0 on first)
	Prev      time.Time     // previous enabled call (zero on first)
	Curr      time.Time     // this call
}

// Spec is a parsed enable specification. Order inside each list is kept so
// that String() round-trips.
type Spec struct {
	Includes []string
	Excludes []string
}

// patterns is the immutable state published by Enable.
type patterns struct {
	spec Spec
	raw  string // text passed to Enable, unparsed
}

// Registry is the shared context every Logger consults. Writers (Enable,
// Disable, SetFormatter, setters) serialize on sync.chngMtx; readers load
// atomically published snapshots and never lock.
type Registry struct {
	sync struct {
		chngMtx sync.Mutex   // serializes Enable/Disable/formatter and option changes
		fbckMtx sync.RWMutex // guards access to fallback writer
	}
	current    atomic.Pointer[patterns]
	generation atomic.Uint64 // bumped on every Enable, compared by Logger caches
	formatters atomic.Pointer[formatterTable]
	sink       atomic.Pointer[sinkHolder]
	clock      atomic.Pointer[clockHolder]
	store      Store
	fallbck    io.Writer // where sink and store failures are reported
	palette    []int     // colors picked by namespace hash
	useColors  bool      // default for loggers created from now on
}

// Holders keep atomic.Pointer typed on a concrete struct whatever the
// interface value inside is.
type sinkHolder struct{ s Sink }
type clockHolder struct{ now func() time.Time }

// Logger is a debug handle bound to one namespace. It is cheap to create and
// meant to be kept in a package variable next to the code it instruments.
type Logger struct {
	registry  *Registry
	namespace string
	color     int
	useColors bool
	sink      Sink         // per-instance sink, nil means the registry sink
	override  atomic.Int32 // _OVERRIDE_* value set by SetEnabled
	cache     atomic.Uint64
	timeMtx   sync.Mutex // keeps prev updates in call order
	prev      time.Time
}

/////////////////////////////////////////////////////////////////////////////////////////

const (
	DEFAULT_DELIMITER     = ":" // Extend delimiter
	DEFAULT_INSPECT_DEPTH = 2   // nesting shown by %o and %O
	DEFAULT_SPEC_SEP      = "," // separator used when serializing a Spec
	EXCLUDE_PREFIX        = '-'
	WILDCARD              = '*'
)

const (
	// Per-logger override states stored in Logger.override.
	_OVERRIDE_UNSET int32 = iota
	_OVERRIDE_OFF
	_OVERRIDE_ON
)

const (
	// ANSI colored text fragments, same layout as the terminal sink uses:
	// ANSI_COL_PRFX + colorSpec + ANSI_COL_SUFX + text + ANSI_COL_RESET
	ANSI_COL_PRFX  = "\033["
	ANSI_COL_SUFX  = "m"
	ANSI_COL_RESET = ANSI_COL_PRFX + "0" + ANSI_COL_SUFX
)

// Basic ANSI colors (cyan, green, yellow, blue, magenta, red) used when the
// output supports only 16 colors.
var BasicColors = []int{6, 2, 3, 4, 5, 1}

// xterm-256 colors readable on both dark and light backgrounds.
var ExtendedColors = []int{
	20, 21, 26, 27, 32, 33, 38, 39, 40, 41, 42, 43, 44, 45, 56, 57, 62, 63, 68,
	69, 74, 75, 76, 77, 78, 79, 80, 81, 92, 93, 98, 99, 112, 113, 128, 129, 134,
	135, 148, 149, 160, 161, 162, 163, 164, 165, 166, 167, 168, 169, 170, 171,
	172, 173, 178, 179, 184, 185, 196, 197, 198, 199, 200, 201, 202, 203, 204,
	205, 206, 207, 208, 209, 214, 215, 220, 221,
}
