package sink

/*
Term renders debug lines for humans.

With colors (the logger was created with UseColors) every line of the message
is prefixed with the bold colored namespace and the delay since the previous
call is appended in the same color:

	  http request done +12ms

Without colors the line carries an ISO-8601 date (unless hidden) and follows a
layout template, "{{date}}{{namespace}} {{message}}" by default. Available tags
are {{date}} (empty when hidden, with a trailing space otherwise), {{namespace}},
{{message}}, {{color}} and {{diff}}.
*/

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/abyssdigger/dbg"
	"github.com/fatih/color"
	"github.com/valyala/fasttemplate"
)

const (
	DEFAULT_LAYOUT   = "{{date}}{{namespace}} {{message}}"
	ISO_DATE_FORMAT  = "2006-01-02T15:04:05.000Z"
	_COLOR_BASIC_MAX = 8  // colors below use the short 3x code
	_FG_BASE         = 30 // first basic foreground code
	_FG_EXTENDED     = 38 // 38;5;<n> selects an xterm-256 foreground
)

// Term writes one line per call to an io.Writer. Writes are serialized.
type Term struct {
	mtx      sync.Mutex
	out      io.Writer
	hideDate bool
	layout   *fasttemplate.Template
	inspect  dbg.Formatter
}

// NewTerm creates a terminal sink writing to out with the default layout.
func NewTerm(out io.Writer) *Term {
	t := &Term{out: out, inspect: dbg.InspectLine(dbg.DEFAULT_INSPECT_DEPTH)}
	t.layout = fasttemplate.New(DEFAULT_LAYOUT, "{{", "}}")
	return t
}

// Hides the date in colorless lines.
func (t *Term) SetHideDate(hide bool) *Term {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.hideDate = hide
	return t
}

// Sets the nesting limit used to inspect leftover non-string arguments.
func (t *Term) SetInspectDepth(depth int) *Term {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.inspect = dbg.InspectLine(depth)
	return t
}

// SetLayout replaces the colorless line template. An empty layout restores
// DEFAULT_LAYOUT.
func (t *Term) SetLayout(layout string) error {
	if layout == "" {
		layout = DEFAULT_LAYOUT
	}
	tmpl, err := fasttemplate.NewTemplate(layout, "{{", "}}")
	if err != nil {
		return fmt.Errorf(_ERROR_MESSAGE_BAD_LAYOUT+"%w", err)
	}
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.layout = tmpl
	return nil
}

// Render implements dbg.Sink.
func (t *Term) Render(meta dbg.Meta, args []any) error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	var line string
	if meta.UseColors {
		line = t.colored(meta, args)
	} else {
		line = t.plain(meta, args)
	}
	if _, err := io.WriteString(t.out, line+"\n"); err != nil {
		return fmt.Errorf(_ERROR_MESSAGE_WRITE_FAILED+"%w", err)
	}
	return nil
}

func (t *Term) colored(meta dbg.Meta, args []any) string {
	name := namespaceColor(meta.Color, true)
	diff := namespaceColor(meta.Color, false)
	prefix := "  " + name.Sprint(meta.Namespace+" ")
	msg := message(args, t.inspect)
	return prefix + strings.ReplaceAll(msg, "\n", "\n"+prefix) + " " + diff.Sprint("+"+Humanize(meta.Diff))
}

func (t *Term) plain(meta dbg.Meta, args []any) string {
	date := ""
	if !t.hideDate {
		date = meta.Curr.UTC().Format(ISO_DATE_FORMAT) + " "
	}
	return t.layout.ExecuteString(map[string]any{
		"date":      date,
		"namespace": meta.Namespace,
		"message":   message(args, t.inspect),
		"color":     strconv.Itoa(meta.Color),
		"diff":      Humanize(meta.Diff),
	})
}

// namespaceColor builds the escape sequence for a palette color: 3<c> for the
// basic eight, 38;5;<c> for xterm-256 ones. Output is forced on: the decision
// to color was already taken when the logger was created.
func namespaceColor(c int, bold bool) *color.Color {
	var col *color.Color
	if c < _COLOR_BASIC_MAX {
		col = color.New(color.Attribute(_FG_BASE + c))
	} else {
		col = color.New(_FG_EXTENDED, 5, color.Attribute(c))
	}
	if bold {
		col.Add(color.Bold)
	}
	col.EnableColor()
	return col
}
