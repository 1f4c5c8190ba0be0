// Output sinks for dbg registries: terminal rendering, structured slog output,
// rotating files, metrics and asynchronous delivery.
package sink

/*
Every sink here implements dbg.Sink and receives the final argument list of an
enabled debug call: args[0] is the substituted message, the rest are positional
arguments no placeholder consumed. Decorators (Queue, Metrics, Tee) wrap other
sinks and can be stacked in any order.
*/

import (
	"strings"

	"github.com/abyssdigger/dbg"
)

const (
	// Error messages used across sinks (used for testing).
	_ERROR_MESSAGE_QUEUE_STARTED  = "debug queue is allready started"
	_ERROR_MESSAGE_QUEUE_INACTIVE = "debug queue is not active"
	_ERROR_MESSAGE_QUEUE_PANIC    = "panic rendering queued debug line"
	_ERROR_MESSAGE_QUEUE_FAILED   = "error rendering queued debug line: "
	_ERROR_MESSAGE_NO_FILE_PATH   = "debug file output needs a path"
	_ERROR_MESSAGE_BAD_FORMAT     = "unknown debug output format: "
	_ERROR_MESSAGE_BAD_LAYOUT     = "bad debug line layout: "
	_ERROR_MESSAGE_WRITE_FAILED   = "debug line write failed: "
	_ERROR_UNKNOWN_PANIC_TEXT     = "[no panic description]"
)

// Output formats understood by NewSlogWriter.
const (
	FORMAT_TEXT = "text"
	FORMAT_JSON = "json"
)

// message joins the rendered message and the leftover arguments the way
// a printf-less printer would: strings verbatim, everything else inspected on
// one line, all separated by single spaces.
func message(args []any, inspect dbg.Formatter) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		if s, ok := arg.(string); ok {
			b.WriteString(s)
		} else {
			b.WriteString(inspect(arg))
		}
	}
	return b.String()
}

// Converts a panic value into a compact readable string
func panicDesc(panic any) (errtext string) {
	switch v := panic.(type) {
	case string:
		errtext = ": `" + v + "`"
	case error:
		errtext = ": (error) `" + v.Error() + "`"
	default:
		errtext = " " + _ERROR_UNKNOWN_PANIC_TEXT
	}
	return errtext
}
