package dbg

/*
Package-wide helpers shared by the registry, the loggers and the formatting
pipeline:
  - error texts (kept as constants so tests can match them)
  - namespace color selection
  - first argument classification (text / error / anything else)
  - panic description used when a sink blows up
*/

import (
	"fmt"
	"unicode/utf16"
)

const (
	_ERROR_MESSAGE_STORE_SAVE  = "debug spec store save failed: "
	_ERROR_MESSAGE_STORE_LOAD  = "debug spec store load failed: "
	_ERROR_MESSAGE_SINK_FAILED = "debug sink failed: "
	_ERROR_MESSAGE_SINK_PANIC  = "panic in debug sink"
	_ERROR_MESSAGE_BAD_LETTER  = "formatter key must be a single ASCII letter"
	_ERROR_UNKNOWN_PANIC_TEXT  = "[no panic description]"
)

// argKind is the variant of the first argument of a logger call.
type argKind uint8

const (
	_ARG_TEXT  argKind = iota // string, used as the template
	_ARG_ERROR                // error, replaced by its description
	_ARG_OTHER                // anything else, inspected through "%O"
)

func classify(v any) argKind {
	switch v.(type) {
	case string:
		return _ARG_TEXT
	case error:
		return _ARG_ERROR
	default:
		return _ARG_OTHER
	}
}

// coerce replaces an error by its most descriptive text. "%+v" prints stack
// traces for errors that carry them and falls back to Error() otherwise.
func coerce(v any) any {
	if classify(v) == _ARG_ERROR {
		return fmt.Sprintf("%+v", v)
	}
	return v
}

// selectColor picks a palette entry from a 32-bit rolling hash of the
// namespace UTF-16 code units, so the same name always gets the same color.
func selectColor(namespace string, palette []int) int {
	if len(palette) == 0 {
		return 0
	}
	var hash int32
	for _, unit := range utf16.Encode([]rune(namespace)) {
		hash = hash*31 + int32(unit)
	}
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return palette[abs%int64(len(palette))]
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Converts a panic value into a compact readable string (used when
// translating sink panics into errors)
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
