package dbg

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// BuiltinFormatters returns the default placeholder table:
//
//	%o  single-line inspect
//	%O  multi-line inspect
//	%s  string
//	%d  integer
//	%j  JSON
//
// depth limits how deep %o and %O descend into nested values (0 = unlimited).
func BuiltinFormatters(depth int) map[rune]Formatter {
	return map[rune]Formatter{
		'o': InspectLine(depth),
		'O': InspectMulti(depth),
		's': FormatString,
		'd': FormatInteger,
		'j': FormatJSON,
	}
}

func inspectConfig(depth int) *spew.ConfigState {
	return &spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                depth,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
}

// InspectLine shows a value on one line, field names included.
func InspectLine(depth int) Formatter {
	cfg := inspectConfig(depth)
	return func(v any) string {
		if s, ok := v.(string); ok {
			return strconv.Quote(s)
		}
		return strings.Join(strings.Fields(cfg.Sprintf("%+v", v)), " ")
	}
}

// InspectMulti dumps a value with types, one field per line.
func InspectMulti(depth int) Formatter {
	cfg := inspectConfig(depth)
	return func(v any) string {
		return strings.TrimRight(cfg.Sdump(v), "\n")
	}
}

// FormatString is fmt.Sprint of the value.
func FormatString(v any) string {
	return fmt.Sprint(v)
}

// FormatInteger prints the integer part of a numeric value. Strings are parsed,
// booleans count as 1/0, anything else is NaN.
func FormatInteger(v any) string {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10)
	case int8:
		return strconv.FormatInt(int64(n), 10)
	case int16:
		return strconv.FormatInt(int64(n), 10)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint:
		return strconv.FormatUint(uint64(n), 10)
	case uint8:
		return strconv.FormatUint(uint64(n), 10)
	case uint16:
		return strconv.FormatUint(uint64(n), 10)
	case uint32:
		return strconv.FormatUint(uint64(n), 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case uintptr:
		return strconv.FormatUint(uint64(n), 10)
	case float32:
		return formatFloatInteger(float64(n))
	case float64:
		return formatFloatInteger(n)
	case bool:
		if n {
			return "1"
		}
		return "0"
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return "NaN"
		}
		return formatFloatInteger(f)
	}
	return "NaN"
}

func formatFloatInteger(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	t := math.Trunc(f)
	if t == 0 {
		return "0" // no "-0"
	}
	return strconv.FormatFloat(t, 'f', 0, 64)
}

// FormatJSON marshals the value. A value that cannot be marshaled is reported
// inline instead of failing the call.
func FormatJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[UnexpectedJSONParseError]: " + err.Error()
	}
	return string(b)
}
