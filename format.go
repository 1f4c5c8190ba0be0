package dbg

import (
	"strings"
	"unicode/utf8"
)

// formatArgs turns the arguments of an enabled call into the list handed to
// the sink: args[0] becomes the substituted template, consumed positional
// arguments are removed, the rest is kept in order. The caller's slice is not
// modified.
func (r *Registry) formatArgs(args []any) []any {
	out := make([]any, 0, len(args)+1)
	if len(args) == 0 {
		out = append(out, nil)
	} else {
		out = append(out, args...)
	}
	out[0] = coerce(out[0])
	if classify(out[0]) != _ARG_TEXT {
		out = append([]any{"%O"}, out...)
	}
	text, out := r.substitute(out[0].(string), out)
	out[0] = text
	return out
}

// substitute does one left-to-right pass over template. "%%" yields "%" without
// consuming an argument. For "%<letter>" the position advances by one; with a
// registered formatter the argument at that position is formatted, inlined and
// removed (so later positions shift back), without one the placeholder stays as
// written and the argument is left for the sink. A missing argument is passed to
// the formatter as nil.
func (r *Registry) substitute(template string, args []any) (string, []any) {
	if strings.IndexByte(template, '%') < 0 {
		return template, args
	}
	table := *r.formatters.Load()
	var b strings.Builder
	b.Grow(len(template))
	index := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		letter, size := utf8.DecodeRuneInString(template[i+1:])
		switch {
		case letter == '%':
			b.WriteByte('%')
		case !isLetter(letter):
			b.WriteByte(c)
			continue
		default:
			index++
			f := table[letter]
			if f == nil {
				b.WriteByte('%')
				b.WriteRune(letter)
				break
			}
			var val any
			if index < len(args) {
				val = args[index]
			}
			b.WriteString(f(val))
			if index < len(args) {
				args = append(args[:index], args[index+1:]...)
			}
			index--
		}
		i += size
	}
	return b.String(), args
}
