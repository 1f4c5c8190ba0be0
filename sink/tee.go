package sink

import (
	"errors"

	"github.com/abyssdigger/dbg"
)

// Tee renders every line to all of its sinks, in order. Every sink is called
// even when an earlier one fails; the errors are joined.
type Tee []dbg.Sink

// Render implements dbg.Sink.
func (t Tee) Render(meta dbg.Meta, args []any) error {
	var errs []error
	for _, s := range t {
		if s == nil {
			continue
		}
		if err := s.Render(meta, args); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
