package sink

import (
	"os"
	"strings"

	"github.com/abyssdigger/dbg"
	"github.com/mattn/go-isatty"
)

// DetectColors reports whether f is a terminal that understands escape
// sequences.
func DetectColors(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DetectPalette picks ExtendedColors when the terminal advertises 256 colors
// or more (COLORTERM set, or a TERM mentioning 256color), BasicColors otherwise.
func DetectPalette() []int {
	if os.Getenv("COLORTERM") != "" || strings.Contains(os.Getenv("TERM"), "256color") {
		return dbg.ExtendedColors
	}
	return dbg.BasicColors
}
