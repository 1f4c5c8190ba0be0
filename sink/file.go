package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures a rotating debug file.
type FileOptions struct {
	Path       string
	MaxSize    int // megabytes before rotation
	MaxBackups int // rotated files kept
	MaxAge     int // days rotated files are kept
	Compress   bool
}

// NewRotatingWriter creates the directory of opts.Path when needed and returns a
// size-rotated file writer. The caller closes it.
func NewRotatingWriter(opts FileOptions) (io.WriteCloser, error) {
	if opts.Path == "" {
		return nil, errors.New(_ERROR_MESSAGE_NO_FILE_PATH)
	}
	dir := filepath.Dir(opts.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create debug log directory %q: %w", dir, err)
		}
	}
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   opts.Compress,
	}, nil
}
