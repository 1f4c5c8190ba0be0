package dbg

/*
io.Writer interface implementation

The Logger implements io.Writer so code that only knows how to print can be
pointed at a debug namespace:

	std := log.New(dbgLogger, "", 0)
	std.Printf("retrying in %s", delay)

Every Write is one debug call with the text passed through "%s" (so '%' in the
payload is never interpreted) and a single trailing newline trimmed. Writes to
a disabled logger are discarded and still report len(p) bytes written.
*/

import "bytes"

// Write implements io.Writer. A nil or empty payload is a zero-length write with
// no error. On sink failure it returns 0 and the error.
func (lg *Logger) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	text := string(bytes.TrimSuffix(p, []byte{'\n'}))
	if _, err = lg.Log_with_err("%s", text); err != nil {
		return 0, err
	}
	return len(p), nil
}
