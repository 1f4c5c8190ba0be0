package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abyssdigger/dbg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewRotatingWriter(t *testing.T) {
	_, err := NewRotatingWriter(FileOptions{})
	assert.EqualError(t, err, _ERROR_MESSAGE_NO_FILE_PATH)

	path := filepath.Join(t.TempDir(), "logs", "nested", "debug.log")
	w, err := NewRotatingWriter(FileOptions{Path: path, MaxSize: 1, MaxBackups: 1})
	require.NoError(t, err)
	defer w.Close()

	r := dbg.Init(NewTerm(w).SetHideDate(true))
	r.Enable("file")
	r.Logger("file").Log("to disk")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file to disk\n", string(content))
}
