package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tee_Render(t *testing.T) {
	a, b := &RecordSink{}, &RecordSink{}
	require.NoError(t, Tee{a, nil, b}.Render(testMeta("t"), []any{"x"}))
	assert.Len(t, a.Calls(), 1)
	assert.Len(t, b.Calls(), 1)

	t.Run("errors_joined", func(t *testing.T) {
		c := &RecordSink{}
		err := Tee{ErrorSink{}, c, ErrorSink{}}.Render(testMeta("t"), []any{"x"})
		assert.ErrorIs(t, err, errWrite)
		assert.Equal(t, errorStr+"\n"+errorStr, err.Error())
		assert.Len(t, c.Calls(), 1, "later sinks still render")
	})
	t.Run("empty", func(t *testing.T) {
		assert.NoError(t, Tee{}.Render(testMeta("t"), nil))
	})
}
