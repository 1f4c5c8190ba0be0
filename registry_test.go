package dbg

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registry_Init(t *testing.T) {
	sink := &RecordSink{}
	r := Init(sink)
	assert.Equal(t, sink, r.Sink())
	assert.Equal(t, os.Stderr, r.fallbck)
	assert.Equal(t, "", r.Namespaces())
	assert.True(t, r.Spec().IsEmpty())
	assert.Equal(t, uint64(1), r.Generation())
	for _, letter := range "oOsdj" {
		assert.NotNil(t, r.Formatter(letter), string(letter))
	}
	assert.Equal(t, BasicColors, r.palette)
}

func Test_Registry_InitWithParams(t *testing.T) {
	t.Run("loads_store", func(t *testing.T) {
		store := &memStore{spec: "http,-http:noisy"}
		r := InitWithParams(nil, store, nil)
		assert.Equal(t, "http,-http:noisy", r.Namespaces())
		assert.True(t, r.Enabled("http"))
		assert.False(t, r.Enabled("http:noisy"))
		assert.Empty(t, store.saves, "loading must not save back")
	})
	t.Run("load_failure", func(t *testing.T) {
		ferr := &FakeWriter{}
		r := InitWithParams(nil, &memStore{err: errors.New("unreadable")}, ferr)
		assert.Equal(t, _ERROR_MESSAGE_STORE_LOAD+"unreadable\n", ferr.String())
		assert.True(t, r.Spec().IsEmpty())
	})
	t.Run("nil_sink_and_fallback", func(t *testing.T) {
		r := InitWithParams(nil, nil, nil)
		assert.Equal(t, Discard, r.Sink())
		assert.Equal(t, io.Discard, r.fallbck)
	})
}

func Test_Registry_Enable(t *testing.T) {
	r, _, _ := newTestRegistry()
	gen := r.Generation()

	r.Enable("*,-connect:*")
	assert.Equal(t, gen+1, r.Generation())
	assert.Equal(t, "*,-connect:*", r.Namespaces())
	assert.True(t, r.Enabled("http"))
	assert.False(t, r.Enabled("connect:bodyParser"))

	t.Run("same_text_bumps_generation", func(t *testing.T) {
		before := r.Generation()
		r.Enable("*,-connect:*")
		assert.Equal(t, before+1, r.Generation())
	})
	t.Run("replaces_not_merges", func(t *testing.T) {
		r.Enable("worker:*")
		assert.False(t, r.Enabled("http"))
		assert.True(t, r.Enabled("worker:a"))
	})
	t.Run("raw_text_kept", func(t *testing.T) {
		r.Enable("  a   b ")
		assert.Equal(t, "  a   b ", r.Namespaces())
		assert.Equal(t, Spec{Includes: []string{"a", "b"}}, r.Spec())
	})
}

func Test_Registry_Enable_Store(t *testing.T) {
	t.Run("saves", func(t *testing.T) {
		store := &memStore{}
		r := InitWithParams(nil, store, nil)
		r.Enable("a").Enable("b,-c")
		assert.Equal(t, []string{"a", "b,-c"}, store.saves)
	})
	t.Run("save_failure_still_enables", func(t *testing.T) {
		ferr := &FakeWriter{}
		store := &memStore{}
		r := InitWithParams(nil, store, ferr)
		store.err = errors.New("read-only")
		r.Enable("http")
		assert.True(t, r.Enabled("http"))
		assert.Equal(t, _ERROR_MESSAGE_STORE_SAVE+"read-only\n", ferr.String())
	})
}

func Test_Registry_Disable(t *testing.T) {
	store := &memStore{}
	r := InitWithParams(nil, store, nil)
	r.Enable("  http , worker:*  -worker:noisy ")
	names := []string{"http", "https", "worker:a", "worker:noisy", "db"}
	before := map[string]bool{}
	for _, name := range names {
		before[name] = r.Enabled(name)
	}

	restore := r.Disable()
	assert.Equal(t, "http,worker:*,-worker:noisy", restore)
	assert.Equal(t, "", store.spec)
	for _, name := range names {
		assert.False(t, r.Enabled(name), name)
	}

	r.Enable(restore)
	for _, name := range names {
		assert.Equal(t, before[name], r.Enabled(name), name)
	}

	t.Run("twice", func(t *testing.T) {
		r.Disable()
		assert.Equal(t, "", r.Disable())
	})
}

func Test_Registry_Spec_IsCopy(t *testing.T) {
	r, _, _ := newTestRegistry()
	r.Enable("a,-b")
	s := r.Spec()
	s.Includes[0] = "changed"
	s.Excludes[0] = "changed"
	assert.Equal(t, Spec{Includes: []string{"a"}, Excludes: []string{"b"}}, r.Spec())
}

func Test_Registry_SetFormatter(t *testing.T) {
	r, sink, _ := newTestRegistry()
	r.Enable("*")
	lg := r.Logger("fmt")

	t.Run("bad_letter", func(t *testing.T) {
		for _, letter := range []rune{'%', '1', ' ', 'я', '_'} {
			assert.EqualError(t, r.SetFormatter(letter, FormatString), _ERROR_MESSAGE_BAD_LETTER)
		}
	})
	t.Run("custom", func(t *testing.T) {
		require.NoError(t, r.SetFormatter('h', func(v any) string {
			return strings.ToUpper(FormatString(v))
		}))
		lg.Log("%h!", "hey")
		assert.Equal(t, []any{"HEY!"}, sink.Last().args)
	})
	t.Run("last_write_wins", func(t *testing.T) {
		require.NoError(t, r.SetFormatter('h', func(any) string { return "second" }))
		lg.Log("%h", "hey")
		assert.Equal(t, []any{"second"}, sink.Last().args)
	})
	t.Run("replace_builtin", func(t *testing.T) {
		require.NoError(t, r.SetFormatter('d', func(any) string { return "D" }))
		lg.Log("%d", 5)
		assert.Equal(t, []any{"D"}, sink.Last().args)
	})
	t.Run("remove", func(t *testing.T) {
		require.NoError(t, r.SetFormatter('h', nil))
		assert.Nil(t, r.Formatter('h'))
		lg.Log("%h", "hey")
		assert.Equal(t, []any{"%h", "hey"}, sink.Last().args)
	})
}

func Test_Registry_SetInspectDepth(t *testing.T) {
	r, sink, _ := newTestRegistry()
	r.Enable("*")
	custom := func(any) string { return "custom" }
	require.NoError(t, r.SetFormatter('x', custom))
	r.SetInspectDepth(1)
	assert.NotNil(t, r.Formatter('x'))

	type inner struct{ Deep int }
	type outer struct{ In inner }
	r.Logger("depth").Log("%o", outer{In: inner{Deep: 7}})
	assert.NotContains(t, sink.Last().args[0], "7")
}

func Test_Registry_Options(t *testing.T) {
	r, _, _ := newTestRegistry()

	t.Run("SetSink", func(t *testing.T) {
		other := &RecordSink{}
		r.SetSink(other)
		assert.Equal(t, other, r.Sink())
		r.SetSink(nil)
		assert.Equal(t, Discard, r.Sink())
	})
	t.Run("SetFallback", func(t *testing.T) {
		ferr := &FakeWriter{}
		r.SetFallback(ferr)
		r.handleError("oops")
		assert.Equal(t, "oops\n", ferr.String())
		r.SetFallback(nil)
		assert.Equal(t, io.Discard, r.fallbck)
	})
	t.Run("SetPalette", func(t *testing.T) {
		palette := []int{9}
		r.SetPalette(palette)
		palette[0] = 1
		assert.Equal(t, 9, r.Logger("any").Color())
	})
	t.Run("SetUseColors", func(t *testing.T) {
		before := r.Logger("before")
		r.SetUseColors(true)
		assert.True(t, r.Logger("after").UseColors())
		assert.False(t, before.UseColors())
	})
	t.Run("SetClock", func(t *testing.T) {
		at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		r.SetClock(func() time.Time { return at })
		assert.Equal(t, at, r.now())
		r.SetClock(nil)
		assert.WithinDuration(t, time.Now(), r.now(), time.Minute)
	})
}
