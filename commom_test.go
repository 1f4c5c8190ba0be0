package dbg

import (
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const panicStr = "panic generated in sink"
const errorStr = "error generated in sink"

type FakeWriter struct {
	mu     sync.Mutex
	buffer []byte
}

func (f *FakeWriter) Write(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffer = append(f.buffer, b...)
	return len(b), nil
}
func (f *FakeWriter) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.buffer)
}
func (f *FakeWriter) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffer = f.buffer[:0]
}

type sinkCall struct {
	meta Meta
	args []any
}

// RecordSink keeps every rendered call.
type RecordSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (s *RecordSink) Render(meta Meta, args []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{meta: meta, args: args})
	return nil
}
func (s *RecordSink) Calls() []sinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkCall(nil), s.calls...)
}
func (s *RecordSink) Last() sinkCall {
	calls := s.Calls()
	if len(calls) == 0 {
		return sinkCall{}
	}
	return calls[len(calls)-1]
}

var errSink = errors.New(errorStr)

type ErrorSink struct{}

func (ErrorSink) Render(Meta, []any) error { return errSink }

type PanicSink struct{}

func (PanicSink) Render(Meta, []any) error { panic(panicStr) }

type ZeroPanicSink struct{}

func (ZeroPanicSink) Render(Meta, []any) error { panic(0) }

// memStore is an in-memory Store; err, when set, fails every operation.
type memStore struct {
	spec  string
	saves []string
	err   error
}

func (m *memStore) Save(spec string) error {
	if m.err != nil {
		return m.err
	}
	m.spec = spec
	m.saves = append(m.saves, spec)
	return nil
}
func (m *memStore) Load() (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.spec, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry() (*Registry, *RecordSink, *FakeWriter) {
	sink := &RecordSink{}
	ferr := &FakeWriter{}
	return InitWithParams(sink, nil, ferr), sink, ferr
}

/////////////////////////////////////////////////////////////////////////////////////////

func Test_selectColor(t *testing.T) {
	tests := []struct {
		namespace string
		want      int
	}{
		{"", 6},
		{"a", 2},
		{"ab", 4},
		{"foo", 6},
		{"http", 5},
		{"worker:a", 1},
		{"connect:bodyParser", 1},
		{"a very long namespace:with:many:parts", 1}, // negative 32-bit hash
	}
	for _, tt := range tests {
		t.Run(tt.namespace, func(t *testing.T) {
			assert.Equal(t, tt.want, selectColor(tt.namespace, BasicColors))
			assert.Equal(t, tt.want, selectColor(tt.namespace, BasicColors), "not deterministic")
		})
	}
	t.Run("always_in_palette", func(t *testing.T) {
		for i := range 1000 {
			ns := "ns:" + strconv.Itoa(i*7919) + ":части"
			assert.Contains(t, ExtendedColors, selectColor(ns, ExtendedColors))
		}
	})
	t.Run("empty_palette", func(t *testing.T) {
		assert.Zero(t, selectColor("http", nil))
	})
}

func Test_classify(t *testing.T) {
	assert.Equal(t, _ARG_TEXT, classify("text"))
	assert.Equal(t, _ARG_TEXT, classify(""))
	assert.Equal(t, _ARG_ERROR, classify(errors.New("boom")))
	assert.Equal(t, _ARG_OTHER, classify(42))
	assert.Equal(t, _ARG_OTHER, classify(nil))
	assert.Equal(t, _ARG_OTHER, classify([]byte("bytes")))
}

func Test_coerce(t *testing.T) {
	assert.Equal(t, "boom", coerce(errors.New("boom")))
	wrapped := errors.Join(errors.New("first"), errors.New("second"))
	assert.Equal(t, "first\nsecond", coerce(wrapped))
	assert.Equal(t, 42, coerce(42))
	assert.Equal(t, "text", coerce("text"))
}

func Test_panicDesc(t *testing.T) {
	assert.Equal(t, ": `"+panicStr+"`", panicDesc(panicStr))
	assert.Equal(t, ": (error) `"+errorStr+"`", panicDesc(errSink))
	assert.Equal(t, " "+_ERROR_UNKNOWN_PANIC_TEXT, panicDesc(0))
}

func Test_Parallel_Multithreading(t *testing.T) {
	const (
		_GOROUTINES_ = 64  // Number of simultaneous goroutines/loggers
		_DATACOUNT_  = 500 // Number of calls every goroutine makes
	)
	r, sink, ferr := newTestRegistry()
	r.Enable("worker:*,-worker:1*")

	var wg sync.WaitGroup
	hold := make(chan struct{})
	loggers := make([]*Logger, _GOROUTINES_)
	for g := range _GOROUTINES_ {
		lg := r.Logger("worker:" + strconv.Itoa(g))
		loggers[g] = lg
		wg.Go(func() {
			<-hold
			for i := range _DATACOUNT_ {
				lg.Log("call %d of %s", i, lg.Namespace())
			}
		})
	}
	// a concurrent writer swapping specs back and forth
	wg.Go(func() {
		<-hold
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for range 200 {
			if rnd.Intn(2) == 0 {
				r.Enable("worker:*,-worker:1*")
			} else {
				r.Enable(r.Disable())
			}
		}
	})
	close(hold)
	wg.Wait()
	// the spec is stable again: one more call each, decided by the final spec
	for _, lg := range loggers {
		lg.Log("final")
	}

	require.Empty(t, ferr.String())
	perNamespace := map[string]int{}
	for _, call := range sink.Calls() {
		perNamespace[call.meta.Namespace]++
	}
	for ns := range perNamespace {
		assert.False(t, Matches(ns, "worker:1*"), "excluded namespace %s logged", ns)
	}
	assert.Len(t, perNamespace, _GOROUTINES_-11) // worker:1, worker:10..worker:19 excluded
	for ns, n := range perNamespace {
		assert.LessOrEqual(t, n, _DATACOUNT_+1, ns)
	}
}
