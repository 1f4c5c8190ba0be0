package sink

/*
Queue moves rendering off the calling goroutine. Render only enqueues; a single
background goroutine drains the channel in call order and hands every line to
the wrapped sink. Errors and panics of the wrapped sink cannot reach the caller
any more, they are written to the fallback writer instead.

The argument list of a call is handed over as is: pointers logged through a
queue are read when the line is rendered, not when it was logged.

Preferred usage example:

	func main() {
	    q := sink.StartQueue(sink.NewTerm(os.Stderr), -1, os.Stderr)
	    defer q.StopAndWait()
	    registry := dbg.Init(q)
	    ...
	}
*/

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/abyssdigger/dbg"
)

const DEFAULT_QUEUE_BUFF = 256

type queueState uint8

const (
	_STATE_STOPPED queueState = iota
	_STATE_ACTIVE
	_STATE_STOPPING
)

type queued struct {
	meta dbg.Meta
	args []any
}

// Queue is an asynchronous dbg.Sink decorator.
type Queue struct {
	sync struct {
		statMtx sync.RWMutex   // guards state and channel
		fbckMtx sync.RWMutex   // guards access to fallback writer
		waitEnd sync.WaitGroup // tracks the processing goroutine
	}
	next    dbg.Sink
	state   queueState
	channel chan queued
	fallbck io.Writer
}

// NewQueue creates a stopped queue in front of next. Failures of next are
// reported to fallback (nil discards them).
func NewQueue(next dbg.Sink, fallback io.Writer) *Queue {
	q := &Queue{next: next, state: _STATE_STOPPED}
	q.SetFallback(fallback)
	return q
}

// StartQueue is NewQueue followed by Start.
func StartQueue(next dbg.Sink, buffsize int, fallback io.Writer) *Queue {
	q := NewQueue(next, fallback)
	q.Start(buffsize)
	return q
}

// Start launches the processing goroutine with a channel of buffsize entries
// (DEFAULT_QUEUE_BUFF for non-positive values). Starting an active queue is an
// error.
func (q *Queue) Start(buffsize int) error {
	q.sync.statMtx.Lock()
	defer q.sync.statMtx.Unlock()
	if q.state == _STATE_ACTIVE {
		return errors.New(_ERROR_MESSAGE_QUEUE_STARTED)
	}
	if buffsize <= 0 {
		buffsize = DEFAULT_QUEUE_BUFF
	}
	q.channel = make(chan queued, buffsize)
	ch := q.channel
	q.sync.waitEnd.Go(func() { q.proceed(ch) })
	q.state = _STATE_ACTIVE
	return nil
}

// Stop closes the channel; lines already queued are still rendered. Render
// fails from now on.
func (q *Queue) Stop() {
	q.sync.statMtx.Lock()
	defer q.sync.statMtx.Unlock()
	if q.state == _STATE_ACTIVE {
		q.state = _STATE_STOPPING
		close(q.channel)
	}
}

// Wait blocks until the processing goroutine has finished.
func (q *Queue) Wait() {
	q.sync.waitEnd.Wait()
}

// A convenience to Stop() and then Wait() for completion, typically deferred in
// main so the last lines are not lost.
func (q *Queue) StopAndWait() {
	q.Stop()
	q.Wait()
}

// IsActive reports whether Render accepts lines.
func (q *Queue) IsActive() bool {
	q.sync.statMtx.RLock()
	defer q.sync.statMtx.RUnlock()
	return q.state == _STATE_ACTIVE
}

// Sets the writer queued failures are reported to, io.Discard is used instead
// of nil.
func (q *Queue) SetFallback(f io.Writer) *Queue {
	q.sync.fbckMtx.Lock()
	defer q.sync.fbckMtx.Unlock()
	if f != nil {
		q.fallbck = f
	} else {
		q.fallbck = io.Discard
	}
	return q
}

// Render implements dbg.Sink by enqueueing the line. It blocks while the
// channel is full and fails when the queue is not active.
func (q *Queue) Render(meta dbg.Meta, args []any) (err error) {
	q.sync.statMtx.RLock()
	defer q.sync.statMtx.RUnlock()
	if q.state != _STATE_ACTIVE {
		return errors.New(_ERROR_MESSAGE_QUEUE_INACTIVE)
	}
	q.channel <- queued{meta: meta, args: args}
	return nil
}

// proceed drains ch until it is closed, then marks the queue stopped unless it
// was restarted meanwhile.
func (q *Queue) proceed(ch <-chan queued) {
	defer func() {
		q.sync.statMtx.Lock()
		if q.state == _STATE_STOPPING {
			q.state = _STATE_STOPPED
		}
		q.sync.statMtx.Unlock()
	}()
	for entry := range ch {
		if err := q.render(entry); err != nil {
			q.fbckWriteln(err.Error())
		}
	}
}

// render hands one entry to the wrapped sink, converting a panic into an error
// so one bad line does not stop the queue.
func (q *Queue) render(entry queued) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(_ERROR_MESSAGE_QUEUE_PANIC + panicDesc(r))
		}
	}()
	if e := q.next.Render(entry.meta, entry.args); e != nil {
		err = fmt.Errorf(_ERROR_MESSAGE_QUEUE_FAILED+"%w", e)
	}
	return err
}

// fbckWriteln writes a single-line message to the fallback writer.
func (q *Queue) fbckWriteln(s string) {
	q.sync.fbckMtx.RLock()
	defer q.sync.fbckMtx.RUnlock()
	q.fallbck.Write([]byte(s + "\n"))
}
