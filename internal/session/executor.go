package session

import (
	"fmt"
	"sync"
)

// Executor runs UI-affine work. Presentation, dismissal and the final delivery
// of every run go through it.
type Executor interface {
	Do(fn func())
}

// Inline runs work on the calling goroutine.
type Inline struct{}

func (Inline) Do(fn func()) { fn() }

// MainQueue is a single goroutine draining an unbounded FIFO of work, standing
// in for a UI thread. Work queued after Close runs on the caller.
type MainQueue struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func NewMainQueue() *MainQueue {
	q := &MainQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *MainQueue) Do(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		fn()
		return
	}
	q.queue = append(q.queue, fn)
	q.mu.Unlock()
	q.signal()
}

// Close drains queued work and stops the goroutine. It must not be called from
// work running on the queue.
func (q *MainQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
	<-q.done
}

func (q *MainQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *MainQueue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		fn := q.queue[0]
		q.queue[0] = nil
		q.queue = q.queue[1:]
		q.mu.Unlock()
		fn()
	}
}

// onMain runs fn on ex and waits for its result. A panic in fn comes back as an error.
func onMain[T any](ex Executor, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	ex.Do(func() {
		defer func() {
			if p := recover(); p != nil {
				var zero T
				ch <- result{zero, fmt.Errorf("panic on main executor: %v", p)}
			}
		}()
		v, err := fn()
		ch <- result{v, err}
	})
	r := <-ch
	return r.v, r.err
}
