package navigation

import (
	"context"
	"fmt"
	"sync"

	"view-router/internal/common/logging"
)

// loop is the single goroutine that owns the pipeline. Work is queued
// without bound so a continuation posted from a controller never blocks or
// gets dropped while the loop runs.
type loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	logger  logging.Logger
}

func newLoop(logger logging.Logger) *loop {
	return &loop{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

func (l *loop) start() {
	go l.run()
}

// Post queues fn. It returns false once the loop is stopping.
func (l *loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

func (l *loop) run() {
	defer close(l.stopped)

	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}

		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.exec(fn)
		}
	}
}

func (l *loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in navigation loop", fmt.Errorf("%v", r))
		}
	}()
	fn()
}

// idle reports whether nothing is queued.
func (l *loop) idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) == 0
}

// stop drops queued work and waits for the goroutine to exit.
func (l *loop) stop() int {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.stopped
		return 0
	}
	l.closed = true
	dropped := len(l.queue)
	l.queue = nil
	l.mu.Unlock()

	close(l.done)
	<-l.stopped
	return dropped
}

// sync blocks until the loop has drained its queue. Work queued by the work
// it runs is drained too.
func (l *loop) sync(ctx context.Context) error {
	for {
		idle := make(chan bool, 1)
		if !l.Post(func() { idle <- l.idle() }) {
			return ErrNotRunning
		}

		select {
		case ok := <-idle:
			if ok {
				return nil
			}
		case <-l.stopped:
			return ErrNotRunning
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
