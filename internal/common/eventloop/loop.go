// Package eventloop runs UI-state mutations on a single goroutine.
//
// Components own their state and only touch it inside tasks posted to the
// loop. Blocking work (network, platform calls) runs on helper goroutines
// which post their completion back, so ordering hazards are about the
// order completions arrive in, never about data races.
package eventloop

import (
	"errors"
	"sync"

	"petfinder/internal/common/logger"
)

var ErrClosed = errors.New("event loop closed")

const defaultBufferSize = 64

type Loop struct {
	tasks chan func()
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	logger logger.Logger
}

// New starts a loop. bufferSize <= 0 uses a default.
func New(log logger.Logger, bufferSize int) *Loop {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	l := &Loop{
		tasks:  make(chan func(), bufferSize),
		done:   make(chan struct{}),
		logger: logger.ForComponent(log, "eventloop"),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for task := range l.tasks {
		l.exec(task)
	}
}

func (l *Loop) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", map[string]interface{}{"panic": r})
		}
	}()
	task()
}

// Post queues fn for the loop goroutine. It reports false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false
	}
	l.tasks <- fn
	return true
}

// Sync runs fn on the loop and waits for it. It must not be called from
// a task already running on the loop.
func (l *Loop) Sync(fn func()) error {
	ran := make(chan struct{})
	if !l.Post(func() {
		defer close(ran)
		fn()
	}) {
		return ErrClosed
	}
	<-ran
	return nil
}

// Close stops accepting tasks, runs what is already queued and waits for
// the loop goroutine to exit. Safe to call more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.tasks)
	}
	l.mu.Unlock()
	<-l.done
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
