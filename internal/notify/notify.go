// Package notify carries transient user-visible notifications (toasts).
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Level classifies a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one transient notification
type Notice struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives notifications
type Notifier interface {
	Notify(level Level, message string)
}

// Discard drops every notification
type Discard struct{}

func (Discard) Notify(Level, string) {}

// Queue is a bounded, process-wide notification queue. Renderers drain it,
// so each notice is shown once.
type Queue struct {
	mu    sync.Mutex
	items []Notice
	max   int
	now   func() time.Time
}

// NewQueue returns a queue keeping at most max pending notices
func NewQueue(max int) *Queue {
	if max <= 0 {
		max = 16
	}
	return &Queue{max: max, now: time.Now}
}

// Notify appends a notice, dropping the oldest when the queue is full
func (q *Queue) Notify(level Level, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, Notice{Level: level, Message: message, At: q.now()})
	if len(q.items) > q.max {
		q.items = q.items[len(q.items)-q.max:]
	}
}

// Drain returns and clears all pending notices, oldest first
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// Writer prints notifications as single lines, for terminal front ends
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a Notifier writing to out
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Notify(level Level, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var mark string
	switch level {
	case LevelSuccess:
		mark = "✓"
	case LevelError:
		mark = "✗"
	case LevelWarning:
		mark = "!"
	default:
		mark = "•"
	}
	fmt.Fprintf(w.out, "%s %s\n", mark, message)
}
