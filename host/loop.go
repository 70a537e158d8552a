package host

import (
	"sync"
	"time"
)

// FrameID identifies a pending frame callback. Zero is never issued.
type FrameID uint64

// FrameFunc runs once per requested frame with the loop's current timestamp.
type FrameFunc func(now time.Duration)

// EventLoop is the single logical thread every host callback runs on.
// Only Post is safe to call from other goroutines.
//
// Each RunFrame drains posted tasks, then runs observer checks, then the frame
// callbacks that were pending when the frame began. Callbacks requested during a
// frame run on the next one.
type EventLoop struct {
	mu     sync.Mutex
	posted []func()

	now       time.Duration
	nextFrame FrameID
	frames    map[FrameID]FrameFunc
	order     []FrameID

	nextObserver int
	observers    map[int]func()
	observerIDs  []int
}

// NewEventLoop creates an idle loop.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		frames:    make(map[FrameID]FrameFunc),
		observers: make(map[int]func()),
	}
}

// Now returns the timestamp of the most recent frame.
func (l *EventLoop) Now() time.Duration {
	return l.now
}

// RequestFrame schedules fn for the next frame.
func (l *EventLoop) RequestFrame(fn FrameFunc) FrameID {
	l.nextFrame++
	id := l.nextFrame
	l.frames[id] = fn
	l.order = append(l.order, id)
	return id
}

// CancelFrame drops a pending callback. Unknown or already-run ids are ignored.
func (l *EventLoop) CancelFrame(id FrameID) {
	delete(l.frames, id)
}

// Pending returns the number of frame callbacks waiting to run.
func (l *EventLoop) Pending() int {
	return len(l.frames)
}

// Post queues fn to run on the loop at the start of the next frame.
func (l *EventLoop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// AddObserver registers a check that runs every frame before frame callbacks.
// The returned function unregisters it.
func (l *EventLoop) AddObserver(check func()) (remove func()) {
	l.nextObserver++
	id := l.nextObserver
	l.observers[id] = check
	l.observerIDs = append(l.observerIDs, id)
	return func() {
		delete(l.observers, id)
		for i, oid := range l.observerIDs {
			if oid == id {
				l.observerIDs = append(l.observerIDs[:i], l.observerIDs[i+1:]...)
				break
			}
		}
	}
}

// Observers returns the number of registered observer checks.
func (l *EventLoop) Observers() int {
	return len(l.observers)
}

// Flush runs posted tasks until none remain.
func (l *EventLoop) Flush() {
	for {
		l.mu.Lock()
		tasks := l.posted
		l.posted = nil
		l.mu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, fn := range tasks {
			fn()
		}
	}
}

// RunFrame advances the loop by one frame at timestamp now.
func (l *EventLoop) RunFrame(now time.Duration) {
	l.now = now
	l.Flush()

	ids := append([]int(nil), l.observerIDs...)
	for _, id := range ids {
		if check, ok := l.observers[id]; ok {
			check()
		}
	}

	batch := l.order
	l.order = nil
	for _, id := range batch {
		fn, ok := l.frames[id]
		if !ok {
			continue
		}
		delete(l.frames, id)
		fn(now)
	}
}
