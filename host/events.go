package host

// PointerEvent is a window-level pointer update in CSS pixels.
// Leave is set when the pointer exits the window; X and Y are then meaningless.
type PointerEvent struct {
	X, Y  float64
	Leave bool
}

type listener[T any] struct {
	id int
	fn func(T)
}

// Emitter is an ordered listener list. Not goroutine-safe; use it from the loop.
type Emitter[T any] struct {
	nextID    int
	listeners []listener[T]
}

// Listen adds fn and returns a function that removes it. Removing twice is harmless.
func (e *Emitter[T]) Listen(fn func(T)) (remove func()) {
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener[T]{id: id, fn: fn})
	return func() {
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every listener registered at the time of the call.
func (e *Emitter[T]) Emit(v T) {
	snapshot := append([]listener[T](nil), e.listeners...)
	for _, l := range snapshot {
		l.fn(v)
	}
}

// Len returns the number of listeners.
func (e *Emitter[T]) Len() int {
	return len(e.listeners)
}

// Window is the top-level viewport.
type Window struct {
	Viewport   Rect
	PixelRatio float64

	Pointer Emitter[PointerEvent]
	Resize  Emitter[Rect]
}

// NewWindow creates a window of w x h CSS pixels.
func NewWindow(w, h, pixelRatio float64) *Window {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	return &Window{
		Viewport:   Rect{W: w, H: h},
		PixelRatio: pixelRatio,
	}
}

// SetViewport updates the viewport and notifies resize listeners.
func (w *Window) SetViewport(r Rect) {
	w.Viewport = r
	w.Resize.Emit(r)
}

// Listeners returns the total number of pointer and resize listeners.
func (w *Window) Listeners() int {
	return w.Pointer.Len() + w.Resize.Len()
}
