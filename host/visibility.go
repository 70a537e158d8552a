package host

// VisibilityObserver reports when a container crosses a visible-ratio threshold.
type VisibilityObserver struct {
	remove    func()
	container Container
	viewport  func() Rect
	threshold float64
	fn        func(visible bool)

	reported bool
	visible  bool
}

// ObserveVisibility watches what fraction of container lies inside the viewport.
// fn is called on the first check and whenever visibility changes, where visible
// means the ratio is at least threshold. A zero-area container is never visible.
func ObserveVisibility(loop *EventLoop, container Container, viewport func() Rect, threshold float64, fn func(visible bool)) *VisibilityObserver {
	o := &VisibilityObserver{
		container: container,
		viewport:  viewport,
		threshold: threshold,
		fn:        fn,
	}
	o.remove = loop.AddObserver(o.check)
	return o
}

// Ratio returns the visible fraction of the container.
func (o *VisibilityObserver) Ratio() float64 {
	b := o.container.Bounds()
	area := b.Area()
	if area == 0 || !o.container.Attached() {
		return 0
	}
	return b.Intersect(o.viewport()).Area() / area
}

func (o *VisibilityObserver) check() {
	ratio := o.Ratio()
	visible := ratio > 0 && ratio >= o.threshold
	if o.reported && visible == o.visible {
		return
	}
	o.reported = true
	o.visible = visible
	o.fn(visible)
}

// Disconnect stops observation. Safe to call more than once.
func (o *VisibilityObserver) Disconnect() {
	if o.remove != nil {
		o.remove()
		o.remove = nil
	}
}
