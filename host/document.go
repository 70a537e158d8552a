package host

import (
	"errors"
	"fmt"
	"strings"
)

// Theme is the page's dark/light indicator.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ErrUnknownTheme is returned when a theme name is neither "light" nor "dark".
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme parses "light" or "dark", ignoring case and surrounding space.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

// Other returns the opposite theme.
func (t Theme) Other() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Attribute names the document root carries.
const (
	AttrClass = "class"
	AttrTheme = "data-theme"
)

// Mutation records a change to one attribute of the document root.
type Mutation struct {
	Attribute string
	OldValue  string
}

type mutationObserver struct {
	filter    map[string]bool
	fn        func([]Mutation)
	active    bool
	queued    []Mutation
	scheduled bool
}

// DocumentRoot is the top element of the page: a class list plus attributes.
// Mutations are delivered to observers asynchronously through the event loop.
type DocumentRoot struct {
	loop      *EventLoop
	classes   []string
	attrs     map[string]string
	observers []*mutationObserver
}

// NewDocumentRoot creates an empty root delivering mutations on loop.
func NewDocumentRoot(loop *EventLoop) *DocumentRoot {
	return &DocumentRoot{loop: loop, attrs: make(map[string]string)}
}

// HasClass reports whether name is in the class list.
func (d *DocumentRoot) HasClass(name string) bool {
	for _, c := range d.classes {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds name to the class list.
func (d *DocumentRoot) AddClass(name string) {
	if d.HasClass(name) {
		return
	}
	old := d.ClassName()
	d.classes = append(d.classes, name)
	d.record(AttrClass, old)
}

// RemoveClass removes name from the class list.
func (d *DocumentRoot) RemoveClass(name string) {
	for i, c := range d.classes {
		if c == name {
			old := d.ClassName()
			d.classes = append(d.classes[:i], d.classes[i+1:]...)
			d.record(AttrClass, old)
			return
		}
	}
}

// ClassName returns the class list as a space-separated string.
func (d *DocumentRoot) ClassName() string {
	return strings.Join(d.classes, " ")
}

// SetAttribute sets a non-class attribute.
func (d *DocumentRoot) SetAttribute(name, value string) {
	old, had := d.attrs[name]
	if had && old == value {
		return
	}
	d.attrs[name] = value
	d.record(name, old)
}

// Attribute returns a non-class attribute.
func (d *DocumentRoot) Attribute(name string) (string, bool) {
	v, ok := d.attrs[name]
	return v, ok
}

// RemoveAttribute deletes a non-class attribute.
func (d *DocumentRoot) RemoveAttribute(name string) {
	old, had := d.attrs[name]
	if !had {
		return
	}
	delete(d.attrs, name)
	d.record(name, old)
}

// Theme detects the current theme: a "dark" class wins, then "light", then the
// data-theme attribute, then dark.
func (d *DocumentRoot) Theme() Theme {
	if d.HasClass(string(ThemeDark)) {
		return ThemeDark
	}
	if d.HasClass(string(ThemeLight)) {
		return ThemeLight
	}
	if v, ok := d.attrs[AttrTheme]; ok {
		if t, err := ParseTheme(v); err == nil {
			return t
		}
	}
	return ThemeDark
}

// SetTheme switches the class list to t, the way a site theme toggle does.
func (d *DocumentRoot) SetTheme(t Theme) {
	d.RemoveClass(string(t.Other()))
	d.AddClass(string(t))
}

// Observe registers fn for mutations of the named attributes. Records queued
// between frames are delivered together. No records are delivered after the
// returned disconnect function has been called.
func (d *DocumentRoot) Observe(attributes []string, fn func([]Mutation)) (disconnect func()) {
	o := &mutationObserver{filter: make(map[string]bool), fn: fn, active: true}
	for _, a := range attributes {
		o.filter[a] = true
	}
	d.observers = append(d.observers, o)
	return func() {
		o.active = false
		o.queued = nil
		for i, other := range d.observers {
			if other == o {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

// ObserveTheme calls fn after any change to the attributes theme detection reads.
func (d *DocumentRoot) ObserveTheme(fn func()) (disconnect func()) {
	return d.Observe([]string{AttrClass, AttrTheme}, func([]Mutation) { fn() })
}

// ObserverCount returns the number of connected mutation observers.
func (d *DocumentRoot) ObserverCount() int {
	return len(d.observers)
}

func (d *DocumentRoot) record(attr, old string) {
	for _, o := range d.observers {
		if !o.filter[attr] {
			continue
		}
		o.queued = append(o.queued, Mutation{Attribute: attr, OldValue: old})
		if o.scheduled {
			continue
		}
		o.scheduled = true
		obs := o
		d.loop.Post(func() {
			obs.scheduled = false
			if !obs.active || len(obs.queued) == 0 {
				return
			}
			records := obs.queued
			obs.queued = nil
			obs.fn(records)
		})
	}
}
