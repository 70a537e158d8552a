// Package telemetry provides frame timing, lifecycle events and CSV output for the particle field.
package telemetry

// EventType identifies a lifecycle event.
type EventType string

const (
	EventAttach EventType = "attach"
	EventDetach EventType = "detach"
	EventPause  EventType = "pause"
	EventResume EventType = "resume"
	EventTheme  EventType = "theme"
	EventResize EventType = "resize"
)

// Event is one engine lifecycle change.
type Event struct {
	Frame  int64     `csv:"frame"`
	TimeS  float64   `csv:"time_s"`
	Type   EventType `csv:"type"`
	Detail string    `csv:"detail"`
}

// FrameRecord is the interaction state after one frame.
type FrameRecord struct {
	Frame        int64   `csv:"frame"`
	TimeS        float64 `csv:"time_s"`
	Running      bool    `csv:"running"`
	Raycast      bool    `csv:"raycast"`
	Intersecting bool    `csv:"intersecting"`
	MouseX       float64 `csv:"mouse_x"`
	MouseY       float64 `csv:"mouse_y"`
	MouseZ       float64 `csv:"mouse_z"`
	HitX         float64 `csv:"hit_x"`
	HitY         float64 `csv:"hit_y"`
	Theme        string  `csv:"theme"`
}
