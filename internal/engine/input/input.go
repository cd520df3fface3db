// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a translated event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	EventDropFile
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	RelX   int
	RelY   int
	Button uint8
	WheelX float32
	WheelY float32
	Path   string
}

// Translate converts an SDL event. The boolean is false for events the
// viewer does not handle.
func Translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}, true
		}

	case *sdl.KeyboardEvent:
		ev := Event{Key: e.Keysym.Scancode, Repeat: e.Repeat != 0}
		switch e.Type {
		case sdl.KEYDOWN:
			ev.Type = EventKeyDown
		case sdl.KEYUP:
			ev.Type = EventKeyUp
		default:
			return Event{}, false
		}
		return ev, true

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			RelX:   int(e.XRel),
			RelY:   int(e.YRel),
		}, true

	case *sdl.MouseButtonEvent:
		ev := Event{MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}
		switch e.Type {
		case sdl.MOUSEBUTTONDOWN:
			ev.Type = EventMouseDown
		case sdl.MOUSEBUTTONUP:
			ev.Type = EventMouseUp
		default:
			return Event{}, false
		}
		return ev, true

	case *sdl.MouseWheelEvent:
		x, y := float32(e.X), float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			x, y = -x, -y
		}
		return Event{Type: EventMouseWheel, WheelX: x, WheelY: y}, true

	case *sdl.DropEvent:
		if e.Type == sdl.DROPFILE && e.File != "" {
			return Event{Type: EventDropFile, Path: e.File}, true
		}
	}
	return Event{}, false
}

// Input collects one frame of events and tracks drag state across frames.
type Input struct {
	events   []Event
	dragging bool

	quit          bool
	scroll        float32
	dragX, dragY  float32
	resized       bool
	width, height int
	dropped       []string
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Begin clears the per-frame state. Drag state survives.
func (i *Input) Begin() {
	i.events = i.events[:0]
	i.quit = false
	i.scroll = 0
	i.dragX, i.dragY = 0, 0
	i.resized = false
	i.dropped = i.dropped[:0]
}

// Update polls SDL events for this frame.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.Begin()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if ev, ok := Translate(event); ok {
			i.Push(ev)
		}
	}
	return i.quit
}

// Push records a translated event.
func (i *Input) Push(ev Event) {
	i.events = append(i.events, ev)

	switch ev.Type {
	case EventQuit:
		i.quit = true
	case EventWindowResize:
		i.resized = true
		i.width, i.height = ev.Width, ev.Height
	case EventMouseDown:
		if ev.Button == sdl.BUTTON_LEFT {
			i.dragging = true
		}
	case EventMouseUp:
		if ev.Button == sdl.BUTTON_LEFT {
			i.dragging = false
		}
	case EventMouseMove:
		if i.dragging {
			i.dragX += float32(ev.RelX)
			i.dragY += float32(ev.RelY)
		}
	case EventMouseWheel:
		i.scroll += ev.WheelY
	case EventDropFile:
		i.dropped = append(i.dropped, ev.Path)
	}
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Quit reports whether a quit event arrived this frame.
func (i *Input) Quit() bool { return i.quit }

// IsKeyPressed checks if a key went down this frame. Auto-repeat is ignored.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode && !e.Repeat {
			return true
		}
	}
	return false
}

// Scroll returns the summed vertical wheel movement of this frame.
func (i *Input) Scroll() float32 { return i.scroll }

// Drag returns the mouse movement with the left button held this frame.
func (i *Input) Drag() (dx, dy float32) { return i.dragX, i.dragY }

// Dragging reports whether the left button is held.
func (i *Input) Dragging() bool { return i.dragging }

// Resized returns the last window size reported this frame.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

// Dropped returns the paths of files dropped onto the window this frame.
func (i *Input) Dropped() []string { return i.dropped }
