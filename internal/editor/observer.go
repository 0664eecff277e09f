package editor

// Event names a state change the host may want to react to.
type Event int

const (
	// EventImageLoaded fires after a successful Load.
	EventImageLoaded Event = iota
	// EventImageModified fires after any edit, resize, upscale, undo or redo.
	EventImageModified
	// EventHistoryChanged fires after every history state change.
	EventHistoryChanged
	// EventViewChanged fires after the display cache was refreshed for a
	// new view.
	EventViewChanged
	// EventImageCleared fires after Clear.
	EventImageCleared
)

func (e Event) String() string {
	switch e {
	case EventImageLoaded:
		return "image_loaded"
	case EventImageModified:
		return "image_modified"
	case EventHistoryChanged:
		return "history_changed"
	case EventViewChanged:
		return "view_changed"
	case EventImageCleared:
		return "image_cleared"
	}
	return "unknown"
}

// Observer is notified synchronously after state changes.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Notify calls f(e).
func (f ObserverFunc) Notify(e Event) { f(e) }
