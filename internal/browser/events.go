package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EventName identifies a user event the controller reacts to.
type EventName string

const (
	EventInit          EventName = "init"
	EventLoadTables    EventName = "load_tables"
	EventSelectTable   EventName = "select_table"
	EventCloseRecords  EventName = "close_records"
	EventLoadFiles     EventName = "load_files"
	EventDeleteFile    EventName = "delete_file"
	EventUpload        EventName = "upload"
	EventClearDatabase EventName = "clear_database"
)

var (
	// ErrUnknownEvent is returned when no listener is registered for an event.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidEvent is returned when an event lacks its payload.
	ErrInvalidEvent = errors.New("invalid event")
)

// Event is a user action with its typed payload.
type Event struct {
	Name     EventName
	Table    string
	FileID   int64
	FileName string
	Files    []UploadFile
}

// ParseFileID converts the data-file-id attribute value.
func ParseFileID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: file id %q", ErrInvalidEvent, s)
	}
	return id, nil
}

// Validate checks that the payload required by the event is present.
func (e Event) Validate() error {
	switch e.Name {
	case EventSelectTable:
		if strings.TrimSpace(e.Table) == "" {
			return fmt.Errorf("%w: %s requires a table", ErrInvalidEvent, e.Name)
		}
	case EventDeleteFile:
		if e.FileID <= 0 {
			return fmt.Errorf("%w: %s requires a file id", ErrInvalidEvent, e.Name)
		}
	}
	return nil
}

// Listener handles one event.
type Listener func(ctx context.Context, ev Event, doc Document, dlg Dialogs)

// EventRegistry maps event names to listeners.
type EventRegistry struct {
	listeners map[EventName]Listener
}

// NewEventRegistry returns an empty registry.
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{listeners: map[EventName]Listener{}}
}

// On registers l for name, replacing any previous listener.
func (r *EventRegistry) On(name EventName, l Listener) {
	r.listeners[name] = l
}

// Lookup returns the listener for name.
func (r *EventRegistry) Lookup(name EventName) (Listener, bool) {
	l, ok := r.listeners[name]
	return l, ok
}

// Names returns the registered event names, sorted.
func (r *EventRegistry) Names() []EventName {
	names := make([]EventName, 0, len(r.listeners))
	for name := range r.listeners {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
