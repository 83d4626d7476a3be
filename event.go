// Package pluginevent defines the event record that plugins raise to notify
// other plugins, and optionally other cooperating tool instances, of state
// changes.
//
// An event carries three pieces of identity: the kind name it was created
// with, the name of the plugin currently responsible for it, and an optional
// link to the event whose delivery caused it. Concrete event kinds embed Base
// and add their own payload.
//
// Example usage:
//
//	type RenameEvent struct {
//	    pluginevent.Base
//	    OldName, NewName string
//	}
//
//	func init() {
//	    pluginevent.RegisterExportName[*RenameEvent]("TOOL_RENAMED")
//	}
//
// Records follow a single-producer/then-broadcast discipline. The producer
// finishes any re-attribution before handing the event to a dispatcher;
// afterwards every consumer treats it as read-only through the Event
// interface.
package pluginevent

import (
	"reflect"

	"github.com/agentstation/pluginevent/pkg/errors"
)

// ExternalSourceName is the source name given to an event that arrived from
// another tool instance, where the original producing plugin is not visible.
const ExternalSourceName = "External Tool"

// Event is the read-only view of an event record handed to consumers.
type Event interface {
	// EventName returns the kind name fixed at construction.
	EventName() string

	// SourceName returns the plugin currently responsible for the event.
	SourceName() string

	// TriggerEvent returns the event whose delivery caused this one, or nil.
	TriggerEvent() Event

	// Details returns kind-specific diagnostic text. It is opaque and only
	// used by Describe.
	Details() (string, bool)
}

// Attributable is the re-attribution capability of an event record.
// Only dispatch and forwarding layers use it, and only before an event
// is handed to consumers.
type Attributable interface {
	Event

	// SetSourceName reassigns the responsible plugin.
	SetSourceName(name string)

	// SetTriggerEvent records the causal predecessor. Passing nil clears it.
	// Callers must not create a cycle; none is detected.
	SetTriggerEvent(trigger Event)
}

// Base holds the identity shared by every event kind. Embed it in a
// concrete kind and build it with NewBase.
type Base struct {
	eventName  string
	sourceName string
	trigger    Event
}

// NewBase creates the shared part of an event record. Both names are
// required.
func NewBase(sourceName, eventName string) (Base, error) {
	if sourceName == "" {
		return Base{}, errors.NewValidationError("source_name", sourceName, "must not be empty")
	}
	if eventName == "" {
		return Base{}, errors.NewValidationError("event_name", eventName, "must not be empty")
	}
	return Base{
		eventName:  eventName,
		sourceName: sourceName,
	}, nil
}

// EventName returns the kind name.
func (b *Base) EventName() string {
	return b.eventName
}

// SourceName returns the name of the plugin immediately responsible for
// raising the event.
func (b *Base) SourceName() string {
	return b.sourceName
}

// SetSourceName reassigns the responsible plugin.
func (b *Base) SetSourceName(name string) {
	b.sourceName = name
}

// TriggerEvent returns the causal predecessor, or nil.
func (b *Base) TriggerEvent() Event {
	return b.trigger
}

// SetTriggerEvent records the causal predecessor. A nil pointer of any
// kind is stored as no trigger.
func (b *Base) SetTriggerEvent(trigger Event) {
	if trigger != nil {
		if v := reflect.ValueOf(trigger); v.Kind() == reflect.Pointer && v.IsNil() {
			trigger = nil
		}
	}
	b.trigger = trigger
}
