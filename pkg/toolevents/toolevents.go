// Package toolevents provides the event kinds raised by the stock tool
// plugins. Kinds with an export name are registered at init and may be
// forwarded to other tool instances.
package toolevents

import (
	"fmt"

	"github.com/agentstation/pluginevent"
)

// Event names, as returned by EventName.
const (
	RenameEventName          = "RenameEvent"
	InternalRefreshEventName = "InternalRefreshEvent"
	LocationChangeEventName  = "LocationChangeEvent"
	SelectionEventName       = "SelectionEvent"
)

// Export names used across tool instances.
const (
	RenameExportName         = "TOOL_RENAMED"
	LocationChangeExportName = "ProgramLocationChange"
	SelectionExportName      = "ProgramSelection"
)

func init() {
	pluginevent.RegisterExportName[*RenameEvent](RenameExportName)
	pluginevent.RegisterExportName[*LocationChangeEvent](LocationChangeExportName)
	pluginevent.RegisterExportName[*SelectionEvent](SelectionExportName)
}

// RenameEvent reports that a tool was renamed.
type RenameEvent struct {
	pluginevent.Base
	OldName string `json:"old_name" yaml:"old_name"`
	NewName string `json:"new_name" yaml:"new_name"`
}

// NewRenameEvent creates a RenameEvent raised by source.
func NewRenameEvent(source, oldName, newName string) (*RenameEvent, error) {
	base, err := pluginevent.NewBase(source, RenameEventName)
	if err != nil {
		return nil, err
	}
	return &RenameEvent{Base: base, OldName: oldName, NewName: newName}, nil
}

// Details implements pluginevent.Event.
func (e *RenameEvent) Details() (string, bool) {
	return fmt.Sprintf("%q -> %q", e.OldName, e.NewName), true
}

// InternalRefreshEvent asks plugins in the same tool to refresh their views.
// It has no export name and never leaves its tool.
type InternalRefreshEvent struct {
	pluginevent.Base
}

// NewInternalRefreshEvent creates an InternalRefreshEvent raised by source.
func NewInternalRefreshEvent(source string) (*InternalRefreshEvent, error) {
	base, err := pluginevent.NewBase(source, InternalRefreshEventName)
	if err != nil {
		return nil, err
	}
	return &InternalRefreshEvent{Base: base}, nil
}

// Details implements pluginevent.Event.
func (e *InternalRefreshEvent) Details() (string, bool) {
	return "", false
}

// LocationChangeEvent reports that the current location in a program moved.
type LocationChangeEvent struct {
	pluginevent.Base
	Program string `json:"program" yaml:"program"`
	Address uint64 `json:"address" yaml:"address"`
}

// NewLocationChangeEvent creates a LocationChangeEvent raised by source.
func NewLocationChangeEvent(source, program string, address uint64) (*LocationChangeEvent, error) {
	base, err := pluginevent.NewBase(source, LocationChangeEventName)
	if err != nil {
		return nil, err
	}
	return &LocationChangeEvent{Base: base, Program: program, Address: address}, nil
}

// Details implements pluginevent.Event.
func (e *LocationChangeEvent) Details() (string, bool) {
	return fmt.Sprintf("%s@%#x", e.Program, e.Address), true
}

// AddressRange is an inclusive range of addresses.
type AddressRange struct {
	Start uint64 `json:"start" yaml:"start"`
	End   uint64 `json:"end" yaml:"end"`
}

// SelectionEvent reports a new selection in a program. An empty Ranges
// clears the selection.
type SelectionEvent struct {
	pluginevent.Base
	Program string         `json:"program" yaml:"program"`
	Ranges  []AddressRange `json:"ranges,omitempty" yaml:"ranges,omitempty"`
}

// NewSelectionEvent creates a SelectionEvent raised by source.
func NewSelectionEvent(source, program string, ranges ...AddressRange) (*SelectionEvent, error) {
	base, err := pluginevent.NewBase(source, SelectionEventName)
	if err != nil {
		return nil, err
	}
	return &SelectionEvent{Base: base, Program: program, Ranges: ranges}, nil
}

// Details implements pluginevent.Event.
func (e *SelectionEvent) Details() (string, bool) {
	if len(e.Ranges) == 0 {
		return e.Program + ": selection cleared", true
	}
	return fmt.Sprintf("%s: %d range(s)", e.Program, len(e.Ranges)), true
}
