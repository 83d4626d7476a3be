package pluginevent

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// exportRegistry maps an event kind's type to the name it is forwarded
// under when it crosses a tool instance boundary.
type exportRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]string
	byName map[string]reflect.Type
}

var exports = &exportRegistry{
	byType: make(map[reflect.Type]string),
	byName: make(map[string]reflect.Type),
}

// ExportedKind describes one registered exportable event kind.
type ExportedKind struct {
	Name string
	Type reflect.Type
}

// RegisterExportName declares the export name of the event kind T.
// It is meant to be called from the init function of the package that
// defines T. T and *T refer to the same kind.
//
// RegisterExportName panics if name is empty, if T was already declared
// with a different name, or if name already belongs to another kind.
func RegisterExportName[T Event](name string) {
	exports.register(reflect.TypeFor[T](), name)
}

// LookupExportName returns the export name declared for the event kind t.
// Pointer types resolve to their element type. The result only depends on
// the type, so callers may use it before any event of the kind exists.
func LookupExportName(t reflect.Type) (string, bool) {
	return exports.lookup(t)
}

// ExportNameOf returns the export name declared for the event kind T.
func ExportNameOf[T Event]() (string, bool) {
	return exports.lookup(reflect.TypeFor[T]())
}

// ExportName returns the export name of e's concrete kind.
func ExportName(e Event) (string, bool) {
	if e == nil {
		return "", false
	}
	return exports.lookup(reflect.TypeOf(e))
}

// IsExportable reports whether e's kind may be forwarded to another tool
// instance.
func IsExportable(e Event) bool {
	_, ok := ExportName(e)
	return ok
}

// TypeForExportName returns the kind registered under an export name.
// The returned type is the non-pointer type.
func TypeForExportName(name string) (reflect.Type, bool) {
	exports.mu.RLock()
	defer exports.mu.RUnlock()
	t, ok := exports.byName[name]
	return t, ok
}

// ExportedKinds returns all registered exportable kinds sorted by name.
func ExportedKinds() []ExportedKind {
	exports.mu.RLock()
	kinds := make([]ExportedKind, 0, len(exports.byName))
	for name, t := range exports.byName {
		kinds = append(kinds, ExportedKind{Name: name, Type: t})
	}
	exports.mu.RUnlock()

	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].Name < kinds[j].Name
	})
	return kinds
}

func (r *exportRegistry) register(t reflect.Type, name string) {
	t = kindType(t)
	if name == "" {
		panic(fmt.Sprintf("pluginevent: empty export name for %v", t))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byType[t]; ok {
		if existing != name {
			panic(fmt.Sprintf("pluginevent: %v already exported as %q, cannot re-export as %q", t, existing, name))
		}
		return
	}
	if owner, ok := r.byName[name]; ok {
		panic(fmt.Sprintf("pluginevent: export name %q already used by %v", name, owner))
	}

	r.byType[t] = name
	r.byName[name] = t
}

func (r *exportRegistry) lookup(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	t = kindType(t)

	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byType[t]
	return name, ok
}

// kindType strips pointer indirection so *T and T share one entry.
func kindType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
