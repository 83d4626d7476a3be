package pluginevent_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/pkg/errors"
)

type renameEvent struct {
	pluginevent.Base
	newName string
}

func (e *renameEvent) Details() (string, bool) {
	return "renamed to " + e.newName, true
}

type internalRefreshEvent struct {
	pluginevent.Base
}

func (e *internalRefreshEvent) Details() (string, bool) {
	return "", false
}

type closeEvent struct {
	pluginevent.Base
}

func (e *closeEvent) Details() (string, bool) {
	return "", false
}

func init() {
	pluginevent.RegisterExportName[*renameEvent]("TOOL_RENAMED")
	pluginevent.RegisterExportName[*closeEvent]("TOOL_CLOSED")
}

func newRename(t *testing.T, source string) *renameEvent {
	t.Helper()
	base, err := pluginevent.NewBase(source, "RenameEvent")
	require.NoError(t, err)
	return &renameEvent{Base: base, newName: "CodeBrowser"}
}

func newRefresh(t *testing.T, source string) *internalRefreshEvent {
	t.Helper()
	base, err := pluginevent.NewBase(source, "InternalRefreshEvent")
	require.NoError(t, err)
	return &internalRefreshEvent{Base: base}
}

func TestNewBase(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		eventName string
		wantField string
	}{
		{name: "valid", source: "Explorer", eventName: "RenameEvent"},
		{name: "single character names", source: "x", eventName: "y"},
		{name: "missing source", source: "", eventName: "RenameEvent", wantField: "source_name"},
		{name: "missing event name", source: "Explorer", eventName: "", wantField: "event_name"},
		{name: "both missing", source: "", eventName: "", wantField: "source_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := pluginevent.NewBase(tt.source, tt.eventName)
			if tt.wantField != "" {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))

				var vErr *errors.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)
				assert.Empty(t, base.EventName())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.eventName, base.EventName())
			assert.Equal(t, tt.source, base.SourceName())
			assert.Nil(t, base.TriggerEvent())
		})
	}
}

func TestSetSourceName(t *testing.T) {
	e := newRename(t, "Explorer")

	for _, name := range []string{"Listing", "", pluginevent.ExternalSourceName, "Listing"} {
		var a pluginevent.Attributable = e
		a.SetSourceName(name)
		assert.Equal(t, name, e.SourceName())
	}
	assert.Equal(t, "RenameEvent", e.EventName())
}

func TestTriggerChain(t *testing.T) {
	a := newRefresh(t, "Explorer")
	b := newRename(t, "Listing")
	b.SetTriggerEvent(a)

	assert.Same(t, a, b.TriggerEvent())
	assert.Nil(t, a.TriggerEvent())

	chain := pluginevent.Chain(b)
	require.Len(t, chain, 2)
	assert.Same(t, b, chain[0])
	assert.Same(t, a, chain[1])

	b.SetTriggerEvent(nil)
	assert.Nil(t, b.TriggerEvent())
	assert.Len(t, pluginevent.Chain(b), 1)
}

func TestSetTriggerEventTypedNil(t *testing.T) {
	b := newRename(t, "Listing")

	var missing *internalRefreshEvent
	b.SetTriggerEvent(missing)

	assert.Nil(t, b.TriggerEvent())
	assert.Len(t, pluginevent.Chain(b), 1)
}

func TestChainNil(t *testing.T) {
	assert.Empty(t, pluginevent.Chain(nil))
}

func TestExportName(t *testing.T) {
	t.Run("exportable kind", func(t *testing.T) {
		e := newRename(t, "Explorer")

		name, ok := pluginevent.ExportName(e)
		assert.True(t, ok)
		assert.Equal(t, "TOOL_RENAMED", name)
		assert.True(t, pluginevent.IsExportable(e))
		assert.Equal(t, "RenameEvent", e.EventName())
	})

	t.Run("kind without export name", func(t *testing.T) {
		e := newRefresh(t, "Explorer")

		name, ok := pluginevent.ExportName(e)
		assert.False(t, ok)
		assert.Empty(t, name)
		assert.False(t, pluginevent.IsExportable(e))
	})

	t.Run("same for every instance", func(t *testing.T) {
		first, _ := pluginevent.ExportName(newRename(t, "Explorer"))
		second, _ := pluginevent.ExportName(newRename(t, "Listing"))
		assert.Equal(t, first, second)
	})

	t.Run("different kinds differ", func(t *testing.T) {
		base, err := pluginevent.NewBase("Explorer", "CloseEvent")
		require.NoError(t, err)

		rename, _ := pluginevent.ExportName(newRename(t, "Explorer"))
		closed, ok := pluginevent.ExportName(&closeEvent{Base: base})
		require.True(t, ok)
		assert.Equal(t, "TOOL_CLOSED", closed)
		assert.NotEqual(t, rename, closed)
	})

	t.Run("exportable iff name present", func(t *testing.T) {
		events := []pluginevent.Event{newRename(t, "a"), newRefresh(t, "b"), newRename(t, "c")}
		for _, e := range events {
			_, ok := pluginevent.ExportName(e)
			assert.Equal(t, ok, pluginevent.IsExportable(e))
		}
	})

	t.Run("nil event", func(t *testing.T) {
		_, ok := pluginevent.ExportName(nil)
		assert.False(t, ok)
		assert.False(t, pluginevent.IsExportable(nil))
	})
}

func TestLookupExportName(t *testing.T) {
	tests := []struct {
		name   string
		typ    reflect.Type
		want   string
		wantOK bool
	}{
		{"pointer kind", reflect.TypeFor[*renameEvent](), "TOOL_RENAMED", true},
		{"value kind", reflect.TypeFor[renameEvent](), "TOOL_RENAMED", true},
		{"second kind by value", reflect.TypeFor[closeEvent](), "TOOL_CLOSED", true},
		{"unregistered kind", reflect.TypeFor[*internalRefreshEvent](), "", false},
		{"nil type", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pluginevent.LookupExportName(tt.typ)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	name, ok := pluginevent.ExportNameOf[*renameEvent]()
	assert.True(t, ok)
	assert.Equal(t, "TOOL_RENAMED", name)

	_, ok = pluginevent.ExportNameOf[*internalRefreshEvent]()
	assert.False(t, ok)
}

func TestTypeForExportName(t *testing.T) {
	typ, ok := pluginevent.TypeForExportName("TOOL_RENAMED")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[renameEvent](), typ)

	_, ok = pluginevent.TypeForExportName("NO_SUCH_EVENT")
	assert.False(t, ok)
}

func TestExportedKinds(t *testing.T) {
	kinds := pluginevent.ExportedKinds()

	var names []string
	for _, k := range kinds {
		names = append(names, k.Name)
	}
	assert.Contains(t, names, "TOOL_RENAMED")
	assert.Contains(t, names, "TOOL_CLOSED")
	assert.IsIncreasing(t, names)
}

func TestDescribe(t *testing.T) {
	t.Run("with details", func(t *testing.T) {
		e := newRename(t, "Explorer")
		got := pluginevent.Describe(e)

		assert.Equal(t, "Event: RenameEvent  Source: Explorer\n\tDetails: renamed to CodeBrowser", got)
		assert.Contains(t, got, "Event: ")
		assert.Contains(t, got, "Source: ")
		assert.Contains(t, got, "Details: ")
	})

	t.Run("without details", func(t *testing.T) {
		e := newRefresh(t, "Explorer")
		got := pluginevent.Describe(e)

		assert.Equal(t, "Event: InternalRefreshEvent  Source: Explorer", got)
		assert.False(t, strings.Contains(got, "Details: "))
	})

	t.Run("reflects re-attribution", func(t *testing.T) {
		e := newRefresh(t, "Explorer")
		e.SetSourceName(pluginevent.ExternalSourceName)
		assert.Contains(t, pluginevent.Describe(e), "Source: External Tool")
	})
}

func TestExternalSourceName(t *testing.T) {
	assert.Equal(t, "External Tool", pluginevent.ExternalSourceName)
}

func ExampleDescribe() {
	base, _ := pluginevent.NewBase("Explorer", "InternalRefreshEvent")
	e := &internalRefreshEvent{Base: base}
	fmt.Println(pluginevent.Describe(e))
	// Output: Event: InternalRefreshEvent  Source: Explorer
}
