package toolevents_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/pkg/errors"
	"github.com/agentstation/pluginevent/pkg/forward"
	"github.com/agentstation/pluginevent/pkg/logging"
	"github.com/agentstation/pluginevent/pkg/toolevents"
)

func TestRenameEvent(t *testing.T) {
	e, err := toolevents.NewRenameEvent("Explorer", "Tool 1", "CodeBrowser")
	require.NoError(t, err)

	assert.Equal(t, "RenameEvent", e.EventName())
	assert.Equal(t, "Explorer", e.SourceName())
	assert.True(t, pluginevent.IsExportable(e))

	name, ok := pluginevent.ExportName(e)
	assert.True(t, ok)
	assert.Equal(t, "TOOL_RENAMED", name)

	assert.Equal(t,
		"Event: RenameEvent  Source: Explorer\n\tDetails: \"Tool 1\" -> \"CodeBrowser\"",
		pluginevent.Describe(e))
}

func TestInternalRefreshEvent(t *testing.T) {
	for _, source := range []string{"Explorer", "Listing"} {
		e, err := toolevents.NewInternalRefreshEvent(source)
		require.NoError(t, err)

		assert.False(t, pluginevent.IsExportable(e))
		name, ok := pluginevent.ExportName(e)
		assert.False(t, ok)
		assert.Empty(t, name)
		assert.NotContains(t, pluginevent.Describe(e), "Details: ")
	}
}

func TestLocationChangeEvent(t *testing.T) {
	e, err := toolevents.NewLocationChangeEvent("Listing", "notepad.exe", 0x401000)
	require.NoError(t, err)

	details, ok := e.Details()
	assert.True(t, ok)
	assert.Equal(t, "notepad.exe@0x401000", details)

	name, ok := pluginevent.ExportName(e)
	assert.True(t, ok)
	assert.Equal(t, toolevents.LocationChangeExportName, name)
}

func TestSelectionEvent(t *testing.T) {
	t.Run("with ranges", func(t *testing.T) {
		e, err := toolevents.NewSelectionEvent("Listing", "notepad.exe",
			toolevents.AddressRange{Start: 0x10, End: 0x20},
			toolevents.AddressRange{Start: 0x40, End: 0x48})
		require.NoError(t, err)

		details, ok := e.Details()
		assert.True(t, ok)
		assert.Equal(t, "notepad.exe: 2 range(s)", details)
	})

	t.Run("cleared", func(t *testing.T) {
		e, err := toolevents.NewSelectionEvent("Listing", "notepad.exe")
		require.NoError(t, err)

		details, _ := e.Details()
		assert.Equal(t, "notepad.exe: selection cleared", details)
	})
}

func TestConstructorsRejectMissingSource(t *testing.T) {
	constructors := map[string]func() (pluginevent.Event, error){
		"rename": func() (pluginevent.Event, error) {
			return toolevents.NewRenameEvent("", "a", "b")
		},
		"refresh": func() (pluginevent.Event, error) {
			return toolevents.NewInternalRefreshEvent("")
		},
		"location": func() (pluginevent.Event, error) {
			return toolevents.NewLocationChangeEvent("", "p", 1)
		},
		"selection": func() (pluginevent.Event, error) {
			return toolevents.NewSelectionEvent("", "p")
		},
	}

	for name, build := range constructors {
		t.Run(name, func(t *testing.T) {
			_, err := build()
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestRegisteredKinds(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeFor[*toolevents.RenameEvent](), toolevents.RenameExportName},
		{reflect.TypeFor[*toolevents.LocationChangeEvent](), toolevents.LocationChangeExportName},
		{reflect.TypeFor[*toolevents.SelectionEvent](), toolevents.SelectionExportName},
	}
	for _, tt := range tests {
		got, ok := pluginevent.LookupExportName(tt.typ)
		assert.True(t, ok, tt.typ.String())
		assert.Equal(t, tt.want, got)
	}

	_, ok := pluginevent.LookupExportName(reflect.TypeFor[*toolevents.InternalRefreshEvent]())
	assert.False(t, ok)
}

func TestTriggerScenario(t *testing.T) {
	a, err := toolevents.NewLocationChangeEvent("Listing", "p", 0x10)
	require.NoError(t, err)
	b, err := toolevents.NewSelectionEvent("Listing", "p")
	require.NoError(t, err)

	b.SetTriggerEvent(a)

	assert.Same(t, a, b.TriggerEvent())
	assert.Nil(t, a.TriggerEvent())
	assert.Len(t, pluginevent.Chain(b), 2)
}

func TestRegisterDecoders(t *testing.T) {
	imp := forward.NewImporter(logging.NewNopLogger())
	require.NoError(t, toolevents.RegisterDecoders(imp))

	assert.Equal(t, []string{
		toolevents.LocationChangeExportName,
		toolevents.SelectionExportName,
		toolevents.RenameExportName,
	}, imp.ExportNames())

	err := toolevents.RegisterDecoders(imp)
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestRoundTripAcrossInstances(t *testing.T) {
	imp := forward.NewImporter(logging.NewNopLogger())
	require.NoError(t, toolevents.RegisterDecoders(imp))

	sel, err := toolevents.NewSelectionEvent("Listing", "notepad.exe",
		toolevents.AddressRange{Start: 0x1000, End: 0x1fff})
	require.NoError(t, err)

	for _, format := range []forward.Format{forward.FormatJSON, forward.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			env, err := forward.Export(sel)
			require.NoError(t, err)

			data, err := forward.EncodeEnvelope(env, format)
			require.NoError(t, err)
			decoded, err := forward.DecodeEnvelope(data, format)
			require.NoError(t, err)

			got, err := imp.Import(decoded)
			require.NoError(t, err)

			imported, ok := got.(*toolevents.SelectionEvent)
			require.True(t, ok)
			assert.Equal(t, toolevents.SelectionEventName, imported.EventName())
			assert.Equal(t, pluginevent.ExternalSourceName, imported.SourceName())
			assert.Equal(t, "notepad.exe", imported.Program)
			assert.Equal(t, sel.Ranges, imported.Ranges)
			assert.Nil(t, imported.TriggerEvent())
		})
	}
}
