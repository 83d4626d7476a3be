package toolevents

import (
	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/pkg/forward"
)

// RegisterDecoders installs decoders for every exportable kind in this
// package on imp.
func RegisterDecoders(imp *forward.Importer) error {
	decoders := []struct {
		exportName string
		newEvent   func() (pluginevent.Attributable, error)
	}{
		{RenameExportName, func() (pluginevent.Attributable, error) {
			return NewRenameEvent(pluginevent.ExternalSourceName, "", "")
		}},
		{LocationChangeExportName, func() (pluginevent.Attributable, error) {
			return NewLocationChangeEvent(pluginevent.ExternalSourceName, "", 0)
		}},
		{SelectionExportName, func() (pluginevent.Attributable, error) {
			return NewSelectionEvent(pluginevent.ExternalSourceName, "")
		}},
	}

	for _, d := range decoders {
		if err := imp.Register(d.exportName, forward.JSONDecoder(d.newEvent)); err != nil {
			return err
		}
	}
	return nil
}
