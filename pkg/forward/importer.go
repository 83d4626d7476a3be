package forward

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/pkg/errors"
)

// DecodeFunc rebuilds an event from an envelope payload.
type DecodeFunc func(payload []byte) (pluginevent.Attributable, error)

// JSONDecoder returns a DecodeFunc that builds a fresh event with newEvent
// and unmarshals the payload into it. newEvent must return a pointer.
func JSONDecoder(newEvent func() (pluginevent.Attributable, error)) DecodeFunc {
	return func(payload []byte) (pluginevent.Attributable, error) {
		e, err := newEvent()
		if err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, e); err != nil {
				return nil, errors.WrapParse(string(FormatJSON), "", err)
			}
		}
		return e, nil
	}
}

// Importer turns envelopes from other instances back into events.
type Importer struct {
	mu       sync.RWMutex
	decoders map[string]DecodeFunc
	logger   *zerolog.Logger
}

// NewImporter creates an Importer with no decoders.
func NewImporter(logger *zerolog.Logger) *Importer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Importer{
		decoders: make(map[string]DecodeFunc),
		logger:   logger,
	}
}

// Register installs the decoder for an export name. The name must belong to
// a registered event kind.
func (i *Importer) Register(exportName string, fn DecodeFunc) error {
	if fn == nil {
		return errors.NewValidationError("decoder", nil, "must not be nil")
	}
	if _, ok := pluginevent.TypeForExportName(exportName); !ok {
		return errors.NewNotFoundError("event kind", exportName)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if _, exists := i.decoders[exportName]; exists {
		return fmt.Errorf("decoder for %s: %w", exportName, errors.ErrAlreadyExists)
	}
	i.decoders[exportName] = fn
	return nil
}

// Import rebuilds the event carried by env and attributes it to
// pluginevent.ExternalSourceName.
func (i *Importer) Import(env Envelope) (pluginevent.Event, error) {
	i.mu.RLock()
	decode, ok := i.decoders[env.ExportName]
	i.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("decoder", env.ExportName)
	}

	e, err := decode(env.Payload)
	if err != nil {
		return nil, errors.NewExportError("import", env.ExportName, "decode payload", err)
	}
	if isNilEvent(e) {
		return nil, errors.NewExportError("import", env.ExportName, "decoder produced no event", errors.ErrInvalidInput)
	}
	if name, ok := pluginevent.ExportName(e); !ok || name != env.ExportName {
		return nil, errors.NewExportError("import", env.ExportName,
			fmt.Sprintf("decoder produced %s", e.EventName()), errors.ErrInvalidInput)
	}

	e.SetSourceName(pluginevent.ExternalSourceName)
	e.SetTriggerEvent(nil)

	i.logger.Debug().
		Str("export_name", env.ExportName).
		Str("event_name", e.EventName()).
		Str("origin_source", env.SourceName).
		Msg("Event imported")
	return e, nil
}

// ExportNames returns the export names this importer can decode, sorted.
func (i *Importer) ExportNames() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	names := make([]string, 0, len(i.decoders))
	for name := range i.decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isNilEvent(e pluginevent.Attributable) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
