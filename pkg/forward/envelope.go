// Package forward moves exportable plugin events across the boundary
// between independent tool instances.
//
// Only kinds that declared an export name with
// pluginevent.RegisterExportName may leave their instance. An outgoing event
// becomes an Envelope carrying the export name and the kind's payload; the
// receiving side rebuilds the event through an Importer and attributes it
// to pluginevent.ExternalSourceName. Transport is supplied by the caller
// through the Connection interface.
package forward

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/pkg/errors"
)

// Format is an envelope wire format.
type Format string

const (
	// FormatJSON encodes envelopes as JSON.
	FormatJSON Format = "json"
	// FormatYAML encodes envelopes as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", errors.NewValidationError("format", s, "must be one of: json, yaml")
	}
}

// Envelope is the cross-instance form of an exportable event.
type Envelope struct {
	// ExportName identifies the event kind across instances.
	ExportName string `json:"export_name"`

	// SourceName is the producing plugin on the exporting side. The
	// importing side keeps it for diagnostics only.
	SourceName string `json:"source_name"`

	// Payload holds the kind's exported fields as JSON.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Export converts e to an Envelope. It fails with errors.ErrNotExportable
// when e's kind has no export name.
func Export(e pluginevent.Event) (Envelope, error) {
	if e == nil {
		return Envelope{}, errors.NewValidationError("event", nil, "must not be nil")
	}

	name, ok := pluginevent.ExportName(e)
	if !ok {
		return Envelope{}, errors.NewExportError("export", e.EventName(), "kind has no export name", errors.ErrNotExportable)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, errors.NewExportError("export", e.EventName(), "encode payload", err)
	}

	return Envelope{
		ExportName: name,
		SourceName: e.SourceName(),
		Payload:    payload,
	}, nil
}

// EncodeEnvelope serializes env in the given format.
func EncodeEnvelope(env Envelope, format Format) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding envelope %s: %w", env.ExportName, err)
	}

	switch format {
	case FormatJSON, "":
		return data, nil
	case FormatYAML:
		out, err := yaml.JSONToYAML(data)
		if err != nil {
			return nil, fmt.Errorf("encoding envelope %s as yaml: %w", env.ExportName, err)
		}
		return out, nil
	default:
		return nil, errors.NewValidationError("format", string(format), "unsupported envelope format")
	}
}

// DecodeEnvelope parses an envelope in the given format.
func DecodeEnvelope(data []byte, format Format) (Envelope, error) {
	switch format {
	case FormatJSON, "":
	case FormatYAML:
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return Envelope{}, errors.WrapParse(string(FormatYAML), "", err)
		}
		data = converted
	default:
		return Envelope{}, errors.NewValidationError("format", string(format), "unsupported envelope format")
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, errors.WrapParse(string(FormatJSON), "", err)
	}
	if env.ExportName == "" {
		return Envelope{}, errors.NewValidationError("export_name", env.ExportName, "must not be empty")
	}
	return env, nil
}
