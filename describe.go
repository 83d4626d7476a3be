package pluginevent

import "strings"

// Describe renders e for diagnostics as
// "Event: <name>  Source: <source>", followed by
// "\n\tDetails: <details>" when the kind reports details.
// The output is not meant to be parsed.
func Describe(e Event) string {
	var b strings.Builder
	b.WriteString("Event: ")
	b.WriteString(e.EventName())
	b.WriteString("  Source: ")
	b.WriteString(e.SourceName())
	if details, ok := e.Details(); ok {
		b.WriteString("\n\tDetails: ")
		b.WriteString(details)
	}
	return b.String()
}

// Chain returns e followed by each event in its trigger chain, ending at
// the event that has no trigger. The chain is assumed to be acyclic.
func Chain(e Event) []Event {
	var chain []Event
	for cur := e; cur != nil; cur = cur.TriggerEvent() {
		chain = append(chain, cur)
	}
	return chain
}
