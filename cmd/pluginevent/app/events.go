package app

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/pkg/errors"
	"github.com/agentstation/pluginevent/pkg/toolevents"
)

// eventFlags holds the payload flags shared by commands that build events.
type eventFlags struct {
	source  string
	oldName string
	newName string
	program string
	address string
	ranges  []string
	trigger string
}

func addEventFlags(cmd *cobra.Command, f *eventFlags) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "plugin raising the event (default from config)")
	cmd.Flags().StringVar(&f.oldName, "old", "", "previous tool name (rename)")
	cmd.Flags().StringVar(&f.newName, "new", "", "new tool name (rename)")
	cmd.Flags().StringVar(&f.program, "program", "", "program name (location, selection)")
	cmd.Flags().StringVar(&f.address, "address", "0", "address, decimal or 0x-prefixed (location)")
	cmd.Flags().StringSliceVar(&f.ranges, "range", nil, "selected range start:end, repeatable (selection)")
	cmd.Flags().StringVar(&f.trigger, "trigger", "", "kind of the event that caused this one")
}

// eventBuilders maps CLI kind names to constructors.
var eventBuilders = map[string]func(source string, f *eventFlags) (pluginevent.Attributable, error){
	"rename": func(source string, f *eventFlags) (pluginevent.Attributable, error) {
		return toolevents.NewRenameEvent(source, f.oldName, f.newName)
	},
	"refresh": func(source string, _ *eventFlags) (pluginevent.Attributable, error) {
		return toolevents.NewInternalRefreshEvent(source)
	},
	"location": func(source string, f *eventFlags) (pluginevent.Attributable, error) {
		addr, err := parseAddress(f.address)
		if err != nil {
			return nil, err
		}
		return toolevents.NewLocationChangeEvent(source, f.program, addr)
	},
	"selection": func(source string, f *eventFlags) (pluginevent.Attributable, error) {
		ranges, err := parseRanges(f.ranges)
		if err != nil {
			return nil, err
		}
		return toolevents.NewSelectionEvent(source, f.program, ranges...)
	},
}

// kindAliases maps event names to CLI kind names.
var kindAliases = map[string]string{
	strings.ToLower(toolevents.RenameEventName):          "rename",
	strings.ToLower(toolevents.InternalRefreshEventName): "refresh",
	strings.ToLower(toolevents.LocationChangeEventName):  "location",
	strings.ToLower(toolevents.SelectionEventName):       "selection",
}

func kindNames() []string {
	names := make([]string, 0, len(eventBuilders))
	for name := range eventBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildEvent creates the event of the given kind, and its trigger when
// requested.
func (a *App) buildEvent(kind string, f *eventFlags) (pluginevent.Attributable, error) {
	source := f.source
	if source == "" {
		source = a.config.Source
	}

	e, err := newEvent(kind, source, f)
	if err != nil {
		return nil, err
	}

	if f.trigger != "" {
		trigger, err := newEvent(f.trigger, source, f)
		if err != nil {
			return nil, err
		}
		e.SetTriggerEvent(trigger)
	}
	return e, nil
}

func newEvent(kind, source string, f *eventFlags) (pluginevent.Attributable, error) {
	name := strings.ToLower(kind)
	if alias, ok := kindAliases[name]; ok {
		name = alias
	}
	build, ok := eventBuilders[name]
	if !ok {
		return nil, errors.NewValidationError("kind", kind,
			"must be one of: "+strings.Join(kindNames(), ", "))
	}
	return build(source, f)
}

func parseAddress(s string) (uint64, error) {
	addr, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.WrapValidation("address", err)
	}
	return addr, nil
}

func parseRanges(values []string) ([]toolevents.AddressRange, error) {
	ranges := make([]toolevents.AddressRange, 0, len(values))
	for _, value := range values {
		startStr, endStr, ok := strings.Cut(value, ":")
		if !ok {
			return nil, errors.NewValidationError("range", value, "must be start:end")
		}
		start, err := parseAddress(startStr)
		if err != nil {
			return nil, err
		}
		end, err := parseAddress(endStr)
		if err != nil {
			return nil, err
		}
		if end < start {
			return nil, errors.NewValidationError("range", value, "end before start")
		}
		ranges = append(ranges, toolevents.AddressRange{Start: start, End: end})
	}
	return ranges, nil
}
