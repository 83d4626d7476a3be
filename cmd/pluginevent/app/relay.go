package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/pkg/dispatch"
	"github.com/agentstation/pluginevent/pkg/errors"
	"github.com/agentstation/pluginevent/pkg/forward"
	"github.com/agentstation/pluginevent/pkg/logging"
)

func (a *App) newRelayCommand() *cobra.Command {
	var kinds []string
	cmd := &cobra.Command{
		Use:   "relay [file]",
		Short: "Import a stream of JSON envelopes and publish them on a local bus",
		Long: `Reads concatenated JSON envelopes from file, or from stdin when file is
omitted or "-". Each envelope is imported as an "External Tool" event and
published on an in-process bus. A subscriber prints every delivered event,
optionally limited to the event names given with --kind.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			ctx := a.operationContext(cmd.Context(), "relay")
			imp, err := a.importer(ctx)
			if err != nil {
				return err
			}
			return a.relay(ctx, imp, data, cmd.OutOrStdout(), kinds)
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "event names to print, repeatable (default all)")
	return cmd
}

// relay imports every envelope in data and publishes it on a broker whose
// only subscriber writes descriptions to w. Publishing waits for room in
// the broker's queue, so no envelope is dropped. It returns once every
// published event has been delivered.
func (a *App) relay(ctx context.Context, imp *forward.Importer, data []byte, w io.Writer, kinds []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	logger := logging.Ctx(ctx)

	broker := dispatch.NewBroker(logger)
	go broker.Run(ctx)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	wanted := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	if !broker.Subscribe(dispatch.Func(func(e pluginevent.Event) error {
		defer wg.Done()
		mu.Lock()
		defer mu.Unlock()
		return writeDescription(w, e)
	}), kinds...) {
		return errors.ErrCanceled
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var published int
	var relayErr error
	for {
		var env forward.Envelope
		err := dec.Decode(&env)
		if err == io.EOF {
			break
		}
		if err != nil {
			relayErr = errors.WrapParse(string(forward.FormatJSON), "", err)
			break
		}

		e, err := imp.Import(env)
		if err != nil {
			relayErr = err
			break
		}

		delivered := len(wanted) == 0 || wanted[e.EventName()]
		if delivered {
			wg.Add(1)
		}
		if err := broker.PublishWait(ctx, e); err != nil {
			if delivered {
				wg.Done()
			}
			relayErr = err
			break
		}
		published++
	}

	wg.Wait()
	logger.Info().
		Int("published", published).
		Msg("Relay finished")
	return relayErr
}
