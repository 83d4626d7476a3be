package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/internal/cmd/output"
	"github.com/agentstation/pluginevent/pkg/errors"
	"github.com/agentstation/pluginevent/pkg/forward"
	"github.com/agentstation/pluginevent/pkg/logging"
)

func (a *App) newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List event kinds that can cross tool instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := output.Data{Headers: []string{"Export Name", "Label", "Go Type"}}
			for _, k := range pluginevent.ExportedKinds() {
				data.Rows = append(data.Rows, []string{k.Name, output.Title(k.Name), k.Type.String()})
			}
			return output.NewFormatter(a.outputFormat()).Format(cmd.OutOrStdout(), data)
		},
	}
}

func (a *App) newDescribeCommand() *cobra.Command {
	flags := &eventFlags{}
	cmd := &cobra.Command{
		Use:   "describe <kind>",
		Short: "Build an event and print its description and trigger chain",
		Example: `  pluginevent describe rename --source Explorer --old "Tool 1" --new CodeBrowser
  pluginevent describe selection --program notepad.exe --range 0x1000:0x10ff --trigger location`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.buildEvent(args[0], flags)
			if err != nil {
				return err
			}

			format := a.outputFormat()
			if format == output.FormatTable {
				return writeDescription(cmd.OutOrStdout(), e)
			}

			data := output.Data{Headers: []string{"Depth", "Event Name", "Source Name", "Export Name", "Details"}}
			for depth, link := range pluginevent.Chain(e) {
				exportName, _ := pluginevent.ExportName(link)
				details, _ := link.Details()
				data.Rows = append(data.Rows, []string{
					strconv.Itoa(depth), link.EventName(), link.SourceName(), exportName, details,
				})
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}
	addEventFlags(cmd, flags)
	return cmd
}

func (a *App) newExportCommand() *cobra.Command {
	flags := &eventFlags{}
	var envelopeFormat string
	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Build an event and write it as a cross-instance envelope",
		Example: `  pluginevent export rename --source Explorer --old a --new b > rename.json
  pluginevent export location --program notepad.exe --address 0x401000 --envelope-format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.envelopeFormat(envelopeFormat)
			if err != nil {
				return err
			}

			e, err := a.buildEvent(args[0], flags)
			if err != nil {
				return err
			}

			ctx := a.operationContext(cmd.Context(), "export")
			out := cmd.OutOrStdout()
			conn := forward.ConnectionFunc(func(ctx context.Context, env forward.Envelope) error {
				data, err := forward.EncodeEnvelope(env, format)
				if err != nil {
					return err
				}
				if _, err := out.Write(data); err != nil {
					return err
				}
				if format == forward.FormatJSON {
					_, err = fmt.Fprintln(out)
				}
				logging.Ctx(ctx).Debug().
					Int("bytes", len(data)).
					Str("envelope_format", string(format)).
					Msg("Envelope written")
				return err
			})

			return forward.NewForwarder(conn, forward.WithLogger(logging.Ctx(ctx))).Forward(ctx, e)
		},
	}
	addEventFlags(cmd, flags)
	cmd.Flags().StringVar(&envelopeFormat, "envelope-format", "", "envelope format: json, yaml (default from config)")
	return cmd
}

func (a *App) newImportCommand() *cobra.Command {
	var envelopeFormat string
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Read an envelope from another tool instance and describe the event",
		Long: `Reads an envelope from file, or from stdin when file is omitted or "-",
and rebuilds the event it carries. Imported events are attributed to
"External Tool".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.envelopeFormat(envelopeFormat)
			if err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			env, err := forward.DecodeEnvelope(data, format)
			if err != nil {
				return err
			}

			imp, err := a.importer(a.operationContext(cmd.Context(), "import"))
			if err != nil {
				return err
			}
			e, err := imp.Import(env)
			if err != nil {
				return err
			}
			return writeDescription(cmd.OutOrStdout(), e)
		},
	}
	cmd.Flags().StringVar(&envelopeFormat, "envelope-format", "", "envelope format: json, yaml (default from config)")
	return cmd
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pluginevent version %s\n", a.version)
			fmt.Fprintf(out, "commit: %s\n", a.commit)
			fmt.Fprintf(out, "built: %s\n", a.date)
			fmt.Fprintf(out, "go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// envelopeFormat resolves the envelope format flag against configuration.
func (a *App) envelopeFormat(flag string) (forward.Format, error) {
	if flag == "" {
		flag = a.config.EnvelopeFormat
	}
	return forward.ParseFormat(flag)
}

// writeDescription prints e and each event in its trigger chain.
func writeDescription(w io.Writer, e pluginevent.Event) error {
	for depth, link := range pluginevent.Chain(e) {
		if depth > 0 {
			if _, err := fmt.Fprintf(w, "Triggered by (%d):\n", depth); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, pluginevent.Describe(link)); err != nil {
			return err
		}
		exportName, ok := pluginevent.ExportName(link)
		if !ok {
			exportName = "(not exportable)"
		}
		if _, err := fmt.Fprintf(w, "\tExport: %s\n", exportName); err != nil {
			return err
		}
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("envelope file", path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
