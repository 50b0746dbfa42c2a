package ensure

import (
	"fmt"
	"io"
	"strings"

	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/crmarques/boxctl/reconciler"
	"github.com/crmarques/boxctl/resource"
	"github.com/spf13/cobra"
)

func NewCommand(runtime *common.Runtime) *cobra.Command {
	command := &cobra.Command{
		Use:   "ensure",
		Short: "Converge a single resource",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newIntentCommand(runtime, reconciler.IntentPresent),
		newIntentCommand(runtime, reconciler.IntentAbsent),
	)
	return command
}

func newIntentCommand(runtime *common.Runtime, intent reconciler.Intent) *cobra.Command {
	var (
		data   common.DataFlags
		dryRun bool
	)

	short := "Create or update a resource until it matches the given data"
	example := []string{
		"  boxctl ensure present admin/currency code=EUR title=Euro conversion_rate=1",
		"  boxctl ensure present admin/product -f product.yaml",
	}
	if intent == reconciler.IntentAbsent {
		short = "Delete a resource when it exists"
		example = []string{
			"  boxctl ensure absent admin/client id=42",
		}
	}

	command := &cobra.Command{
		Use:     string(intent) + " <path> [key=value...]",
		Short:   short,
		Example: strings.Join(example, "\n"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			payload, err := common.ResolveData(command, data, args[1:])
			if err != nil {
				return err
			}

			session, err := runtime.Session(command)
			if err != nil {
				return err
			}

			desc := resource.Descriptor{Path: args[0], Data: payload}
			opts := reconciler.Options{Debug: runtime.Flags.Debug, DryRun: dryRun}

			var report reconciler.Report
			if intent == reconciler.IntentAbsent {
				report, err = session.Controller.EnsureAbsent(command.Context(), desc, opts)
			} else {
				report, err = session.Controller.EnsurePresent(command.Context(), desc, opts)
			}
			if err != nil {
				return err
			}
			return common.WriteOutput(command, runtime.Flags.Output, report, RenderReport)
		},
	}

	common.BindDataFlags(command, &data)
	command.Flags().BoolVar(&dryRun, "dry-run", false, "probe only and report what would change")
	return command
}

// RenderReport prints the outcome followed by one line per changed field.
func RenderReport(w io.Writer, report reconciler.Report) error {
	outcome := string(report.Outcome)
	if report.DryRun {
		outcome += " (dry-run)"
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", report.Path, outcome); err != nil {
		return err
	}
	for _, change := range report.Changes {
		if _, err := fmt.Fprintf(w, "    %s: %q -> %q\n", change.Field, change.Remote, change.Desired); err != nil {
			return err
		}
	}
	return nil
}
