package apply

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/crmarques/boxctl/reconciler"
	"github.com/spf13/cobra"
)

type result struct {
	Resources []reconciler.Report        `json:"resources" yaml:"resources"`
	Summary   map[reconciler.Outcome]int `json:"summary" yaml:"summary"`
	DryRun    bool                       `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
}

func NewCommand(runtime *common.Runtime) *cobra.Command {
	var dryRun bool

	command := &cobra.Command{
		Use:   "apply <manifest>",
		Short: "Reconcile every resource declared in a manifest, in order",
		Example: strings.Join([]string{
			"  boxctl apply boxbilling.yaml",
			"  boxctl apply --dry-run boxbilling.yaml",
			"  cat boxbilling.yaml | boxctl apply -",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			manifest, err := runtime.Manifest(command, args[0])
			if err != nil {
				return err
			}

			session, err := runtime.Session(command)
			if err != nil {
				return err
			}

			reports, applyErr := session.Controller.Apply(command.Context(), manifest, reconciler.ApplyOptions{
				DryRun: dryRun,
				Debug:  runtime.Flags.Debug,
			})

			output := result{Resources: reports, Summary: reconciler.Summary(reports), DryRun: dryRun}
			if err := common.WriteOutput(command, runtime.Flags.Output, output, renderText); err != nil {
				return err
			}
			return applyErr
		},
	}

	command.Flags().BoolVar(&dryRun, "dry-run", false, "probe only and report what would change")
	return command
}

func renderText(w io.Writer, value result) error {
	for _, report := range value.Resources {
		label := report.Path
		if report.Name != "" {
			label = fmt.Sprintf("%s (%s)", report.Path, report.Name)
		}
		outcome := string(report.Outcome)
		if report.DryRun {
			outcome += " (dry-run)"
		}
		if _, err := fmt.Fprintf(w, "%-16s %s\n", outcome, label); err != nil {
			return err
		}
		for _, change := range report.Changes {
			if _, err := fmt.Fprintf(w, "    %s: %q -> %q\n", change.Field, change.Remote, change.Desired); err != nil {
				return err
			}
		}
	}

	outcomes := make([]string, 0, len(value.Summary))
	for outcome, count := range value.Summary {
		outcomes = append(outcomes, fmt.Sprintf("%d %s", count, outcome))
	}
	sort.Strings(outcomes)
	_, err := fmt.Fprintf(w, "%d resources: %s\n", len(value.Resources), strings.Join(outcomes, ", "))
	return err
}
