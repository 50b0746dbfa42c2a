package request

import (
	"strings"

	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/crmarques/boxctl/reconciler"
	"github.com/crmarques/boxctl/resource"
	"github.com/spf13/cobra"
)

func NewCommand(runtime *common.Runtime) *cobra.Command {
	var (
		data         common.DataFlags
		ignoreErrors bool
		query        string
		referer      string
	)

	command := &cobra.Command{
		Use:   "request <endpoint> [key=value...]",
		Short: "Call an admin API endpoint as-is, without probing first",
		Example: strings.Join([]string{
			"  boxctl request admin/system/clear_cache",
			"  boxctl request admin/client/get_list per_page:=100 --query '.list[].email'",
			"  boxctl request admin/extension/activate id=mod_example type=mod --ignore-errors",
		}, "\n"),
		Args: cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			payload, err := common.ResolveData(command, data, args[1:])
			if err != nil {
				return err
			}

			session, err := runtime.Session(command)
			if err != nil {
				return err
			}

			report, err := session.Controller.Request(command.Context(), resource.Descriptor{Path: args[0], Data: payload}, reconciler.Options{
				Debug:        runtime.Flags.Debug,
				IgnoreErrors: ignoreErrors,
				Referer:      referer,
			})
			if err != nil {
				return err
			}

			value := report.Value
			if query != "" {
				value, err = resource.Query(command.Context(), value, query)
				if err != nil {
					return err
				}
			}
			return common.WriteValue(command, runtime.Flags.Output, value)
		},
	}

	common.BindDataFlags(command, &data)
	command.Flags().BoolVar(&ignoreErrors, "ignore-errors", false, "treat any failure as an empty result")
	command.Flags().StringVarP(&query, "query", "q", "", "jq expression applied to the result")
	command.Flags().StringVar(&referer, "referer", "", "Referer header for this call (default target.referer)")
	return command
}
