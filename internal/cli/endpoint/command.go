package endpoint

import (
	"fmt"
	"strings"

	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/crmarques/boxctl/resource"
	"github.com/spf13/cobra"
)

var actions = []resource.Action{
	resource.ActionGet,
	resource.ActionCreate,
	resource.ActionUpdate,
	resource.ActionDelete,
}

func NewCommand(runtime *common.Runtime) *cobra.Command {
	var action string

	command := &cobra.Command{
		Use:   "endpoint <path>",
		Short: "Print the API endpoints a resource path maps to",
		Example: strings.Join([]string{
			"  boxctl endpoint admin/kb/category",
			"  boxctl endpoint admin/product --action create",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			session, err := runtime.Session(command)
			if err != nil {
				return err
			}

			if action != "" {
				parsed, ok := resource.ParseAction(action)
				if !ok {
					return common.ValidationError(fmt.Sprintf("unknown action %q: use get, create, update, or delete", action), nil)
				}
				return common.WriteText(command, runtime.Flags.Output, session.Normalizer.Endpoint(args[0], parsed))
			}

			lines := make([]string, 0, len(actions))
			for _, candidate := range actions {
				lines = append(lines, fmt.Sprintf("%-7s %s", candidate, session.Normalizer.Endpoint(args[0], candidate)))
			}
			return common.WriteText(command, runtime.Flags.Output, strings.Join(lines, "\n"))
		},
	}

	command.Flags().StringVarP(&action, "action", "a", "", "only print the endpoint for this action")
	_ = command.RegisterFlagCompletionFunc("action", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"get", "create", "update", "delete"}, cobra.ShellCompDirectiveNoFileComp
	})
	return command
}
