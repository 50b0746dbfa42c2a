package cli

import (
	"fmt"
	"strings"

	configdomain "github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/faults"
	"github.com/crmarques/boxctl/internal/cli/apply"
	"github.com/crmarques/boxctl/internal/cli/check"
	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/crmarques/boxctl/internal/cli/config"
	"github.com/crmarques/boxctl/internal/cli/endpoint"
	"github.com/crmarques/boxctl/internal/cli/ensure"
	"github.com/crmarques/boxctl/internal/cli/request"
	"github.com/crmarques/boxctl/internal/cli/token"
	"github.com/crmarques/boxctl/internal/cli/version"
	"github.com/crmarques/boxctl/logging"
	"github.com/spf13/cobra"
)

func NewRootCommand(deps Dependencies) *cobra.Command {
	return newRootCommand(common.NewRuntime(deps))
}

func newRootCommand(runtime *common.Runtime) *cobra.Command {
	globalFlags := &runtime.Flags

	root := &cobra.Command{
		Use:   "boxctl",
		Short: "Reconcile BoxBilling configuration through its admin API",
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
		Args: cobra.NoArgs,
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			if err := common.ValidateOutputFormat(globalFlags.Output); err != nil {
				return err
			}
			if err := common.ValidateOutputFormatForCommandPath(command.CommandPath(), globalFlags.Output); err != nil {
				return err
			}
			if err := runtime.InitLogging(command, configdomain.Logging{}); err != nil {
				return err
			}

			logging.FromContext(command.Context()).V(2).Info(
				"root flags",
				"config", globalFlags.ConfigPath,
				"output", globalFlags.Output,
				"debug", globalFlags.Debug,
				"noStatus", globalFlags.NoStatus,
				"command", command.CommandPath(),
			)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	common.BindGlobalFlags(root, globalFlags)
	root.PersistentFlags().BoolP("help", "h", false, "help for command")

	root.AddGroup(
		&cobra.Group{ID: "reconcile", Title: "Reconcile Commands:"},
		&cobra.Group{ID: "inspect", Title: "Inspect Commands:"},
		&cobra.Group{ID: "other", Title: "Other Commands:"},
	)

	reconcileCommands := []*cobra.Command{
		apply.NewCommand(runtime),
		ensure.NewCommand(runtime),
		request.NewCommand(runtime),
	}
	for _, command := range reconcileCommands {
		command.GroupID = "reconcile"
		root.AddCommand(command)
	}

	inspectCommands := []*cobra.Command{
		endpoint.NewCommand(runtime),
		check.NewCommand(runtime),
		token.NewCommand(runtime),
		config.NewCommand(runtime),
	}
	for _, command := range inspectCommands {
		command.GroupID = "inspect"
		root.AddCommand(command)
	}

	versionCommand := version.NewCommand(runtime)
	versionCommand.GroupID = "other"
	root.AddCommand(versionCommand)
	root.SetCompletionCommandGroupID("other")

	wrapUsageForMissingPositionalParameterErrors(root)

	return root
}

func wrapUsageForMissingPositionalParameterErrors(root *cobra.Command) {
	if root == nil {
		return
	}

	var wrapCommandTree func(*cobra.Command)
	wrapCommandTree = func(command *cobra.Command) {
		if command == nil {
			return
		}

		command.Args = wrapCommandErrorHandlerWithUsage(command.Args)
		command.PersistentPreRunE = wrapCommandErrorHandlerWithUsage(command.PersistentPreRunE)
		command.PreRunE = wrapCommandErrorHandlerWithUsage(command.PreRunE)
		command.RunE = wrapCommandErrorHandlerWithUsage(command.RunE)

		for _, child := range command.Commands() {
			wrapCommandTree(child)
		}
	}

	wrapCommandTree(root)
}

func wrapCommandErrorHandlerWithUsage(handler func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	if handler == nil {
		return nil
	}

	return func(command *cobra.Command, args []string) error {
		err := handler(command, args)
		if shouldPrintUsageForMissingPositionalParameter(command, err, args) {
			printCommandUsageOnError(command)
		}
		return err
	}
}

func shouldPrintUsageForMissingPositionalParameter(command *cobra.Command, err error, args []string) bool {
	if err == nil || len(args) != 0 || !commandDeclaresPositionalParameters(command) {
		return false
	}

	message := strings.TrimSpace(strings.ToLower(err.Error()))
	if faults.IsCategory(err, faults.ValidationError) {
		return strings.HasSuffix(message, " is required")
	}
	return strings.Contains(message, "arg(s)") && strings.Contains(message, "received 0")
}

func commandDeclaresPositionalParameters(command *cobra.Command) bool {
	if command == nil {
		return false
	}

	use := strings.TrimSpace(command.Use)
	return strings.Contains(use, "[") || strings.Contains(use, "<")
}

func printCommandUsageOnError(command *cobra.Command) {
	if command == nil {
		return
	}

	rendered := strings.TrimRight(command.UsageString(), "\n")
	if rendered == "" {
		return
	}

	_, _ = fmt.Fprintln(command.ErrOrStderr(), rendered)
}
