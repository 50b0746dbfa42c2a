package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crmarques/boxctl/faults"
	"github.com/crmarques/boxctl/internal/cli/commandmeta"
	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type (
	Dependencies     = common.Dependencies
	Session          = common.Session
	BootstrapOptions = common.BootstrapOptions
)

type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func Execute(deps Dependencies) error {
	return Run(deps, os.Args[1:], Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

// Run executes one CLI invocation and always releases the session, also
// when the command failed.
func Run(deps Dependencies, args []string, streams Streams) error {
	runtime := common.NewRuntime(deps)
	root := newRootCommand(runtime)
	root.SetArgs(args)
	if streams.In != nil {
		root.SetIn(streams.In)
	}
	if streams.Out != nil {
		root.SetOut(streams.Out)
	}
	if streams.Err != nil {
		root.SetErr(streams.Err)
	}

	command, err := root.ExecuteC()
	if finishErr := runtime.Finish(); finishErr != nil {
		err = errors.Join(err, finishErr)
	}

	stderr := root.ErrOrStderr()
	noColor := shouldSuppressColor(args) || runtime.Flags.NoColor
	if shouldEmitExecutionStatus(args, command) {
		if err != nil {
			writeExecutionErrorStatus(stderr, err, noColor)
		} else {
			writeExecutionOKStatus(stderr, noColor)
		}
		return err
	}
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", strings.TrimSpace(err.Error()))
	}
	return err
}

func ExitCodeForError(err error) int {
	if err == nil {
		return 0
	}

	switch faults.CategoryOf(err) {
	case faults.ValidationError:
		return 2
	case faults.NotFoundError:
		return 3
	case faults.AuthError:
		return 4
	case faults.ConflictError:
		return 5
	case faults.TransportError:
		return 6
	case faults.ApplicationError:
		return 7
	case faults.CredentialError:
		return 8
	default:
		return 1
	}
}

func writeExecutionOKStatus(w io.Writer, noColor bool) {
	_, _ = fmt.Fprintf(w, "%s command executed successfully.\n", formatStatusLabel(w, "OK", noColor))
}

func writeExecutionErrorStatus(w io.Writer, err error, noColor bool) {
	description := "command execution failed"
	if err != nil {
		description = fmt.Sprintf("%s: %s", description, strings.TrimSpace(err.Error()))
	}
	_, _ = fmt.Fprintf(w, "%s %s.\n", formatStatusLabel(w, "ERROR", noColor), description)
}

func formatStatusLabel(w io.Writer, status string, noColor bool) string {
	label := "[" + status + "]"
	if !common.SupportsColor(w, noColor) {
		return label
	}

	switch status {
	case "OK":
		return "\x1b[1;32m" + label + "\x1b[0m"
	case "ERROR":
		return "\x1b[1;31m" + label + "\x1b[0m"
	default:
		return label
	}
}

func shouldEmitExecutionStatus(args []string, command *cobra.Command) bool {
	if command == nil || shouldSuppressStatusMessage(args) || isHelpOrCompletionInvocation(args) {
		return false
	}
	return commandmeta.EmitsExecutionStatusPath(command.CommandPath())
}

// shouldSuppressStatusMessage re-parses args on its own so --no-status is
// honoured even when cobra rejected the command line.
func shouldSuppressStatusMessage(args []string) bool {
	flags := pflag.NewFlagSet("status", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)

	var noStatus bool
	flags.BoolVarP(&noStatus, "no-status", "n", false, "hide status output")
	if err := flags.Parse(args); err != nil {
		return false
	}
	return noStatus
}

func shouldSuppressColor(args []string) bool {
	flags := pflag.NewFlagSet("color", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)

	var noColor bool
	flags.BoolVar(&noColor, "no-color", false, "disable color output")
	if err := flags.Parse(args); err != nil {
		return false
	}
	return noColor
}

func isHelpOrCompletionInvocation(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}

	for _, current := range args {
		if current == "--" {
			break
		}
		if current == "--help" || current == "-h" {
			return true
		}
	}
	return false
}
