package token

import (
	"context"
	"fmt"
	"strings"

	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/spf13/cobra"
)

// writableStore is implemented by credential stores that accept an
// operator-supplied token.
type writableStore interface {
	Put(ctx context.Context, token string) error
}

func NewCommand(runtime *common.Runtime) *cobra.Command {
	command := &cobra.Command{
		Use:   "token",
		Short: "Inspect or provision the admin API token",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newShowCommand(runtime),
		newGenerateCommand(runtime),
		newSetCommand(runtime),
	)
	return command
}

func newShowCommand(runtime *common.Runtime) *cobra.Command {
	var reveal bool

	command := &cobra.Command{
		Use:   "show",
		Short: "Show whether the credential store holds a token",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			session, err := runtime.Session(command)
			if err != nil {
				return err
			}

			token, present, err := session.Credentials.Read(command.Context())
			if err != nil {
				return err
			}
			if !present {
				return common.WriteText(command, runtime.Flags.Output, "absent")
			}
			if reveal {
				return common.WriteText(command, runtime.Flags.Output, token)
			}
			return common.WriteText(command, runtime.Flags.Output, "present "+Mask(token))
		},
	}

	command.Flags().BoolVar(&reveal, "reveal", false, "print the token in clear text")
	return command
}

func newGenerateCommand(runtime *common.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate the admin token unless one already exists",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			session, err := runtime.Session(command)
			if err != nil {
				return err
			}

			token, err := session.Tokens.Token(command.Context())
			if err != nil {
				return err
			}
			return common.WriteText(command, runtime.Flags.Output, "token "+Mask(token))
		},
	}
}

func newSetCommand(runtime *common.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "set <token>",
		Short: "Store an explicit admin token (file credential store only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			value := strings.TrimSpace(args[0])
			if value == "" {
				return common.ValidationError("token value is required", nil)
			}

			session, err := runtime.Session(command)
			if err != nil {
				return err
			}
			store, ok := session.Credentials.(writableStore)
			if !ok {
				return common.ValidationError(fmt.Sprintf("credential store %T does not accept explicit tokens", session.Credentials), nil)
			}
			return store.Put(command.Context(), value)
		},
	}
}

// Mask keeps the first and last four characters of long tokens.
func Mask(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
