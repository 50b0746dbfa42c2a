package config

import (
	"fmt"
	"io"

	configdomain "github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

const redacted = "<redacted>"

func NewCommand(runtime *common.Runtime) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Inspect boxctl configuration",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newShowCommand(runtime),
		newValidateCommand(runtime),
		newPrintTemplateCommand(),
	)
	return command
}

func newShowCommand(runtime *common.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			cfg, _, err := runtime.Config()
			if err != nil {
				return err
			}

			encoded, err := yaml.Marshal(Redact(cfg))
			if err != nil {
				return err
			}
			_, err = io.WriteString(command.OutOrStdout(), string(encoded))
			return err
		},
	}
}

func newValidateCommand(runtime *common.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			_, path, err := runtime.Config()
			if err != nil {
				return err
			}
			if path == "" {
				path = "environment only"
			}
			return common.WriteText(command, runtime.Flags.Output, fmt.Sprintf("configuration is valid (%s)", path))
		},
	}
}

func newPrintTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "print-template",
		Short: "Print a commented configuration template",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			_, err := io.WriteString(command.OutOrStdout(), configTemplateYAML)
			return err
		},
	}
}

// Redact blanks every secret-bearing field of a configuration copy.
func Redact(cfg configdomain.Config) configdomain.Config {
	if cfg.Credentials.Token != "" {
		cfg.Credentials.Token = redacted
	}
	if cfg.Credentials.SQL != nil {
		sqlStore := *cfg.Credentials.SQL
		sqlStore.DSN = redacted
		cfg.Credentials.SQL = &sqlStore
	}
	if cfg.Credentials.File != nil {
		fileStore := *cfg.Credentials.File
		if fileStore.Key != "" {
			fileStore.Key = redacted
		}
		if fileStore.Passphrase != "" {
			fileStore.Passphrase = redacted
		}
		cfg.Credentials.File = &fileStore
	}
	return cfg
}

const configTemplateYAML = `# boxctl configuration
target:
  # BoxBilling installation URL.
  base-url: https://billing.example.com
  # Referer sent with admin calls; defaults to base-url.
  # referer: https://billing.example.com/bb-admin
  # api-user: admin
  # false routes calls through index.php?_url=/api/...
  sef-urls: true
  # requests-per-second: 5
  # min-version: ">= 4.22"
  # tls:
  #   ca-cert-file: /etc/ssl/certs/internal-ca.pem
  #   insecure-skip-verify: false

# Exactly one credential source.
credentials:
  sql:
    driver: mysql
    dsn: boxbilling:secret@tcp(127.0.0.1:3306)/boxbilling
    # table: admin
    # column: api_token
    # role: admin
  # token: already-known-admin-token
  # file:
  #   path: ~/.boxctl/token.enc
  #   passphrase-file: ~/.boxctl/passphrase

# Extra verbs for collections that do not follow <path>/<action>.
# actions:
#   admin/servicehosting/hp:
#     create: hp_create

# filter:
#   identity-keys: [id, code, type, product_id]
#   generated-keys: [id, product_id]

logging:
  level: info
  format: console
`
