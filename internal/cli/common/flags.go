package common

import "github.com/spf13/cobra"

type GlobalFlags struct {
	ConfigPath  string
	Debug       bool
	NoStatus    bool
	NoColor     bool
	Output      string
	LogLevel    string
	LogFormat   string
	MetricsFile string
}

type DataFlags struct {
	File   string
	Format string
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "configuration file (default $BOXCTL_CONFIG or ~/.boxctl/config.yaml)")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "log probe failures and raise log verbosity")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	command.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level: trace|debug|info|warn|error (default from config)")
	command.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "", "log format: console|json (default from config)")
	command.PersistentFlags().StringVar(&flags.MetricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file after the run")

	_ = command.RegisterFlagCompletionFunc("output", fixedCompletion(OutputAuto, OutputText, OutputJSON, OutputYAML))
	_ = command.RegisterFlagCompletionFunc("log-level", fixedCompletion("trace", "debug", "info", "warn", "error"))
	_ = command.RegisterFlagCompletionFunc("log-format", fixedCompletion("console", "json"))
}

func BindDataFlags(command *cobra.Command, flags *DataFlags) {
	command.Flags().StringVarP(&flags.File, "data-file", "f", "", "data file path (use '-' to read from stdin)")
	command.Flags().StringVarP(&flags.Format, "format", "i", OutputYAML, "data file format: json|yaml")
	_ = command.RegisterFlagCompletionFunc("format", fixedCompletion(OutputJSON, OutputYAML))
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
