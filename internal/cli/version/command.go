package version

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

func NewCommand(runtime *common.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value := info{Version: Version, Commit: Commit, BuildDate: BuildDate}
			if build, ok := debug.ReadBuildInfo(); ok {
				value.GoVersion = build.GoVersion
			}
			return common.WriteOutput(cmd, runtime.Flags.Output, value, func(w io.Writer, item info) error {
				_, err := fmt.Fprintf(w, "boxctl %s (%s) %s\n", item.Version, item.Commit, item.BuildDate)
				return err
			})
		},
	}
}
