package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/crmarques/boxctl/faults"
	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/spf13/cobra"
)

type report struct {
	BaseURL    string `json:"baseURL" yaml:"baseURL"`
	Version    string `json:"version" yaml:"version"`
	MinVersion string `json:"minVersion,omitempty" yaml:"minVersion,omitempty"`
}

func NewCommand(runtime *common.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the target answers and runs a supported version",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			session, err := runtime.Session(command)
			if err != nil {
				return err
			}
			if session.Versions == nil {
				return common.ValidationError("version check is not supported by the configured executor", nil)
			}

			version, err := session.Versions.Version(command.Context())
			if err != nil {
				return err
			}

			result := report{
				BaseURL:    session.Config.Target.BaseURL,
				Version:    version,
				MinVersion: session.Config.Target.MinVersion,
			}
			if err := Compatible(version, result.MinVersion); err != nil {
				return err
			}

			return common.WriteOutput(command, runtime.Flags.Output, result, func(w io.Writer, value report) error {
				_, err := fmt.Fprintf(w, "%s: BoxBilling %s OK\n", value.BaseURL, value.Version)
				return err
			})
		},
	}
}

// Compatible checks version against a semver constraint such as ">= 4.22".
// A bare version is read as a lower bound; an empty constraint accepts anything.
func Compatible(version string, constraint string) error {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return nil
	}
	if first := constraint[0]; first == 'v' || (first >= '0' && first <= '9') {
		constraint = ">= " + constraint
	}

	required, err := semver.NewConstraint(constraint)
	if err != nil {
		return common.ValidationError(fmt.Sprintf("invalid min-version constraint %q", constraint), err)
	}
	actual, err := semver.NewVersion(version)
	if err != nil {
		return faults.NewTypedError(faults.ConflictError, fmt.Sprintf("cannot compare target version %q", version), err)
	}
	if !required.Check(actual) {
		return faults.NewTypedError(
			faults.ConflictError,
			fmt.Sprintf("target runs BoxBilling %s, which does not satisfy %q", version, constraint),
			nil,
		)
	}
	return nil
}
