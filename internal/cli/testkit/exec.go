package testkit

import (
	"bytes"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

var executeCommandForTestMu sync.Mutex

// ExecuteCommandForTest runs command with args and returns stdout and stderr.
// Cobra mutates shared annotation maps while serving help, so runs are
// serialized.
func ExecuteCommandForTest(command *cobra.Command, stdin string, args ...string) (string, string, error) {
	executeCommandForTestMu.Lock()
	defer executeCommandForTestMu.Unlock()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	command.SetOut(stdout)
	command.SetErr(stderr)
	command.SetIn(strings.NewReader(stdin))
	command.SetArgs(args)

	err := command.Execute()
	return stdout.String(), stderr.String(), err
}

// RegisteredPaths lists every user-facing command path below command.
func RegisteredPaths(command *cobra.Command, prefix []string) []string {
	paths := make([]string, 0)
	for _, child := range command.Commands() {
		name := child.Name()
		if name == "help" || strings.HasPrefix(name, "__") {
			continue
		}
		current := append(append([]string{}, prefix...), name)
		paths = append(paths, strings.Join(current, " "))
		paths = append(paths, RegisteredPaths(child, current)...)
	}
	return paths
}
