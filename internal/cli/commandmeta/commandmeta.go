package commandmeta

import "strings"

type OutputPolicy uint8

const (
	OutputPolicyStructured OutputPolicy = iota
	OutputPolicyTextOnly
	OutputPolicyYAMLDefaultTextOrYAML
)

// EmitsExecutionStatusPath lists commands that may change remote or
// credential state and therefore end with an [OK]/[ERROR] status line.
func EmitsExecutionStatusPath(path string) bool {
	switch strings.TrimSpace(path) {
	case "boxctl apply",
		"boxctl ensure present",
		"boxctl ensure absent",
		"boxctl request",
		"boxctl token generate",
		"boxctl token set":
		return true
	default:
		return false
	}
}

func OutputPolicyForPath(path string) OutputPolicy {
	switch strings.TrimSpace(path) {
	case "boxctl config show":
		return OutputPolicyYAMLDefaultTextOrYAML
	case "boxctl endpoint",
		"boxctl token show":
		return OutputPolicyTextOnly
	default:
		return OutputPolicyStructured
	}
}
