package file

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

func expandPlaceholders(node *yaml.Node) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			if err := expandPlaceholders(child); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		// keys are left alone
		for i := 1; i < len(node.Content); i += 2 {
			if err := expandPlaceholders(node.Content[i]); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" || !strings.Contains(node.Value, "${") {
			return nil
		}
		expanded, err := expandEnv(node.Value)
		if err != nil {
			return err
		}
		node.Value = expanded
		node.Style = yaml.DoubleQuotedStyle
	}
	return nil
}

// expandEnv replaces every ${NAME} with the value of NAME. Unset variables
// are an error so a typo never posts an empty field.
func expandEnv(value string) (string, error) {
	var out strings.Builder
	rest := value
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		out.WriteString(rest[:start])

		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("missing closing brace in %q", value)
		}
		name := strings.TrimSpace(rest[start+2 : start+end])
		if name == "" {
			return "", fmt.Errorf("empty variable reference in %q", value)
		}
		envValue, ok := os.LookupEnv(name)
		if !ok {
			return "", fmt.Errorf("environment variable %q is not set", name)
		}
		out.WriteString(envValue)
		rest = rest[start+end+1:]
	}
}
