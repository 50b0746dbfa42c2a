package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crmarques/boxctl/resource"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

const (
	stdinFileIndicator = "-"
	maxInputBytes      = 4 << 20
)

// ResolveData merges the optional data file with key=value arguments;
// arguments win over file keys.
func ResolveData(command *cobra.Command, flags DataFlags, assignments []string) (resource.Data, error) {
	data := resource.Data{}
	if flags.File != "" {
		fileData, err := readDataFile(command, flags)
		if err != nil {
			return nil, err
		}
		data = fileData
	}

	for _, assignment := range assignments {
		if err := ApplyAssignment(data, assignment); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// ApplyAssignment sets one key=value pair on target. Keys may address nested
// maps with dots or brackets (a.b or a[b]). With key:=value the value is
// parsed as JSON instead of kept as a string.
func ApplyAssignment(target resource.Data, assignment string) error {
	key, value, found := strings.Cut(assignment, "=")
	if !found {
		return ValidationError(fmt.Sprintf("invalid assignment %q: expected key=value", assignment), nil)
	}

	var parsed any = value
	if strings.HasSuffix(key, ":") {
		key = strings.TrimSuffix(key, ":")
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return ValidationError(fmt.Sprintf("invalid json value for %q", key), err)
		}
	}

	segments, err := assignmentPath(key)
	if err != nil {
		return err
	}
	return setNested(target, segments, parsed)
}

func assignmentPath(key string) ([]string, error) {
	normalized := strings.NewReplacer("[", ".", "]", "").Replace(strings.TrimSpace(key))
	if normalized == "" {
		return nil, ValidationError("invalid assignment: key must not be empty", nil)
	}

	segments := strings.Split(normalized, ".")
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return nil, ValidationError(fmt.Sprintf("invalid assignment key %q: empty path segment", key), nil)
		}
	}
	return segments, nil
}

func setNested(target map[string]any, segments []string, value any) error {
	current := target
	for _, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if !exists {
			child := map[string]any{}
			current[segment] = child
			current = child
			continue
		}

		child, ok := next.(map[string]any)
		if !ok {
			return ValidationError(fmt.Sprintf("invalid assignment: %q is already a scalar value", segment), nil)
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
	return nil
}

func readDataFile(command *cobra.Command, flags DataFlags) (resource.Data, error) {
	var reader io.Reader
	if flags.File == stdinFileIndicator {
		reader = command.InOrStdin()
	} else {
		file, err := os.Open(flags.File)
		if err != nil {
			return nil, ValidationError(fmt.Sprintf("cannot open data file %s", flags.File), err)
		}
		defer file.Close()
		reader = file
	}

	raw, err := readAllWithLimit(reader, maxInputBytes)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ValidationError("data input is empty", nil)
	}

	data := resource.Data{}
	switch flags.Format {
	case OutputJSON:
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		if err := decoder.Decode(&data); err != nil {
			return nil, ValidationError("invalid json data", err)
		}
	case "", OutputYAML:
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, ValidationError("invalid yaml data", err)
		}
	default:
		return nil, ValidationError("invalid data format: use json or yaml", nil)
	}
	return data, nil
}

func readAllWithLimit(reader io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ValidationError("input exceeds maximum supported size", errors.New("input too large"))
	}
	return data, nil
}
