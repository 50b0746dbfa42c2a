package file

import (
	"bytes"
	"errors"
	"io"

	"github.com/crmarques/boxctl/config"
	"go.yaml.in/yaml/v3"
)

// DecodeManifest parses and validates manifest YAML. Unknown fields are
// rejected and ${VAR} references in string values are resolved from the
// environment.
func DecodeManifest(data []byte) (config.Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return config.Manifest{}, validationError("invalid manifest yaml", err)
	}
	if root.Kind == 0 {
		return config.Manifest{}, nil
	}
	if err := expandPlaceholders(&root); err != nil {
		return config.Manifest{}, validationError("invalid manifest placeholder", err)
	}

	resolved, err := yaml.Marshal(&root)
	if err != nil {
		return config.Manifest{}, internalError("failed to re-encode manifest", err)
	}

	var manifest config.Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(resolved))
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifest); err != nil && !errors.Is(err, io.EOF) {
		return config.Manifest{}, validationError("invalid manifest yaml", err)
	}

	if err := validate.Struct(manifest); err != nil {
		return config.Manifest{}, validationError("invalid manifest", describeValidation(err))
	}
	return manifest, nil
}
