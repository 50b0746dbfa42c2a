package core

import (
	"errors"

	"github.com/crmarques/boxctl/config"
	configfile "github.com/crmarques/boxctl/internal/providers/config/file"
)

// NewBoxctlContext loads configuration and builds the controller graph.
func NewBoxctlContext(opts BootstrapConfig) (BoxctlContext, error) {
	cfg, path, err := configfile.Load(opts.ConfigPath)
	if err != nil {
		return BoxctlContext{}, err
	}

	boxctlContext, err := Build(cfg, opts)
	if err != nil {
		return BoxctlContext{}, err
	}
	boxctlContext.ConfigPath = path
	return boxctlContext, nil
}

// LoadConfig resolves configuration without building providers.
func LoadConfig(opts BootstrapConfig) (config.Config, string, error) {
	return configfile.Load(opts.ConfigPath)
}

// DecodeManifest parses manifest YAML with environment placeholders resolved.
func DecodeManifest(data []byte) (config.Manifest, error) {
	return configfile.DecodeManifest(data)
}

// Close releases provider resources such as database handles.
func (c BoxctlContext) Close() error {
	var errs []error
	for idx := len(c.closers) - 1; idx >= 0; idx-- {
		if err := c.closers[idx].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
