package core

import (
	"io"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/credentials"
	"github.com/crmarques/boxctl/metrics"
	"github.com/crmarques/boxctl/reconciler"
	"github.com/crmarques/boxctl/resource"
	"github.com/crmarques/boxctl/server"
)

// BoxctlContext is the wired dependency graph for one CLI run.
type BoxctlContext struct {
	Config     config.Config
	ConfigPath string

	Executor    server.Executor
	Versions    server.VersionReader
	Credentials credentials.Store
	Tokens      credentials.Provider
	Normalizer  resource.Normalizer
	Controller  *reconciler.Controller
	Metrics     *metrics.Recorder

	closers []io.Closer
}

type BootstrapConfig struct {
	ConfigPath string
	// Metrics enables the in-process recorder; nil observers are used otherwise.
	Metrics bool
}
