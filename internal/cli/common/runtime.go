package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/credentials"
	"github.com/crmarques/boxctl/faults"
	"github.com/crmarques/boxctl/logging"
	"github.com/crmarques/boxctl/metrics"
	"github.com/crmarques/boxctl/reconciler"
	"github.com/crmarques/boxctl/resource"
	"github.com/crmarques/boxctl/server"
	"github.com/spf13/cobra"
)

type Controller interface {
	reconciler.Reconciler
	reconciler.ManifestApplier
}

// Session is the dependency graph built from configuration for one run.
type Session struct {
	Config      config.Config
	ConfigPath  string
	Controller  Controller
	Normalizer  resource.Normalizer
	Credentials credentials.Store
	Tokens      credentials.Provider
	Versions    server.VersionReader
	Metrics     *metrics.Recorder
	Close       func() error
}

type BootstrapOptions struct {
	ConfigPath string
	Metrics    bool
}

type Bootstrapper func(BootstrapOptions) (Session, error)

type ConfigLoader func(path string) (config.Config, string, error)

type ManifestDecoder func(data []byte) (config.Manifest, error)

type Dependencies struct {
	Bootstrap      Bootstrapper
	LoadConfig     ConfigLoader
	DecodeManifest ManifestDecoder
}

// Runtime carries global flags and builds the session on first use, so
// commands that never talk to BoxBilling never touch configuration.
type Runtime struct {
	Flags GlobalFlags

	deps    Dependencies
	session *Session
}

func NewRuntime(deps Dependencies) *Runtime {
	return &Runtime{deps: deps}
}

// Session builds the session on first use. Logging is reconfigured from the
// loaded configuration unless flags already pinned it, so later calls to
// command.Context() carry the final logger.
func (r *Runtime) Session(command *cobra.Command) (Session, error) {
	if r.session != nil {
		return *r.session, nil
	}
	if r.deps.Bootstrap == nil {
		return Session{}, ValidationError("boxctl is not configured", nil)
	}

	session, err := r.deps.Bootstrap(BootstrapOptions{
		ConfigPath: r.Flags.ConfigPath,
		Metrics:    r.Flags.MetricsFile != "",
	})
	if err != nil {
		return Session{}, err
	}
	if session.Controller == nil {
		return Session{}, faults.NewTypedError(faults.InternalError, "bootstrap returned no controller", nil)
	}

	r.session = &session
	if err := r.InitLogging(command, session.Config.Logging); err != nil {
		return Session{}, err
	}
	logging.FromContext(command.Context()).V(1).Info(
		"session ready",
		"config", session.ConfigPath,
		"baseURL", session.Config.Target.BaseURL,
	)
	return session, nil
}

// InitLogging installs a logger on the command context. Flags win over the
// configured settings. The run id survives reinitialisation.
func (r *Runtime) InitLogging(command *cobra.Command, configured config.Logging) error {
	output := command.ErrOrStderr()
	logger, err := logging.New(logging.Options{
		Level:   firstNonEmpty(r.Flags.LogLevel, configured.Level),
		Format:  firstNonEmpty(r.Flags.LogFormat, configured.Format),
		Debug:   r.Flags.Debug,
		NoColor: !SupportsColor(output, r.Flags.NoColor),
		Output:  output,
	})
	if err != nil {
		return err
	}

	ctx := command.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runID := logging.RunID(ctx)
	if runID == "" {
		runID = logging.NewRunID()
	}
	ctx = logging.IntoContext(ctx, logger.WithName("boxctl"))
	command.SetContext(logging.WithRunID(ctx, runID))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// Config returns the session configuration when one exists and otherwise
// loads configuration without building providers.
func (r *Runtime) Config() (config.Config, string, error) {
	if r.session != nil {
		return r.session.Config, r.session.ConfigPath, nil
	}
	if r.deps.LoadConfig == nil {
		return config.Config{}, "", ValidationError("boxctl is not configured", nil)
	}
	return r.deps.LoadConfig(r.Flags.ConfigPath)
}

// Manifest reads a manifest from path, or from stdin when path is "-".
func (r *Runtime) Manifest(command *cobra.Command, path string) (config.Manifest, error) {
	if r.deps.DecodeManifest == nil {
		return config.Manifest{}, ValidationError("manifest decoding is not configured", nil)
	}

	var reader io.Reader
	if path == stdinFileIndicator {
		reader = command.InOrStdin()
	} else {
		file, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			return config.Manifest{}, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("manifest %s not found", path), err)
		}
		if err != nil {
			return config.Manifest{}, faults.NewTypedError(faults.InternalError, fmt.Sprintf("failed to open manifest %s", path), err)
		}
		defer file.Close()
		reader = file
	}

	data, err := readAllWithLimit(reader, maxInputBytes)
	if err != nil {
		return config.Manifest{}, err
	}
	return r.deps.DecodeManifest(data)
}

// Finish writes the metrics file, when requested, and releases the session.
// It is safe to call more than once.
func (r *Runtime) Finish() error {
	if r.session == nil {
		return nil
	}
	session := r.session
	r.session = nil

	var errs []error
	if r.Flags.MetricsFile != "" && session.Metrics != nil {
		if err := session.Metrics.WriteTextfile(r.Flags.MetricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	if session.Close != nil {
		if err := session.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
