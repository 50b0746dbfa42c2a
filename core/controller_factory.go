package core

import (
	"io"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/credentials"
	"github.com/crmarques/boxctl/faults"
	configfile "github.com/crmarques/boxctl/internal/providers/config/file"
	filecredentials "github.com/crmarques/boxctl/internal/providers/credentials/file"
	sqlcredentials "github.com/crmarques/boxctl/internal/providers/credentials/sql"
	staticcredentials "github.com/crmarques/boxctl/internal/providers/credentials/static"
	httpserver "github.com/crmarques/boxctl/internal/providers/server/http"
	"github.com/crmarques/boxctl/metrics"
	"github.com/crmarques/boxctl/reconciler"
	"github.com/crmarques/boxctl/resource"
)

// Build wires an already validated configuration into a BoxctlContext.
func Build(cfg config.Config, opts BootstrapConfig) (BoxctlContext, error) {
	actions, err := configfile.ActionTable(cfg)
	if err != nil {
		return BoxctlContext{}, err
	}

	var recorder *metrics.Recorder
	gatewayOptions := []httpserver.GatewayOption{}
	if opts.Metrics {
		recorder = metrics.NewRecorder()
		gatewayOptions = append(gatewayOptions, httpserver.WithCallObserver(recorder))
	}

	gateway, err := httpserver.NewGateway(cfg.Target, gatewayOptions...)
	if err != nil {
		return BoxctlContext{}, err
	}

	store, closer, err := newCredentialStore(cfg.Credentials)
	if err != nil {
		return BoxctlContext{}, err
	}

	tokens := credentials.NewTokenProvider(store)
	normalizer := resource.NewNormalizer(actions)
	controller := &reconciler.Controller{
		Executor:   gateway,
		Tokens:     tokens,
		Normalizer: normalizer,
		Filter:     configfile.Filter(cfg),
	}
	if recorder != nil {
		controller.Observer = recorder
	}

	boxctlContext := BoxctlContext{
		Config:      cfg,
		Executor:    gateway,
		Versions:    gateway,
		Credentials: store,
		Tokens:      tokens,
		Normalizer:  normalizer,
		Controller:  controller,
		Metrics:     recorder,
	}
	if closer != nil {
		boxctlContext.closers = append(boxctlContext.closers, closer)
	}
	return boxctlContext, nil
}

func newCredentialStore(settings config.Credentials) (credentials.Store, io.Closer, error) {
	switch {
	case settings.SQL != nil:
		store, err := sqlcredentials.NewTokenStore(*settings.SQL)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case settings.File != nil:
		store, err := filecredentials.NewTokenStore(*settings.File)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case settings.Token != "":
		return staticcredentials.NewStore(settings.Token), nil, nil
	default:
		return nil, nil, faults.NewTypedError(faults.ValidationError, "no credential store is configured", nil)
	}
}
