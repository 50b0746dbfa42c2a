package main

import (
	"fmt"
	"os"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/core"
	"github.com/crmarques/boxctl/internal/cli"
)

func main() {
	err := cli.Execute(dependencies())
	if err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}

func dependencies() cli.Dependencies {
	return cli.Dependencies{
		Bootstrap:      bootstrap,
		LoadConfig:     loadConfig,
		DecodeManifest: core.DecodeManifest,
	}
}

func bootstrap(opts cli.BootstrapOptions) (cli.Session, error) {
	boxctlContext, err := core.NewBoxctlContext(core.BootstrapConfig{
		ConfigPath: opts.ConfigPath,
		Metrics:    opts.Metrics,
	})
	if err != nil {
		return cli.Session{}, err
	}
	if boxctlContext.Controller == nil {
		return cli.Session{}, fmt.Errorf("bootstrap produced no controller")
	}

	return cli.Session{
		Config:      boxctlContext.Config,
		ConfigPath:  boxctlContext.ConfigPath,
		Controller:  boxctlContext.Controller,
		Normalizer:  boxctlContext.Normalizer,
		Credentials: boxctlContext.Credentials,
		Tokens:      boxctlContext.Tokens,
		Versions:    boxctlContext.Versions,
		Metrics:     boxctlContext.Metrics,
		Close:       boxctlContext.Close,
	}, nil
}

func loadConfig(path string) (config.Config, string, error) {
	return core.LoadConfig(core.BootstrapConfig{ConfigPath: path})
}
