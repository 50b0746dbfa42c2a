package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crmarques/boxctl/config"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	kfile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "BOXCTL_"

// envKeys maps BOXCTL_* variables onto configuration paths. Anything not
// listed here is ignored.
var envKeys = map[string]string{
	"BASE_URL":            "target.base-url",
	"REFERER":             "target.referer",
	"API_USER":            "target.api-user",
	"SEF_URLS":            "target.sef-urls",
	"REQUESTS_PER_SECOND": "target.requests-per-second",
	"MIN_VERSION":         "target.min-version",
	"INSECURE_TLS":        "target.tls.insecure-skip-verify",
	"CA_CERT_FILE":        "target.tls.ca-cert-file",
	"API_TOKEN":           "credentials.token",
	"DB_DRIVER":           "credentials.sql.driver",
	"DB_DSN":              "credentials.sql.dsn",
	"DB_TABLE":            "credentials.sql.table",
	"SECRET_FILE":         "credentials.file.path",
	"SECRET_KEY":          "credentials.file.key",
	"SECRET_PASSPHRASE":   "credentials.file.passphrase",
	"LOG_LEVEL":           "logging.level",
	"LOG_FORMAT":          "logging.format",
}

// defaults only carries scalar settings; pointer sections must stay absent
// until a file or the environment provides them.
type defaults struct {
	Target struct {
		APIUser string `koanf:"api-user"`
		SEFURLs bool   `koanf:"sef-urls"`
	} `koanf:"target"`
	Logging config.Logging `koanf:"logging"`
}

func defaultSettings() defaults {
	var d defaults
	d.Target.APIUser = config.DefaultAPIUser
	d.Target.SEFURLs = true
	d.Logging = config.Logging{Level: "info", Format: config.LogFormatConsole}
	return d
}

// Load resolves the configuration file, layers defaults, file and BOXCTL_*
// environment variables, then validates the result. The returned path is
// empty when no file was read.
func Load(explicitPath string) (config.Config, string, error) {
	path, err := resolveConfigPath(explicitPath)
	if err != nil {
		return config.Config{}, "", err
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultSettings(), "koanf"), nil); err != nil {
		return config.Config{}, "", internalError("failed to load configuration defaults", err)
	}

	if path != "" {
		if err := k.Load(kfile.Provider(path), yaml.Parser()); err != nil {
			return config.Config{}, "", validationError(fmt.Sprintf("failed to load configuration file %s", path), err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return config.Config{}, "", internalError("failed to load environment overrides", err)
	}

	var cfg config.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return config.Config{}, "", validationError("invalid configuration", err)
	}

	if err := Validate(cfg); err != nil {
		return config.Config{}, "", err
	}
	return cfg, path, nil
}

func envTransform(key string) string {
	return envKeys[strings.TrimPrefix(key, envPrefix)]
}

// resolveConfigPath picks the explicit path, then $BOXCTL_CONFIG, then the
// default location. Only the default location may be missing.
func resolveConfigPath(explicitPath string) (string, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(config.ConfigFileEnvVar)
	}
	optional := path == ""
	if optional {
		path = config.DefaultConfigPath
	}

	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(expanded)
	switch {
	case err == nil && info.IsDir():
		return "", validationError(fmt.Sprintf("configuration path %s is a directory", expanded), nil)
	case err == nil:
		return expanded, nil
	case errors.Is(err, os.ErrNotExist) && optional:
		return "", nil
	case errors.Is(err, os.ErrNotExist):
		return "", notFoundError(fmt.Sprintf("configuration file %s not found", expanded), err)
	default:
		return "", internalError(fmt.Sprintf("failed to stat configuration file %s", expanded), err)
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", internalError("failed to resolve user home directory", err)
	}
	if path == "~" {
		return homeDir, nil
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~/")), nil
}
