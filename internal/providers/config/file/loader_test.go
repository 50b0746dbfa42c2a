package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/faults"
	"github.com/crmarques/boxctl/resource"
	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func assertCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()

	if !faults.IsCategory(err, category) {
		t.Fatalf("expected %s, got %v", category, err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
target:
  base-url: https://billing.example.com
credentials:
  token: secret-token
`)

	cfg, resolved, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}

	want := config.Target{
		BaseURL: "https://billing.example.com",
		APIUser: config.DefaultAPIUser,
		SEFURLs: true,
	}
	if diff := cmp.Diff(want, cfg.Target); diff != "" {
		t.Fatalf("unexpected target (-want +got):\n%s", diff)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != config.LogFormatConsole {
		t.Fatalf("unexpected logging defaults %#v", cfg.Logging)
	}
	if cfg.Credentials.Token != "secret-token" || cfg.Credentials.SQL != nil || cfg.Credentials.File != nil {
		t.Fatalf("unexpected credentials %#v", cfg.Credentials)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
target:
  base-url: https://billing.example.com
  sef-urls: true
credentials:
  token: from-file
logging:
  level: warn
`)
	t.Setenv("BOXCTL_BASE_URL", "https://other.example.com/")
	t.Setenv("BOXCTL_SEF_URLS", "false")
	t.Setenv("BOXCTL_API_TOKEN", "from-env")
	t.Setenv("BOXCTL_LOG_LEVEL", "debug")
	t.Setenv("BOXCTL_UNRELATED", "ignored")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Target.BaseURL != "https://other.example.com/" {
		t.Fatalf("expected env base-url, got %q", cfg.Target.BaseURL)
	}
	if cfg.Target.SEFURLs {
		t.Fatal("expected BOXCTL_SEF_URLS=false to disable sef urls")
	}
	if cfg.Credentials.Token != "from-env" {
		t.Fatalf("expected env token, got %q", cfg.Credentials.Token)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadWithoutFileUsesEnvironmentOnly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.ConfigFileEnvVar, "")
	t.Setenv("BOXCTL_BASE_URL", "http://127.0.0.1:8080")
	t.Setenv("BOXCTL_DB_DRIVER", "sqlite3")
	t.Setenv("BOXCTL_DB_DSN", "file:boxbilling.db")

	cfg, resolved, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != "" {
		t.Fatalf("expected no config file, got %q", resolved)
	}

	want := &config.SQLCredentialStore{Driver: "sqlite3", DSN: "file:boxbilling.db"}
	if diff := cmp.Diff(want, cfg.Credentials.SQL); diff != "" {
		t.Fatalf("unexpected sql store (-want +got):\n%s", diff)
	}
}

func TestLoadConfigPathFromEnvironment(t *testing.T) {
	path := writeConfig(t, `
target:
  base-url: https://billing.example.com
credentials:
  token: t
`)
	t.Setenv(config.ConfigFileEnvVar, path)

	_, resolved, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected %q, got %q", path, resolved)
	}
}

func TestLoadExplicitMissingFileIsNotFound(t *testing.T) {
	t.Parallel()

	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assertCategory(t, err, faults.NotFoundError)
}

func TestValidateRejectsInvalidConfigurations(t *testing.T) {
	t.Parallel()

	valid := func() config.Config {
		return config.Config{
			Target:      config.Target{BaseURL: "https://billing.example.com"},
			Credentials: config.Credentials{Token: "t"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "missing_base_url", mutate: func(cfg *config.Config) { cfg.Target.BaseURL = "" }},
		{name: "base_url_not_http", mutate: func(cfg *config.Config) { cfg.Target.BaseURL = "billing" }},
		{name: "negative_rate", mutate: func(cfg *config.Config) { cfg.Target.RequestsPerSecond = -1 }},
		{name: "no_credentials", mutate: func(cfg *config.Config) { cfg.Credentials.Token = "" }},
		{name: "two_credential_sources", mutate: func(cfg *config.Config) {
			cfg.Credentials.SQL = &config.SQLCredentialStore{Driver: "sqlite3", DSN: "x.db"}
		}},
		{name: "unknown_sql_driver", mutate: func(cfg *config.Config) {
			cfg.Credentials = config.Credentials{SQL: &config.SQLCredentialStore{Driver: "postgres", DSN: "x"}}
		}},
		{name: "file_store_two_key_sources", mutate: func(cfg *config.Config) {
			cfg.Credentials = config.Credentials{File: &config.FileCredentialStore{
				Path: "token.enc", Key: "k", Passphrase: "p",
			}}
		}},
		{name: "file_store_without_key", mutate: func(cfg *config.Config) {
			cfg.Credentials = config.Credentials{File: &config.FileCredentialStore{Path: "token.enc"}}
		}},
		{name: "bad_min_version", mutate: func(cfg *config.Config) { cfg.Target.MinVersion = "not a version" }},
		{name: "unknown_action", mutate: func(cfg *config.Config) {
			cfg.Actions = map[string]map[string]string{"admin/client": {"prepare": "x"}}
		}},
		{name: "empty_verb", mutate: func(cfg *config.Config) {
			cfg.Actions = map[string]map[string]string{"admin/client": {"create": " "}}
		}},
		{name: "bad_log_level", mutate: func(cfg *config.Config) { cfg.Logging.Level = "verbose" }},
	}

	if err := Validate(valid()); err != nil {
		t.Fatalf("baseline config must validate: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)
			assertCategory(t, Validate(cfg), faults.ValidationError)
		})
	}
}

func TestActionTableMergesConfiguredVerbs(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
target:
  base-url: https://billing.example.com
credentials:
  token: t
actions:
  /admin/servicehosting/hp/:
    create: hp_create
filter:
  identity-keys: [id, sku]
`)

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	table, err := ActionTable(cfg)
	if err != nil {
		t.Fatalf("ActionTable returned error: %v", err)
	}
	normalizer := resource.NewNormalizer(table)
	if got := normalizer.Endpoint("admin/servicehosting/hp", resource.ActionCreate); got != "admin/servicehosting/hp_hp_create" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	if got := normalizer.Endpoint("admin/product", resource.ActionCreate); got != "admin/product/prepare" {
		t.Fatalf("default verbs must survive the merge, got %q", got)
	}

	filter := Filter(cfg)
	if diff := cmp.Diff([]string{"id", "sku"}, filter.IdentityKeys); diff != "" {
		t.Fatalf("unexpected identity keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(resource.DefaultGeneratedKeys, filter.GeneratedKeys); diff != "" {
		t.Fatalf("unexpected generated keys (-want +got):\n%s", diff)
	}
}
