package config

const (
	ConfigFileEnvVar  = "BOXCTL_CONFIG"
	DefaultConfigPath = "~/.boxctl/config.yaml"
	DefaultAPIUser    = "admin"

	SQLDriverMySQL  = "mysql"
	SQLDriverSQLite = "sqlite3"

	DefaultTokenTable  = "admin"
	DefaultTokenColumn = "api_token"
	DefaultTokenRole   = "admin"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type Config struct {
	Target      Target                       `koanf:"target" yaml:"target"`
	Credentials Credentials                  `koanf:"credentials" yaml:"credentials"`
	Actions     map[string]map[string]string `koanf:"actions" yaml:"actions,omitempty"`
	Filter      Filter                       `koanf:"filter" yaml:"filter,omitempty"`
	Logging     Logging                      `koanf:"logging" yaml:"logging,omitempty"`
}

type Target struct {
	BaseURL string `koanf:"base-url" yaml:"base-url" validate:"required,http_url"`
	// Referer defaults to BaseURL; BoxBilling rejects admin calls without it.
	Referer           string  `koanf:"referer" yaml:"referer,omitempty" validate:"omitempty,http_url"`
	APIUser           string  `koanf:"api-user" yaml:"api-user,omitempty"`
	SEFURLs           bool    `koanf:"sef-urls" yaml:"sef-urls"`
	RequestsPerSecond float64 `koanf:"requests-per-second" yaml:"requests-per-second,omitempty" validate:"gte=0"`
	MinVersion        string  `koanf:"min-version" yaml:"min-version,omitempty"`
	TLS               *TLS    `koanf:"tls" yaml:"tls,omitempty"`
}

func (t Target) EffectiveReferer() string {
	if t.Referer != "" {
		return t.Referer
	}
	return t.BaseURL
}

func (t Target) EffectiveAPIUser() string {
	if t.APIUser != "" {
		return t.APIUser
	}
	return DefaultAPIUser
}

type TLS struct {
	CACertFile         string `koanf:"ca-cert-file" yaml:"ca-cert-file,omitempty"`
	ClientCertFile     string `koanf:"client-cert-file" yaml:"client-cert-file,omitempty"`
	ClientKeyFile      string `koanf:"client-key-file" yaml:"client-key-file,omitempty"`
	InsecureSkipVerify bool   `koanf:"insecure-skip-verify" yaml:"insecure-skip-verify,omitempty"`
}

// Credentials selects where the admin API token lives. Exactly one source must be set.
type Credentials struct {
	Token string               `koanf:"token" yaml:"token,omitempty"`
	SQL   *SQLCredentialStore  `koanf:"sql" yaml:"sql,omitempty"`
	File  *FileCredentialStore `koanf:"file" yaml:"file,omitempty"`
}

type SQLCredentialStore struct {
	Driver string `koanf:"driver" yaml:"driver" validate:"required,oneof=mysql sqlite3"`
	DSN    string `koanf:"dsn" yaml:"dsn" validate:"required"`
	Table  string `koanf:"table" yaml:"table,omitempty"`
	Column string `koanf:"column" yaml:"column,omitempty"`
	Role   string `koanf:"role" yaml:"role,omitempty"`
}

type FileCredentialStore struct {
	Path           string `koanf:"path" yaml:"path" validate:"required"`
	Key            string `koanf:"key" yaml:"key,omitempty"`
	KeyFile        string `koanf:"key-file" yaml:"key-file,omitempty"`
	Passphrase     string `koanf:"passphrase" yaml:"passphrase,omitempty"`
	PassphraseFile string `koanf:"passphrase-file" yaml:"passphrase-file,omitempty"`
	KDF            *KDF   `koanf:"kdf" yaml:"kdf,omitempty"`
}

type KDF struct {
	Time    int `koanf:"time" yaml:"time,omitempty" validate:"gte=0"`
	Memory  int `koanf:"memory" yaml:"memory,omitempty" validate:"gte=0"`
	Threads int `koanf:"threads" yaml:"threads,omitempty" validate:"gte=0"`
}

type Filter struct {
	IdentityKeys  []string `koanf:"identity-keys" yaml:"identity-keys,omitempty"`
	GeneratedKeys []string `koanf:"generated-keys" yaml:"generated-keys,omitempty"`
}

type Logging struct {
	Level  string `koanf:"level" yaml:"level,omitempty" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `koanf:"format" yaml:"format,omitempty" validate:"omitempty,oneof=console json"`
}
