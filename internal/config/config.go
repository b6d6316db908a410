// Package config loads showcase settings with Viper: defaults, then
// config.yaml from the config directory, then SHOWCASE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/showcase/internal/paths"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// EnvPrefix prefixes environment overrides: SHOWCASE_REMOTE_URL sets
// remote.url.
const EnvPrefix = "SHOWCASE"

// Storage backends for comment photos.
const (
	StorageRemote = "remote"
	StorageMinIO  = "minio"
)

// Settings validation errors.
var (
	ErrStorageBackendUnknown = errors.New("unknown storage backend")
	ErrInvalidTimeout        = errors.New("remote timeout must not be negative")
	ErrInvalidRate           = errors.New("comment rate must not be negative")
)

// Settings is the full showcase configuration.
type Settings struct {
	Remote   Remote   `mapstructure:"remote" yaml:"remote"`
	Storage  Storage  `mapstructure:"storage" yaml:"storage"`
	MinIO    MinIO    `mapstructure:"minio" yaml:"minio"`
	Snapshot Snapshot `mapstructure:"snapshot" yaml:"snapshot"`
	Log      Log      `mapstructure:"log" yaml:"log"`
	Stats    Stats    `mapstructure:"stats" yaml:"stats"`
	Server   Server   `mapstructure:"server" yaml:"server"`
}

// Remote configures the hosted table and storage service.
type Remote struct {
	URL            string `mapstructure:"url" yaml:"url"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Storage selects where comment photos go.
type Storage struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Bucket  string `mapstructure:"bucket" yaml:"bucket"`
	Prefix  string `mapstructure:"prefix" yaml:"prefix"`
}

// MinIO configures the S3-compatible photo store.
type MinIO struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	PublicURL string `mapstructure:"public_url" yaml:"public_url"`
}

// Snapshot selects the local snapshot store.
type Snapshot struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// Log configures the process logger.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Stats configures the profile summary.
type Stats struct {
	StartYear int `mapstructure:"start_year" yaml:"start_year"`
}

// Server configures the HTTP server.
type Server struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// CommentRate is the sustained comment submissions per minute; 0
	// disables limiting.
	CommentRate  float64 `mapstructure:"comment_rate" yaml:"comment_rate"`
	CommentBurst int     `mapstructure:"comment_burst" yaml:"comment_burst"`
	// TrustedProxies is a comma-separated list of proxy IPs or CIDRs whose
	// X-Forwarded-For header is believed. Empty trusts none.
	TrustedProxies string `mapstructure:"trusted_proxies" yaml:"trusted_proxies"`
}

// Proxies splits TrustedProxies into its entries.
func (s Server) Proxies() []string {
	var out []string
	for _, p := range strings.Split(s.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Remote:   Remote{TimeoutSeconds: 10},
		Storage:  Storage{Backend: StorageRemote, Bucket: "Portfolio", Prefix: "comment-photos"},
		Snapshot: Snapshot{Backend: types.BackendSQLite},
		Log:      Log{Level: "INFO", Format: "text"},
		Stats:    Stats{StartYear: 2022},
		Server:   Server{Addr: ":8080", CommentRate: 6, CommentBurst: 3},
	}
}

// setDefaults registers every key with Viper so environment overrides
// reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("remote.url", d.Remote.URL)
	v.SetDefault("remote.api_key", d.Remote.APIKey)
	v.SetDefault("remote.timeout_seconds", d.Remote.TimeoutSeconds)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.bucket", d.Storage.Bucket)
	v.SetDefault("storage.prefix", d.Storage.Prefix)
	v.SetDefault("minio.endpoint", d.MinIO.Endpoint)
	v.SetDefault("minio.access_key", d.MinIO.AccessKey)
	v.SetDefault("minio.secret_key", d.MinIO.SecretKey)
	v.SetDefault("minio.use_ssl", d.MinIO.UseSSL)
	v.SetDefault("minio.public_url", d.MinIO.PublicURL)
	v.SetDefault("snapshot.backend", d.Snapshot.Backend)
	v.SetDefault("snapshot.data_dir", d.Snapshot.DataDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("stats.start_year", d.Stats.StartYear)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.comment_rate", d.Server.CommentRate)
	v.SetDefault("server.comment_burst", d.Server.CommentBurst)
	v.SetDefault("server.trusted_proxies", d.Server.TrustedProxies)
}

// Load reads config.yaml from configDir, applies SHOWCASE_* overrides and
// validates the result. A missing config.yaml is not an error.
func Load(configDir string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks backend names and numeric ranges.
func (s Settings) Validate() error {
	switch s.Storage.Backend {
	case StorageRemote, StorageMinIO:
	default:
		return fmt.Errorf("%w: %q", ErrStorageBackendUnknown, s.Storage.Backend)
	}
	if err := (types.Config{Backend: s.Snapshot.Backend}).Validate(); err != nil {
		return fmt.Errorf("snapshot backend %q: %w", s.Snapshot.Backend, err)
	}
	if s.Remote.TimeoutSeconds < 0 {
		return ErrInvalidTimeout
	}
	if s.Server.CommentRate < 0 {
		return ErrInvalidRate
	}
	return nil
}

// WriteDefault creates configDir and writes config.yaml with the default
// settings if the file does not exist. It reports whether it wrote the file.
func WriteDefault(configDir string) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := "# Showcase configuration. SHOWCASE_* environment variables override these keys.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return false, err
	}
	return true, nil
}
