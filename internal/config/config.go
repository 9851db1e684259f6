package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk config.toml shared by the daemon and the CLI.
type Config struct {
	// Instance names this daemon in logs and the lock file.
	Instance string `toml:"instance"`
	// ListenAddr is the REST listen address for placetted.
	ListenAddr string `toml:"listen_addr"`
	// DBPath overrides the default <data dir>/placette.db.
	DBPath string `toml:"db_path"`

	Client ClientConfig `toml:"client"`
}

// ClientConfig configures the CLI / messaging-core side.
type ClientConfig struct {
	// BaseURL of the backend, e.g. http://127.0.0.1:8418.
	BaseURL string `toml:"base_url"`
	// Token is the opaque bearer credential issued by the auth collaborator.
	Token string `toml:"token"`
	// RequestTimeout bounds every REST call. Zero means 10s.
	RequestTimeout duration `toml:"request_timeout"`
}

// duration makes time.Duration round-trip as a TOML string ("10s").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

const (
	DefaultInstance   = "main"
	DefaultListenAddr = "127.0.0.1:8418"
	DefaultTimeout    = 10 * time.Second
)

// Default returns a config with every field populated.
func Default() *Config {
	return &Config{
		Instance:   DefaultInstance,
		ListenAddr: DefaultListenAddr,
		Client: ClientConfig{
			BaseURL:        "http://" + DefaultListenAddr,
			RequestTimeout: duration{DefaultTimeout},
		},
	}
}

// Load reads config from path. A missing file is not an error: defaults are
// returned so a fresh install works without any setup.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes config to path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Timeout returns the configured request timeout or the default.
func (c *ClientConfig) Timeout() time.Duration {
	if c.RequestTimeout.Duration <= 0 {
		return DefaultTimeout
	}
	return c.RequestTimeout.Duration
}

func (c *Config) applyDefaults() {
	if c.Instance == "" {
		c.Instance = DefaultInstance
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://" + c.ListenAddr
	}
}
