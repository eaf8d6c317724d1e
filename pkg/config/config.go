package config

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	CoverFetchEnabled         bool          `koanf:"cover_fetch_enabled"`
	CoverFetchTimeout         time.Duration `koanf:"cover_fetch_timeout"`
	CoverUserAgent            string        `koanf:"cover_user_agent"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	Hostname                  string        `koanf:"-"`
	ImportCoverTimeout        time.Duration `koanf:"import_cover_timeout"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/inkwell.yaml"
)

// New loads configuration from an optional YAML file (CONFIG_FILE, defaulting
// to /config/inkwell.yaml) and then from environment variables, which take
// precedence. SERVER_PORT maps to server_port and so on.
func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := defaultConfig()
	cfg.Hostname = hostname

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "failed to load config file %s", path)
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if cfg.DatabaseFilePath == "" {
		return nil, errors.New("missing required config: DATABASE_FILE_PATH (database_file_path)")
	}

	return cfg, nil
}

// NewForTest returns a config suitable for tests: an in-memory database and no
// outbound cover fetching.
func NewForTest() *Config {
	cfg := defaultConfig()
	cfg.CoverFetchEnabled = false
	cfg.DatabaseFilePath = ":memory:"
	cfg.Hostname = "test"
	cfg.ImportCoverTimeout = 5 * time.Second
	cfg.ServerHost = "127.0.0.1"
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		CoverFetchEnabled:         true,
		CoverFetchTimeout:         20 * time.Second,
		CoverUserAgent:            "inkwell",
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        3,
		ImportCoverTimeout:        2 * time.Minute,
		ServerHost:                "0.0.0.0",
		ServerPort:                3689,
	}
}
