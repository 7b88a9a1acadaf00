package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Drag       DragConfig       `mapstructure:"drag"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Export     ExportConfig     `mapstructure:"export"`
	Log        LogConfig        `mapstructure:"log"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Key     string `mapstructure:"key"`
	Path    string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type DragConfig struct {
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type ClassifierConfig struct {
	MaxTags int `mapstructure:"max_tags"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		if _, err := fmt.Sscanf(u.Port(), "%d", &port); err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port %q: %w", u.Port(), err)
		}
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.key", "problem-notes-storage")
	v.SetDefault("storage.path", ".problem-notes")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "problem_notes")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("drag.flush_interval", 16*time.Millisecond)
	v.SetDefault("classifier.max_tags", 5)
	v.SetDefault("export.dir", ".")
	v.SetDefault("log.development", false)
}

// Flags declares the command-line flags LoadConfig understands.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("notes", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "path to a config file (yaml, toml or json)")
	fs.String("backend", "", "storage backend: memory, file, sqlite or postgres")
	fs.String("storage-path", "", "directory (file) or database file (sqlite) for the workspace state")
	return fs
}

// LoadConfig builds the configuration from defaults, the optional file at
// path, NOTES_* environment variables and flags, in increasing priority.
// An empty path skips the file.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("notes")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database_url", "DATABASE_URL"); err != nil {
		return nil, err
	}

	if flags != nil {
		if f := flags.Lookup("backend"); f != nil {
			if err := v.BindPFlag("storage.backend", f); err != nil {
				return nil, err
			}
		}
		if f := flags.Lookup("storage-path"); f != nil {
			if err := v.BindPFlag("storage.path", f); err != nil {
				return nil, err
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if dbURL := v.GetString("database_url"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Drag.FlushInterval < 0 {
		return fmt.Errorf("drag.flush_interval must not be negative")
	}
	return nil
}
