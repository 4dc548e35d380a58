package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration. It is loaded once at startup and
// passed explicitly to whatever needs it.
type Config struct {
	Database  Database  `mapstructure:"database"`
	Librarian Librarian `mapstructure:"librarian"`
	Log       Log       `mapstructure:"log"`
}

// Database describes how to reach the relational store.
type Database struct {
	Driver   string `mapstructure:"driver"` // sqlite3 | mysql | postgres | pgx
	Path     string `mapstructure:"path"`   // sqlite3 only
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"` // postgres only
}

// Librarian is the identity of the operator running the console.
type Librarian struct {
	ID   int64  `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type Log struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // text | json
}

// NewLogger builds the diagnostic logger writing to w (stderr in practice,
// so it never interleaves with console output).
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

const envPrefix = "LIBRARY"

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"db-driver": "database.driver",
	"db-path":   "database.path",
	"log-level": "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", "library.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "librarymanagement")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("librarian.id", 1)
	v.SetDefault("librarian.name", "Alice")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from, in increasing precedence: defaults, a
// config file, LIBRARY_* environment variables and changed flags.
//
// When path is empty a config.yaml in . or ./config is used if present;
// a missing file is not an error. An explicit path must exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			return errors.New("config: database.path is required for sqlite3")
		}
	case "mysql", "postgres", "pgx":
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("config: database.host and database.name are required for %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Log.Format)
	}
	return nil
}

// DSN renders the data source name understood by the configured driver.
func (d Database) DSN() string {
	switch d.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = d.User
		mc.Passwd = d.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.portOr(3306)))
		mc.DBName = d.Name
		return mc.FormatDSN()
	case "postgres", "pgx":
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.portOr(5432))),
			Path:   "/" + d.Name,
		}
		if d.User != "" {
			u.User = url.UserPassword(d.User, d.Password)
		}
		if d.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
		}
		return u.String()
	default:
		// No foreign_keys pragma: ledger rows may outlive their book.
		return fmt.Sprintf("file:%s?_busy_timeout=5000", d.Path)
	}
}

func (d Database) portOr(def int) int {
	if d.Port > 0 {
		return d.Port
	}
	return def
}
