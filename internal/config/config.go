// Package config provides Viper-based configuration loading for Cat Quest.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Database drivers understood by the storage factory.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	// HTTPHost is the bind address for the HTTP API.
	HTTPHost string `mapstructure:"http_host"`
	// HTTPPort is the TCP port for the HTTP API.
	HTTPPort int `mapstructure:"http_port"`
	// Debug switches gin into debug mode.
	Debug bool `mapstructure:"debug"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.HTTPHost, s.HTTPPort)
}

// DatabaseConfig selects and configures the relational store.
type DatabaseConfig struct {
	// Driver is "sqlite" (embedded, default) or "postgres".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`

	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File, when non-empty, additionally writes JSON logs to a rotated file.
	File           string `mapstructure:"file"`
	FileMaxSizeMB  int    `mapstructure:"file_max_size_mb"`
	FileMaxBackups int    `mapstructure:"file_max_backups"`
	FileMaxAgeDays int    `mapstructure:"file_max_age_days"`
}

// ContentConfig points at the static definition files.
type ContentConfig struct {
	Breeds   string `mapstructure:"breeds"`
	Dungeons string `mapstructure:"dungeons"`
	Monsters string `mapstructure:"monsters"`
}

// GameConfig holds combat and progression tuning.
type GameConfig struct {
	// FleeChancePercent is the chance a flee attempt succeeds.
	FleeChancePercent int `mapstructure:"flee_chance_percent"`
	// DefendMitigates subtracts player defense from the next enemy attack after Defend.
	DefendMitigates bool `mapstructure:"defend_mitigates"`
	// EnemyTurnDelay resolves the enemy turn automatically after this delay; 0 means manual.
	EnemyTurnDelay time.Duration `mapstructure:"enemy_turn_delay"`
	// DefaultPlayerName is the name of the record created on first run.
	DefaultPlayerName string `mapstructure:"default_player_name"`
	// ExperienceTable lists cumulative experience per level, starting at level 1.
	// Empty uses the built-in table.
	ExperienceTable []int `mapstructure:"experience_table"`
	// Language is the battle log language, "en" or "ja". Empty means "en".
	Language string `mapstructure:"language"`
}

// NotifyConfig configures cross-process user change fan-out.
type NotifyConfig struct {
	// RedisAddr enables Redis pub/sub when non-empty.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisChannel  string `mapstructure:"redis_channel"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Content  ContentConfig  `mapstructure:"content"`
	Game     GameConfig     `mapstructure:"game"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be 1-65535, got %d", s.HTTPPort)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	switch d.Driver {
	case DriverSQLite:
		if d.SQLitePath == "" {
			return errors.New("database.sqlite_path must not be empty")
		}
		return nil
	case DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be one of [sqlite, postgres], got %q", d.Driver)
	}

	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.File != "" && l.FileMaxSizeMB < 1 {
		return fmt.Errorf("logging.file_max_size_mb must be >= 1 when logging.file is set, got %d", l.FileMaxSizeMB)
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.FleeChancePercent < 0 || g.FleeChancePercent > 100 {
		errs = append(errs, fmt.Sprintf("game.flee_chance_percent must be 0-100, got %d", g.FleeChancePercent))
	}
	if g.EnemyTurnDelay < 0 {
		errs = append(errs, "game.enemy_turn_delay must not be negative")
	}
	for i := 1; i < len(g.ExperienceTable); i++ {
		if g.ExperienceTable[i] <= g.ExperienceTable[i-1] {
			errs = append(errs, fmt.Sprintf("game.experience_table must be strictly increasing (level %d)", i+1))
			break
		}
	}
	if len(g.ExperienceTable) > 0 && g.ExperienceTable[0] != 0 {
		errs = append(errs, "game.experience_table must start with 0 for level 1")
	}
	if strings.TrimSpace(g.DefaultPlayerName) == "" {
		errs = append(errs, "game.default_player_name must not be empty")
	}
	switch g.Language {
	case "", "en", "ja":
	default:
		errs = append(errs, fmt.Sprintf("game.language must be one of [en, ja], got %q", g.Language))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults plus environment.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with CATQUEST_ prefix
	v.SetEnvPrefix("CATQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Config populated only from built-in defaults.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_host", "127.0.0.1")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.debug", false)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.sqlite_path", "data/catquest.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "catquest")
	v.SetDefault("database.password", "catquest")
	v.SetDefault("database.name", "catquest")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.file_max_size_mb", 10)
	v.SetDefault("logging.file_max_backups", 3)
	v.SetDefault("logging.file_max_age_days", 28)

	v.SetDefault("content.breeds", "content/breeds.json")
	v.SetDefault("content.dungeons", "content/dungeons.yaml")
	v.SetDefault("content.monsters", "content/monsters.json")

	v.SetDefault("game.flee_chance_percent", 50)
	v.SetDefault("game.defend_mitigates", false)
	v.SetDefault("game.enemy_turn_delay", "0s")
	v.SetDefault("game.default_player_name", "プレイヤー")
	v.SetDefault("game.language", "en")

	v.SetDefault("notify.redis_addr", "")
	v.SetDefault("notify.redis_db", 0)
	v.SetDefault("notify.redis_channel", "catquest:user")
}
