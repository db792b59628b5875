package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type App struct {
	Addr        string   `mapstructure:"addr"`
	BasePath    string   `mapstructure:"base_path"`
	Development bool     `mapstructure:"development"`
	Board       Board    `mapstructure:"board"`
	Sessions    Sessions `mapstructure:"sessions"`
	Cookies     Cookie   `mapstructure:"cookies"`
	Cors        Cors     `mapstructure:"cors"`
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Sessions struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	Limit         int           `mapstructure:"limit"`
}

type Cookie struct {
	Domain   string `mapstructure:"domain"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"samesite"`
}

var envBindings = map[string]string{
	"addr":                    "APP_ADDR",
	"base_path":               "APP_BASE_PATH",
	"development":             "DEVELOPMENT",
	"board.min_size":          "BOARD_MIN_SIZE",
	"board.max_size":          "BOARD_MAX_SIZE",
	"board.default_size":      "BOARD_DEFAULT_SIZE",
	"board.default_mines":     "BOARD_DEFAULT_MINES",
	"sessions.ttl":            "SESSIONS_TTL",
	"sessions.sweep_interval": "SESSIONS_SWEEP_INTERVAL",
	"sessions.limit":          "SESSIONS_LIMIT",
	"cookies.domain":          "COOKIES_DOMAIN",
	"cookies.secure":          "COOKIES_SECURE",
	"cookies.samesite":        "COOKIES_SAMESITE",
	"cors.allowed_origins":    "CORS_ALLOWED_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	board := DefaultBoard()
	v.SetDefault("addr", ":8080")
	v.SetDefault("base_path", "")
	v.SetDefault("development", false)
	v.SetDefault("board.min_size", board.MinSize)
	v.SetDefault("board.max_size", board.MaxSize)
	v.SetDefault("board.default_size", board.DefaultSize)
	v.SetDefault("board.default_mines", board.DefaultMines)
	v.SetDefault("sessions.ttl", 30*time.Minute)
	v.SetDefault("sessions.sweep_interval", time.Minute)
	v.SetDefault("sessions.limit", 10000)
	v.SetDefault("cookies.domain", "")
	v.SetDefault("cookies.secure", true)
	v.SetDefault("cookies.samesite", "strict")
	v.SetDefault("cors.allowed_origins", []string{})
}

// Load reads defaults, then the optional config file at path (or APP_CONFIG),
// then the environment. A .env file in the working directory is loaded into
// the environment first when present.
func Load(path string) (*App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("unable to bind %s: %w", env, err)
		}
	}

	if path == "" {
		path = os.Getenv("APP_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c App) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if err := c.Board.Validate(); err != nil {
		return fmt.Errorf("invalid board settings: %w", err)
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("sessions.ttl must be positive, got %s", c.Sessions.TTL)
	}
	if c.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("sessions.sweep_interval must be positive, got %s",
			c.Sessions.SweepInterval)
	}
	if c.Sessions.Limit <= 0 {
		return fmt.Errorf("sessions.limit must be positive, got %d", c.Sessions.Limit)
	}
	if _, err := ParseSameSite(c.Cookies.SameSite); err != nil {
		return err
	}
	return nil
}

// Development is read straight from the environment so that it can pick a
// logger before the rest of the configuration is loaded.
func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0" && development != "false"
}
