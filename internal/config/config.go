// Package config loads the application configuration from defaults, an
// optional YAML file and FAIRSHARE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "FAIRSHARE_"

type Application struct {
	Server   Server   `koanf:"server"`
	Database Database `koanf:"db"`
	Log      Log      `koanf:"log"`
	Session  Session  `koanf:"session"`
	Metrics  Metrics  `koanf:"metrics"`
}

type Server struct {
	Port int `koanf:"port"`
}

type Database struct {
	Path string `koanf:"path"`
}

type Log struct {
	Level string `koanf:"level"`
}

// Session holds the defaults applied to newly created bill sessions.
type Session struct {
	DefaultPeople    int    `koanf:"defaultpeople"`
	FirstPersonName  string `koanf:"firstpersonname"`
	PersonNamePrefix string `koanf:"personnameprefix"`

	// IdleTimeout is how long an unused session stays in memory.
	IdleTimeout time.Duration `koanf:"idletimeout"`
}

type Metrics struct {
	Enabled bool `koanf:"enabled"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Application {
	return Application{
		Server:   Server{Port: 8080},
		Database: Database{Path: "./data/fairshare.db"},
		Log:      Log{Level: "info"},
		Session: Session{
			DefaultPeople:    2,
			FirstPersonName:  "Eu",
			PersonNamePrefix: "Pessoa",
			IdleTimeout:      30 * time.Minute,
		},
		Metrics: Metrics{Enabled: true},
	}
}

// Load reads the configuration. A missing file at path is not an error.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return Application{}, fmt.Errorf("error loading config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Application{}, fmt.Errorf("error loading config from YAML: %w", err)
			}
			slog.Info("Config file not found, using defaults and environment variables", "path", path)
		} else {
			slog.Info("Loaded configuration from file", "path", path)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		return Application{}, fmt.Errorf("error loading config from envs: %w", err)
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := app.Validate(); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Validate checks values that would otherwise fail at startup.
func (a Application) Validate() error {
	if a.Server.Port <= 0 || a.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", a.Server.Port)
	}
	if a.Database.Path == "" {
		return errors.New("db.path is required")
	}
	if a.Session.DefaultPeople < 0 {
		return fmt.Errorf("invalid session.defaultpeople %d", a.Session.DefaultPeople)
	}
	if a.Session.IdleTimeout <= 0 {
		return fmt.Errorf("invalid session.idletimeout %s", a.Session.IdleTimeout)
	}
	return nil
}
