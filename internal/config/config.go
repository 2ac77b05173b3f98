package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/averyn/modlaunch/internal/game"
	"github.com/averyn/modlaunch/internal/logger"
)

// Config is the top-level TOML structure consumed by the daemon and CLI.
//
//	env = ["WINEDLLOVERRIDES=winhttp=n,b"]
//	stop_wait = "5s"
//
//	[log]
//	dir = "/var/log/modlaunch"
//
//	[server]
//	listen = "127.0.0.1:8900"
//	base_path = "/api"
//
//	[metrics]
//	enabled = true
//	listen = "127.0.0.1:9090"
//
//	[history]
//	dsn = "sqlite:///var/lib/modlaunch/history.db"
//
//	[[installations]]
//	name = "valheim"
//	root = "/games/valheim"
//	executable = "valheim.exe"
//
//	[[profiles]]
//	name = "servers"
//	members = ["valheim"]
type Config struct {
	Env           []string            `toml:"env" mapstructure:"env"`
	StopWait      time.Duration       `toml:"stop_wait" mapstructure:"stop_wait"`
	Log           logger.Config       `toml:"log" mapstructure:"log"`
	Installations []game.Installation `toml:"installations" mapstructure:"installations"`
	Profiles      []Profile           `toml:"profiles" mapstructure:"profiles"`
	Server        *Server             `toml:"server" mapstructure:"server"`
	Metrics       *Metrics            `toml:"metrics" mapstructure:"metrics"`
	History       *History            `toml:"history" mapstructure:"history"`
}

// Profile names a set of installations launched and stopped as a unit.
type Profile struct {
	Name    string   `toml:"name" mapstructure:"name"`
	Mode    string   `toml:"mode" mapstructure:"mode"`
	Members []string `toml:"members" mapstructure:"members"`
}

// Server configures the REST control API.
type Server struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

// History configures the launch journal sink.
type History struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// Load reads and validates a TOML config file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Installations))
	for _, inst := range c.Installations {
		if inst.Name == "" {
			return fmt.Errorf("installation for root %q needs a name", inst.Root)
		}
		if seen[inst.Name] {
			return fmt.Errorf("duplicate installation name %q", inst.Name)
		}
		seen[inst.Name] = true
		if err := inst.Validate(); err != nil {
			return fmt.Errorf("installation %q: %w", inst.Name, err)
		}
	}
	for _, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile needs a name")
		}
		if len(p.Members) == 0 {
			return fmt.Errorf("profile %q has no members", p.Name)
		}
		for _, m := range p.Members {
			if !seen[m] {
				return fmt.Errorf("profile %q references unknown installation %q", p.Name, m)
			}
		}
	}
	return nil
}

// Installation looks up a configured installation by name.
func (c *Config) Installation(name string) (game.Installation, bool) {
	for _, inst := range c.Installations {
		if inst.Name == name {
			return inst, true
		}
	}
	return game.Installation{}, false
}

// ProfileByName looks up a configured profile by name.
func (c *Config) ProfileByName(name string) (Profile, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
