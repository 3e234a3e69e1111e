// Package config resolves the server's settings from command-line flags,
// MINISERVER_* environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Brownie44l1/miniserver/internal/server"
	"github.com/Brownie44l1/miniserver/internal/tlog"
)

// EnvPrefix prefixes environment variables: --read-buffer-size is
// MINISERVER_READ_BUFFER_SIZE.
const EnvPrefix = "MINISERVER"

// Config holds every setting of the binary
type Config struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Backlog        int    `mapstructure:"backlog"`
	ReadBufferSize int    `mapstructure:"read-buffer-size"`
	ReasonPhrases  bool   `mapstructure:"reason-phrases"`
	LogFormat      string `mapstructure:"log-format"`
	LogColor       string `mapstructure:"log-color"`
	Verbose        bool   `mapstructure:"verbose"`
}

// RegisterFlags adds the server's flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("host", server.DefaultEndpoint.Host, "Address to listen on")
	fs.IntP("port", "p", server.DefaultEndpoint.Port, "Port to listen on")
	fs.Int("backlog", server.DefaultBacklog, "Length of the pending connection queue")
	fs.Int("read-buffer-size", server.DefaultReadBufferSize, "Bytes read from a connection at a time")
	fs.Bool("reason-phrases", false, `Write textual reason phrases ("200 OK") in status lines`)
	fs.StringP("config", "c", "", "Config file (yaml, json or toml)")
	fs.String("log-format", string(tlog.FormatText), "Log format (json|text)")
	fs.String("log-color", "auto", "Colored logs (yes|no|auto)")
	fs.BoolP("verbose", "v", false, "Enable verbose (debug level) messages")
}

// Load resolves the configuration. Flags set on the command line win over
// environment variables, which win over the config file, which wins over flag
// defaults.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flag parsing cannot
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Backlog <= 0 {
		errs = append(errs, fmt.Errorf("backlog must be positive, got %d", c.Backlog))
	}
	if c.ReadBufferSize <= 0 {
		errs = append(errs, fmt.Errorf("read buffer size must be positive, got %d", c.ReadBufferSize))
	}
	if _, err := tlog.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := tlog.ParseColor(c.LogColor); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Server returns the server configuration
func (c Config) Server() server.Config {
	cfg := server.DefaultConfig()
	cfg.Endpoint = server.Endpoint{Host: c.Host, Port: c.Port}
	cfg.Backlog = c.Backlog
	cfg.ReadBufferSize = c.ReadBufferSize
	cfg.ReasonPhrases = c.ReasonPhrases
	return cfg
}

// Log returns the logger configuration. Call it on a validated Config.
func (c Config) Log() tlog.Config {
	format, _ := tlog.ParseFormat(c.LogFormat)
	color, _ := tlog.ParseColor(c.LogColor)
	return tlog.Config{
		Format:  format,
		Color:   color,
		Verbose: c.Verbose,
	}
}
