package config

import (
	"time"

	"github.com/spf13/pflag"
)

const (
	flagConfig        = "config"
	flagAPI           = "api"
	flagStorage       = "storage"
	flagCheckInterval = "check-interval"
	flagTimeout       = "timeout"
	flagOnline        = "online-interval"
	flagLogLevel      = "log-level"
	flagMetricsAddr   = "metrics-addr"
)

// RegisterFlags defines the configuration flags on fs, with the built-in
// defaults shown in help output.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringP(flagAPI, "a", d.APIBaseURL, "base URL of the gym API")
	fs.StringP(flagStorage, "s", d.StoragePath, "path of the local session database")
	fs.DurationP(flagCheckInterval, "i", d.ExpiryCheckInterval, "token expiry check interval")
	fs.Duration(flagTimeout, d.RequestTimeout, "per-request timeout")
	fs.Duration(flagOnline, d.OnlineCheckInterval, "server reachability check interval")
	fs.String(flagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.String(flagMetricsAddr, d.MetricsAddr, "serve Prometheus metrics on this address")
}

// Load builds a Config from defaults, the file named by --config and the
// flags of fs that were set explicitly, in that order. fs must have been
// prepared with RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	texts := map[string]*string{
		flagAPI:         &cfg.APIBaseURL,
		flagStorage:     &cfg.StoragePath,
		flagLogLevel:    &cfg.LogLevel,
		flagMetricsAddr: &cfg.MetricsAddr,
	}
	for name, dst := range texts {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	durations := map[string]*time.Duration{
		flagCheckInterval: &cfg.ExpiryCheckInterval,
		flagTimeout:       &cfg.RequestTimeout,
		flagOnline:        &cfg.OnlineCheckInterval,
	}
	for name, dst := range durations {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetDuration(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}
