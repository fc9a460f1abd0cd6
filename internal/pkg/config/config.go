// Package config loads the resolver configuration from command line flags
// and environment variables. Flags take precedence over MCVID_* environment
// variables, which take precedence over the defaults.
package config

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/mcvid/mcvid/internal/pkg/api/identityapi"
	"github.com/mcvid/mcvid/internal/pkg/env"
	"github.com/mcvid/mcvid/internal/pkg/resolver"
	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
	"github.com/mcvid/mcvid/internal/pkg/validator"
)

const (
	// ENVPrefix is the namespace of the configuration environment variables.
	ENVPrefix = "MCVID_"
	// DefaultTimeout limits how long the one-shot resolution waits.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the retry ceiling of one resolution cycle.
	DefaultMaxRetries = 5
	// DefaultInitialDelay is the delay before the first re-attempt.
	DefaultInitialDelay = time.Second
)

type Config struct {
	OrganizationID  string        `json:"organizationId" validate:"required"`
	Region          int           `json:"region" validate:"gt=0"`
	Host            string        `json:"host" validate:"required"`
	IntegrationCode string        `json:"integrationCode" validate:"required"`
	AdvertisingID   string        `json:"advertisingId"`
	MaxRetries      uint64        `json:"maxRetries"`
	InitialDelay    time.Duration `json:"initialDelay" validate:"gt=0"`
	StorePath       string        `json:"storePath"`
	Timeout         time.Duration `json:"timeout" validate:"gt=0"`
	Verbose         bool          `json:"verbose"`
}

func Default() Config {
	return Config{
		Host:            identityapi.DefaultHost,
		IntegrationCode: resolver.DefaultIntegrationCode,
		MaxRetries:      DefaultMaxRetries,
		InitialDelay:    DefaultInitialDelay,
		Timeout:         DefaultTimeout,
	}
}

// Flags binds the configuration fields to the FlagSet.
func (c *Config) Flags(fs *pflag.FlagSet) {
	fs.StringVar(&c.OrganizationID, "organization-id", c.OrganizationID, "Adobe Experience Cloud organization ID")
	fs.IntVar(&c.Region, "region", c.Region, "data collection server region")
	fs.StringVar(&c.Host, "host", c.Host, "identity service host")
	fs.StringVar(&c.IntegrationCode, "integration-code", c.IntegrationCode, "data source integration code")
	fs.StringVar(&c.AdvertisingID, "advertising-id", c.AdvertisingID, "device advertising ID to sync, empty = no sync")
	fs.Uint64Var(&c.MaxRetries, "max-retries", c.MaxRetries, "retry ceiling of one resolution cycle")
	fs.DurationVar(&c.InitialDelay, "initial-delay", c.InitialDelay, "delay before the first re-attempt")
	fs.StringVar(&c.StorePath, "store-path", c.StorePath, "path of the visitor ID store file, empty = in-memory only")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "deadline of the one-shot resolution")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "print details")
}

// LoadFrom parses the args and applies the MCVID_* environment fallback.
// The pflag.ErrHelp error is returned unchanged when the help is requested.
func LoadFrom(ctx context.Context, args []string, envs env.Provider) (Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("mcvid", pflag.ContinueOnError)
	cfg.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	// A flag set on the command line wins over the environment
	var envErr error
	fs.VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			return
		}
		envName := ENVPrefix + strings.ToUpper(strings.ReplaceAll(flag.Name, "-", "_"))
		if value, found := envs.Lookup(envName); found {
			if err := fs.Set(flag.Name, value); err != nil && envErr == nil {
				envErr = errors.PrefixErrorf(err, `invalid value of the "%s" environment variable`, envName)
			}
		}
	})
	if envErr != nil {
		return cfg, envErr
	}

	if err := validator.Validate(ctx, cfg); err != nil {
		return cfg, errors.PrefixError(err, "invalid configuration")
	}

	return cfg, nil
}
