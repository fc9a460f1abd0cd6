package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"

	"github.com/mcvid/mcvid/internal/pkg/api/identityapi"
	"github.com/mcvid/mcvid/internal/pkg/config"
	"github.com/mcvid/mcvid/internal/pkg/env"
	"github.com/mcvid/mcvid/internal/pkg/log"
	"github.com/mcvid/mcvid/internal/pkg/resolver"
	"github.com/mcvid/mcvid/internal/pkg/schedule"
	"github.com/mcvid/mcvid/internal/pkg/store"
	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
)

const pollInterval = 50 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Println(errors.PrefixError(err, "fatal error").Error()) // nolint:forbidigo
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration.
	cwd, err := os.Getwd()
	if err != nil {
		return errors.PrefixError(err, "cannot get working directory")
	}
	envs, err := loadEnvs(cwd)
	if err != nil {
		return errors.PrefixError(err, "cannot load envs")
	}
	cfg, err := config.LoadFrom(ctx, os.Args[1:], envs)
	if errors.Is(err, pflag.ErrHelp) {
		// Stop on --help flag
		return nil
	} else if err != nil {
		return err
	}

	// Create logger.
	logger := log.NewLogger(os.Stderr, cfg.Verbose).AddPrefix("[mcvid]")
	defer func() {
		_ = logger.Sync()
	}()

	// Create resolver.
	r := resolver.NewStopped(ctx, newContainer(cfg, logger), resolver.WithIntegrationCode(cfg.IntegrationCode))
	r.SetErrorListener(func(err error) {
		logger.Warnf("%s", err.Error())
	})
	r.Start()

	// Poll until resolved or deadline.
	deadline := time.After(cfg.Timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if visitorID := r.VisitorID(); visitorID != "" {
			fmt.Println(visitorID) // nolint:forbidigo
			return nil
		}
		select {
		case <-deadline:
			return errors.Errorf(`visitor ID not resolved within "%s"`, cfg.Timeout)
		case <-ticker.C:
			// continue
		}
	}
}

// loadEnvs reads the OS environment and merges the ".env" file from the
// directory, if any. OS values take precedence over the file.
func loadEnvs(dir string) (*env.Map, error) {
	osEnvs, err := env.FromOs()
	if err != nil {
		return nil, err
	}
	return env.LoadDotEnv(osEnvs, dir)
}

// container wires the resolver collaborators from the configuration.
type container struct {
	logger      log.Logger
	scheduler   *schedule.Scheduler
	client      *identityapi.Client
	store       store.Store
	advertising resolver.AdvertisingIDProvider
}

func newContainer(cfg config.Config, logger log.Logger) *container {
	var s store.Store
	if cfg.StorePath != "" {
		s = store.NewFile(cfg.StorePath)
	} else {
		s = store.NewMemory()
	}

	return &container{
		logger: logger,
		scheduler: schedule.NewScheduler(
			clockwork.NewRealClock(),
			logger,
			schedule.WithMaxRetries(cfg.MaxRetries),
			schedule.WithInitialDelay(cfg.InitialDelay),
		),
		client:      identityapi.NewClient(logger, cfg.OrganizationID, cfg.Region, identityapi.WithHost(cfg.Host)),
		store:       s,
		advertising: staticAdvertisingID(cfg.AdvertisingID),
	}
}

func (c *container) Logger() log.Logger {
	return c.logger
}

func (c *container) Scheduler() *schedule.Scheduler {
	return c.scheduler
}

func (c *container) IdentityClient() resolver.Client {
	return c.client
}

func (c *container) Store() store.Store {
	return c.store
}

func (c *container) AdvertisingIDProvider() resolver.AdvertisingIDProvider {
	return c.advertising
}

// staticAdvertisingID provides a fixed advertising ID from the configuration.
type staticAdvertisingID string

func (s staticAdvertisingID) AdvertisingID(ctx context.Context) (string, error) {
	return string(s), nil
}
