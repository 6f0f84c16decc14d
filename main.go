/* main.go
 * The "main" method for running the live tennis notifier. It wires the score sources, the selection policy, the live
 * views and the optional Discord and HTTP hosts
 * Usage: go run . -settings=file -settings-file=./live-tennis.yaml -http=:8080 -once=false
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/homebackend/gnome-live-tennis-sub000/api/api"
	"github.com/homebackend/gnome-live-tennis-sub000/api/config"
	"github.com/homebackend/gnome-live-tennis-sub000/api/external"
	"github.com/homebackend/gnome-live-tennis-sub000/api/liveview"
	"github.com/homebackend/gnome-live-tennis-sub000/api/logger"
	"github.com/homebackend/gnome-live-tennis-sub000/api/runner"
	"github.com/homebackend/gnome-live-tennis-sub000/api/store"
	"github.com/homebackend/gnome-live-tennis-sub000/api/tennis"
	"github.com/homebackend/gnome-live-tennis-sub000/bot"
	"github.com/homebackend/gnome-live-tennis-sub000/web"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(2)
	}
	log := logger.New(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Live tennis stopped with an error")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	once, err := convertStrToBool(cfg.Once)
	if err != nil {
		return fmt.Errorf("invalid -once flag: %w", err)
	}

	settings, closeSettings, err := openSettings(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSettings()

	applied, err := store.ApplyOverrides(ctx, settings, os.Getenv)
	if err != nil {
		return fmt.Errorf("error applying settings overrides: %w", err)
	}
	if len(applied) > 0 {
		log.WithField("keys", applied).Info("Applied settings from the environment")
	}
	if debug, err := settings.GetBoolean(ctx, store.KeyEnableDebugLogging); err == nil && debug {
		log.SetLevel(logrus.DebugLevel)
	}

	engine := tennis.NewLiveTennis(settings, log, tennis.DefaultSources(external.ClientOptions{
		Timeout: cfg.RequestTimeout,
		Limiter: newLimiter(cfg.RequestsPerSecond),
		Logger:  log,
	})...)

	menus := runner.MultiMenu{runner.LogMenu{Log: log}}
	var discord *bot.Bot
	if cfg.DiscordToken != "" {
		discord, err = bot.NewBot(cfg.DiscordToken, cfg.DiscordChannel, log)
		if err != nil {
			return fmt.Errorf("failed to initialize bot: %w", err)
		}
		menus = append(menus, discord)
	}
	r := runner.New(settings, menus, log)

	width, err := settings.GetInt(ctx, store.KeyLiveWindowSizeX)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", store.KeyLiveWindowSizeX, err)
	}
	updater := liveview.New(r, liveview.NewConsoleManager(log, liveview.Columns(width)), engine, settings, log)
	liveAPI := api.NewAPI(r, updater)

	if once {
		status := liveAPI.Refresh(ctx)
		log.WithFields(logrus.Fields{"ok": status.OK, "matches": status.Matches}).Info("Single fetch cycle done")
		return nil
	}

	updater.Start(ctx)
	defer updater.Stop()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.HTTPAddr != "" {
		g.Go(func() error {
			return web.Start(gctx, web.Config{Addr: cfg.HTTPAddr, API: liveAPI, Log: log})
		})
	}
	if discord != nil {
		discord.APIPtr = liveAPI
		g.Go(func() error {
			return discord.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

// openSettings opens the configured settings backend and returns it with its close function
func openSettings(ctx context.Context, cfg *config.Config) (store.Settings, func(), error) {
	switch cfg.SettingsBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.BackendMongo:
		s, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.SettingsProfile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		return s, func() { _ = s.Close(context.Background()) }, nil
	}
	s, err := store.NewFileStore(cfg.SettingsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open settings file: %w", err)
	}
	return s, func() {}, nil
}
