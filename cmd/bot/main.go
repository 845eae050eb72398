package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/scheduler"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "trendsentinel",
	Short: "Daily market regime scoring and entry trigger alerts",
	Long: `trendsentinel classifies the broad market regime from a weekly
financial-conditions index and index trend, filters a stock universe for
investable uptrends and reports pullback and breakout entry triggers.`,
	SilenceUsage: true,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan immediately and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, cleanup, err := buildScheduler()
		if err != nil {
			return err
		}
		defer cleanup()
		ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Minute)
		defer cancel()
		return sched.RunOnce(ctx)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the daily scan on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, cleanup, err := buildScheduler()
		if err != nil {
			return err
		}
		defer cleanup()

		sched.Start()
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		sched.Stop()
		return nil
	},
}

func buildScheduler() (*scheduler.Scheduler, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	setupLogging(cfg.App.LogLevel)

	coll, err := collector.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build collector: %w", err)
	}

	var channels []notifier.Channel
	if cfg.Notifications.SlackEnabled {
		channels = append(channels, notifier.NewSlackChannel())
	}
	if cfg.Notifications.PushoverEnabled {
		channels = append(channels, notifier.NewPushoverChannel())
	}
	if cfg.Notifications.EmailEnabled {
		channels = append(channels, notifier.NewEmailChannel())
	}
	notif := notifier.New(channels...)

	var rec recorder.Recorder = recorder.NoopRecorder{}
	if cfg.Database.SQLitePath != "" {
		sqliteRec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Database.SQLitePath).
				Msg("sqlite recorder unavailable, run history disabled")
		} else {
			rec = sqliteRec
		}
	}

	sched, err := scheduler.New(cfg, coll, notif, rec)
	if err != nil {
		rec.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := rec.Close(); err != nil {
			log.Warn().Err(err).Msg("recorder close failed")
		}
	}
	return sched, cleanup, nil
}

func setupLogging(levelStr string) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func main() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "path to config file")
	rootCmd.AddCommand(scanCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}
