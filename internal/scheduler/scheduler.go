package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/strategy"
)

// historyDays is how many daily bars to request per symbol. The trend
// scorer needs 200 plus a trailing stability window, with slack for
// holidays.
const historyDays = 320

// Scheduler runs the daily scan on a cron schedule.
type Scheduler struct {
	cfg       *config.Config
	collector *collector.Collector
	engine    *strategy.Engine
	notifier  *notifier.Notifier
	recorder  recorder.Recorder
	cron      *cron.Cron
	location  *time.Location
}

func New(cfg *config.Config, coll *collector.Collector, notif *notifier.Notifier, rec recorder.Recorder) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.App.Timezone, err)
	}
	s := &Scheduler{
		cfg:       cfg,
		collector: coll,
		engine:    strategy.NewEngine(cfg),
		notifier:  notif,
		recorder:  rec,
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		location:  loc,
	}
	if _, err := s.cron.AddFunc(cfg.Schedule.DailyCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Minute)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("daily scan failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("register cron %q: %w", cfg.Schedule.DailyCron, err)
	}
	return s, nil
}

// Start launches the cron loop. Non-blocking.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Str("cron", s.cfg.Schedule.DailyCron).Str("tz", s.cfg.App.Timezone).
		Msg("scheduler started")
}

// Stop halts the cron loop and waits for any running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}

// RunOnce executes one full daily scan: regime classification, per-stock
// evaluation, notification and persistence.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	asOf := time.Now().In(s.location)
	log.Info().Str("as_of", asOf.Format("2006-01-02")).Msg("daily scan starting")

	conditions, err := s.collector.FetchConditions(ctx)
	if err != nil {
		s.notifyError(ctx, fmt.Sprintf("conditions fetch failed: %v", err))
		return fmt.Errorf("fetch conditions: %w", err)
	}

	index, err := s.collector.FetchDaily(ctx, s.cfg.IndexSymbol, historyDays)
	if err != nil {
		s.notifyError(ctx, fmt.Sprintf("index fetch failed for %s: %v", s.cfg.IndexSymbol, err))
		return fmt.Errorf("fetch index %s: %w", s.cfg.IndexSymbol, err)
	}

	regime, err := strategy.ClassifyRegime(conditions, *index, asOf, s.cfg.Regime)
	if err != nil {
		s.notifyError(ctx, fmt.Sprintf("regime classification failed: %v", err))
		return fmt.Errorf("classify regime: %w", err)
	}
	log.Info().Str("state", string(regime.State)).
		Float64("composite", regime.CompositeScore).
		Float64("max_exposure", regime.MaxExposure).
		Msg("regime classified")

	var stocks []model.PriceSeries
	var skipped []string
	for _, symbol := range s.cfg.Symbols {
		series, err := s.collector.FetchDaily(ctx, symbol, historyDays)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("symbol fetch failed, skipping")
			skipped = append(skipped, symbol)
			continue
		}
		stocks = append(stocks, *series)
	}

	report := s.engine.EvaluateUniverse(regime, stocks, asOf)
	report.Skipped = append(report.Skipped, skipped...)
	sort.Strings(report.Skipped)

	msg := notifier.FormatDailyReport(report, s.cfg)
	if err := s.notifier.SendWithRetry(ctx, msg, 3); err != nil {
		log.Error().Err(err).Msg("report delivery failed")
	}

	if err := s.recorder.RecordRun(report); err != nil {
		log.Error().Err(err).Msg("run recording failed")
	}

	log.Info().Int("eligible", len(report.EligibleTickers())).
		Int("triggered", len(report.TriggeredTickers())).
		Int("skipped", len(report.Skipped)).
		Msg("daily scan complete")
	return nil
}

func (s *Scheduler) notifyError(ctx context.Context, detail string) {
	msg := notifier.Message{
		Title: "Stock Alerts: scan error",
		Body:  detail,
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		log.Error().Err(err).Msg("error notification failed")
	}
}
