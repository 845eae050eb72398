package strategy

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
)

// maxWorkers bounds the per-ticker fan-out. Evaluations are independent and
// CPU-light, so a small pool is plenty.
const maxWorkers = 8

// Engine runs one daily batch: the regime decision is computed once by the
// caller, then eligibility and trigger detection run per ticker. The engine
// holds no state between runs.
type Engine struct {
	cfg *config.Config
}

// NewEngine creates an Engine bound to an immutable configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

type tickerOutcome struct {
	eligibility model.EligibilityResult
	events      []model.TriggerEvent
	skipped     string
}

// EvaluateUniverse evaluates every supplied stock against the filters and
// triggers under the given regime. Tickers with malformed series are skipped
// and reported, not fatal for the batch. Output ordering is deterministic.
func (e *Engine) EvaluateUniverse(regime model.RegimeResult, stocks []model.PriceSeries, asOf time.Time) *model.RunReport {
	report := &model.RunReport{AsOf: asOf, Regime: regime}

	outcomes := make([]tickerOutcome, len(stocks))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup
	for i := range stocks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = e.evaluateTicker(stocks[i], asOf, regime)
		}(i)
	}
	wg.Wait()

	for _, out := range outcomes {
		if out.skipped != "" {
			report.Skipped = append(report.Skipped, out.skipped)
			continue
		}
		report.Eligibility = append(report.Eligibility, out.eligibility)
		report.Events = append(report.Events, out.events...)
	}

	sort.Slice(report.Eligibility, func(i, j int) bool {
		return report.Eligibility[i].Ticker < report.Eligibility[j].Ticker
	})
	sort.Slice(report.Events, func(i, j int) bool {
		if report.Events[i].Ticker != report.Events[j].Ticker {
			return report.Events[i].Ticker < report.Events[j].Ticker
		}
		return report.Events[i].Kind < report.Events[j].Kind
	})
	sort.Strings(report.Skipped)
	return report
}

func (e *Engine) evaluateTicker(stock model.PriceSeries, asOf time.Time, regime model.RegimeResult) tickerOutcome {
	elig, err := EvaluateEligibility(stock, asOf, e.cfg.Filters)
	if err != nil {
		log.Warn().Str("ticker", stock.Ticker).Err(err).Msg("skipping ticker")
		return tickerOutcome{skipped: fmt.Sprintf("%s: %v", stock.Ticker, err)}
	}
	out := tickerOutcome{eligibility: elig}
	if !elig.Passed {
		return out
	}

	events, err := DetectTriggers(stock, asOf, regime, e.cfg)
	if err != nil {
		log.Warn().Str("ticker", stock.Ticker).Err(err).Msg("trigger detection failed")
		return tickerOutcome{skipped: fmt.Sprintf("%s: %v", stock.Ticker, err)}
	}
	out.events = events
	return out
}
