package collector

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
)

// Collector fetches daily bars through a primary/fallback provider chain
// and the weekly conditions series. It wraps every provider call with a
// token-bucket throttle, retry with exponential backoff, a per-provider
// circuit breaker and a TTL file cache.
type Collector struct {
	primary    Fetcher
	fallback   Fetcher
	conditions *ConditionsFetcher
	cache      *FileCache
	limiter    *rate.Limiter
	breakers   map[string]*gobreaker.CircuitBreaker
	retry      retryPolicy
}

type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// New builds a Collector from configuration. Provider names other than
// "twelvedata" and "alphavantage" are rejected.
func New(cfg *config.Config) (*Collector, error) {
	primary, err := fetcherByName(cfg.Data.ProviderPrimary, cfg)
	if err != nil {
		return nil, err
	}
	var fallback Fetcher
	if cfg.Data.ProviderFallback != "" && cfg.Data.ProviderFallback != cfg.Data.ProviderPrimary {
		if fallback, err = fetcherByName(cfg.Data.ProviderFallback, cfg); err != nil {
			return nil, err
		}
	}

	c := &Collector{
		primary:    primary,
		fallback:   fallback,
		conditions: NewConditionsFetcher(cfg.Data.Conditions.FredURL, cfg.Data.Conditions.ChicagoURL),
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
		retry: retryPolicy{
			maxAttempts: cfg.Data.Retry.MaxAttempts,
			baseDelay:   time.Duration(cfg.Data.Retry.BaseDelaySeconds * float64(time.Second)),
			maxDelay:    time.Duration(cfg.Data.Retry.MaxDelaySeconds * float64(time.Second)),
		},
	}
	if cfg.Data.Cache.Enabled {
		c.cache = NewFileCache(cfg.Data.Cache.Dir, time.Duration(cfg.Data.Cache.TTLSeconds)*time.Second)
	}
	if cfg.Data.RateLimit.Enabled {
		rps := cfg.Data.RateLimit.RequestsPerMinute / 60.0
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	for _, f := range []Fetcher{primary, fallback} {
		if f == nil {
			continue
		}
		name := f.Name()
		c.breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("provider", name).
					Str("from", from.String()).Str("to", to.String()).
					Msg("provider breaker state change")
			},
		})
	}
	return c, nil
}

func fetcherByName(name string, cfg *config.Config) (Fetcher, error) {
	switch name {
	case "twelvedata":
		return NewTwelveDataFetcher(cfg.Data.TwelveData.BaseURL), nil
	case "alphavantage":
		return NewAlphaVantageFetcher(cfg.Data.AlphaVantage.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", name)
	}
}

// FetchDaily returns the daily price series for symbol, covering at least
// days sessions when the provider has them.
func (c *Collector) FetchDaily(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	cacheKey := fmt.Sprintf("bars_%s_%d", symbol, days)
	var cached []model.PricePoint
	if c.cache.Get(cacheKey, &cached) && len(cached) > 0 {
		log.Debug().Str("symbol", symbol).Msg("daily bars from cache")
		return &model.PriceSeries{Ticker: symbol, Bars: cached}, nil
	}

	bars, err := c.fetchWithFallback(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	series := &model.PriceSeries{Ticker: symbol, Bars: bars}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	if err := c.cache.Set(cacheKey, bars); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("cache write failed")
	}
	return series, nil
}

func (c *Collector) fetchWithFallback(ctx context.Context, symbol string, days int) ([]model.PricePoint, error) {
	bars, primaryErr := c.fetchFrom(ctx, c.primary, symbol, days)
	if primaryErr == nil {
		return bars, nil
	}
	if c.fallback == nil {
		return nil, primaryErr
	}
	log.Warn().Err(primaryErr).Str("symbol", symbol).
		Str("provider", c.primary.Name()).
		Msg("primary provider failed, trying fallback")
	bars, fallbackErr := c.fetchFrom(ctx, c.fallback, symbol, days)
	if fallbackErr != nil {
		return nil, fmt.Errorf("all providers failed for %s: primary: %v, fallback: %w", symbol, primaryErr, fallbackErr)
	}
	return bars, nil
}

func (c *Collector) fetchFrom(ctx context.Context, f Fetcher, symbol string, days int) ([]model.PricePoint, error) {
	breaker := c.breakers[f.Name()]
	var lastErr error
	for attempt := 1; attempt <= c.retry.maxAttempts; attempt++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		result, err := breaker.Execute(func() (any, error) {
			return f.FetchDailyBars(ctx, symbol, days)
		})
		if err == nil {
			return result.([]model.PricePoint), nil
		}
		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// the breaker will not let this provider through for a while
			return nil, err
		}
		if attempt < c.retry.maxAttempts {
			delay := c.backoff(attempt)
			log.Warn().Err(err).Str("symbol", symbol).Str("provider", f.Name()).
				Int("attempt", attempt).Dur("retry_in", delay).
				Msg("fetch failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// FetchConditions returns the weekly financial-conditions series.
func (c *Collector) FetchConditions(ctx context.Context) (model.ConditionsSeries, error) {
	const cacheKey = "conditions"
	var cached model.ConditionsSeries
	if c.cache.Get(cacheKey, &cached) && len(cached) > 0 {
		log.Debug().Msg("conditions series from cache")
		return cached, nil
	}

	var series model.ConditionsSeries
	var lastErr error
	for attempt := 1; attempt <= c.retry.maxAttempts; attempt++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		series, lastErr = c.conditions.Fetch(ctx)
		if lastErr == nil {
			break
		}
		if attempt < c.retry.maxAttempts {
			delay := c.backoff(attempt)
			log.Warn().Err(lastErr).Int("attempt", attempt).Dur("retry_in", delay).
				Msg("conditions fetch failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	if err := c.cache.Set(cacheKey, series); err != nil {
		log.Warn().Err(err).Msg("cache write failed")
	}
	return series, nil
}

func (c *Collector) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Collector) backoff(attempt int) time.Duration {
	delay := c.retry.baseDelay * time.Duration(1<<(attempt-1))
	if delay > c.retry.maxDelay {
		delay = c.retry.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}
