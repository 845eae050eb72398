package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"time"

	"TrendSentinel/internal/model"
)

// AlphaVantageFetcher implements Fetcher against the Alpha Vantage daily
// series endpoint. Used as the fallback provider; the free tier allows
// only a handful of requests per minute.
type AlphaVantageFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewAlphaVantageFetcher(baseURL string) *AlphaVantageFetcher {
	return &AlphaVantageFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

func (f *AlphaVantageFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PricePoint, error) {
	apiKey := os.Getenv("ALPHA_VANTAGE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ALPHA_VANTAGE_API_KEY not set")
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	params.Set("symbol", symbol)
	params.Set("outputsize", "full")
	params.Set("apikey", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, truncate(body))
	}

	var payload struct {
		Note         string                       `json:"Note"`
		Information  string                       `json:"Information"`
		ErrorMessage string                       `json:"Error Message"`
		Series       map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	switch {
	case payload.ErrorMessage != "":
		return nil, fmt.Errorf("alphavantage api error for %s: %s", symbol, payload.ErrorMessage)
	case payload.Note != "":
		return nil, fmt.Errorf("alphavantage rate limited: %s", payload.Note)
	case payload.Information != "":
		return nil, fmt.Errorf("alphavantage: %s", payload.Information)
	case len(payload.Series) == 0:
		return nil, fmt.Errorf("alphavantage: no data for %s", symbol)
	}

	bars := make([]model.PricePoint, 0, len(payload.Series))
	for dateStr, fields := range payload.Series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		bar := model.PricePoint{Date: date}
		if bar.Open, err = strconv.ParseFloat(fields["1. open"], 64); err != nil {
			continue
		}
		if bar.High, err = strconv.ParseFloat(fields["2. high"], 64); err != nil {
			continue
		}
		if bar.Low, err = strconv.ParseFloat(fields["3. low"], 64); err != nil {
			continue
		}
		if bar.Close, err = strconv.ParseFloat(fields["4. close"], 64); err != nil {
			continue
		}
		// adjusted payloads put volume in slot 6, unadjusted in slot 5
		if vol, ok := fields["6. volume"]; ok {
			bar.Volume, _ = strconv.ParseFloat(vol, 64)
		} else {
			bar.Volume, _ = strconv.ParseFloat(fields["5. volume"], 64)
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}
