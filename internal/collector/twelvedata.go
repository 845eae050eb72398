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

// TwelveDataFetcher implements Fetcher using the Twelve Data time series API.
// The API key comes from the TWELVE_DATA_API_KEY environment variable.
type TwelveDataFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewTwelveDataFetcher creates a Twelve Data fetcher.
func NewTwelveDataFetcher(baseURL string) *TwelveDataFetcher {
	return &TwelveDataFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *TwelveDataFetcher) Name() string { return "twelvedata" }

// twelveDataResponse is the time_series payload shape.
type twelveDataResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

func (f *TwelveDataFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PricePoint, error) {
	apiKey := os.Getenv("TWELVE_DATA_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("TWELVE_DATA_API_KEY not set")
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", "1day")
	params.Set("outputsize", strconv.Itoa(days))
	params.Set("apikey", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvedata fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twelvedata read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twelvedata: status %d, body: %s", resp.StatusCode, truncate(body))
	}

	var payload twelveDataResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("twelvedata decode: %w", err)
	}
	if payload.Status == "error" || payload.Code >= 400 {
		return nil, fmt.Errorf("twelvedata api error for %s: %s", symbol, payload.Message)
	}
	if len(payload.Values) == 0 {
		return nil, fmt.Errorf("twelvedata: no data for %s", symbol)
	}

	bars := make([]model.PricePoint, 0, len(payload.Values))
	for _, v := range payload.Values {
		date, err := time.Parse("2006-01-02", v.Datetime)
		if err != nil {
			// intraday payloads carry a full timestamp
			date, err = time.Parse("2006-01-02 15:04:05", v.Datetime)
			if err != nil {
				continue
			}
		}
		bar := model.PricePoint{Date: date}
		if bar.Open, err = strconv.ParseFloat(v.Open, 64); err != nil {
			continue
		}
		if bar.High, err = strconv.ParseFloat(v.High, 64); err != nil {
			continue
		}
		if bar.Low, err = strconv.ParseFloat(v.Low, 64); err != nil {
			continue
		}
		if bar.Close, err = strconv.ParseFloat(v.Close, 64); err != nil {
			continue
		}
		bar.Volume, _ = strconv.ParseFloat(v.Volume, 64)
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func truncate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
