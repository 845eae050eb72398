package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"TrendSentinel/internal/model"
)

// ConditionsFetcher downloads the weekly financial-conditions index as CSV.
// The FRED graph export is the primary source; the Chicago Fed publishes
// the same series directly and serves as the fallback.
type ConditionsFetcher struct {
	FredURL    string
	ChicagoURL string
	Client     *http.Client
}

func NewConditionsFetcher(fredURL, chicagoURL string) *ConditionsFetcher {
	return &ConditionsFetcher{
		FredURL:    fredURL,
		ChicagoURL: chicagoURL,
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the conditions series in ascending date order.
func (f *ConditionsFetcher) Fetch(ctx context.Context) (model.ConditionsSeries, error) {
	series, primaryErr := f.fetchCSV(ctx, f.FredURL)
	if primaryErr == nil {
		return series, nil
	}
	if f.ChicagoURL == "" {
		return nil, primaryErr
	}
	series, fallbackErr := f.fetchCSV(ctx, f.ChicagoURL)
	if fallbackErr != nil {
		return nil, fmt.Errorf("conditions fetch failed: primary: %v, fallback: %w", primaryErr, fallbackErr)
	}
	return series, nil
}

func (f *ConditionsFetcher) fetchCSV(ctx context.Context, rawURL string) (model.ConditionsSeries, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conditions fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("conditions fetch: status %d from %s", resp.StatusCode, rawURL)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("conditions csv parse: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("conditions csv: no rows from %s", rawURL)
	}

	header := records[0]
	dateCol, valueCol := findConditionsColumns(header)
	if dateCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("conditions csv: unrecognized header %v", header)
	}

	points := make(model.ConditionsSeries, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) <= dateCol || len(rec) <= valueCol {
			continue
		}
		raw := strings.TrimSpace(rec[valueCol])
		if raw == "" || raw == "." {
			continue
		}
		date, err := parseConditionsDate(strings.TrimSpace(rec[dateCol]))
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		points = append(points, model.ConditionsPoint{Date: date, Value: value})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("conditions csv: no parsable rows from %s", rawURL)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	if err := points.Validate(); err != nil {
		return nil, err
	}
	return points, nil
}

func findConditionsColumns(header []string) (dateCol, valueCol int) {
	dateCol, valueCol = -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "observation_date", "friday_of_week":
			dateCol = i
		case "nfci":
			valueCol = i
		}
	}
	// FRED graph exports are two columns: date then the series id
	if valueCol < 0 && dateCol == 0 && len(header) == 2 {
		valueCol = 1
	}
	return dateCol, valueCol
}

func parseConditionsDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "01/02/2006"} {
		if date, err := time.Parse(layout, raw); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
