package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/model"
)

func TestFileCacheRoundTrip(t *testing.T) {
	cache := NewFileCache(t.TempDir(), time.Hour)
	bars := GenerateBars(100, 5, time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC))

	require.NoError(t, cache.Set("bars_AAPL_5", bars))

	var got []model.PricePoint
	require.True(t, cache.Get("bars_AAPL_5", &got))
	require.Len(t, got, 5)
	assert.InDelta(t, bars[4].Close, got[4].Close, 1e-9)
	assert.True(t, bars[4].Date.Equal(got[4].Date))
}

func TestFileCacheMiss(t *testing.T) {
	cache := NewFileCache(t.TempDir(), time.Hour)
	var got []model.PricePoint
	assert.False(t, cache.Get("absent", &got))
}

func TestFileCacheExpiry(t *testing.T) {
	cache := NewFileCache(t.TempDir(), time.Millisecond)
	require.NoError(t, cache.Set("k", []int{1, 2, 3}))

	time.Sleep(5 * time.Millisecond)
	var got []int
	assert.False(t, cache.Get("k", &got))
}

func TestFileCacheNilReceiver(t *testing.T) {
	var cache *FileCache
	var got []int
	assert.False(t, cache.Get("k", &got))
	assert.NoError(t, cache.Set("k", 1))
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "bars_BRK.B_320", sanitizeKey("bars_BRK.B_320"))
	assert.Equal(t, "conditions_id_NFCI", sanitizeKey("conditions?id=NFCI"))
}
