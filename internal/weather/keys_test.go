package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hangzhou", "hangzhou"},
		{"  San Francisco, CA ", "sanfranciscoca"},
		{"杭州市", "杭州市"},
		{"北京 Beijing-01", "北京beijing01"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), tt.in)
	}
}

func TestCacheKey(t *testing.T) {
	date := time.Date(2025, 6, 3, 0, 0, 0, 0, cst)

	key := CacheKey(TierHourly, LocationInfo{Name: "Hang Zhou", Longitude: 120.2, Latitude: 30.3}, date)
	assert.Equal(t, "hourly:hangzhou:2025-06-03", key)

	key = CacheKey(TierDaily, LocationInfo{Name: "--", Longitude: 120.2, Latitude: 30.3}, date)
	assert.Equal(t, "daily:120.2000_30.3000:2025-06-03", key)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-06-03 ", cst)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, cst), d)

	for _, bad := range []string{"", "2025/06/03", "2025-13-01", "tomorrow"} {
		_, err := ParseDate(bad, cst)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestDayStartAndDaysBetween(t *testing.T) {
	late := time.Date(2025, 6, 3, 23, 30, 0, 0, cst)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, cst), DayStart(late, cst))

	today := time.Date(2025, 6, 1, 0, 0, 0, 0, cst)
	assert.Equal(t, 0, DaysBetween(today, late.Add(-48*time.Hour)))
	assert.Equal(t, 2, DaysBetween(today, late))
	assert.Equal(t, -1, DaysBetween(today, today.Add(-time.Hour)))
	assert.Equal(t, 30, DaysBetween(today, time.Date(2025, 7, 1, 0, 0, 0, 0, cst)))
}
