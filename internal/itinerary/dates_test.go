package itinerary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocalDate_DateOnly(t *testing.T) {
	got, err := ParseLocalDate("2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.June, got.Month())
	assert.Equal(t, 1, got.Day())
	assert.Equal(t, 12, got.Hour())
}

func TestParseLocalDate_RFC3339(t *testing.T) {
	got, err := ParseLocalDate("2026-06-01T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, got.UTC().Hour())
	assert.Equal(t, 30, got.UTC().Minute())
}

func TestParseLocalDate_NoTimezone(t *testing.T) {
	got, err := ParseLocalDate("2026-06-01T08:30:00")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())
}

func TestParseLocalDate_Empty(t *testing.T) {
	_, err := ParseLocalDate("")
	assert.Error(t, err)
}

func TestParseLocalDate_Unrecognized(t *testing.T) {
	_, err := ParseLocalDate("not-a-date")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "2026-06-01", FormatDate(d))
}
