package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"PaperPulse/internal/domain/models"
)

func at(y int, mo time.Month, d, h, m int) time.Time {
	return time.Date(y, mo, d, h, m, 0, 0, time.UTC)
}

func TestCryptoAlwaysOpen(t *testing.T) {
	times := []time.Time{
		at(2026, time.January, 3, 0, 0),   // Saturday midnight
		at(2026, time.January, 4, 12, 0),  // Sunday noon
		at(2026, time.January, 7, 23, 59), // Wednesday close to midnight
	}
	for _, ts := range times {
		assert.True(t, IsOpen(models.AssetCrypto, ts), "crypto closed at %v", ts)
	}
}

func TestForexWeekend(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"saturday morning", at(2026, time.January, 3, 9, 0), false},
		{"saturday late", at(2026, time.January, 3, 23, 30), false},
		{"sunday before open", at(2026, time.January, 4, 21, 59), false},
		{"sunday at open", at(2026, time.January, 4, 22, 0), true},
		{"monday", at(2026, time.January, 5, 3, 0), true},
		{"friday", at(2026, time.January, 9, 20, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpen(models.AssetForex, tt.ts))
		})
	}
}

func TestStockSession(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"saturday", at(2026, time.January, 3, 15, 0), false},
		{"sunday", at(2026, time.January, 4, 15, 0), false},
		{"monday pre-open", at(2026, time.January, 5, 14, 29), false},
		{"monday open bell", at(2026, time.January, 5, 14, 30), true},
		{"monday mid session", at(2026, time.January, 5, 18, 0), true},
		{"monday last minute", at(2026, time.January, 5, 20, 59), true},
		{"monday after close", at(2026, time.January, 5, 21, 0), false},
		{"monday night", at(2026, time.January, 5, 23, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpen(models.AssetStock, tt.ts))
		})
	}
}

func TestOpenClasses(t *testing.T) {
	// Wednesday 15:00 UTC: everything trades.
	open := OpenClasses(at(2026, time.January, 7, 15, 0))
	assert.Len(t, open, 3)

	// Saturday: crypto only.
	open = OpenClasses(at(2026, time.January, 3, 15, 0))
	assert.Equal(t, []models.AssetClass{models.AssetCrypto}, open)
}

func TestNonUTCInputNormalized(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 21:30 UTC+7 == 14:30 UTC on a Monday.
	ts := time.Date(2026, time.January, 5, 21, 30, 0, 0, loc)
	assert.True(t, IsOpen(models.AssetStock, ts))
}
