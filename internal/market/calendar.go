package market

import (
	"time"

	"PaperPulse/internal/domain/models"
)

// IsOpen reports whether the market for an asset class is trading at the
// given instant. Pure function; the instant is always evaluated in UTC.
//
// crypto: continuous.
// forex:  closed all of Saturday and Sunday before 22:00 UTC.
// stock:  Mon-Fri 14:30-21:00 UTC (NYSE regular session).
func IsOpen(class models.AssetClass, now time.Time) bool {
	now = now.UTC()
	switch class {
	case models.AssetCrypto:
		return true
	case models.AssetForex:
		switch now.Weekday() {
		case time.Saturday:
			return false
		case time.Sunday:
			return now.Hour() >= 22
		default:
			return true
		}
	case models.AssetStock:
		wd := now.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return false
		}
		h, m := now.Hour(), now.Minute()
		if h < 14 || (h == 14 && m < 30) {
			return false
		}
		return h < 21
	default:
		return false
	}
}

// OpenClasses returns the asset classes currently trading.
func OpenClasses(now time.Time) []models.AssetClass {
	all := []models.AssetClass{models.AssetCrypto, models.AssetForex, models.AssetStock}
	open := make([]models.AssetClass, 0, len(all))
	for _, c := range all {
		if IsOpen(c, now) {
			open = append(open, c)
		}
	}
	return open
}
