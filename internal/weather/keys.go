package weather

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Cache tiers used as key prefixes.
const (
	TierHourly = "hourly"
	TierDaily  = "daily"
)

// DateLayout is the public date format.
const DateLayout = "2006-01-02"

// NormalizeName keeps ASCII letters and digits (lower-cased) and Han
// characters.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
		case unicode.Is(unicode.Han, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LocationKey is the normalized name, or the coordinates when nothing of
// the name survives normalization.
func LocationKey(loc LocationInfo) string {
	if n := NormalizeName(loc.Name); n != "" {
		return n
	}
	return fmt.Sprintf("%.4f_%.4f", loc.Longitude, loc.Latitude)
}

// CacheKey builds "{tier}:{normalizedLocationName}:{date}".
func CacheKey(tier string, loc LocationInfo, date time.Time) string {
	return tier + ":" + LocationKey(loc) + ":" + date.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as midnight in zone.
func ParseDate(s string, zone *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), zone)
	if err != nil {
		return time.Time{}, &Error{Kind: KindInvalidInput, Op: "parse date", Msg: fmt.Sprintf("%q is not YYYY-MM-DD", s)}
	}
	return d, nil
}

// DayStart returns midnight of t's calendar date in zone.
func DayStart(t time.Time, zone *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, zone)
}

// DaysBetween counts calendar days from a to b using each value's own
// calendar date.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
