package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// Serbian and English month names, folded (no diacritics)
	monthNames = map[string]time.Month{
		"januar": 1, "januara": 1, "january": 1, "jan": 1,
		"februar": 2, "februara": 2, "february": 2, "feb": 2,
		"mart": 3, "marta": 3, "march": 3, "mar": 3,
		"april": 4, "aprila": 4, "apr": 4,
		"maj": 5, "maja": 5, "may": 5,
		"jun": 6, "juni": 6, "juna": 6, "june": 6,
		"jul": 7, "juli": 7, "jula": 7, "july": 7,
		"avgust": 8, "avgusta": 8, "august": 8, "aug": 8,
		"septembar": 9, "septembra": 9, "september": 9, "sep": 9, "sept": 9,
		"oktobar": 10, "oktobra": 10, "october": 10, "oct": 10, "okt": 10,
		"novembar": 11, "novembra": 11, "november": 11, "nov": 11,
		"decembar": 12, "decembra": 12, "december": 12, "dec": 12,
	}

	todayWords     = []string{"danas", "today", "upravo", "just now"}
	yesterdayWords = []string{"juce", "jucer", "yesterday"}

	layouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02.01.2006.",
		"02.01.2006",
		"2.1.2006.",
		"2.1.2006",
		"January 2, 2006",
		"Jan 2, 2006",
	}

	unixPattern    = regexp.MustCompile(`^\d{10}(\d{3})?$`)
	agoPattern     = regexp.MustCompile(`(?:pre|prije)\s+(\d+)\s+(dan|dana|sat|sata|sati)|(\d+)\s+(day|days|hour|hours)\s+ago`)
	namedPattern   = regexp.MustCompile(`(\d{1,2})\.?\s+([a-z]+)\.?,?\s*(\d{4})?`)
	reversePattern = regexp.MustCompile(`([a-z]+)\.?\s+(\d{1,2}),?\s*(\d{4})?`)
)

// DateParser reads the posting dates found on job boards and feeds.
type DateParser struct {
	now func() time.Time
}

func NewDateParser() *DateParser {
	return &DateParser{now: time.Now}
}

// NewDateParserAt pins "today" for relative dates.
func NewDateParserAt(now func() time.Time) *DateParser {
	return &DateParser{now: now}
}

// Parse returns the instant described by dateStr. Day-only inputs are
// returned at midnight UTC.
func (dp *DateParser) Parse(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	if unixPattern.MatchString(dateStr) {
		n, err := strconv.ParseInt(dateStr, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp: %q: %w", dateStr, err)
		}
		if len(dateStr) == 13 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}

	return dp.parseWords(Fold(dateStr))
}

func (dp *DateParser) parseWords(s string) (time.Time, error) {
	today := dp.now().UTC().Truncate(24 * time.Hour)

	for _, word := range todayWords {
		if strings.Contains(s, word) {
			return today, nil
		}
	}
	for _, word := range yesterdayWords {
		if strings.Contains(s, word) {
			return today.AddDate(0, 0, -1), nil
		}
	}

	if m := agoPattern.FindStringSubmatch(s); m != nil {
		num, unit := m[1], m[2]
		if num == "" {
			num, unit = m[3], m[4]
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid amount: %q: %w", num, err)
		}
		if strings.HasPrefix(unit, "da") {
			return today.AddDate(0, 0, -n), nil
		}
		return dp.now().UTC().Add(-time.Duration(n) * time.Hour), nil
	}

	// "15. oktobar 2024", "3 mar 2025"
	if m := namedPattern.FindStringSubmatch(s); m != nil {
		if t, ok := dp.build(m[1], m[2], m[3]); ok {
			return t, nil
		}
	}
	// "oct 15, 2024"
	if m := reversePattern.FindStringSubmatch(s); m != nil {
		if t, ok := dp.build(m[2], m[1], m[3]); ok {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

func (dp *DateParser) build(dayStr, monthName, yearStr string) (time.Time, bool) {
	month, ok := monthNames[monthName]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := dp.now().Year()
	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			return time.Time{}, false
		}
		year = y
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}
