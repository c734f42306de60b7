package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const isoDate = "2006-01-02"

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
	"mon": time.Monday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "thurs": time.Thursday,
	"fri": time.Friday, "sat": time.Saturday, "sun": time.Sunday,
}

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"jun": time.June, "jul": time.July, "aug": time.August, "sep": time.September,
	"sept": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	reInOffset   = regexp.MustCompile(`\bin\s+(\d+)\s+(day|days|week|weeks)\b`)
	reWeekday    = regexp.MustCompile(`\b(?:(next|this|on|coming)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|tues|wed|thu|thurs|fri|sat|sun)\b`)
	reMonthDay   = regexp.MustCompile(`\b([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?(?:\s*,?\s*(\d{4}))?\b`)
	reDayMonth   = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)(?:\s*,?\s*(\d{4}))?\b`)
	reISO        = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	reNumericDMY = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?\b`)
	reFourYear   = regexp.MustCompile(`\b\d{4}\b`)
)

// Date resolves a raw date phrase into ISO "YYYY-MM-DD" form.
//
// Cascade: relative keywords → "in N days/weeks" offsets → weekday names →
// named-month formats → ISO passthrough → numeric slashed/dashed formats →
// flexible parser fallback. Dates without an explicit year that land in the
// past roll forward. Unparsable input reports failure.
func (n *Normalizer) Date(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return "", false
	}

	today := n.startOfDay(n.Now())

	// Exact relative keywords
	switch {
	case lower == "today" || lower == "tonight":
		return today.Format(isoDate), true
	case lower == "tomorrow" || lower == "tmrw" || lower == "tmr":
		return today.AddDate(0, 0, 1).Format(isoDate), true
	case strings.Contains(lower, "day after tomorrow"):
		return today.AddDate(0, 0, 2).Format(isoDate), true
	case lower == "next week":
		return today.AddDate(0, 0, 7).Format(isoDate), true
	case lower == "next month":
		return today.AddDate(0, 1, 0).Format(isoDate), true
	}
	// "tomorrow" embedded in a longer phrase, after the day-after carve-out
	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1).Format(isoDate), true
	}
	if strings.Contains(lower, "today") {
		return today.Format(isoDate), true
	}

	// Explicit numeric offsets
	if m := reInOffset.FindStringSubmatch(lower); m != nil {
		amount, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "week") {
			amount *= 7
		}
		return today.AddDate(0, 0, amount).Format(isoDate), true
	}

	// Weekday names: next future occurrence; "next <today's weekday>" rolls a week
	if m := reWeekday.FindStringSubmatch(lower); m != nil {
		target := weekdays[m[2]]
		daysUntil := int(target - today.Weekday())
		if daysUntil < 0 {
			daysUntil += 7
		}
		if daysUntil == 0 && m[1] == "next" {
			daysUntil = 7
		}
		return today.AddDate(0, 0, daysUntil).Format(isoDate), true
	}

	// ISO passthrough, idempotent on already-normalized values
	if m := reISO.FindStringSubmatch(lower); m != nil {
		if t, err := time.ParseInLocation(isoDate, m[0], n.location); err == nil {
			return t.Format(isoDate), true
		}
		return "", false
	}

	// Named-month formats, both "january 15" and "15 january" orders
	if d, ok := n.parseNamedMonth(lower, today); ok {
		return d, true
	}

	// Numeric slashed/dashed formats
	if d, ok := n.parseNumericDate(lower, today); ok {
		return d, true
	}

	// Flexible fallback for anything the explicit cascade missed
	if t, err := dateparse.ParseIn(raw, n.location); err == nil {
		t = n.startOfDay(t)
		if t.Before(today) && !reFourYear.MatchString(lower) {
			t = t.AddDate(1, 0, 0)
		}
		return t.Format(isoDate), true
	}

	return "", false
}

// parseNamedMonth handles "jan 15", "january 15 2026", "15th january".
// A missing year means the current year, rolled forward when already past.
func (n *Normalizer) parseNamedMonth(lower string, today time.Time) (string, bool) {
	var month time.Month
	var day, year int
	found := false

	if m := reMonthDay.FindStringSubmatch(lower); m != nil {
		if mo, ok := months[m[1]]; ok {
			month = mo
			day, _ = strconv.Atoi(m[2])
			if m[3] != "" {
				year, _ = strconv.Atoi(m[3])
			}
			found = true
		}
	}
	if !found {
		if m := reDayMonth.FindStringSubmatch(lower); m != nil {
			if mo, ok := months[m[2]]; ok {
				month = mo
				day, _ = strconv.Atoi(m[1])
				if m[3] != "" {
					year, _ = strconv.Atoi(m[3])
				}
				found = true
			}
		}
	}
	if !found || day < 1 || day > 31 {
		return "", false
	}

	yearGiven := year != 0
	if !yearGiven {
		year = today.Year()
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, n.location)
	if t.Month() != month || t.Day() != day {
		return "", false
	}
	if !yearGiven && t.Before(today) {
		t = t.AddDate(1, 0, 0)
	}
	return t.Format(isoDate), true
}

// parseNumericDate handles "15/01/2026", "15-1-26", "3/4".
// When both components could be a month, day-first ordering wins; a
// component above 12 must be the day.
func (n *Normalizer) parseNumericDate(lower string, today time.Time) (string, bool) {
	m := reNumericDMY.FindStringSubmatch(lower)
	if m == nil {
		return "", false
	}

	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])

	var day, monthNum int
	switch {
	case first > 12 && second <= 12:
		day, monthNum = first, second
	case second > 12 && first <= 12:
		day, monthNum = second, first
	case first <= 12 && second <= 12:
		// Genuinely ambiguous; default to day-first international ordering
		day, monthNum = first, second
	default:
		return "", false
	}
	if day < 1 || day > 31 || monthNum < 1 || monthNum > 12 {
		return "", false
	}

	year := 0
	yearGiven := m[3] != ""
	if yearGiven {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
	} else {
		year = today.Year()
	}

	t := time.Date(year, time.Month(monthNum), day, 0, 0, 0, 0, n.location)
	if t.Month() != time.Month(monthNum) || t.Day() != day {
		return "", false
	}
	if !yearGiven && t.Before(today) {
		t = t.AddDate(1, 0, 0)
	}
	return t.Format(isoDate), true
}

func (n *Normalizer) startOfDay(t time.Time) time.Time {
	t = t.In(n.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, n.location)
}
