package consumption

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"março":     time.March,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

var (
	dayOfMonthRe = regexp.MustCompile(`(\d{1,2})\s+de\s+([a-zA-Zçã]+)`)
	fullDateRe   = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
	dayMonthRe   = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})`)
	bareNumberRe = regexp.MustCompile(`\d+`)
)

// NormalizeDate turns the farmer's free-text date ("ontem", "dia 20",
// "20/07", "24 de julho") into a concrete date. Patterns are tried in
// precedence order; anything unparseable falls back to today. The
// function is deterministic and idempotent.
func NormalizeDate(text string, today time.Time) time.Time {
	today = truncateToDay(today)
	if strings.TrimSpace(text) == "" {
		return today
	}

	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "hoje") {
		return today
	}
	if strings.Contains(lowered, "ontem") {
		return today.AddDate(0, 0, -1)
	}

	if m := dayOfMonthRe.FindStringSubmatch(lowered); m != nil {
		day, _ := strconv.Atoi(m[1])
		if month, ok := monthNames[m[2]]; ok {
			if d, ok := makeDate(today.Year(), month, day); ok {
				return d
			}
		}
	}

	if m := fullDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		if d, ok := makeDate(year, time.Month(month), day); ok {
			return d
		}
	}

	if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if d, ok := makeDate(today.Year(), time.Month(month), day); ok {
			return d
		}
	}

	if m := bareNumberRe.FindString(text); m != "" {
		if day, _ := strconv.Atoi(m); day >= 1 && day <= 31 {
			if d, ok := makeDate(today.Year(), today.Month(), day); ok {
				return d
			}
		}
	}

	return today
}

// makeDate validates the components instead of letting time.Date
// normalize an overflow like 31/02 into March.
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
