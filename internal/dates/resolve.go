// Package dates resolves the short date expressions accepted by quick-add
// ("today", "+2w", "friday", "2024-01-15") into calendar dates.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NormalHour is the clock time every resolved date carries. Noon keeps the
// calendar date stable across UTC offsets of up to twelve hours.
const NormalHour = 12

const isoLayout = "2006-01-02"

var (
	relativePattern = regexp.MustCompile(`^\+(\d+)([dw])$`)
	isoPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

type rule func(token string, today time.Time) (time.Time, bool)

// Checked in order; first match wins.
var rules = []rule{
	resolveToday,
	resolveTomorrow,
	resolveRelative,
	resolveWeekday,
	resolveISO,
}

// Resolve converts token into a date relative to now. The boolean is false
// when the token is not a recognised date expression.
func Resolve(token string, now time.Time) (time.Time, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return time.Time{}, false
	}
	today := Normalize(now)
	for _, r := range rules {
		if out, ok := r(token, today); ok {
			return out, true
		}
	}
	return time.Time{}, false
}

// Normalize drops the time of day, keeping the calendar date and location of t.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, NormalHour, 0, 0, 0, t.Location())
}

// Format renders a date the way the store and the date marker expect it.
func Format(t time.Time) string {
	return t.Format(isoLayout)
}

func resolveToday(token string, today time.Time) (time.Time, bool) {
	if token != "today" {
		return time.Time{}, false
	}
	return today, true
}

func resolveTomorrow(token string, today time.Time) (time.Time, bool) {
	if token != "tomorrow" {
		return time.Time{}, false
	}
	return today.AddDate(0, 0, 1), true
}

func resolveRelative(token string, today time.Time) (time.Time, bool) {
	match := relativePattern.FindStringSubmatch(token)
	if match == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, false
	}
	if match[2] == "w" {
		n *= 7
	}
	return today.AddDate(0, 0, n), true
}

func resolveWeekday(token string, today time.Time) (time.Time, bool) {
	target, ok := weekdays[token]
	if !ok {
		return time.Time{}, false
	}
	offset := (int(target) - int(today.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return today.AddDate(0, 0, offset), true
}

func resolveISO(token string, today time.Time) (time.Time, bool) {
	if !isoPattern.MatchString(token) {
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation(isoLayout, token, today.Location())
	if err != nil {
		return time.Time{}, false
	}
	return Normalize(parsed), true
}
