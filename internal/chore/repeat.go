package chore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Freq string

const (
	Daily   Freq = "DAILY"
	Weekly  Freq = "WEEKLY"
	Monthly Freq = "MONTHLY"
)

// Repeat is the subset of an RRULE a household task understands:
// "FREQ=WEEKLY;INTERVAL=2". The zero value means the task does not repeat.
type Repeat struct {
	Freq     Freq
	Interval int
}

// ParseRepeat parses a repeat rule. An empty string is the zero Repeat.
func ParseRepeat(rule string) (Repeat, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return Repeat{}, nil
	}

	r := Repeat{Interval: 1}
	for _, part := range strings.Split(rule, ";") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return Repeat{}, fmt.Errorf("invalid rule part: %q", part)
		}
		switch strings.ToUpper(key) {
		case "FREQ":
			switch f := Freq(strings.ToUpper(val)); f {
			case Daily, Weekly, Monthly:
				r.Freq = f
			default:
				return Repeat{}, fmt.Errorf("unknown frequency: %q", val)
			}
		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return Repeat{}, fmt.Errorf("invalid interval: %q", val)
			}
			r.Interval = n
		default:
			return Repeat{}, fmt.Errorf("unsupported rule key: %q", key)
		}
	}
	if r.Freq == "" {
		return Repeat{}, fmt.Errorf("FREQ is required")
	}
	return r, nil
}

func (r Repeat) IsZero() bool { return r.Freq == "" }

// String serializes the rule; the zero Repeat is "".
func (r Repeat) String() string {
	if r.IsZero() {
		return ""
	}
	if r.Interval > 1 {
		return fmt.Sprintf("FREQ=%s;INTERVAL=%d", r.Freq, r.Interval)
	}
	return "FREQ=" + string(r.Freq)
}

// Describe returns a human-readable description of the rule.
func (r Repeat) Describe() string {
	unit := map[Freq]string{Daily: "day", Weekly: "week", Monthly: "month"}[r.Freq]
	switch {
	case r.IsZero():
		return "Does not repeat"
	case r.Interval > 1:
		return fmt.Sprintf("Repeats every %d %ss", r.Interval, unit)
	case r.Freq == Daily:
		return "Repeats daily"
	default:
		return "Repeats " + unit + "ly"
	}
}

// step advances t by one interval. Monthly steps keep the day of month of
// anchor and clamp to the last day of shorter months.
func (r Repeat) step(t, anchor time.Time) time.Time {
	switch r.Freq {
	case Daily:
		return t.AddDate(0, 0, r.Interval)
	case Weekly:
		return t.AddDate(0, 0, 7*r.Interval)
	case Monthly:
		year, month, _ := t.Date()
		first := time.Date(year, month+time.Month(r.Interval), 1, 0, 0, 0, 0, t.Location())
		day := anchor.Day()
		if last := daysInMonth(first.Year(), first.Month()); day > last {
			day = last
		}
		return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
	}
	return t
}

// Next returns the first occurrence after today, counting from due.
func (r Repeat) Next(due, today time.Time) time.Time {
	if r.IsZero() {
		return time.Time{}
	}
	due, today = startOfDay(due), startOfDay(today)
	next := r.step(due, due)
	for !next.After(today) {
		next = r.step(next, due)
	}
	return next
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
