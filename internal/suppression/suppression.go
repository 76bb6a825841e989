package suppression

import (
	"fmt"
	"time"
)

// Kind selects which quiet-period rule a Config expresses.
type Kind string

const (
	Recurring Kind = "RECURRING"
	Vacation  Kind = "VACATION"
)

var kinds = map[string]Kind{
	string(Recurring): Recurring,
	string(Vacation):  Vacation,
}

func ParseKind(s string) (Kind, error) {
	k, ok := kinds[s]
	if !ok {
		return "", fmt.Errorf("invalid suppression type %q", s)
	}
	return k, nil
}

// Config is one quiet-period rule attached to a channel.
// RECURRING rules use Days + StartTime/EndTime, VACATION rules use
// StartDate/EndDate; the other field set must stay empty.
type Config struct {
	Kind      Kind     `json:"suppressionType"`
	Days      []string `json:"days,omitempty"`      // upper-case weekday names
	StartTime string   `json:"startTime,omitempty"` // HH:mm
	EndTime   string   `json:"endTime,omitempty"`   // HH:mm
	StartDate string   `json:"startDate,omitempty"` // yyyy-MM-dd
	EndDate   string   `json:"endDate,omitempty"`   // yyyy-MM-dd
}

var weekdays = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdays[s]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
	return d, nil
}

// ParseClock parses an HH:mm string into minutes since midnight.
// An empty input is absent, not an error.
func ParseClock(s string) (mins int, ok bool, err error) {
	if s == "" {
		return 0, false, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), true, nil
}

// ParseDate parses a yyyy-MM-dd string. An empty input is absent, not an error.
func ParseDate(s string) (d time.Time, ok bool, err error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, true, nil
}

// Validate checks that the config is well formed: a known kind, parseable
// fields, and only the field set that belongs to the kind populated.
func (c Config) Validate() error {
	kind, err := ParseKind(string(c.Kind))
	if err != nil {
		return err
	}

	switch kind {
	case Recurring:
		if c.StartDate != "" || c.EndDate != "" {
			return fmt.Errorf("recurring suppression must not carry dates")
		}
		if len(c.Days) == 0 {
			return fmt.Errorf("recurring suppression requires days")
		}
		for _, d := range c.Days {
			if _, err := ParseWeekday(d); err != nil {
				return err
			}
		}
		if _, ok, err := ParseClock(c.StartTime); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("recurring suppression requires startTime")
		}
		if _, ok, err := ParseClock(c.EndTime); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("recurring suppression requires endTime")
		}
	case Vacation:
		if len(c.Days) > 0 || c.StartTime != "" || c.EndTime != "" {
			return fmt.Errorf("vacation suppression must not carry days or times")
		}
		if _, ok, err := ParseDate(c.StartDate); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("vacation suppression requires startDate")
		}
		if _, ok, err := ParseDate(c.EndDate); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("vacation suppression requires endDate")
		}
	}
	return nil
}

// Suppressed reports whether any rule covers the instant at in the owner's
// time zone. A nil loc falls back to UTC; the evaluator never infers zones.
func Suppressed(configs []Config, at time.Time, loc *time.Location) bool {
	for _, c := range configs {
		if c.Matches(at, loc) {
			return true
		}
	}
	return false
}

// Matches reports whether this single rule covers the instant at in loc.
// Absent or malformed fields never match; construction-time validation is
// the place where they fail.
func (c Config) Matches(at time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := at.In(loc)

	switch c.Kind {
	case Recurring:
		return c.matchesRecurring(local)
	case Vacation:
		return c.matchesVacation(local)
	}
	return false
}

func (c Config) matchesRecurring(local time.Time) bool {
	start, okS, errS := ParseClock(c.StartTime)
	end, okE, errE := ParseClock(c.EndTime)
	if !okS || !okE || errS != nil || errE != nil {
		return false
	}

	days := make(map[time.Weekday]bool, len(c.Days))
	for _, s := range c.Days {
		d, err := ParseWeekday(s)
		if err != nil {
			return false
		}
		days[d] = true
	}

	now := local.Hour()*60 + local.Minute()
	if start <= end {
		return days[local.Weekday()] && now >= start && now < end
	}

	// Window spans midnight: [start, 24:00) on the configured day,
	// [00:00, end) on the following day.
	if days[local.Weekday()] && now >= start {
		return true
	}
	prev := (local.Weekday() + 6) % 7
	return days[prev] && now < end
}

func (c Config) matchesVacation(local time.Time) bool {
	start, okS, errS := ParseDate(c.StartDate)
	end, okE, errE := ParseDate(c.EndDate)
	if !okS || !okE || errS != nil || errE != nil {
		return false
	}

	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}
