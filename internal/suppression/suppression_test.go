package suppression

import (
	"testing"
	"time"
)

// 2024-12-16 is a Monday.
func monday(hour, min int) time.Time {
	return time.Date(2024, 12, 16, hour, min, 0, 0, time.UTC)
}

func TestRecurringMidnightSpanning(t *testing.T) {
	cfg := Config{Kind: Recurring, Days: []string{"MONDAY"}, StartTime: "22:00", EndTime: "06:00"}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{monday(23, 0), true},
		{monday(21, 59), false},
		{monday(22, 0), true},                                                   // inclusive start
		{monday(0, 0).AddDate(0, 0, 1).Add(5 * time.Hour), true},                // Tuesday 05:00
		{monday(0, 0).AddDate(0, 0, 1).Add(6*time.Hour + 1*time.Minute), false}, // Tuesday 06:01
		{monday(0, 0).AddDate(0, 0, 1).Add(6 * time.Hour), false},               // exclusive end
		{monday(0, 0).AddDate(0, 0, 2).Add(5 * time.Hour), false},               // Wednesday 05:00
	}
	for _, c := range cases {
		if got := cfg.Matches(c.at, time.UTC); got != c.want {
			t.Fatalf("at %v: got %v, want %v", c.at, got, c.want)
		}
	}
}

func TestRecurringSameDayWindow(t *testing.T) {
	cfg := Config{Kind: Recurring, Days: []string{"MONDAY"}, StartTime: "09:00", EndTime: "17:00"}

	if !cfg.Matches(monday(9, 0), time.UTC) {
		t.Fatalf("window start must be inclusive")
	}
	if cfg.Matches(monday(17, 0), time.UTC) {
		t.Fatalf("window end must be exclusive")
	}
	if cfg.Matches(monday(12, 0).AddDate(0, 0, -1), time.UTC) {
		t.Fatalf("sunday must not match a monday-only rule")
	}
}

func TestRecurringUsesOwnerTimezone(t *testing.T) {
	cfg := Config{Kind: Recurring, Days: []string{"MONDAY"}, StartTime: "09:00", EndTime: "17:00"}
	est := time.FixedZone("EST", -5*3600)

	// Monday 19:00 UTC is Monday 14:00 EST
	at := monday(19, 0)
	if !cfg.Matches(at, est) {
		t.Fatalf("expected suppressed in owner's zone")
	}
	if cfg.Matches(at, time.UTC) {
		t.Fatalf("expected not suppressed in UTC")
	}
}

func TestVacationInclusiveBounds(t *testing.T) {
	cfg := Config{Kind: Vacation, StartDate: "2024-12-20", EndDate: "2024-12-31"}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), true},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2024, 12, 19, 23, 59, 0, 0, time.UTC), false},
		{time.Date(2024, 12, 25, 12, 0, 0, 0, time.UTC), true},
	}
	for _, c := range cases {
		if got := cfg.Matches(c.at, time.UTC); got != c.want {
			t.Fatalf("at %v: got %v, want %v", c.at, got, c.want)
		}
	}
}

func TestSuppressedAnyRuleMatches(t *testing.T) {
	miss := Config{Kind: Vacation, StartDate: "2024-01-01", EndDate: "2024-01-02"}
	hit := Config{Kind: Vacation, StartDate: "2024-12-20", EndDate: "2024-12-31"}
	at := time.Date(2024, 12, 25, 12, 0, 0, 0, time.UTC)

	if !Suppressed([]Config{miss, hit}, at, time.UTC) {
		t.Fatalf("expected OR across configs to suppress")
	}
	if Suppressed([]Config{miss}, at, time.UTC) {
		t.Fatalf("expected single non-matching rule not to suppress")
	}
	if Suppressed(nil, at, time.UTC) {
		t.Fatalf("expected no rules not to suppress")
	}
}

func TestParseClock(t *testing.T) {
	if _, ok, err := ParseClock(""); ok || err != nil {
		t.Fatalf("empty input must be absent, got ok=%v err=%v", ok, err)
	}
	if mins, ok, err := ParseClock("22:30"); err != nil || !ok || mins != 22*60+30 {
		t.Fatalf("expected 1350 minutes, got %d ok=%v err=%v", mins, ok, err)
	}
	if _, _, err := ParseClock("9am"); err == nil {
		t.Fatalf("expected parse error for malformed clock")
	}
}

func TestParseDate(t *testing.T) {
	if _, ok, err := ParseDate(""); ok || err != nil {
		t.Fatalf("empty input must be absent, got ok=%v err=%v", ok, err)
	}
	if _, _, err := ParseDate("12/20/2024"); err == nil {
		t.Fatalf("expected parse error for malformed date")
	}
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("RECURRING"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseKind("WEEKLY"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestValidate(t *testing.T) {
	ok := Config{Kind: Recurring, Days: []string{"MONDAY"}, StartTime: "22:00", EndTime: "06:00"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []Config{
		{Kind: "WEEKLY"},
		{Kind: Recurring, Days: []string{"MONDAY"}, StartTime: "22:00", EndTime: "06:00", StartDate: "2024-01-01"},
		{Kind: Recurring, StartTime: "22:00", EndTime: "06:00"},
		{Kind: Recurring, Days: []string{"MONDAYS"}, StartTime: "22:00", EndTime: "06:00"},
		{Kind: Recurring, Days: []string{"MONDAY"}, EndTime: "06:00"},
		{Kind: Vacation, StartDate: "2024-12-20"},
		{Kind: Vacation, StartDate: "2024-12-20", EndDate: "2024-12-31", Days: []string{"MONDAY"}},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, c)
		}
	}
}

func TestMatchesAbsentFieldsNeverMatch(t *testing.T) {
	at := time.Date(2024, 12, 25, 12, 0, 0, 0, time.UTC)

	if (Config{Kind: Recurring, Days: []string{"WEDNESDAY"}}).Matches(at, time.UTC) {
		t.Fatalf("recurring rule without times must not match")
	}
	if (Config{Kind: Vacation}).Matches(at, time.UTC) {
		t.Fatalf("vacation rule without dates must not match")
	}
	if (Config{}).Matches(at, time.UTC) {
		t.Fatalf("kindless rule must not match")
	}
}
