package ledger

import (
	"testing"
	"time"

	"vtnotif/internal/channel"
)

func ts(min int) time.Time {
	return time.Date(2024, 12, 16, 10, min, 0, 0, time.UTC)
}

func TestCurrentStatusLatestTimestamp(t *testing.T) {
	l := New()
	l.AppendStatus(StatusScheduled, "", ts(1))
	l.AppendStatus(StatusRetryScheduled, "", ts(2))
	l.AppendStatus(StatusDone, "", ts(3))

	cur, ok := l.CurrentStatus()
	if !ok || cur.Status != StatusDone {
		t.Fatalf("expected DONE, got %+v ok=%v", cur, ok)
	}
}

func TestCurrentStatusOutOfOrderAppends(t *testing.T) {
	l := New()
	l.AppendStatus(StatusDone, "", ts(3))
	l.AppendStatus(StatusScheduled, "", ts(1))
	l.AppendStatus(StatusRetryScheduled, "", ts(2))

	cur, ok := l.CurrentStatus()
	if !ok || cur.Status != StatusDone {
		t.Fatalf("expected DONE from max timestamp, got %+v ok=%v", cur, ok)
	}
}

func TestCurrentStatusTieBreakLastAppended(t *testing.T) {
	l := New()
	l.AppendStatus(StatusFailed, "", ts(1))
	l.AppendStatus(StatusRetryRequested, "", ts(1))

	cur, _ := l.CurrentStatus()
	if cur.Status != StatusRetryRequested {
		t.Fatalf("expected last-appended entry to win the tie, got %s", cur.Status)
	}
}

func TestCurrentStatusEmpty(t *testing.T) {
	if _, ok := New().CurrentStatus(); ok {
		t.Fatalf("expected no current status on an empty ledger")
	}
}

func TestAppendStatusIsAppendOnly(t *testing.T) {
	l := New()
	l.AppendStatus(StatusScheduleRequested, "crl_1", ts(1))
	l.AppendStatus(StatusScheduled, "crl_2", ts(2))

	hist := l.StatusHistory()
	if len(hist) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hist))
	}
	if hist[0].Status != StatusScheduleRequested || hist[0].CorrelationID != "crl_1" {
		t.Fatalf("prior entry rewritten: %+v", hist[0])
	}

	// mutating the returned copy must not touch the ledger
	hist[0].Status = StatusCanceled
	if got := l.StatusHistory()[0].Status; got != StatusScheduleRequested {
		t.Fatalf("history accessor exposed internal state, got %s", got)
	}
}

func TestRecordRetryCountsPerCause(t *testing.T) {
	l := New()

	r1 := l.RecordRetry("provider timeout", 3, 5000)
	if r1.RetryCount != 1 {
		t.Fatalf("expected first retry count 1, got %d", r1.RetryCount)
	}
	r2 := l.RecordRetry("provider timeout", 3, 5000)
	if r2.RetryCount != 2 {
		t.Fatalf("expected second retry count 2, got %d", r2.RetryCount)
	}
	r3 := l.RecordRetry("invalid token", 3, 5000)
	if r3.RetryCount != 1 {
		t.Fatalf("expected distinct cause to start at 1, got %d", r3.RetryCount)
	}

	if got := l.RetriesFor("provider timeout"); got != 2 {
		t.Fatalf("expected 2 retries for cause, got %d", got)
	}
	if len(l.RetryRecords()) != 3 {
		t.Fatalf("expected 3 retry records, got %d", len(l.RetryRecords()))
	}
}

func TestMarkSkipped(t *testing.T) {
	l := New()
	l.AppendStatus(StatusScheduled, "", ts(1))
	l.MarkSkipped(channel.TypeSMS, channel.SkipSuppressed)
	l.MarkSkipped(channel.TypePush, channel.SkipNoTouchpoint)

	skipped := l.SkippedChannels()
	if skipped[channel.TypeSMS] != channel.SkipSuppressed || skipped[channel.TypePush] != channel.SkipNoTouchpoint {
		t.Fatalf("unexpected skip map: %v", skipped)
	}

	// informational only: current status unchanged
	cur, _ := l.CurrentStatus()
	if cur.Status != StatusScheduled {
		t.Fatalf("markSkipped changed current status to %s", cur.Status)
	}

	// returned map is a copy
	skipped[channel.TypeSMS] = "edited"
	if l.SkippedChannels()[channel.TypeSMS] != channel.SkipSuppressed {
		t.Fatalf("skip accessor exposed internal map")
	}
}

func TestRestoreCopiesInputs(t *testing.T) {
	hist := []StatusEntry{{Status: StatusScheduled, Timestamp: ts(1)}}
	retries := []RetryRecord{{ExceptionDescription: "x", MaxRetryLimit: 3, RetryCount: 1, RetryIntervalMs: 1000}}
	skipped := map[channel.ChannelType]string{channel.TypeIVM: channel.SkipDisabled}

	l := Restore(hist, retries, skipped)

	hist[0].Status = StatusCanceled
	skipped[channel.TypeIVM] = "edited"

	if l.StatusHistory()[0].Status != StatusScheduled {
		t.Fatalf("restore aliases history input")
	}
	if l.SkippedChannels()[channel.TypeIVM] != channel.SkipDisabled {
		t.Fatalf("restore aliases skipped input")
	}
	if got := l.RetriesFor("x"); got != 1 {
		t.Fatalf("restore lost retry records, got %d", got)
	}
}

func TestValidTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusScheduleRequested, StatusScheduled},
		{StatusScheduled, StatusReady},
		{StatusScheduled, StatusCanceled},
		{StatusScheduled, StatusStoppedByConfig},
		{StatusReady, StatusDone},
		{StatusReady, StatusFailed},
		{StatusFailed, StatusRetryRequested},
		{StatusRetryRequested, StatusRetryScheduled},
		{StatusRetryScheduled, StatusReady},
	}
	for _, p := range allowed {
		if !ValidTransition(p[0], p[1]) {
			t.Fatalf("expected %s -> %s to be valid", p[0], p[1])
		}
	}

	denied := [][2]Status{
		{StatusScheduled, StatusDone},
		{StatusDone, StatusReady},
		{StatusCanceled, StatusReady},
		{StatusScheduleRequested, StatusFailed},
	}
	for _, p := range denied {
		if ValidTransition(p[0], p[1]) {
			t.Fatalf("expected %s -> %s to be invalid", p[0], p[1])
		}
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("STOPPED_BY_CONFIG")
	if err != nil || st != StatusStoppedByConfig {
		t.Fatalf("got %s err=%v", st, err)
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Fatalf("expected error for lower-case status name")
	}
}
