package ledger

import (
	"fmt"
	"time"

	"vtnotif/internal/channel"
)

// Status is one processing state in the delivery lifecycle of an alert.
type Status string

const (
	StatusScheduleRequested Status = "SCHEDULE_REQUESTED"
	StatusScheduled         Status = "SCHEDULED"
	StatusCanceled          Status = "CANCELED"
	StatusFailed            Status = "FAILED"
	StatusDone              Status = "DONE"
	StatusReady             Status = "READY"
	StatusStoppedByConfig   Status = "STOPPED_BY_CONFIG"
	StatusRetryRequested    Status = "RETRY_REQUESTED"
	StatusRetryScheduled    Status = "RETRY_SCHEDULED"
)

var statusNames = map[string]Status{
	string(StatusScheduleRequested): StatusScheduleRequested,
	string(StatusScheduled):         StatusScheduled,
	string(StatusCanceled):          StatusCanceled,
	string(StatusFailed):            StatusFailed,
	string(StatusDone):              StatusDone,
	string(StatusReady):             StatusReady,
	string(StatusStoppedByConfig):   StatusStoppedByConfig,
	string(StatusRetryRequested):    StatusRetryRequested,
	string(StatusRetryScheduled):    StatusRetryScheduled,
}

func ParseStatus(s string) (Status, error) {
	st, ok := statusNames[s]
	if !ok {
		return "", fmt.Errorf("invalid delivery status %q", s)
	}
	return st, nil
}

// transitions encodes the delivery state machine. The ledger itself only
// records; the engine consults this table before appending.
var transitions = map[Status][]Status{
	StatusScheduleRequested: {StatusScheduled},
	StatusScheduled:         {StatusReady, StatusCanceled, StatusStoppedByConfig},
	StatusReady:             {StatusDone, StatusFailed},
	StatusFailed:            {StatusRetryRequested},
	StatusRetryRequested:    {StatusRetryScheduled},
	StatusRetryScheduled:    {StatusReady},
}

// ValidTransition reports whether the state machine allows moving from one
// status to another.
func ValidTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusEntry is one append-only record in an alert's processing history.
type StatusEntry struct {
	Status        Status    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlationId,omitempty"`
}

// RetryRecord is the bookkeeping for one retry cycle. RetryCount counts
// cycles triggered by the same cause; the engine enforces MaxRetryLimit.
type RetryRecord struct {
	ExceptionDescription string `json:"exceptionDescription"`
	MaxRetryLimit        int    `json:"maxRetryLimit"`
	RetryCount           int    `json:"retryCount"`
	RetryIntervalMs      int64  `json:"retryIntervalMs"`
}

// Ledger is the append-only processing history of one alert-delivery unit.
// It does no locking of its own; the owning store serializes appends per
// alert-history identity.
type Ledger struct {
	statusHistory   []StatusEntry
	retryRecords    []RetryRecord
	skippedChannels map[channel.ChannelType]string
}

// New returns an empty ledger, created when an alert is first accepted for
// processing.
func New() *Ledger {
	return &Ledger{skippedChannels: make(map[channel.ChannelType]string)}
}

// Restore rebuilds a ledger from persisted rows. All inputs are copied.
func Restore(history []StatusEntry, retries []RetryRecord, skipped map[channel.ChannelType]string) *Ledger {
	l := New()
	l.statusHistory = append(l.statusHistory, history...)
	l.retryRecords = append(l.retryRecords, retries...)
	for t, reason := range skipped {
		l.skippedChannels[t] = reason
	}
	return l
}

// AppendStatus records a processing state at the given instant. Prior
// entries are never rewritten.
func (l *Ledger) AppendStatus(status Status, correlationID string, now time.Time) StatusEntry {
	e := StatusEntry{Status: status, Timestamp: now, CorrelationID: correlationID}
	l.statusHistory = append(l.statusHistory, e)
	return e
}

// CurrentStatus returns the entry with the latest timestamp. Entries may
// arrive out of chronological order under retry processing, so this scans
// for the maximum timestamp rather than trusting list order; ties go to the
// entry appended last.
func (l *Ledger) CurrentStatus() (StatusEntry, bool) {
	if len(l.statusHistory) == 0 {
		return StatusEntry{}, false
	}
	cur := l.statusHistory[0]
	for _, e := range l.statusHistory[1:] {
		if !e.Timestamp.Before(cur.Timestamp) {
			cur = e
		}
	}
	return cur, true
}

// RecordRetry appends a retry record for the given failure cause. The count
// continues from earlier cycles with the same cause.
func (l *Ledger) RecordRetry(exceptionDescription string, maxRetryLimit int, retryIntervalMs int64) RetryRecord {
	r := RetryRecord{
		ExceptionDescription: exceptionDescription,
		MaxRetryLimit:        maxRetryLimit,
		RetryCount:           l.RetriesFor(exceptionDescription) + 1,
		RetryIntervalMs:      retryIntervalMs,
	}
	l.retryRecords = append(l.retryRecords, r)
	return r
}

// RetriesFor returns how many retry cycles the given cause has triggered.
func (l *Ledger) RetriesFor(exceptionDescription string) int {
	n := 0
	for _, r := range l.retryRecords {
		if r.ExceptionDescription == exceptionDescription {
			n++
		}
	}
	return n
}

// MarkSkipped records that a channel was not attempted for this alert.
// Informational only; it does not affect CurrentStatus.
func (l *Ledger) MarkSkipped(t channel.ChannelType, reason string) {
	l.skippedChannels[t] = reason
}

func (l *Ledger) StatusHistory() []StatusEntry {
	out := make([]StatusEntry, len(l.statusHistory))
	copy(out, l.statusHistory)
	return out
}

func (l *Ledger) RetryRecords() []RetryRecord {
	out := make([]RetryRecord, len(l.retryRecords))
	copy(out, l.retryRecords)
	return out
}

func (l *Ledger) SkippedChannels() map[channel.ChannelType]string {
	out := make(map[channel.ChannelType]string, len(l.skippedChannels))
	for t, reason := range l.skippedChannels {
		out[t] = reason
	}
	return out
}
