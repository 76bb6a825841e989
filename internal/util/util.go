package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

func NewAlertID() string {
	// ULID is sortable (nice for DB indexes and dashboards)
	t := time.Now().UTC()
	return "alr_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

func NewCorrelationID() string {
	t := time.Now().UTC()
	return "crl_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

func NowUTC() time.Time {
	return time.Now().UTC()
}
