package domain

import (
	"strings"
	"testing"
	"time"

	"vtnotif/internal/ledger"
	"vtnotif/internal/util"
)

func TestNewAlert(t *testing.T) {
	now := time.Date(2024, 12, 16, 10, 0, 0, 0, time.UTC)
	a := NewAlert("veh_1", "usr_1", "HARSH_BRAKING", "HIGH", now)

	if !strings.HasPrefix(a.ID, "alr_") {
		t.Fatalf("expected alr_ prefixed id, got %q", a.ID)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v", now, a.CreatedAt)
	}
}

func TestValidateMissingFields(t *testing.T) {
	a := Alert{ID: "alr_1", UserID: "usr_1", AlertType: "SPEEDING"}
	if err := a.Validate(); err != ErrMissingFields {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestNewAlertHistoryStartsEmpty(t *testing.T) {
	a := NewAlert("veh_1", "usr_1", "SPEEDING", "", util.NowUTC())
	h := NewAlertHistory(a)

	if _, ok := h.Ledger.CurrentStatus(); ok {
		t.Fatalf("expected empty ledger on a fresh history")
	}

	e := h.Ledger.AppendStatus(ledger.StatusScheduleRequested, util.NewCorrelationID(), util.NowUTC())
	if !strings.HasPrefix(e.CorrelationID, "crl_") {
		t.Fatalf("expected crl_ prefixed correlation id, got %q", e.CorrelationID)
	}
}
