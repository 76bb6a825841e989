package domain

import (
	"errors"
	"time"

	"vtnotif/internal/ledger"
	"vtnotif/internal/util"
)

var ErrMissingFields = errors.New("missing required fields")

// Alert is the notification envelope handed to the platform by the
// telematics pipeline.
type Alert struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicleId"`
	UserID    string    `json:"userId"`
	AlertType string    `json:"alertType"`
	Severity  string    `json:"severity,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAlert mints an alert envelope with a fresh sortable id.
func NewAlert(vehicleID, userID, alertType, severity string, now time.Time) Alert {
	return Alert{
		ID:        util.NewAlertID(),
		VehicleID: vehicleID,
		UserID:    userID,
		AlertType: alertType,
		Severity:  severity,
		CreatedAt: now,
	}
}

func (a Alert) Validate() error {
	if a.ID == "" || a.VehicleID == "" || a.UserID == "" || a.AlertType == "" {
		return ErrMissingFields
	}
	return nil
}

// AlertHistory is the processing record for one alert; it owns the delivery
// status ledger for that alert's lifetime.
type AlertHistory struct {
	Alert  Alert
	Ledger *ledger.Ledger
}

// NewAlertHistory creates the history record with an empty ledger, as done
// when an alert is first accepted for processing.
func NewAlertHistory(a Alert) AlertHistory {
	return AlertHistory{Alert: a, Ledger: ledger.New()}
}
