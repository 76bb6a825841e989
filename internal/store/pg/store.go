package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vtnotif/internal/channel"
	"vtnotif/internal/domain"
	"vtnotif/internal/ledger"
	"vtnotif/internal/observability"
)

// Store owns channel configurations and alert-history ledgers. Ledger writes
// that read prior rows (retry counts) take a per-alert advisory lock so
// concurrent appends to the same ledger are serialized here, not in the
// in-memory types.
type Store struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) GetUserChannels(ctx context.Context, userID string) ([]channel.Channel, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT config_json FROM user_channels WHERE user_id=$1 ORDER BY channel_type
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []channel.Channel
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		ch, err := channel.Decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// SaveUserChannels replaces the user's configuration wholesale.
func (s *Store) SaveUserChannels(ctx context.Context, userID string, chs []channel.Channel, now time.Time) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM user_channels WHERE user_id=$1`, userID); err != nil {
		return err
	}
	for _, ch := range chs {
		b, err := channel.Encode(ch)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_channels (user_id, channel_type, config_json, updated_at)
			VALUES ($1,$2,$3,$4)
		`, userID, string(ch.Type()), b, now); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) InsertAlertHistory(ctx context.Context, a domain.Alert) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO alert_history (id, vehicle_id, user_id, alert_type, severity, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, a.ID, a.VehicleID, a.UserID, a.AlertType, nullIfEmpty(a.Severity), a.CreatedAt)
	return err
}

func (s *Store) GetAlertHistory(ctx context.Context, alertID string) (domain.AlertHistory, bool, error) {
	var a domain.Alert
	row := s.DB.QueryRow(ctx, `
		SELECT id, vehicle_id, user_id, alert_type, COALESCE(severity,''), created_at
		FROM alert_history WHERE id=$1
	`, alertID)
	if err := row.Scan(&a.ID, &a.VehicleID, &a.UserID, &a.AlertType, &a.Severity, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AlertHistory{}, false, nil
		}
		return domain.AlertHistory{}, false, err
	}

	led, err := s.loadLedger(ctx, alertID)
	if err != nil {
		return domain.AlertHistory{}, false, err
	}
	return domain.AlertHistory{Alert: a, Ledger: led}, true, nil
}

// AppendStatus persists one status entry for the alert. History rows are
// never updated or deleted until the alert is purged.
func (s *Store) AppendStatus(ctx context.Context, alertID string, e ledger.StatusEntry) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO alert_status_history (alert_id, status, occurred_at, correlation_id)
		VALUES ($1,$2,$3,$4)
	`, alertID, string(e.Status), e.Timestamp, nullIfEmpty(e.CorrelationID))
	if err == nil {
		observability.LedgerAppends.WithLabelValues(string(e.Status)).Inc()
	}
	return err
}

// InsertRetryRecord appends a retry record, numbering it after prior cycles
// with the same cause. The advisory lock serializes concurrent retries for
// one alert.
func (s *Store) InsertRetryRecord(ctx context.Context, alertID, cause string, maxRetryLimit int, retryIntervalMs int64) (ledger.RetryRecord, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return ledger.RetryRecord{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, alertID); err != nil {
		return ledger.RetryRecord{}, err
	}

	var prior int
	row := tx.QueryRow(ctx, `
		SELECT count(*) FROM alert_retry_records WHERE alert_id=$1 AND exception_description=$2
	`, alertID, cause)
	if err := row.Scan(&prior); err != nil {
		return ledger.RetryRecord{}, err
	}

	rec := ledger.RetryRecord{
		ExceptionDescription: cause,
		MaxRetryLimit:        maxRetryLimit,
		RetryCount:           prior + 1,
		RetryIntervalMs:      retryIntervalMs,
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO alert_retry_records (alert_id, exception_description, max_retry_limit, retry_count, retry_interval_ms)
		VALUES ($1,$2,$3,$4,$5)
	`, alertID, rec.ExceptionDescription, rec.MaxRetryLimit, rec.RetryCount, rec.RetryIntervalMs); err != nil {
		return ledger.RetryRecord{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.RetryRecord{}, err
	}
	return rec, nil
}

func (s *Store) MarkSkipped(ctx context.Context, alertID string, t channel.ChannelType, reason string) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO alert_skipped_channels (alert_id, channel_type, reason)
		VALUES ($1,$2,$3)
		ON CONFLICT (alert_id, channel_type) DO UPDATE SET reason=excluded.reason
	`, alertID, string(t), reason)
	if err == nil {
		observability.SkippedChannels.WithLabelValues(reason).Inc()
	}
	return err
}

func (s *Store) loadLedger(ctx context.Context, alertID string) (*ledger.Ledger, error) {
	var history []ledger.StatusEntry
	rows, err := s.DB.Query(ctx, `
		SELECT status, occurred_at, COALESCE(correlation_id,'')
		FROM alert_status_history WHERE alert_id=$1 ORDER BY seq
	`, alertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		var e ledger.StatusEntry
		if err := rows.Scan(&raw, &e.Timestamp, &e.CorrelationID); err != nil {
			return nil, err
		}
		st, err := ledger.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		e.Status = st
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var retries []ledger.RetryRecord
	rrows, err := s.DB.Query(ctx, `
		SELECT exception_description, max_retry_limit, retry_count, retry_interval_ms
		FROM alert_retry_records WHERE alert_id=$1 ORDER BY seq
	`, alertID)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var r ledger.RetryRecord
		if err := rrows.Scan(&r.ExceptionDescription, &r.MaxRetryLimit, &r.RetryCount, &r.RetryIntervalMs); err != nil {
			return nil, err
		}
		retries = append(retries, r)
	}
	if err := rrows.Err(); err != nil {
		return nil, err
	}

	skipped := make(map[channel.ChannelType]string)
	srows, err := s.DB.Query(ctx, `
		SELECT channel_type, reason FROM alert_skipped_channels WHERE alert_id=$1
	`, alertID)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var raw, reason string
		if err := srows.Scan(&raw, &reason); err != nil {
			return nil, err
		}
		t, err := channel.ParseType(raw)
		if err != nil {
			return nil, err
		}
		skipped[t] = reason
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}

	return ledger.Restore(history, retries, skipped), nil
}

// PurgeAlertHistory destroys the alert's history record and its ledger rows.
func (s *Store) PurgeAlertHistory(ctx context.Context, alertID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, q := range []string{
		`DELETE FROM alert_status_history WHERE alert_id=$1`,
		`DELETE FROM alert_retry_records WHERE alert_id=$1`,
		`DELETE FROM alert_skipped_channels WHERE alert_id=$1`,
		`DELETE FROM alert_history WHERE id=$1`,
	} {
		if _, err := tx.Exec(ctx, q, alertID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
