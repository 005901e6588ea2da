package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageRepository keeps per-user daily message counters.
type UsageRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db, now: time.Now}
}

func (r *UsageRepository) today() string {
	return r.now().Format("2006-01-02")
}

// IncrementSent increments messages_sent for today.
func (r *UsageRepository) IncrementSent(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO message_usage (user_id, date, messages_sent, messages_received)
		VALUES ($1, $2, 1, 0)
		ON CONFLICT (user_id, date)
		DO UPDATE SET messages_sent = message_usage.messages_sent + 1
	`, userID, r.today())
	return err
}

// IncrementReceived increments messages_received for today.
func (r *UsageRepository) IncrementReceived(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO message_usage (user_id, date, messages_sent, messages_received)
		VALUES ($1, $2, 0, 1)
		ON CONFLICT (user_id, date)
		DO UPDATE SET messages_received = message_usage.messages_received + 1
	`, userID, r.today())
	return err
}

// GetTodayUsage returns today's counters; a missing row means zero usage.
func (r *UsageRepository) GetTodayUsage(ctx context.Context, userID string) (sent, received int, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT messages_sent, messages_received
		FROM message_usage WHERE user_id = $1 AND date = $2
	`, userID, r.today()).Scan(&sent, &received)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, nil
	}
	return sent, received, err
}

// NopUsage is used when no database is configured.
type NopUsage struct{}

func (NopUsage) IncrementReceived(context.Context, string) error { return nil }
func (NopUsage) IncrementSent(context.Context, string) error     { return nil }
