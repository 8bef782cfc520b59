package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/giveawaybot/core/logger"
)

// PostgresStore persists sessions in the giveaway_sessions table.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type sessionRow struct {
	UserID      int64          `db:"user_id"`
	State       string         `db:"state"`
	Handle      string         `db:"handle"`
	Wallet      string         `db:"wallet_address"`
	ClaimID     sql.NullString `db:"claim_id"`
	CompletedAt sql.NullTime   `db:"completed_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r sessionRow) session() *Session {
	sess := &Session{
		UserID:    r.UserID,
		State:     State(r.State),
		Handle:    r.Handle,
		Wallet:    r.Wallet,
		ClaimID:   r.ClaimID.String,
		UpdatedAt: r.UpdatedAt,
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		sess.CompletedAt = &t
	}
	return sess
}

const selectSessionSQL = `
SELECT user_id, state, handle, wallet_address, claim_id, completed_at, updated_at
FROM giveaway_sessions
WHERE user_id = $1`

// Completed rows keep their state, handle, wallet and claim id.
const upsertSessionSQL = `
INSERT INTO giveaway_sessions (user_id, state, handle, wallet_address, claim_id, completed_at, updated_at)
VALUES (:user_id, :state, :handle, :wallet_address, :claim_id, :completed_at, now())
ON CONFLICT (user_id) DO UPDATE SET
    state          = CASE WHEN giveaway_sessions.completed_at IS NULL THEN EXCLUDED.state ELSE giveaway_sessions.state END,
    handle         = CASE WHEN giveaway_sessions.completed_at IS NULL THEN EXCLUDED.handle ELSE giveaway_sessions.handle END,
    wallet_address = COALESCE(NULLIF(giveaway_sessions.wallet_address, ''), EXCLUDED.wallet_address),
    claim_id       = COALESCE(giveaway_sessions.claim_id, EXCLUDED.claim_id),
    completed_at   = COALESCE(giveaway_sessions.completed_at, EXCLUDED.completed_at),
    updated_at     = now()`

// Get loads the session for userID or returns a fresh idle one.
func (p *PostgresStore) Get(ctx context.Context, userID int64) (*Session, error) {
	var row sessionRow
	start := time.Now()
	err := p.db.GetContext(ctx, &row, selectSessionSQL, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewSession(userID), nil
	}
	if err != nil {
		logger.Error(ctx, "store", "store.get",
			slog.String("status", "fail"),
			slog.String("store", "postgres"),
			slog.Duration("duration", time.Since(start)),
			slog.String("err", logger.ErrText(err)),
		)
		return nil, fmt.Errorf("get session %d: %w", userID, err)
	}
	return row.session(), nil
}

// Put upserts sess. Wallet, claim id and completion time are write-once.
func (p *PostgresStore) Put(ctx context.Context, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}
	row := sessionRow{
		UserID: sess.UserID,
		State:  string(sess.State),
		Handle: sess.Handle,
		Wallet: sess.Wallet,
	}
	if sess.ClaimID != "" {
		row.ClaimID = sql.NullString{String: sess.ClaimID, Valid: true}
	}
	if sess.CompletedAt != nil {
		row.CompletedAt = sql.NullTime{Time: sess.CompletedAt.UTC(), Valid: true}
	}

	start := time.Now()
	if _, err := p.db.NamedExecContext(ctx, upsertSessionSQL, row); err != nil {
		logger.Error(ctx, "store", "store.put",
			slog.String("status", "fail"),
			slog.String("store", "postgres"),
			slog.String("state", row.State),
			slog.Duration("duration", time.Since(start)),
			slog.String("err", logger.ErrText(err)),
		)
		return fmt.Errorf("put session %d: %w", sess.UserID, err)
	}
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, "store", "store.put",
			slog.String("status", "ok"),
			slog.String("store", "postgres"),
			slog.String("state", row.State),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return nil
}

// IsCompleted reports whether userID has a completed session.
func (p *PostgresStore) IsCompleted(ctx context.Context, userID int64) (bool, error) {
	var done bool
	err := p.db.GetContext(ctx, &done,
		`SELECT EXISTS (SELECT 1 FROM giveaway_sessions WHERE user_id = $1 AND completed_at IS NOT NULL)`,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("check completion %d: %w", userID, err)
	}
	return done, nil
}

// Stats counts sessions per state.
func (p *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var rows []struct {
		State string `db:"state"`
		Count int    `db:"n"`
	}
	if err := p.db.SelectContext(ctx, &rows,
		`SELECT state, COUNT(*) AS n FROM giveaway_sessions GROUP BY state`,
	); err != nil {
		return Stats{}, fmt.Errorf("session stats: %w", err)
	}
	st := Stats{ByState: make(map[State]int, len(rows))}
	for _, r := range rows {
		st.ByState[State(r.State)] = r.Count
		st.Total += r.Count
		if State(r.State) == StateCompleted {
			st.Completed += r.Count
		}
	}
	return st, nil
}
