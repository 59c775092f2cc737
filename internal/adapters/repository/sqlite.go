package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/pkg/logger"
)

// sqliteSchema is applied once when the store opens.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS feedback_records (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    source TEXT NOT NULL DEFAULT '',
    classification TEXT NOT NULL CHECK(classification IN ('HOT','COLD','GOOD')),
    predicted_skin_temp REAL,
    current_temp REAL,
    current_humidity REAL,
    target_temp REAL,
    target_humidity REAL,
    action_taken TEXT,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback_records(created_at DESC, seq DESC);

CREATE TABLE IF NOT EXISTS comfort_range (
    id INTEGER PRIMARY KEY CHECK(id = 1),
    min_temp REAL NOT NULL,
    max_temp REAL NOT NULL,
    created_at INTEGER NOT NULL,
    CHECK(min_temp < max_temp)
);

CREATE TABLE IF NOT EXISTS controller_state (
    id INTEGER PRIMARY KEY CHECK(id = 1),
    last_adjustment_time INTEGER
);

CREATE TABLE IF NOT EXISTS user_feedback (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    vote TEXT NOT NULL CHECK(vote IN ('hot','cold','comfortable')),
    date INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
`

// SQLiteStore is a SQLite implementation of Store.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// NewSQLiteStore opens the database at path and applies the schema.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return openSQLite(db, path, opts)
}

// NewSQLiteMemoryStore opens a private in-memory database.
func NewSQLiteMemoryStore(opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	return openSQLite(db, ":memory:", opts)
}

func openSQLite(db *sql.DB, path string, opts []Option) (*SQLiteStore, error) {
	o := newOptions("store.sqlite", opts)
	// one connection serialises writers and keeps ":memory:" a single database
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	o.log.Info(context.Background(), "sqlite store opened", logger.String("path", path))
	return &SQLiteStore{db: db, opts: o}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func (s *SQLiteStore) AppendFeedback(ctx context.Context, rec model.FeedbackRecord) (model.FeedbackRecord, error) {
	rec, err := prepareFeedback(rec, s.opts.now)
	if err != nil {
		return rec, err
	}

	var action sql.NullString
	if rec.ActionTaken != nil {
		action = sql.NullString{String: *rec.ActionTaken, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO feedback_records (
			id, source, classification, predicted_skin_temp,
			current_temp, current_humidity, target_temp, target_humidity,
			action_taken, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Source,
		rec.Classification.String(),
		nullFloat(rec.PredictedSkinTemp),
		nullFloat(rec.CurrentTemp),
		nullFloat(rec.CurrentHumidity),
		nullFloat(rec.TargetTemp),
		nullFloat(rec.TargetHumidity),
		action,
		rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return rec, fmt.Errorf("inserting feedback record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) RecentFeedback(ctx context.Context, n int) ([]model.FeedbackRecord, error) {
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, classification, predicted_skin_temp,
		       current_temp, current_humidity, target_temp, target_humidity,
		       action_taken, created_at
		FROM feedback_records
		ORDER BY created_at DESC, seq DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying feedback records: %w", err)
	}
	defer rows.Close()

	out := make([]model.FeedbackRecord, 0, n)
	for rows.Next() {
		var (
			rec                                     model.FeedbackRecord
			class                                   string
			predicted, curT, curH, targetT, targetH sql.NullFloat64
			action                                  sql.NullString
			created                                 int64
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &class, &predicted, &curT, &curH, &targetT, &targetH, &action, &created); err != nil {
			return nil, fmt.Errorf("scanning feedback record: %w", err)
		}
		if rec.Classification, err = model.ParseClassification(class); err != nil {
			return nil, err
		}
		rec.PredictedSkinTemp = floatPtr(predicted)
		rec.CurrentTemp = floatPtr(curT)
		rec.CurrentHumidity = floatPtr(curH)
		rec.TargetTemp = floatPtr(targetT)
		rec.TargetHumidity = floatPtr(targetH)
		if action.Valid {
			a := action.String
			rec.ActionTaken = &a
		}
		rec.CreatedAt = fromNanos(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ComfortRange(ctx context.Context) (model.ComfortRange, error) {
	var (
		r       model.ComfortRange
		created int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT min_temp, max_temp, created_at FROM comfort_range WHERE id = 1`).
		Scan(&r.MinTemp, &r.MaxTemp, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("reading comfort range: %w", err)
	}
	r.CreatedAt = fromNanos(created)
	return r, nil
}

func (s *SQLiteStore) SaveComfortRange(ctx context.Context, r model.ComfortRange) (model.ComfortRange, error) {
	r, err := prepareRange(r, s.opts.now)
	if err != nil {
		return r, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comfort_range (id, min_temp, max_temp, created_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		r.MinTemp, r.MaxTemp, r.CreatedAt.UnixNano())
	if err != nil {
		return r, fmt.Errorf("inserting comfort range: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		existing, err := s.ComfortRange(ctx)
		if err != nil {
			return r, err
		}
		return existing, ErrAlreadyConfigured
	}
	return r, nil
}

func (s *SQLiteStore) ResetComfortRange(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comfort_range WHERE id = 1`); err != nil {
		return fmt.Errorf("deleting comfort range: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ControllerState(ctx context.Context) (model.ControllerState, error) {
	var (
		st   model.ControllerState
		last sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `SELECT last_adjustment_time FROM controller_state WHERE id = 1`).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("reading controller state: %w", err)
	}
	if last.Valid {
		t := fromNanos(last.Int64)
		st.LastAdjustmentTime = &t
	}
	return st, nil
}

func (s *SQLiteStore) SaveControllerState(ctx context.Context, st model.ControllerState) error {
	var last sql.NullInt64
	if st.LastAdjustmentTime != nil {
		last = sql.NullInt64{Int64: st.LastAdjustmentTime.UnixNano(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO controller_state (id, last_adjustment_time) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_adjustment_time = excluded.last_adjustment_time`, last)
	if err != nil {
		return fmt.Errorf("saving controller state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendUserFeedback(ctx context.Context, f model.UserFeedback) (model.UserFeedback, error) {
	f = prepareUserFeedback(f, s.opts.now)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_feedback (id, vote, date, created_at) VALUES (?, ?, ?, ?)`,
		f.ID, string(f.Vote), f.Date.UnixNano(), f.CreatedAt.UnixNano())
	if err != nil {
		return f, fmt.Errorf("inserting user feedback: %w", err)
	}
	return f, nil
}

func (s *SQLiteStore) RecentUserFeedback(ctx context.Context, n int) ([]model.UserFeedback, error) {
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vote, date, created_at FROM user_feedback
		ORDER BY created_at DESC, seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying user feedback: %w", err)
	}
	defer rows.Close()

	out := make([]model.UserFeedback, 0, n)
	for rows.Next() {
		var (
			f             model.UserFeedback
			vote          string
			date, created int64
		)
		if err := rows.Scan(&f.ID, &vote, &date, &created); err != nil {
			return nil, fmt.Errorf("scanning user feedback: %w", err)
		}
		f.Vote = model.Vote(vote)
		f.Date = fromNanos(date)
		f.CreatedAt = fromNanos(created)
		out = append(out, f)
	}
	return out, rows.Err()
}
