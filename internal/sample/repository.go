package sample

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/mbeaumont/elostream/internal/domain"
)

// Repository is an optional Postgres sink for sampled games and run
// reports. It is glue, not part of the core pipeline: the loader and
// formatter never touch it.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS sampled_games (
	site TEXT PRIMARY KEY,
	run_id UUID NOT NULL,
	event TEXT NOT NULL,
	white TEXT NOT NULL,
	black TEXT NOT NULL,
	result TEXT NOT NULL,
	utc_date TEXT NOT NULL,
	utc_time TEXT NOT NULL,
	white_elo INTEGER,
	black_elo INTEGER,
	white_rating_diff INTEGER,
	black_rating_diff INTEGER,
	eco TEXT,
	opening TEXT,
	termination TEXT NOT NULL,
	time_control TEXT NOT NULL,
	movetext TEXT NOT NULL,
	pgn TEXT NOT NULL,
	sampled_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sample_runs (
	run_id UUID PRIMARY KEY,
	dataset TEXT NOT NULL,
	year INTEGER NOT NULL,
	month INTEGER NOT NULL,
	requested INTEGER NOT NULL,
	produced INTEGER NOT NULL,
	skipped_schema INTEGER NOT NULL,
	shards INTEGER NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);`

// EnsureSchema creates the sink tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// SaveGame upserts one sampled game, keyed by its site URL so re-running
// the same partition stays idempotent.
func (r *Repository) SaveGame(ctx context.Context, runID string, rec *domain.GameRecord, pgnText string) error {
	if r == nil || r.db == nil || rec == nil {
		return nil
	}
	if rec.Site == nil {
		return fmt.Errorf("record has no site key")
	}

	q := `INSERT INTO sampled_games (
	    site, run_id, event, white, black, result, utc_date, utc_time,
	    white_elo, black_elo, white_rating_diff, black_rating_diff,
	    eco, opening, termination, time_control, movetext, pgn
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
	  ) ON CONFLICT (site) DO UPDATE SET
	    run_id=EXCLUDED.run_id,
	    event=EXCLUDED.event,
	    white=EXCLUDED.white,
	    black=EXCLUDED.black,
	    result=EXCLUDED.result,
	    utc_date=EXCLUDED.utc_date,
	    utc_time=EXCLUDED.utc_time,
	    white_elo=EXCLUDED.white_elo,
	    black_elo=EXCLUDED.black_elo,
	    white_rating_diff=EXCLUDED.white_rating_diff,
	    black_rating_diff=EXCLUDED.black_rating_diff,
	    eco=EXCLUDED.eco,
	    opening=EXCLUDED.opening,
	    termination=EXCLUDED.termination,
	    time_control=EXCLUDED.time_control,
	    movetext=EXCLUDED.movetext,
	    pgn=EXCLUDED.pgn,
	    sampled_at=now()`

	_, err := r.db.ExecContext(ctx, q,
		*rec.Site, runID,
		strOrEmpty(rec.Event), strOrEmpty(rec.White), strOrEmpty(rec.Black), strOrEmpty(rec.Result),
		strOrEmpty(rec.UTCDate), strOrEmpty(rec.UTCTime),
		nullInt(rec.WhiteElo), nullInt(rec.BlackElo),
		nullInt(rec.WhiteRatingDiff), nullInt(rec.BlackRatingDiff),
		nullStr(rec.ECO), nullStr(rec.Opening),
		string(rec.Termination), rec.TimeControl.Raw, rec.Movetext, pgnText,
	)
	return err
}

// SaveReport records the final counters of a batch run.
func (r *Repository) SaveReport(ctx context.Context, rep *Report) error {
	if r == nil || r.db == nil || rep == nil {
		return nil
	}
	q := `INSERT INTO sample_runs (
	    run_id, dataset, year, month, requested, produced, skipped_schema,
	    shards, started_at, finished_at
	  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	  ON CONFLICT (run_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q,
		rep.RunID, rep.Dataset, rep.Year, rep.Month,
		rep.Requested, rep.Produced, rep.SkippedSchema, rep.Shards,
		rep.StartedAt, rep.FinishedAt,
	)
	return err
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt32 {
	if n == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*n), Valid: true}
}
