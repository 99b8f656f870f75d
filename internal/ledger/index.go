package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// Index is a transient, in-memory SQLite projection of the event log for
// ad-hoc history queries. It is rebuilt from the JSONL log on open and
// discarded on close; the log stays the sole source of truth.
type Index struct {
	db *sql.DB
}

const indexSchema = `
CREATE TABLE events (
	episode_id TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	id         TEXT NOT NULL,
	name       TEXT NOT NULL,
	qdpi       TEXT NOT NULL,
	direction  TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (episode_id, seq)
);

CREATE TABLE credits (
	episode_id    TEXT NOT NULL,
	seq           INTEGER NOT NULL,
	delta         INTEGER NOT NULL,
	balance_after INTEGER NOT NULL,
	reason        TEXT NOT NULL,
	event_id      TEXT NOT NULL,
	PRIMARY KEY (episode_id, seq)
);
`

// OpenIndex builds the index from the current contents of src. Call Close
// when done; the data does not outlive the process.
func OpenIndex(ctx context.Context, src EventSource) (*Index, error) {
	events, err := src.Events("")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	// The in-memory database vanishes if its only connection closes.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("open index: schema: %w", err)
	}

	idx := &Index{db: db}
	if err := idx.load(ctx, events); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Close releases the in-memory database.
func (x *Index) Close() error {
	return x.db.Close()
}

func (x *Index) load(ctx context.Context, events []qdpi.Event) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index load: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (episode_id, seq, id, name, qdpi, direction, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, ev.EpisodeID, ev.Seq, ev.ID, string(ev.Name), string(ev.QDPI), string(ev.Direction), ev.CreatedAt)
		if err != nil {
			return fmt.Errorf("index load: event %s: %w", ev.ID, err)
		}

		if ev.Name != qdpi.NameCreditsDelta {
			continue
		}
		cd, err := qdpi.CreditsDeltaOf(ev)
		if err != nil {
			return fmt.Errorf("index load: event %s: %w", ev.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO credits (episode_id, seq, delta, balance_after, reason, event_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ev.EpisodeID, ev.Seq, cd.Delta, cd.BalanceAfter, string(cd.Reason), ev.ID)
		if err != nil {
			return fmt.Errorf("index load: credit %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index load: commit: %w", err)
	}
	return nil
}

// HistoryRow is one event in a history listing.
type HistoryRow struct {
	EpisodeID string
	Seq       int64
	ID        string
	Name      string
	QDPI      string
	Direction string
	CreatedAt string
}

// History lists events in (episode_id, seq) order, newest last. An empty
// episodeID covers every episode; limit 0 means no limit.
func (x *Index) History(ctx context.Context, episodeID string, limit int) ([]HistoryRow, error) {
	q := `
		SELECT episode_id, seq, id, name, qdpi, direction, created_at
		FROM events
	`
	var args []any
	if episodeID != "" {
		q += " WHERE episode_id = ?"
		args = append(args, episodeID)
	}
	q += " ORDER BY episode_id, seq"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var r HistoryRow
		if err := rows.Scan(&r.EpisodeID, &r.Seq, &r.ID, &r.Name, &r.QDPI, &r.Direction, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return out, nil
}

// CreditHistory lists credits.delta rows in fold order, with per-reason
// filtering. An empty reason matches every reason.
func (x *Index) CreditHistory(ctx context.Context, episodeID string, reason qdpi.Reason) ([]Entry, error) {
	q := `
		SELECT episode_id, seq, delta, balance_after, reason, event_id
		FROM credits
		WHERE 1 = 1
	`
	var args []any
	if episodeID != "" {
		q += " AND episode_id = ?"
		args = append(args, episodeID)
	}
	if reason != "" {
		q += " AND reason = ?"
		args = append(args, string(reason))
	}
	q += " ORDER BY episode_id, seq"

	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("credit history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var reason string
		if err := rows.Scan(&e.EpisodeID, &e.Seq, &e.Delta, &e.BalanceAfter, &reason, &e.EventID); err != nil {
			return nil, fmt.Errorf("credit history: scan: %w", err)
		}
		e.Reason = qdpi.Reason(reason)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("credit history: %w", err)
	}
	return out, nil
}

// CountByName returns event counts grouped by canonical name.
func (x *Index) CountByName(ctx context.Context, episodeID string) (map[string]int64, error) {
	q := "SELECT name, COUNT(*) FROM events"
	var args []any
	if episodeID != "" {
		q += " WHERE episode_id = ?"
		args = append(args, episodeID)
	}
	q += " GROUP BY name"

	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("count by name: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("count by name: scan: %w", err)
		}
		counts[name] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count by name: %w", err)
	}
	return counts, nil
}
