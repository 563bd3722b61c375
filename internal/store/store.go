// Package store keeps a local SQLite history of successful news loads.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/chainpulse/internal/news"
)

// ErrNoSnapshot is returned by LatestSnapshot on an empty store.
var ErrNoSnapshot = errors.New("store: no snapshot saved")

const schemaVersion = 1

// Store handles SQLite persistence. Concrete type, safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Snapshot is one successful /api/news load, items newest first.
type Snapshot struct {
	ID        int64
	FetchedAt time.Time
	Source    string
	Items     []news.Item
}

// SnapshotInfo summarizes a snapshot without its items.
type SnapshotInfo struct {
	ID        int64
	FetchedAt time.Time
	Source    string
	Count     int
	Tickers   int
}

// HistoryPoint is one coin's aggregate within one snapshot.
type HistoryPoint struct {
	SnapshotID int64
	FetchedAt  time.Time
	Count      int
	Mean       float64
}

// Open creates a Store at dbPath, creating tables if needed. File
// databases use WAL; ":memory:" uses a shared cache over one connection.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fetched_at DATETIME NOT NULL,
		source TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS snapshot_items (
		snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
		position INTEGER NOT NULL,
		news_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		coin_ticker TEXT NOT NULL,
		published_at TEXT NOT NULL,
		link TEXT NOT NULL,
		sentiment_score REAL,
		PRIMARY KEY (snapshot_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON snapshots(fetched_at DESC);
	CREATE INDEX IF NOT EXISTS idx_snapshot_items_ticker ON snapshot_items(coin_ticker, snapshot_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Close closes the database connection, waiting for in-flight calls.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveSnapshot stores items (newest first) as one snapshot and returns its
// ID. Non-finite scores are stored as NULL.
func (s *Store) SaveSnapshot(fetchedAt time.Time, source string, items []news.Item) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO snapshots (fetched_at, source) VALUES (?, ?)`, fetchedAt.UTC(), source)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_items (
			snapshot_id, position, news_id, title, description, coin_ticker,
			published_at, link, sentiment_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare items: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		var score sql.NullFloat64
		if !math.IsNaN(it.SentimentScore) && !math.IsInf(it.SentimentScore, 0) {
			score = sql.NullFloat64{Float64: it.SentimentScore, Valid: true}
		}
		if _, err := stmt.Exec(id, i, it.ID, it.Title, it.Description, it.CoinTicker,
			it.PublishedAt, it.Link, score); err != nil {
			return 0, fmt.Errorf("insert item %d: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the most recently fetched snapshot with its items.
func (s *Store) LatestSnapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap Snapshot
	err := s.db.QueryRow(`
		SELECT id, fetched_at, source FROM snapshots
		ORDER BY fetched_at DESC, id DESC LIMIT 1
	`).Scan(&snap.ID, &snap.FetchedAt, &snap.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}

	snap.Items, err = s.queryItems(snap.ID)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Snapshots lists up to limit snapshots, newest first.
func (s *Store) Snapshots(limit int) ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT s.id, s.fetched_at, s.source,
			COUNT(i.position), COUNT(DISTINCT i.coin_ticker)
		FROM snapshots s
		LEFT JOIN snapshot_items i ON i.snapshot_id = s.id
		GROUP BY s.id
		ORDER BY s.fetched_at DESC, s.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.FetchedAt, &info.Source, &info.Count, &info.Tickers); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// TickerHistory returns ticker's per-snapshot article count and mean
// score, newest first, over snapshots that mention it. NULL scores are
// left out of both, matching the aggregator.
func (s *Store) TickerHistory(ticker string, limit int) ([]HistoryPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT s.id, s.fetched_at, COUNT(i.sentiment_score), COALESCE(AVG(i.sentiment_score), 0)
		FROM snapshots s
		JOIN snapshot_items i ON i.snapshot_id = s.id
		WHERE i.coin_ticker = ?
		GROUP BY s.id
		ORDER BY s.fetched_at DESC, s.id DESC
		LIMIT ?
	`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("ticker history: %w", err)
	}
	defer rows.Close()

	var out []HistoryPoint
	for rows.Next() {
		var p HistoryPoint
		if err := rows.Scan(&p.SnapshotID, &p.FetchedAt, &p.Count, &p.Mean); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep snapshots and returns how many
// snapshots were removed.
func (s *Store) Prune(keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const stale = `SELECT id FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT -1 OFFSET ?`
	if _, err := tx.Exec(`DELETE FROM snapshot_items WHERE snapshot_id IN (`+stale+`)`, keep); err != nil {
		return 0, fmt.Errorf("prune items: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM snapshots WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

// queryItems loads one snapshot's items in saved order.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryItems(snapshotID int64) ([]news.Item, error) {
	rows, err := s.db.Query(`
		SELECT news_id, title, description, coin_ticker, published_at, link, sentiment_score
		FROM snapshot_items
		WHERE snapshot_id = ?
		ORDER BY position
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []news.Item{}
	for rows.Next() {
		var (
			it    news.Item
			desc  sql.NullString
			score sql.NullFloat64
		)
		if err := rows.Scan(&it.ID, &it.Title, &desc, &it.CoinTicker, &it.PublishedAt, &it.Link, &score); err != nil {
			return nil, err
		}
		it.Description = desc.String
		it.SentimentScore = math.NaN()
		if score.Valid {
			it.SentimentScore = score.Float64
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
