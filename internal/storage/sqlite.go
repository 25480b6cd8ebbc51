package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lpearl21/rl-earnings/internal/player"
	"github.com/lpearl21/rl-earnings/internal/region"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS player_earnings (
	position         INTEGER PRIMARY KEY,
	player           TEXT    NOT NULL UNIQUE,
	country          TEXT    NOT NULL,
	first_place      INTEGER NOT NULL,
	second_place     INTEGER NOT NULL,
	third_place      INTEGER NOT NULL,
	earnings         REAL    NOT NULL,
	region           TEXT    NOT NULL,
	total_wins       INTEGER NOT NULL,
	earnings_per_win REAL    NOT NULL
);

CREATE TABLE IF NOT EXISTS dataset_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// savedAtKey marks a database that has been written at least once
const savedAtKey = "saved_at"

// SQLiteStore persists the dataset in a SQLite database
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file location
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces the table contents with records in one transaction
func (s *SQLiteStore) Save(records []*player.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.Exec(`DELETE FROM player_earnings`); err != nil {
		return fmt.Errorf("clearing dataset: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO player_earnings (
			position, player, country, first_place, second_place, third_place,
			earnings, region, total_wins, earnings_per_win
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.Exec(
			i, rec.Player, rec.Country, rec.FirstPlace, rec.SecondPlace, rec.ThirdPlace,
			rec.Earnings, string(rec.Region), rec.TotalWins, rec.EarningsPerWin,
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.Player, err)
		}
	}

	_, err = tx.Exec(`INSERT INTO dataset_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		savedAtKey, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording save time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dataset: %w", err)
	}
	return nil
}

// Load reads every record in saved order.
// It returns ErrNoDataset until the first Save.
func (s *SQLiteStore) Load() ([]*player.Record, error) {
	var savedAt string
	err := s.db.QueryRow(`SELECT value FROM dataset_meta WHERE key = ?`, savedAtKey).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoDataset, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading dataset metadata: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT player, country, first_place, second_place, third_place, earnings, region, total_wins
		FROM player_earnings
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying dataset: %w", err)
	}
	defer rows.Close()

	records := make([]*player.Record, 0)
	for rows.Next() {
		var (
			e         player.Entry
			label     string
			totalWins int
		)
		if err := rows.Scan(&e.Player, &e.Country, &e.FirstPlace, &e.SecondPlace, &e.ThirdPlace, &e.Earnings, &label, &totalWins); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r, err := region.Parse(label)
		if err != nil {
			return nil, err
		}

		rec, err := rebuild(e, r, totalWins)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	return records, nil
}
