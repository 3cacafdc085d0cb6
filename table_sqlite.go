package synonyms

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS words (
	word TEXT PRIMARY KEY,
	frequency INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cooccurrence (
	word TEXT NOT NULL,
	context TEXT NOT NULL,
	weight REAL NOT NULL CHECK (weight > 0),
	PRIMARY KEY (word, context)
);
`

// SaveSQLite writes the table to a SQLite database, replacing any table
// previously stored there
func SaveSQLite(ctx context.Context, path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM meta", "DELETE FROM words", "DELETE FROM cooccurrence"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}
	}

	meta := map[string]string{
		"version":   strconv.Itoa(stateVersion),
		"window":    strconv.Itoa(t.info.Window),
		"weighting": t.info.Weighting.String(),
		"context":   t.info.Context.String(),
		"tokens":    strconv.FormatInt(t.info.Tokens, 10),
		"sentences": strconv.FormatInt(t.info.Sentences, 10),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
	}

	wordStmt, err := tx.PrepareContext(ctx, "INSERT INTO words (word, frequency) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer wordStmt.Close()

	cellStmt, err := tx.PrepareContext(ctx, "INSERT INTO cooccurrence (word, context, weight) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer cellStmt.Close()

	for _, word := range t.Vocabulary() {
		if _, err := wordStmt.ExecContext(ctx, word, t.frequency[word]); err != nil {
			return fmt.Errorf("failed to write word %q: %w", word, err)
		}
		for c, v := range t.descriptors[word].All() {
			if _, err := cellStmt.ExecContext(ctx, word, c, v); err != nil {
				return fmt.Errorf("failed to write %q/%q: %w", word, c, err)
			}
		}
	}

	return tx.Commit()
}

// LoadSQLite reads a table written by SaveSQLite
func LoadSQLite(ctx context.Context, path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	info, err := readSQLiteMeta(ctx, db)
	if err != nil {
		return nil, err
	}

	counts := make(cooccurrence)
	frequency := make(map[string]int64)

	rows, err := db.QueryContext(ctx, "SELECT word, frequency FROM words")
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	for rows.Next() {
		var word string
		var freq int64
		if err := rows.Scan(&word, &freq); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		counts.row(word)
		frequency[word] = freq
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, "SELECT word, context, weight FROM cooccurrence")
	if err != nil {
		return nil, fmt.Errorf("failed to query co-occurrences: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var word, c string
		var v float64
		if err := rows.Scan(&word, &c, &v); err != nil {
			return nil, fmt.Errorf("failed to scan co-occurrence: %w", err)
		}
		row, ok := counts[word]
		if !ok {
			return nil, fmt.Errorf("co-occurrence for unknown word %q", word)
		}
		row[c] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return newTable(counts, frequency, info), nil
}

func readSQLiteMeta(ctx context.Context, db *sql.DB) (BuildInfo, error) {
	var info BuildInfo

	rows, err := db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return info, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return info, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return info, err
	}

	if v := meta["version"]; v != strconv.Itoa(stateVersion) {
		return info, fmt.Errorf("unsupported table state version %q", v)
	}
	if info.Weighting, err = ParseWeighting(meta["weighting"]); err != nil {
		return info, err
	}
	if info.Context, err = ParseContext(meta["context"]); err != nil {
		return info, err
	}
	info.Window, _ = strconv.Atoi(meta["window"])
	info.Tokens, _ = strconv.ParseInt(meta["tokens"], 10, 64)
	info.Sentences, _ = strconv.ParseInt(meta["sentences"], 10, 64)

	return info, nil
}
