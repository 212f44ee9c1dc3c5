/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlite implements store.KV on a single-table SQLite database, for
// embedded deployments that want durable records without a server. Pattern
// enumeration compiles the glob-lite pattern to a LIKE clause; incremental
// scans use keyset pagination ordered by key.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const createTable = `
CREATE TABLE IF NOT EXISTS kv (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL
);`

// KV adapts one SQLite database to the store.KV contract.
type KV struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" yields a
// throwaway in-process database.
func Open(path string) (*KV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &KV{db: db}, nil
}

// Set writes one key, replacing any existing value.
func (s *KV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		key, value)
	return err
}

// Get reads one key.
func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Delete removes keys; missing keys are not an error.
func (s *KV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE k IN (`+placeholders+`)`, args...)
	return err
}

// ListKeys returns every matching key in one query.
func (s *KV) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	like, arg := likeClause(pattern)
	rows, err := s.db.QueryContext(ctx, `SELECT k FROM kv WHERE `+like+` ORDER BY k`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKeys(rows)
}

// ScanKeys returns one batch of matching keys after the cursor, ordered by
// key. The cursor is the last key of the previous batch.
func (s *KV) ScanKeys(ctx context.Context, pattern, cursor string, count int64) ([]string, string, error) {
	like, arg := likeClause(pattern)
	rows, err := s.db.QueryContext(ctx,
		`SELECT k FROM kv WHERE `+like+` AND k > ? ORDER BY k LIMIT ?`,
		arg, cursor, count)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	keys, err := scanKeys(rows)
	if err != nil {
		return nil, "", err
	}
	if int64(len(keys)) < count {
		return keys, "", nil
	}
	return keys, keys[len(keys)-1], nil
}

// Close releases the database handle.
func (s *KV) Close() error {
	return s.db.Close()
}

// likeClause compiles a glob-lite pattern to a LIKE predicate, escaping the
// LIKE metacharacters in the literal part.
func likeClause(pattern string) (clause, arg string) {
	wildcard := strings.HasSuffix(pattern, "*")
	literal := strings.TrimSuffix(pattern, "*")

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(literal)
	if !wildcard {
		return `k LIKE ? ESCAPE '\'`, escaped
	}
	return `k LIKE ? ESCAPE '\'`, escaped + "%"
}

func scanKeys(rows *sql.Rows) ([]string, error) {
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
