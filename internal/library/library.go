/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package library keeps a per-user SQLite catalog of skins the editor has
// opened, for recents and quick search.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"skinforge/internal/config"
	applog "skinforge/internal/log"
	"skinforge/internal/skin"
	"skinforge/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	FileName = "library.sqlite"

	// schemaVersion tracks the catalog schema. Bump on breaking changes and
	// add a migration step.
	schemaVersion = 1
)

// Entry is one cataloged skin.
type Entry struct {
	Path            string
	Name            string
	Identifier      string
	GameType        string
	Representations int
	Archive         bool
	LastOpened      time.Time
	OpenCount       int
}

// Catalog is an open library database.
type Catalog struct {
	db  *sql.DB
	log *slog.Logger
}

// DefaultPath places the catalog next to the user config file.
func DefaultPath() (string, error) {
	cpath, err := config.ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(cpath), FileName), nil
}

// Open opens (or creates) the catalog at path, enables WAL mode, and
// ensures the schema is current.
func Open(path string) (*Catalog, error) {
	l := applog.WithComponent("library").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("library path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("library ready")
	return &Catalog{db: db, log: l}, nil
}

// Close releases the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS skins (
			path            TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			identifier      TEXT NOT NULL,
			game_type       TEXT,
			representations INTEGER NOT NULL,
			archive         INTEGER NOT NULL,
			last_opened     TEXT NOT NULL,
			open_count      INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE INDEX IF NOT EXISTS idx_skins_identifier ON skins(identifier);`,
		`CREATE INDEX IF NOT EXISTS idx_skins_last_opened ON skins(last_opened);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// Record upserts a catalog entry for an opened document, bumping its open
// count and timestamp.
func (c *Catalog) Record(ctx context.Context, h *skin.Handle) error {
	if h == nil {
		return errors.New("nil skin handle")
	}
	abs, err := filepath.Abs(h.Path)
	if err != nil {
		abs = h.Path
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO skins (path, name, identifier, game_type, representations, archive, last_opened, open_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(path) DO UPDATE SET
			name            = excluded.name,
			identifier      = excluded.identifier,
			game_type       = excluded.game_type,
			representations = excluded.representations,
			archive         = excluded.archive,
			last_opened     = excluded.last_opened,
			open_count      = skins.open_count + 1;`,
		abs, h.Skin.Name, h.Skin.Identifier, h.Skin.GameTypeIdentifier,
		len(h.Skin.Representations), boolInt(h.Archive), now)
	if err != nil {
		return fmt.Errorf("record skin: %w", err)
	}
	return nil
}

// List returns all entries, most recently opened first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	return c.query(ctx, `
		SELECT path, name, identifier, game_type, representations, archive, last_opened, open_count
		FROM skins ORDER BY last_opened DESC;`)
}

// Search returns entries whose name or identifier contains the term,
// case-insensitively, most recently opened first.
func (c *Catalog) Search(ctx context.Context, term string) ([]Entry, error) {
	pat := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	return c.query(ctx, `
		SELECT path, name, identifier, game_type, representations, archive, last_opened, open_count
		FROM skins
		WHERE lower(name) LIKE ? OR lower(identifier) LIKE ?
		ORDER BY last_opened DESC;`, pat, pat)
}

// Remove drops the entry for a path. Removing an unknown path is a no-op.
func (c *Catalog) Remove(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM skins WHERE path = ?;`, abs); err != nil {
		return fmt.Errorf("remove skin: %w", err)
	}
	return nil
}

func (c *Catalog) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query skins: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var gameType sql.NullString
		var archive int
		var opened string
		if err := rows.Scan(&e.Path, &e.Name, &e.Identifier, &gameType, &e.Representations, &archive, &opened, &e.OpenCount); err != nil {
			return nil, fmt.Errorf("scan skin: %w", err)
		}
		e.GameType = gameType.String
		e.Archive = archive != 0
		if t, perr := time.Parse(time.RFC3339, opened); perr == nil {
			e.LastOpened = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
