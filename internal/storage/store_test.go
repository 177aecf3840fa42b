/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meta", "frames.sqlite")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestOpenSQLiteCreatesWALAndTables(t *testing.T) {
	s, path := openTestStore(t)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing at %s: %v", path, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var mode string
	if err := s.DB().QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := s.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected 2 tables, got %d", cnt)
	}
	if v, err := s.SchemaVersion(ctx); err != nil || v != schemaVersion {
		t.Fatalf("schema = %d (%v), want %d", v, err, schemaVersion)
	}
}

func TestScopedGetSet(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	a, b := s.Scope("/photos/a.jpg"), s.Scope("/photos/b.jpg")

	if _, err := a.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}
	if err := a.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := a.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, err := a.Get(ctx, "k"); err != nil || v != "two" {
		t.Fatalf("Get = %q, %v; want two", v, err)
	}
	if _, err := b.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("scopes leak: err = %v", err)
	}
	if err := b.Set(ctx, "z", ""); err != nil {
		t.Fatalf("Set empty value: %v", err)
	}
	if v, err := b.Get(ctx, "z"); err != nil || v != "" {
		t.Fatalf("empty value round trip = %q, %v", v, err)
	}

	images, err := s.Images(ctx)
	if err != nil || len(images) != 2 || images[0] != "/photos/a.jpg" {
		t.Fatalf("Images = %v, %v", images, err)
	}
	if err := s.Forget(ctx, "/photos/a.jpg"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if keys, err := s.Keys(ctx, "/photos/a.jpg"); err != nil || len(keys) != 0 {
		t.Fatalf("Keys after Forget = %v, %v", keys, err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frames.sqlite")
	ctx := context.Background()
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Scope("img").Set(ctx, KeyPlacementPercent, "42"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = s.Close()

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if v, err := s.Scope("img").Get(ctx, KeyPlacementPercent); err != nil || v != "42" {
		t.Fatalf("after reopen Get = %q, %v", v, err)
	}
}

func TestMigrationFromV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.sqlite")
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE meta (image TEXT NOT NULL, key TEXT NOT NULL, value TEXT NOT NULL, updated_at TEXT NOT NULL, PRIMARY KEY (image, key));`,
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	_ = db.Close()

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	if v, err := s.SchemaVersion(ctx); err != nil || v != schemaVersion {
		t.Fatalf("schema after migration = %d (%v), want %d", v, err, schemaVersion)
	}
	var n int
	if err := s.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_meta_updated'").Scan(&n); err != nil || n != 1 {
		t.Fatalf("migration index missing: n=%d err=%v", n, err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := OpenSQLite(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPgx}
	if got := pg.rebind("SELECT a FROM t WHERE x=? AND y=?"); got != "SELECT a FROM t WHERE x=$1 AND y=$2" {
		t.Fatalf("rebind = %q", got)
	}
	lite := &Store{driver: DriverSQLite}
	if got := lite.rebind("x=?"); got != "x=?" {
		t.Fatalf("sqlite rebind changed the query: %q", got)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("GCF_PG_DSN")
	if dsn == "" {
		t.Skip("GCF_PG_DSN not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, DriverPgx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	defer s.Close()
	image := "pg-test-" + time.Now().UTC().Format(time.RFC3339Nano)
	defer func() { _ = s.Forget(ctx, image) }()
	m := s.Scope(image)
	if err := m.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, err := m.Get(ctx, "k"); err != nil || v != "v2" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}
