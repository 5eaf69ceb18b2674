package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestListMigrations_SortsAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_later.sql":          {Data: []byte("SELECT 1")},
		"migrations/002_second.sql":         {Data: []byte("SELECT 1")},
		"migrations/001_initial_schema.sql": {Data: []byte("SELECT 1")},
		"migrations/README":                 {Data: []byte("notes")},
		"migrations/abc_bad.sql":            {Data: []byte("SELECT 1")},
	}

	got, err := listMigrations(fsys)
	if err != nil {
		t.Fatalf("listMigrations: %v", err)
	}

	want := []int{1, 2, 10}
	if len(got) != len(want) {
		t.Fatalf("expected %d migrations, got %d (%v)", len(want), len(got), got)
	}
	for i, v := range want {
		if got[i].version != v {
			t.Errorf("migration %d: expected version %d, got %d", i, v, got[i].version)
		}
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	got, err := listMigrations(migrationFiles)
	if err != nil {
		t.Fatalf("listMigrations: %v", err)
	}
	if len(got) == 0 || got[0].version != 1 {
		t.Fatalf("expected embedded migrations starting at 001, got %v", got)
	}
}

func TestOpenSQLite_AppliesSchemaWithForeignKeys(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", enabled)
	}

	for _, table := range []string{"flashcards", "progress", "uploaded_pdfs"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{":memory:", "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"flashquiz.db", "flashquiz.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:x.db?mode=rwc", "file:x.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
	}
	for _, tc := range tests {
		if got := sqliteDSN(tc.in); got != tc.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJobsPoolSize(t *testing.T) {
	tests := []struct {
		workers int
		want    int
	}{
		{0, 5},
		{1, 5},
		{3, 7},
		{32, 36},
	}
	for _, tc := range tests {
		if got := jobsPoolSize(tc.workers); got != tc.want {
			t.Errorf("jobsPoolSize(%d) = %d, want %d", tc.workers, got, tc.want)
		}
	}
}

func TestSQLiteDialect(t *testing.T) {
	in := "id BIGSERIAL PRIMARY KEY,\nflashcard_id BIGINT NOT NULL,\ncreated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()\nALTER TABLE t ADD COLUMN IF NOT EXISTS c TEXT;"
	want := "id INTEGER PRIMARY KEY AUTOINCREMENT,\nflashcard_id INTEGER NOT NULL,\ncreated_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))\nALTER TABLE t ADD COLUMN c TEXT;"
	if got := sqliteDialect.Replace(in); got != want {
		t.Fatalf("unexpected rewrite:\n%s", got)
	}
}

// Every index and column the migrations declare must exist in SQLite too.
func TestOpenSQLite_MatchesMigrations(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	for _, idx := range []string{
		"idx_flashcards_created_at",
		"idx_flashcards_topic",
		"idx_progress_flashcard_id",
		"idx_progress_attempted_at",
	} {
		var name string
		if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?", idx).Scan(&name); err != nil {
			t.Errorf("index %s missing: %v", idx, err)
		}
	}

	columns := map[string][]string{
		"flashcards":    {"id", "question", "answer", "topic", "source", "created_at"},
		"progress":      {"id", "flashcard_id", "is_correct", "attempted_at"},
		"uploaded_pdfs": {"id", "file_name", "user_id", "uploaded_at", "page_count", "file_path"},
	}
	for table, want := range columns {
		rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
		if err != nil {
			t.Fatalf("table_info(%s): %v", table, err)
		}
		have := map[string]bool{}
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				t.Fatal(err)
			}
			have[name] = true
		}
		rows.Close()
		for _, col := range want {
			if !have[col] {
				t.Errorf("%s.%s missing", table, col)
			}
		}
	}

	var applied int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatal(err)
	}
	all, _ := listMigrations(migrationFiles)
	if applied != len(all) {
		t.Fatalf("expected %d recorded migrations, got %d", len(all), applied)
	}
}

func TestOpenSQLite_ReopenSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.db")
	for i := 0; i < 2; i++ {
		db, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("open %d: %v", i+1, err)
		}
		db.Close()
	}
}
