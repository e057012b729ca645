package db

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func columns(t *testing.T, conn *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := conn.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("pragma %s: %v", table, err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var colName, ctype string
		var notnull, pk int
		var dfltVal interface{}
		if err := rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk); err != nil {
			t.Fatalf("scan col: %v", err)
		}
		cols[colName] = true
	}
	return cols
}

// TestInitDBCreatesSchema verifies InitDB creates the runs, lexicon_sources
// and evaluations tables and that running it twice is a no-op.
func TestInitDBCreatesSchema(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	conn.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := InitDB(ctx, conn); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	if err := InitDB(ctx, conn); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}

	for _, table := range []string{"runs", "lexicon_sources", "evaluations"} {
		var name string
		if err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}

	cols := columns(t, conn, "evaluations")
	for _, c := range []string{"run_id", "row_index", "span", "expected_first", "expected_second", "flag", "candidates", "correct"} {
		if !cols[c] {
			t.Fatalf("expected column %s in evaluations, got %v", c, cols)
		}
	}
}

func TestOpenMemory(t *testing.T) {
	conn, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		t.Fatalf("query runs: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty runs table, got %d", n)
	}
}
