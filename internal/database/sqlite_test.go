package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "p.db")

	for i := 0; i < 2; i++ {
		conn, err := Open(Config{Path: path})
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		var n int
		if err := conn.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("open #%d: %d migrations recorded", i, n)
		}
		var mode string
		if err := conn.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatal(err)
		}
		if mode != "wal" {
			t.Errorf("journal mode %q", mode)
		}
		conn.Close()
	}
}

func TestTransactionRollsBack(t *testing.T) {
	conn, err := Open(Config{Path: filepath.Join(t.TempDir(), "p.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	boom := errors.New("boom")
	err = Transaction(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO locations (lat, lon, timestamp) VALUES (1, 2, 3)"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}

	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM locations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rolled back insert is visible: %d rows", n)
	}
}
