package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestSQLFilesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_more.sql", "0001_init.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.sql"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := sqlFiles(dir)
	if err != nil {
		t.Fatalf("sqlFiles: %v", err)
	}
	want := []string{"0001_init.sql", "0002_more.sql"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestPendingMigrations(t *testing.T) {
	applied := map[string]struct{}{"0001_init.sql": {}}
	got := pendingMigrations([]string{"0001_init.sql", "0002_more.sql"}, applied)
	if !slices.Equal(got, []string{"0002_more.sql"}) {
		t.Fatalf("unexpected pending migrations %v", got)
	}
}

func TestSeedFileName(t *testing.T) {
	if got := seedFileName("dev"); got != "dev_seed.sql" {
		t.Fatalf("expected dev_seed.sql got %s", got)
	}
	if got := seedFileName("custom.sql"); got != "custom.sql" {
		t.Fatalf("expected explicit file name to be kept got %s", got)
	}
}

func TestMigrationBackoff(t *testing.T) {
	cases := map[int]time.Duration{
		0:  0,
		1:  migrationBaseBackoff,
		2:  2 * migrationBaseBackoff,
		3:  4 * migrationBaseBackoff,
		10: migrationMaxBackoff,
	}
	for attempt, want := range cases {
		if got := migrationBackoff(attempt); got != want {
			t.Errorf("attempt %d: expected %s got %s", attempt, want, got)
		}
	}
}

func TestShouldRetryMigration(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: fmt.Errorf("exec: %w", context.DeadlineExceeded), want: true},
		{name: "txClosed", err: pgx.ErrTxClosed, want: true},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "syntax", err: &pgconn.PgError{Code: "42601"}, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldRetryMigration(tc.err); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error without command")
	}
	if err := Run(context.Background(), []string{"launch"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if err := Run(context.Background(), []string{"migrate", "down"}); err == nil {
		t.Fatal("expected down migrations to be rejected")
	}
	if err := Run(context.Background(), []string{"seed"}); err == nil {
		t.Fatal("expected error without seed name")
	}
}
