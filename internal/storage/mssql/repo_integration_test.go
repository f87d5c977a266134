//go:build integration

package mssql

import (
	"context"
	"os"
	"testing"
	"time"

	"hdidash/internal/indicator"
	"hdidash/internal/storage"
)

// getTestDSN reads the MSSQL_TEST_DSN environment variable.
// If it is empty, the caller should skip the test.
func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

// TestNewRepositoryIntegration verifies that NewRepository can successfully
// connect to a real SQL Server and that the returned Close function works.
func TestNewRepositoryIntegration(t *testing.T) {
	dsn := getTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := Config{
		DSN:   dsn,
		Table: "dbo.hdidash_save_test"
	}

	repo, closeFn, err := NewRepository(ctx, cfg)
	if err != nil {
		t.Fatalf("NewRepository() error = %v, want nil", err)
	}
	if repo == nil {
		t.Fatalf("NewRepository() repo = nil, want non-nil")
	}
	if closeFn == nil {
		t.Fatalf("NewRepository() closeFn = nil, want non-nil")
	}

	// Close should not panic or error.
	closeFn()
}

// TestSaveIntegration creates the indicator table in tempdb and stores a
// small table twice; the second save replaces the first.
func TestSaveIntegration(t *testing.T) {
	dsn := getTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const table = "dbo.hdidash_save_test"
	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn, Table: table})
	if err != nil {
		t.Fatalf("NewRepository() error = %v, want nil", err)
	}
	defer closeFn()
	_ = repo.Exec(ctx, "IF OBJECT_ID(N'dbo.hdidash_save_test', N'U') IS NOT NULL DROP TABLE dbo.hdidash_save_test;")

	tbl := &indicator.Table{Records: []indicator.Record{
		{Country: "A", Year: 2001, HDI: 0.5, Life: 70, Population: indicator.Float(10)},
		{Country: "B", Year: 2001, HDI: 0.6, Life: 71},
	}}
	opt := storage.SaveOptions{Kind: "mssql", Table: table, AutoCreate: true, BatchSize: 10}
	for i := 0; i < 2; i++ {
		st, err := storage.Save(ctx, storage.WithClose(repo, nil), tbl, opt)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if st.Rows != 2 {
			t.Fatalf("Save() rows = %d, want 2", st.Rows)
		}
	}

	var n int
	if err := repo.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dbo.hdidash_save_test").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}
}
