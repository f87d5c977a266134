package datasource

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"hdidash/internal/config"
)

func TestNew_File(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "hdi.csv")
	if err := os.WriteFile(p, []byte("country\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := New(config.Source{Kind: "file", File: config.SourceFile{Path: p}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "country\n" {
		t.Fatalf("content=%q", b)
	}
}

func TestNew_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.Source
		wantErr bool
		desc    string
	}{
		{name: "http", cfg: config.Source{Kind: "http", HTTP: config.SourceHTTP{URL: "https://x/y.csv"}}, desc: "https://x/y.csv"},
		{name: "file", cfg: config.Source{Kind: "file", File: config.SourceFile{Path: "pop.csv"}}, desc: "pop.csv"},
		{name: "unknown", cfg: config.Source{Kind: "s3"}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && Describe(tt.cfg) != tt.desc {
				t.Fatalf("Describe=%q want %q", Describe(tt.cfg), tt.desc)
			}
		})
	}
}
