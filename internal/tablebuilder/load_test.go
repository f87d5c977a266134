package tablebuilder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hdidash/internal/config"
)

func writeInputs(t *testing.T, files map[string]string) config.Inputs {
	t.Helper()
	dir := t.TempDir()
	in := config.Default().Inputs
	for name, body := range files {
		path := filepath.Join(dir, name+".csv")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	in.HDI.Source.File.Path = filepath.Join(dir, "hdi.csv")
	in.Lex.Source.File.Path = filepath.Join(dir, "lex.csv")
	in.Pop.Source.File.Path = filepath.Join(dir, "pop.csv")
	return in
}

func TestLoadInputs_ThenBuild(t *testing.T) {
	t.Parallel()

	cfg := writeInputs(t, map[string]string{
		"hdi": hdiA,
		"lex": lexA,
		"pop": "country,Pop_2001,Pop_2002\nA,100,110\nB,200,210\n",
	})
	in, err := LoadInputs(context.Background(), "test", cfg)
	if err != nil {
		t.Fatalf("LoadInputs: %v", err)
	}
	if len(in.HDI.Rows) != 2 || len(in.Lex.Rows) != 2 || len(in.Pop.Rows) != 2 {
		t.Fatalf("rows hdi=%d lex=%d pop=%d", len(in.HDI.Rows), len(in.Lex.Rows), len(in.Pop.Rows))
	}

	tbl, _, err := Build(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tbl.Len() != 4 {
		t.Fatalf("records=%d want 4", tbl.Len())
	}
	if r, _ := tbl.Lookup("B", 2002); r.PopulationOr(0) != 210 {
		t.Fatalf("B/2002=%+v", r)
	}
}

func TestLoadInputs_MissingFileIsInputFault(t *testing.T) {
	t.Parallel()

	cfg := writeInputs(t, map[string]string{"hdi": hdiA, "lex": lexA})
	_, err := LoadInputs(context.Background(), "test", cfg)
	if !errors.Is(err, ErrInput) {
		t.Fatalf("err=%v; want ErrInput", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v; want the not-exist cause preserved", err)
	}
}

func TestLoadInputs_UnknownParserIsInputFault(t *testing.T) {
	t.Parallel()

	cfg := writeInputs(t, map[string]string{"hdi": hdiA, "lex": lexA, "pop": popA})
	cfg.Lex.Parser.Kind = "json"
	if _, err := LoadInputs(context.Background(), "test", cfg); !errors.Is(err, ErrInput) {
		t.Fatalf("err=%v; want ErrInput", err)
	}
}
