// Package dashboard renders every dashboard artifact for a cleaned table
// into one output directory and describes them in manifest.json.
package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hdidash/internal/indicator"
	"hdidash/internal/metrics"
	"hdidash/internal/render/chart"
	"hdidash/internal/render/console"
	"hdidash/internal/render/page"
	"hdidash/internal/render/workbook"
	"hdidash/internal/stats"
)

// Artifact file names.
const (
	FileHeatmap  = "heatmap.png"
	FileLine     = "line.png"
	FileBar      = "bar.png"
	FileGIF      = "scatter.gif"
	FileWorkbook = "comparison.xlsx"
	FileIndex    = "index.html"
	FileManifest = "manifest.json"
)

// Artifact kinds, also used as metric labels.
const (
	KindChart    = "chart"
	KindFrame    = "frame"
	KindWorkbook = "workbook"
	KindPage     = "page"
	KindManifest = "manifest"
)

// Options configures Render.
type Options struct {
	OutDir string
	TopN   int
	Job    string
	// RunID identifies the run; empty means a fresh UUID.
	RunID string
	// Workers bounds concurrent renderers; <= 0 means no bound.
	Workers int
	// FrameDelay is the GIF delay per frame in 100ths of a second.
	FrameDelay int
	Locale     string
	Chart      chart.Options
	// Console, when set, receives the value boxes and comparison table.
	Console      io.Writer
	ConsoleColor bool
}

// Artifact is one written file, relative to the output directory.
type Artifact struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Bytes int64  `json:"bytes"`
}

// Manifest describes a rendered dashboard.
type Manifest struct {
	RunID       string        `json:"run_id"`
	Job         string        `json:"job,omitempty"`
	Generated   time.Time     `json:"generated"`
	Fingerprint string        `json:"fingerprint"`
	Records     int           `json:"records"`
	Years       []int         `json:"years"`
	Countries   int           `json:"countries"`
	Summary     stats.Summary `json:"summary"`
	Artifacts   []Artifact    `json:"artifacts"`
}

// Render writes all artifacts. Renderers run concurrently; the first
// failure cancels the rest and is returned. An empty table fails with
// stats.ErrEmptyTable before anything is written.
func Render(ctx context.Context, t *indicator.Table, opt Options) (Manifest, error) {
	o, err := stats.Overviews(t)
	if err != nil {
		return Manifest{}, err
	}
	if opt.OutDir == "" {
		return Manifest{}, errors.New("dashboard: no output directory")
	}
	if opt.RunID == "" {
		opt.RunID = uuid.NewString()
	}
	if opt.FrameDelay <= 0 {
		opt.FrameDelay = 80
	}
	if opt.Chart.TopN <= 0 {
		opt.Chart.TopN = opt.TopN
	}
	if err := os.MkdirAll(opt.OutDir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("create output dir: %w", err)
	}

	r := &run{opt: opt}
	g, gctx := errgroup.WithContext(ctx)
	if opt.Workers > 0 {
		g.SetLimit(opt.Workers)
	}

	file := func(name, kind string, draw func(io.Writer) error) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return r.write(name, kind, draw)
		})
	}

	file(FileHeatmap, KindChart, func(w io.Writer) error { return chart.Heatmap(w, t, opt.Chart) })
	file(FileLine, KindChart, func(w io.Writer) error { return chart.Line(w, t, opt.Chart) })
	file(FileBar, KindChart, func(w io.Writer) error { return chart.Bar(w, t, opt.Chart) })
	file(FileWorkbook, KindWorkbook, func(w io.Writer) error { return workbook.Write(w, t) })
	g.Go(func() error { return r.scatter(gctx, t) })

	if err := g.Wait(); err != nil {
		return Manifest{}, err
	}

	// The page links only what was written.
	if err := r.write(FileIndex, KindPage, func(w io.Writer) error {
		return page.Write(w, t, page.Options{
			RunID:    opt.RunID,
			Locale:   opt.Locale,
			TopN:     opt.TopN,
			Charts:   r.charts(),
			Workbook: FileWorkbook,
		})
	}); err != nil {
		return Manifest{}, err
	}

	if opt.Console != nil {
		if err := console.Print(opt.Console, t, console.Options{TopN: opt.TopN, Color: opt.ConsoleColor, Locale: opt.Locale}); err != nil {
			return Manifest{}, fmt.Errorf("console: %w", err)
		}
	}

	m := Manifest{
		RunID:       opt.RunID,
		Job:         opt.Job,
		Generated:   time.Now().UTC(),
		Fingerprint: strconv.FormatUint(t.Fingerprint(), 16),
		Records:     t.Len(),
		Years:       o.Years,
		Countries:   len(t.Countries()),
		Summary:     o.Latest,
		Artifacts:   r.sorted(),
	}
	if err := r.write(FileManifest, KindManifest, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}); err != nil {
		return Manifest{}, err
	}
	slog.Info("dashboard rendered", "dir", opt.OutDir, "artifacts", len(m.Artifacts), "run_id", m.RunID)
	return m, nil
}

type run struct {
	opt Options

	mu        sync.Mutex
	artifacts []Artifact
}

// write renders one artifact into a temporary file and renames it into
// place, so a failed renderer never leaves a partial file under its name.
func (r *run) write(name, kind string, draw func(io.Writer) error) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(r.opt.Job, "render_"+kind, err, time.Since(start)) }()

	path := filepath.Join(r.opt.OutDir, name)
	tmp, err := os.CreateTemp(r.opt.OutDir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := draw(bw); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	st, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	r.mu.Lock()
	r.artifacts = append(r.artifacts, Artifact{Name: name, Kind: kind, Bytes: st.Size()})
	r.mu.Unlock()
	metrics.RecordArtifact(r.opt.Job, kind)
	slog.Debug("artifact written", "file", path, "kind", kind, "bytes", st.Size(), "elapsed", time.Since(start))
	return nil
}

// scatter renders the per-year frames and the animation.
func (r *run) scatter(ctx context.Context, t *indicator.Table) error {
	frames, err := chart.ScatterFrames(t, r.opt.Chart)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := f
		if err := r.write(FrameName(f.Year), KindFrame, func(w io.Writer) error { return chart.WriteFramePNG(w, f) }); err != nil {
			return err
		}
	}
	return r.write(FileGIF, KindChart, func(w io.Writer) error { return chart.WriteGIF(w, frames, r.opt.FrameDelay) })
}

// FrameName is the file name of one scatter frame.
func FrameName(year int) string { return fmt.Sprintf("scatter_%d.png", year) }

var chartTitles = map[string]string{
	FileHeatmap: "HDI by country and year",
	FileLine:    "HDI over time, leading countries",
	FileBar:     "Life expectancy leaders",
	FileGIF:     "Life expectancy vs HDI (bubble size: population)",
}

func (r *run) charts() []page.Chart {
	var out []page.Chart
	for _, name := range []string{FileHeatmap, FileLine, FileBar, FileGIF} {
		if r.has(name) {
			out = append(out, page.Chart{Title: chartTitles[name], File: name})
		}
	}
	return out
}

func (r *run) has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.artifacts {
		if a.Name == name {
			return true
		}
	}
	return false
}

func (r *run) sorted() []Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]Artifact(nil), r.artifacts...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
