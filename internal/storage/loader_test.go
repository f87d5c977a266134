package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"hdidash/internal/indicator"
)

// feed returns a closed channel holding one row per country for 2001.
func feed(countries ...string) <-chan []any {
	ch := make(chan []any, len(countries))
	for i, c := range countries {
		ch <- Row(indicator.Record{Country: c, Year: 2001, HDI: 0.5 + float64(i)/100, Life: 70})
	}
	close(ch)
	return ch
}

func TestLoadBatches(t *testing.T) {
	t.Parallel()

	errDeadlock := errors.New("deadlock victim")

	tests := []struct {
		name      string
		countries []string
		batchSize int
		failOn    int // 1-based batch that fails; 0 never
		want      LoadStats
		wantSizes []int
		wantErr   error
	}{
		{
			name:      "uneven_tail",
			countries: []string{"Chad", "Chile", "India", "Japan", "Kenya", "Mexico", "Peru"},
			batchSize: 3,
			want:      LoadStats{Rows: 7, Batches: 3},
			wantSizes: []int{3, 3, 1},
		},
		{
			name:      "exact_multiple",
			countries: []string{"Chad", "Chile", "India", "Japan"},
			batchSize: 2,
			want:      LoadStats{Rows: 4, Batches: 2},
			wantSizes: []int{2, 2},
		},
		{
			name:      "single_batch",
			countries: []string{"Chad", "Peru"},
			batchSize: 500,
			want:      LoadStats{Rows: 2, Batches: 1},
			wantSizes: []int{2},
		},
		{
			name:      "empty",
			batchSize: 10,
		},
		{
			// The failed batch still reports its rows but is not a flush.
			name:      "second_batch_fails",
			countries: []string{"Chad", "Chile", "India", "Japan", "Kenya"},
			batchSize: 2,
			failOn:    2,
			want:      LoadStats{Rows: 4, Batches: 1},
			wantSizes: []int{2, 2},
			wantErr:   errDeadlock,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var sizes []int
			copyFn := func(_ context.Context, cols []string, rows [][]any) (int64, error) {
				if len(cols) != len(Columns) {
					t.Errorf("columns=%v", cols)
				}
				sizes = append(sizes, len(rows))
				if len(sizes) == tt.failOn {
					return int64(len(rows)), errDeadlock
				}
				return int64(len(rows)), nil
			}

			st, err := LoadBatches(context.Background(), Columns, feed(tt.countries...), tt.batchSize, copyFn)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want %v", err, tt.wantErr)
			}
			if st != tt.want {
				t.Fatalf("stats=%+v want %+v", st, tt.want)
			}
			if len(sizes) != len(tt.wantSizes) {
				t.Fatalf("batch sizes=%v want %v", sizes, tt.wantSizes)
			}
			for i := range sizes {
				if sizes[i] != tt.wantSizes[i] {
					t.Fatalf("batch sizes=%v want %v", sizes, tt.wantSizes)
				}
			}
		})
	}
}

func TestLoadBatches_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan []any)

	done := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, Columns, in, 2, func(context.Context, []string, [][]any) (int64, error) {
			return 0, nil
		})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err=%v want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("LoadBatches ignored cancellation")
	}
}

func TestLoadBatches_InvalidArgs(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }
	if _, err := LoadBatches(context.Background(), Columns, feed(), 0, noop); err == nil {
		t.Fatal("expected error for batchSize 0")
	}
	if _, err := LoadBatches(context.Background(), Columns, feed(), 1, nil); err == nil {
		t.Fatal("expected error for nil copyFn")
	}
}
