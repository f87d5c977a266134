// Package export writes the cleaned indicator table to columnar files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"hdidash/internal/indicator"
)

// parquetSchema mirrors indicator.Record. Population is the only optional
// column.
const parquetSchema = `{
  "Tag": "name=parquet_go_root, repetitiontype=REQUIRED",
  "Fields": [
    {"Tag": "name=country, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
    {"Tag": "name=year, type=INT32, repetitiontype=REQUIRED"},
    {"Tag": "name=hdi, type=DOUBLE, repetitiontype=REQUIRED"},
    {"Tag": "name=life, type=DOUBLE, repetitiontype=REQUIRED"},
    {"Tag": "name=population, type=DOUBLE, repetitiontype=OPTIONAL"}
  ]
}`

// WriteParquet writes t as a single SNAPPY-compressed Parquet file to w and
// returns the number of rows written.
func WriteParquet(w io.Writer, t *indicator.Table) (int64, error) {
	pfw := writerfile.NewWriterFile(w)
	pw, err := writer.NewJSONWriter(parquetSchema, pfw, 4)
	if err != nil {
		return 0, fmt.Errorf("parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var rows int64
	for _, r := range t.Records {
		b, err := json.Marshal(r)
		if err != nil {
			_ = pw.WriteStop()
			return rows, err
		}
		if err := pw.Write(string(b)); err != nil {
			_ = pw.WriteStop()
			return rows, fmt.Errorf("parquet row %d: %w", rows, err)
		}
		rows++
	}
	if err := pw.WriteStop(); err != nil {
		return rows, fmt.Errorf("parquet finalize: %w", err)
	}
	return rows, pfw.Close()
}

// WriteParquetFile writes t to path, replacing any existing file only once
// the new one is complete.
func WriteParquetFile(path string, t *indicator.Table) (int64, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	n, err := WriteParquet(f, t)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return n, err
	}
	return n, os.Rename(tmp, path)
}
