// Package json reads JSON exports of indicator tables into a records.Table.
//
// Accepted shapes:
//
//   - a top-level array of objects: [{"country":"A","hdi_2001":0.5}, ...]
//   - newline-delimited objects (NDJSON)
//   - an envelope object whose Records field holds the array:
//     {"meta":{...},"data":[...]} with Records set to "data"
//
// Columns are taken in the order keys first appear in the document, so the
// header order of a JSON source behaves like a CSV header row.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	pcsv "hdidash/internal/parser/csv"
	"hdidash/pkg/records"
)

// Options configures envelope handling and cell handling.
type Options struct {
	// Records names the envelope field holding the array of objects. Empty
	// means the document itself is the array (or an NDJSON stream).
	Records string

	// Cells carries header/null/trim handling shared with the CSV parser.
	Cells pcsv.Options
}

// Parser decodes JSON objects into rows.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	opt.Cells.HasHeader = true
	return &Parser{opt: opt}
}

// object is one decoded record with its keys in document order.
type object struct {
	keys []string
	vals map[string]any
}

// Parse decodes r and returns its objects as a table.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	dec := json.NewDecoder(r)
	// UseNumber keeps numeric cells as their source text.
	dec.UseNumber()

	objs, err := p.decodeAll(dec)
	if err != nil {
		return records.Table{}, 0, err
	}
	if len(objs) == 0 {
		return records.Table{}, 0, errors.New("json parser: no objects in input")
	}

	var (
		header []string
		col    = map[string]int{}
	)
	for _, o := range objs {
		for _, k := range o.keys {
			if _, ok := col[k]; !ok {
				col[k] = len(header)
				header = append(header, k)
			}
		}
	}

	rows := make([][]string, 0, len(objs)+1)
	rows = append(rows, header)
	for i, o := range objs {
		row := make([]string, len(header))
		for _, k := range o.keys {
			s, err := cell(o.vals[k])
			if err != nil {
				return records.Table{}, 0, fmt.Errorf("json parser: object %d, key %q: %w", i+1, k, err)
			}
			row[col[k]] = s
		}
		rows = append(rows, row)
	}
	return pcsv.NewParser(p.opt.Cells).ParseRows(rows)
}

// decodeAll reads every top-level value of the stream.
func (p *Parser) decodeAll(dec *json.Decoder) ([]object, error) {
	var out []object
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("json parser: %w", err)
		}
		switch tok {
		case json.Delim('['):
			objs, err := readArray(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, objs...)
		case json.Delim('{'):
			if p.opt.Records != "" {
				objs, err := readEnvelope(dec, p.opt.Records)
				if err != nil {
					return nil, err
				}
				out = append(out, objs...)
				continue
			}
			o, err := readObject(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, o)
		default:
			return nil, fmt.Errorf("json parser: unsupported top-level value %v", tok)
		}
	}
}

// readArray reads objects up to the closing bracket; the opening bracket
// has been consumed.
func readArray(dec *json.Decoder) ([]object, error) {
	var out []object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json parser: %w", err)
		}
		if tok != json.Delim('{') {
			return nil, fmt.Errorf("json parser: array element %d is not an object", len(out))
		}
		o, err := readObject(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("json parser: %w", err)
	}
	return out, nil
}

// readObject reads key/value pairs up to the closing brace; the opening
// brace has been consumed.
func readObject(dec *json.Decoder) (object, error) {
	o := object{vals: map[string]any{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return o, fmt.Errorf("json parser: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return o, fmt.Errorf("json parser: object key %v is not a string", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return o, fmt.Errorf("json parser: value of %q: %w", key, err)
		}
		if _, dup := o.vals[key]; !dup {
			o.keys = append(o.keys, key)
		}
		o.vals[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return o, fmt.Errorf("json parser: %w", err)
	}
	return o, nil
}

// readEnvelope skips every field except field, which must hold the array of
// records.
func readEnvelope(dec *json.Decoder, field string) ([]object, error) {
	var (
		out   []object
		found bool
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json parser: %w", err)
		}
		key, _ := tok.(string)
		if key != field {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("json parser: value of %q: %w", key, err)
			}
			continue
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json parser: %w", err)
		}
		if tok != json.Delim('[') {
			return nil, fmt.Errorf("json parser: field %q is not an array", field)
		}
		objs, err := readArray(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, objs...)
		found = true
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("json parser: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("json parser: envelope has no %q field", field)
	}
	return out, nil
}

// cell renders a scalar as the text the CSV path would have seen.
func cell(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("nested %T values are not supported", v)
	}
}
