package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"hdidash/pkg/records"
)

// Coerce converts string cells to typed values. Cells that fail to parse
// keep their original string so a later step can report them.
type Coerce struct {
	Types  map[string]string // field -> one of: int, float, bool, date, string
	Layout string            // date layout
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			switch typ {
			case "int":
				if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
					r[field] = i
				}
			case "float":
				if f, err := ParseNumber(s); err == nil {
					r[field] = f
				}
			case "bool":
				if b, err := strconv.ParseBool(s); err == nil {
					r[field] = b
				}
			case "date":
				if t, err := time.Parse(c.Layout, s); err == nil {
					r[field] = t
				}
			case "string":
				// already string
			}
		}
	}
	return in
}

// ParseNumber parses a finite decimal number, accepting the k/M/B magnitude
// suffixes used by Gapminder exports ("12.5k", "3.2M", "1.1B").
func ParseNumber(s string) (float64, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, fmt.Errorf("parse number %q: empty", s)
	}
	mult := 1.0
	switch t[len(t)-1] {
	case 'k', 'K':
		mult = 1e3
	case 'M':
		mult = 1e6
	case 'B':
		mult = 1e9
	}
	if mult != 1 {
		t = strings.TrimSpace(t[:len(t)-1])
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parse number %q: not finite", s)
	}
	return f * mult, nil
}
