// Package indicator holds the cleaned, tidy table: one record per
// (country, year) with HDI, life expectancy and (optional) population.
package indicator

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/zeebo/xxh3"
)

// Record is one cleaned observation. HDI and Life are always present;
// Population is nil when the source had no value.
type Record struct {
	Country    string   `json:"country"`
	Year       int      `json:"year"`
	HDI        float64  `json:"hdi"`
	Life       float64  `json:"life"`
	Population *float64 `json:"population"`
}

// HasPopulation reports whether the record carries a population value.
func (r Record) HasPopulation() bool { return r.Population != nil }

// PopulationOr returns the population or def when missing.
func (r Record) PopulationOr(def float64) float64 {
	if r.Population == nil {
		return def
	}
	return *r.Population
}

// Float returns a pointer to v, for building records with a population.
func Float(v float64) *float64 { return &v }

// Table is the cleaned table. It is built once per run and passed to every
// consumer; nothing mutates it after Build returns.
type Table struct {
	Records []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Empty reports whether t has no records.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Sort orders records by country, then year.
func (t *Table) Sort() {
	sort.SliceStable(t.Records, func(i, j int) bool {
		a, b := t.Records[i], t.Records[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		return a.Year < b.Year
	})
}

// Lookup returns the record for (country, year).
func (t *Table) Lookup(country string, year int) (Record, bool) {
	for _, r := range t.Records {
		if r.Country == country && r.Year == year {
			return r, true
		}
	}
	return Record{}, false
}

// Year returns the records of one year, in table order.
func (t *Table) Year(year int) []Record {
	var out []Record
	for _, r := range t.Records {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// Countries returns the sorted distinct countries.
func (t *Table) Countries() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.Records {
		if _, ok := seen[r.Country]; !ok {
			seen[r.Country] = struct{}{}
			out = append(out, r.Country)
		}
	}
	sort.Strings(out)
	return out
}

// Fingerprint hashes the table content with xxh3. Two tables with the same
// records in the same order have the same fingerprint.
func (t *Table) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	putF := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	for _, r := range t.Records {
		_, _ = h.WriteString(r.Country)
		_, _ = h.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], uint64(r.Year))
		_, _ = h.Write(buf[:])
		putF(r.HDI)
		putF(r.Life)
		if r.Population != nil {
			_, _ = h.Write([]byte{1})
			putF(*r.Population)
		} else {
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}
