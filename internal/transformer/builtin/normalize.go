package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"hdidash/pkg/records"
)

const nbspace = "\u00a0"

// Normalize cleans string cells in place: NO-BREAK SPACE becomes a plain
// space, text is put in Unicode NFC (so "Côte d'Ivoire" joins regardless of
// how each file composed it), edge whitespace is trimmed, and strings that
// end up empty become nil.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if ns := NormalizeString(s); ns == "" {
				r[k] = nil
			} else if ns != s {
				r[k] = ns
			}
		}
	}
	return in
}

// NormalizeString applies the Normalize rules to a single value.
func NormalizeString(s string) string {
	if strings.Contains(s, nbspace) {
		s = strings.ReplaceAll(s, nbspace, " ")
	}
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	if HasEdgeSpace(s) {
		s = strings.TrimSpace(s)
	}
	return s
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
