package transformer

import (
	"reflect"
	"testing"

	"hdidash/pkg/records"
)

// setField mutates each record in place by setting key -> value.
type setField struct {
	key string
	val any
}

func (t setField) Apply(in []records.Record) []records.Record {
	for i := range in {
		in[i][t.key] = t.val
	}
	return in
}

// keepPresent keeps records with a non-missing key, reslicing in place.
type keepPresent struct{ key string }

func (t keepPresent) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, r := range in {
		if !r.Missing(t.key) {
			out = append(out, r)
		}
	}
	return out
}

/*
TestChainApply_Order verifies that Chain.Apply passes the output of each
transformer to the next, in the declared order.
*/
func TestChainApply_Order(t *testing.T) {
	t.Parallel()

	var seen []string
	step := func(name string) Transformer {
		return Func(func(in []records.Record) []records.Record {
			seen = append(seen, name)
			return in
		})
	}
	in := []records.Record{{"country": "A"}}
	out := Chain{
		step("normalize"),
		setField{key: "hdi", val: 0.5},
		step("pivot"),
		setField{key: "hdi", val: 0.6},
	}.Apply(in)

	if !reflect.DeepEqual(seen, []string{"normalize", "pivot"}) {
		t.Fatalf("order=%v", seen)
	}
	if out[0]["hdi"] != 0.6 {
		t.Fatalf("last writer should win, got %#v", out[0]["hdi"])
	}
}

/*
TestChainApply_FilterThenMutate verifies in-place filtering followed by a
mutating transform, and that steady-state application does not allocate.
*/
func TestChainApply_FilterThenMutate(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"country": "A", "life": "70"},
		{"country": "B", "life": nil},
		{"country": "C", "life": "71"},
	}
	c := Chain{keepPresent{key: "life"}, setField{key: "tag", val: "ok"}}

	out := c.Apply(append([]records.Record(nil), in...))
	if len(out) != 2 || out[0]["country"] != "A" || out[1]["country"] != "C" {
		t.Fatalf("survivors=%v", out)
	}
	for _, r := range out {
		if r["tag"] != "ok" {
			t.Fatalf("missing tag on %#v", r)
		}
	}

	allocs := testing.AllocsPerRun(200, func() { _ = c.Apply(in) })
	if allocs > 0.20 {
		t.Fatalf("allocs/op=%.2f; want <= 0.20", allocs)
	}
}

/*
TestChainApply_EmptyChainAndNilInput verifies that an empty chain returns its
input slice untouched and that nil input stays nil.
*/
func TestChainApply_EmptyChainAndNilInput(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"country": "A"}}
	var c Chain
	if out := c.Apply(in); len(out) != 1 || &out[0] != &in[0] {
		t.Fatalf("empty chain should return same slice")
	}
	if out := (Chain{setField{"x", 1}}).Apply(nil); out != nil {
		t.Fatalf("Apply(nil)=%#v; want nil", out)
	}
}

func BenchmarkChain_FilterHalf(b *testing.B) {
	const n = 40000
	in := make([]records.Record, n)
	for i := 0; i < n; i++ {
		var v any
		if i%2 == 0 {
			v = "0.5"
		}
		in[i] = records.Record{"country": "X", "hdi": v}
	}
	c := Chain{keepPresent{"hdi"}, setField{"tag", "ok"}}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Apply(in)
	}
}
