package keys

import "testing"

func TestBatch(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		first  int
		last   int
		ext    string
		want   string
	}{
		{"plain", "t6", 1, 100, "ttl", "t6-1-100.ttl"},
		{"default prefix", "", 5, 5, "json", "results-5-5.json"},
		{"sanitized", "GND Export/v2", 7, 9, "rdf", "gnd-export-v2-7-9.rdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Batch(tc.prefix, tc.first, tc.last, tc.ext); got != tc.want {
				t.Fatalf("Batch() = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestObject(t *testing.T) {
	if got := Object("exports/gnd", "t6-1-2.ttl"); got != "exports/gnd/t6-1-2.ttl" {
		t.Fatalf("Object() = %q", got)
	}
	if got := Object("", "t6-1-2.ttl"); got != "t6-1-2.ttl" {
		t.Fatalf("Object() without root = %q", got)
	}
}

func TestPage(t *testing.T) {
	if got := Page("T0_results", 3); got != "T0_results.3" {
		t.Fatalf("Page() = %q", got)
	}
}
