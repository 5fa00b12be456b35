package vadr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ncbi/vadr-sub007/config"
)

// end to end: minfo and input files in, JSON report and alert table out
func TestAnnotate(t *testing.T) {
	dir := t.TempDir()

	minfo := filepath.Join(dir, "models.minfo")
	if err := os.WriteFile(minfo, []byte(testMinfo), 0644); err != nil {
		t.Fatal(err)
	}

	clean := "ACGTACGTACATGAAACCCGGGTTTCCCTAAACGTACGTACGTACGTACG"
	badStart := strings.Replace(clean, "ATGAAA", "CTTAAA", 1)
	rf := strings.Repeat("x", 50)
	input := `[
  {"seq": "good1", "model": "NC_TEST", "aligned": "` + clean + `", "rf": "` + rf + `",
   "hits": [{"seq_coords": "1..50:+", "mdl_coords": "1..50:+", "bit": 95}]},
  {"seq": "bad1", "model": "NC_TEST", "aligned": "` + badStart + `", "rf": "` + rf + `",
   "hits": [{"seq_coords": "1..50:+", "mdl_coords": "1..50:+", "bit": 95}]}
]`
	in := filepath.Join(dir, "in.json")
	if err := os.WriteFile(in, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.json")
	alt := filepath.Join(dir, "out.alt")
	results := Annotate(NewFlags(minfo, in, out, alt), &config.Config{Threads: 2})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].Pass {
		t.Errorf("good1 should pass: %+v", results[0].Alerts)
	}
	if results[1].Pass {
		t.Error("bad1 should fail on its start codon")
	}

	report, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(report), `"mutstart"`) {
		t.Error("JSON report missing the mutstart alert")
	}

	table, err := os.ReadFile(alt)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(table), "mutstart") || !strings.Contains(string(table), "FATAL") {
		t.Errorf("alert table missing the fatal mutstart row:\n%s", table)
	}
	// the failing CDS also fails its translated peptides
	if !strings.Contains(string(table), "peptrans") {
		t.Errorf("alert table missing peptide propagation:\n%s", table)
	}
}
