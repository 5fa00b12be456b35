package vadr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testInput = `[
  {
    "seq": "seq1",
    "model": "NC_TEST",
    "aligned": "ACGTACGTACATGAAACCCGGGTTTCCCTAAACGTACGTACGTACGTACG",
    "rf": "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx",
    "hits": [
      {"seq_coords": "1..50:+", "mdl_coords": "1..50:+", "bit": 95.5}
    ],
    "protein_hits": [
      {"ftr_idx": 1, "seq_start": 11, "seq_end": 31, "score": 40}
    ],
    "scores": {"best": 95.5, "second_best": 20, "has_second": true, "bias": 1.5}
  },
  {
    "seq": "seq2",
    "model": "NC_TEST",
    "aligned": "ACGTACGTACATGAAACCCGGGTTTCCCTAAACGTACGTACGTACGTACG",
    "rf": "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"
  }
]`

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadInputs(t *testing.T) {
	lib := testLibrary(t)
	units, err := ReadInputs(writeInput(t, testInput), lib)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 {
		t.Fatalf("decoded %d units, want 2", len(units))
	}

	u := units[0]
	if u.SeqID != "seq1" || u.ModelID != "NC_TEST" {
		t.Errorf("unit ids = %s/%s", u.SeqID, u.ModelID)
	}
	if u.Input.View == nil || u.Input.View.SeqLen() != 50 {
		t.Fatalf("view not built: %+v", u.Input.View)
	}
	if u.Input.Map == nil || u.Input.Map.Len() != 4 {
		t.Errorf("feature map not resolved")
	}
	if len(u.Input.Hits) != 1 || u.Input.Hits[0].Bit != 95.5 {
		t.Errorf("hits = %+v", u.Input.Hits)
	}
	if u.Input.Hits[0].SeqInterval.String() != "1..50:+" {
		t.Errorf("hit seq interval = %s", u.Input.Hits[0].SeqInterval)
	}
	if len(u.Input.ProteinHits) != 1 || u.Input.ProteinHits[0].FeatureIdx != 1 {
		t.Errorf("protein hits = %+v", u.Input.ProteinHits)
	}
	if u.Input.Scores == nil || !u.Input.Scores.HasSecond {
		t.Errorf("scores = %+v", u.Input.Scores)
	}

	// both sequences resolve to the same cached feature map
	if units[0].Input.Map != units[1].Input.Map {
		t.Error("feature map not shared between sequences of the same model")
	}
	if units[1].Input.Scores != nil || len(units[1].Input.Hits) != 0 {
		t.Errorf("optional blocks should decode empty: %+v", units[1].Input)
	}
}

func TestReadInputs_Errors(t *testing.T) {
	lib := testLibrary(t)
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"unknown model",
			`[{"seq": "s", "model": "NC_NOPE", "aligned": "A", "rf": "x"}]`,
			"unknown model",
		},
		{
			"multi-interval hit",
			strings.Replace(testInput, `"1..50:+", "mdl_coords": "1..50:+"`,
				`"1..10:+,20..50:+", "mdl_coords": "1..50:+"`, 1),
			"single intervals",
		},
		{
			"protein hit out of range",
			strings.Replace(testInput, `"ftr_idx": 1`, `"ftr_idx": 9`, 1),
			"references feature",
		},
		{
			"not json",
			"not json at all",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadInputs(writeInput(t, tt.body), lib)
			if err == nil {
				t.Fatal("want error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
