package vadr

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/coord"
	"github.com/ncbi/vadr-sub007/internal/verdict"
)

func testResults() []verdict.Result {
	return []verdict.Result{
		{
			SeqID:   "seq1",
			ModelID: "NC_TEST",
			Pass:    false,
			Alerts: []alert.Resolved{
				{
					Alert:  alert.New("seq1", "NC_TEST", alert.LowCovrg, nil, nil, "0.500 of the sequence covered < 0.900"),
					Status: alert.Fatal,
				},
				{
					Alert: alert.NewFeature("seq1", "NC_TEST", 1, alert.MutStart,
						coord.Single(11, 13, coord.Plus), coord.Single(11, 13, coord.Plus),
						"CTT is not a valid start codon"),
					Status: alert.Fatal,
				},
			},
			FatalCount: 2,
		},
		{
			SeqID:           "seq2",
			ModelID:         "NC_TEST",
			Pass:            true,
			DemotedFeatures: []int{2},
		},
	}
}

func TestWriteAlerts(t *testing.T) {
	var buf bytes.Buffer
	WriteAlerts(&buf, testResults(), testLibrary(t))
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 alerts:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "#idx") {
		t.Errorf("missing header: %q", lines[0])
	}

	// sequence-level alert numbers its feature part 0 and shows no name
	if !strings.HasPrefix(lines[1], "1.0.1") || !strings.Contains(lines[1], "lowcovrg") {
		t.Errorf("sequence-level row: %q", lines[1])
	}
	if !strings.Contains(lines[1], " - ") {
		t.Errorf("sequence-level row should carry a blank feature: %q", lines[1])
	}

	// feature-level alert resolves the feature name from the library
	if !strings.HasPrefix(lines[2], "1.2.2") || !strings.Contains(lines[2], "ORF1 polyprotein") {
		t.Errorf("feature-level row: %q", lines[2])
	}
	if !strings.Contains(lines[2], "FATAL") || !strings.Contains(lines[2], "11..13:+") {
		t.Errorf("feature-level row: %q", lines[2])
	}
}

func TestBuildOutput(t *testing.T) {
	out := buildOutput(testResults(), testLibrary(t), 1.5)

	if out.Passed != 1 || out.Failed != 1 {
		t.Errorf("passed/failed = %d/%d, want 1/1", out.Passed, out.Failed)
	}
	if out.Execution != 1.5 {
		t.Errorf("execution = %v", out.Execution)
	}
	if len(out.Sequences) != 2 {
		t.Fatalf("got %d sequences", len(out.Sequences))
	}

	s1 := out.Sequences[0]
	if s1.Pass || len(s1.Alerts) != 2 {
		t.Fatalf("seq1 output: %+v", s1)
	}
	if s1.Alerts[0].Idx != "1.0.1" || s1.Alerts[0].Feature != "" {
		t.Errorf("sequence-level alert output: %+v", s1.Alerts[0])
	}
	if s1.Alerts[1].Idx != "1.2.2" || s1.Alerts[1].Feature != "ORF1 polyprotein" {
		t.Errorf("feature-level alert output: %+v", s1.Alerts[1])
	}
	if !s1.Alerts[1].Fatal || s1.Alerts[1].SeqCoords != "11..13:+" {
		t.Errorf("feature-level alert output: %+v", s1.Alerts[1])
	}

	s2 := out.Sequences[1]
	if !s2.Pass || len(s2.DemotedFeatures) != 1 || s2.DemotedFeatures[0] != "pep1" {
		t.Errorf("seq2 output: %+v", s2)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	b, err := WriteJSON(path, testResults(), testLibrary(t), 0.1)
	if err != nil {
		t.Fatal(err)
	}

	dat, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, dat) {
		t.Error("returned bytes differ from the written file")
	}

	var out Output
	if err := json.Unmarshal(dat, &out); err != nil {
		t.Fatal(err)
	}
	if out.Passed != 1 || out.Failed != 1 || len(out.Sequences) != 2 {
		t.Errorf("round trip: %+v", out)
	}
}
