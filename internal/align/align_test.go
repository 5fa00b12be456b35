package align

import (
	"testing"

	"github.com/ncbi/vadr-sub007/internal/coord"
)

// mustView builds a 10-position model view with a 3 nt insertion after
// model position 4 and model positions 6-7 deleted in the sequence:
//
//	model: 1 2 3 4 . . . 5 6 7 8 9 10
//	seq:   A C G T a c g T - - A C G
func mustView(t *testing.T, pp string) *View {
	t.Helper()
	v, err := FromAligned("seq1", "model1", "ACGTacgT--ACG", "xxxx...xxxxxx", pp)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func Test_FromAligned(t *testing.T) {
	v := mustView(t, "")

	if v.ModelLen() != 10 {
		t.Fatalf("ModelLen() = %d, want 10", v.ModelLen())
	}
	if v.SeqLen() != 11 {
		t.Fatalf("SeqLen() = %d, want 11", v.SeqLen())
	}
	if v.HasConf() {
		t.Error("HasConf() = true without a confidence track")
	}
	if v.Seq() != "ACGTACGTACG" {
		t.Errorf("Seq() = %q", v.Seq())
	}
}

func Test_PositionLookups(t *testing.T) {
	v := mustView(t, "")

	tests := []struct {
		name     string
		modelPos int
		wantSeq  int
		wantOK   bool
	}{
		{"start", 1, 1, true},
		{"before insertion", 4, 4, true},
		{"after insertion", 5, 8, true},
		{"deleted", 6, 0, false},
		{"deleted run", 7, 0, false},
		{"after deletion", 8, 9, true},
		{"end", 10, 11, true},
		{"out of range", 11, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := v.SeqPosAtModel(tt.modelPos)
			if ok != tt.wantOK || (ok && got != tt.wantSeq) {
				t.Errorf("SeqPosAtModel(%d) = (%d, %t), want (%d, %t)", tt.modelPos, got, ok, tt.wantSeq, tt.wantOK)
			}
		})
	}

	// reverse direction: insertion nucleotides have no model position
	if _, ok := v.ModelPosAt(5); ok {
		t.Error("ModelPosAt(5) should report an insertion")
	}
	if mp, ok := v.ModelPosAt(8); !ok || mp != 5 {
		t.Errorf("ModelPosAt(8) = (%d, %t), want (5, true)", mp, ok)
	}
}

func Test_FirstLastSeqPos(t *testing.T) {
	v := mustView(t, "")

	if sp, ok := v.FirstSeqPosAtOrAfter(6); !ok || sp != 9 {
		t.Errorf("FirstSeqPosAtOrAfter(6) = %d, want 9", sp)
	}
	if sp, ok := v.LastSeqPosAtOrBefore(7); !ok || sp != 8 {
		t.Errorf("LastSeqPosAtOrBefore(7) = %d, want 8", sp)
	}
	if _, ok := v.FirstSeqPosAtOrAfter(11); ok {
		t.Error("FirstSeqPosAtOrAfter(11) should fail past the model end")
	}
	if sp, ok := v.FirstSeqPosAtOrAfter(0); !ok || sp != 1 {
		t.Errorf("FirstSeqPosAtOrAfter(0) = %d, want 1", sp)
	}
	if _, ok := v.LastSeqPosAtOrBefore(0); ok {
		t.Error("LastSeqPosAtOrBefore(0) should fail before the model start")
	}
	if sp, ok := v.LastSeqPosAtOrBefore(12); !ok || sp != 11 {
		t.Errorf("LastSeqPosAtOrBefore(12) = %d, want 11 (clamped to the model end)", sp)
	}
}

func Test_InsertionDeletionRuns(t *testing.T) {
	v := mustView(t, "")

	start, n := v.InsertionAfter(4)
	if start != 5 || n != 3 {
		t.Errorf("InsertionAfter(4) = (%d, %d), want (5, 3)", start, n)
	}
	if _, n := v.InsertionAfter(1); n != 0 {
		t.Errorf("InsertionAfter(1) = %d insertions, want 0", n)
	}
	if got := v.DeletionAt(6); got != 2 {
		t.Errorf("DeletionAt(6) = %d, want 2", got)
	}
	if got := v.DeletionAt(5); got != 0 {
		t.Errorf("DeletionAt(5) = %d, want 0", got)
	}
}

func Test_Confidence(t *testing.T) {
	// 13 columns to match the alignment; the two gap columns carry "."
	v := mustView(t, "99*87655..569")
	if !v.HasConf() {
		t.Fatal("HasConf() = false with a confidence track")
	}
	if conf, ok := v.ConfidenceAt(1); !ok || conf != 0.9 {
		t.Errorf("ConfidenceAt(1) = (%v, %t), want (0.9, true)", conf, ok)
	}
	if conf, ok := v.ConfidenceAt(3); !ok || conf != 0.975 {
		t.Errorf("ConfidenceAt(3) = (%v, %t), want (0.975, true)", conf, ok)
	}
}

func Test_IsBoundaryGap(t *testing.T) {
	v := mustView(t, "")

	gapFeature, _ := coord.ParseSegments("6..8:+")
	if !v.IsBoundaryGap(gapFeature, Five) {
		t.Error("5' boundary at deleted model position 6 should be a gap")
	}
	if v.IsBoundaryGap(gapFeature, Three) {
		t.Error("3' boundary at model position 8 is aligned, not a gap")
	}
}

func Test_CoveredSpan(t *testing.T) {
	v, err := FromAligned("s", "m", "--CGT--", "xxxxxxx", "")
	if err != nil {
		t.Fatal(err)
	}
	first, last, ok := v.CoveredSpan()
	if !ok || first != 3 || last != 5 {
		t.Errorf("CoveredSpan() = (%d, %d, %t), want (3, 5, true)", first, last, ok)
	}

	// directional lookups from the uncovered flanks
	if sp, ok := v.FirstSeqPosAtOrAfter(1); !ok || sp != 1 {
		t.Errorf("FirstSeqPosAtOrAfter(1) = %d, want 1", sp)
	}
	if sp, ok := v.LastSeqPosAtOrBefore(7); !ok || sp != 3 {
		t.Errorf("LastSeqPosAtOrBefore(7) = %d, want 3", sp)
	}
	if got := v.DeletionAt(6); got != 2 {
		t.Errorf("DeletionAt(6) = %d, want 2 for the trailing uncovered run", got)
	}
}

func Test_CoveredSpan_NothingAligned(t *testing.T) {
	// five model columns all gapped in the sequence, the nucleotides
	// sit entirely in insertion columns
	v, err := FromAligned("s", "m", "-----ACGTA", "xxxxx.....", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := v.CoveredSpan(); ok {
		t.Error("CoveredSpan() should report nothing aligned")
	}
	if _, ok := v.FirstSeqPosAtOrAfter(1); ok {
		t.Error("FirstSeqPosAtOrAfter(1) should fail with nothing aligned")
	}
	if _, ok := v.LastSeqPosAtOrBefore(5); ok {
		t.Error("LastSeqPosAtOrBefore(5) should fail with nothing aligned")
	}
}

func Test_NewRejectsBadColumns(t *testing.T) {
	tests := []struct {
		name string
		cols []Column
	}{
		{"both model and insertion", []Column{{ModelPos: 1, SeqPos: 1, Insertion: true, Conf: -1}}},
		{"neither model nor insertion", []Column{{ModelPos: -1, SeqPos: 1, Conf: -1}}},
		{"insertion with gap", []Column{{ModelPos: -1, SeqPos: -1, Insertion: true, Conf: -1}}},
		{"model positions out of order", []Column{
			{ModelPos: 2, SeqPos: 1, Conf: -1},
			{ModelPos: 1, SeqPos: 2, Conf: -1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("s", "m", "AC", tt.cols, 5); err == nil {
				t.Error("New() expected an error")
			}
		})
	}
}
