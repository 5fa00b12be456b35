package feature

import (
	"strings"
	"testing"

	"github.com/ncbi/vadr-sub007/internal/coord"
)

func segs(t *testing.T, in string) coord.Segments {
	t.Helper()
	s, err := coord.ParseSegments(in)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func Test_NewMap(t *testing.T) {
	tests := []struct {
		name    string
		feats   []Feature
		wantErr string
	}{
		{
			"valid CDS with peptides",
			[]Feature{
				{Name: "ORF1", Kind: CDS, ParentIdx: NoParent},
				{Name: "nsp1", Kind: MaturePeptide, ParentIdx: 0},
				{Name: "nsp2", Kind: MaturePeptide, ParentIdx: 0},
			},
			"",
		},
		{
			"parent references later feature",
			[]Feature{
				{Name: "nsp1", Kind: MaturePeptide, ParentIdx: 1},
				{Name: "ORF1", Kind: CDS, ParentIdx: NoParent},
			},
			"does not reference an earlier feature",
		},
		{
			"self parent",
			[]Feature{
				{Name: "ORF1", Kind: CDS, ParentIdx: 0},
			},
			"does not reference an earlier feature",
		},
		{
			"peptide parent is not a CDS",
			[]Feature{
				{Name: "ORF1", Kind: Gene, ParentIdx: NoParent},
				{Name: "nsp1", Kind: MaturePeptide, ParentIdx: 0},
			},
			"not a CDS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feats := tt.feats
			// fill in coordinates so only the relation under test fails
			coords := []string{"11..31:+", "11..22:+", "23..28:+"}
			for i := range feats {
				feats[i].Coords = segs(t, coords[i%len(coords)])
			}

			_, err := NewMap("NC_TEST", 50, feats)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewMap() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("NewMap() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func Test_NewMap_PeptideOutsideParent(t *testing.T) {
	feats := []Feature{
		{Name: "ORF1", Kind: CDS, Coords: segs(t, "11..31:+"), ParentIdx: NoParent},
		{Name: "nsp1", Kind: MaturePeptide, Coords: segs(t, "23..35:+"), ParentIdx: 0},
	}
	if _, err := NewMap("NC_TEST", 50, feats); err == nil {
		t.Fatal("NewMap() expected containment error")
	}
}

func Test_NewMap_CoordsOutsideModel(t *testing.T) {
	feats := []Feature{
		{Name: "ORF1", Kind: CDS, Coords: segs(t, "11..60:+"), ParentIdx: NoParent},
	}
	if _, err := NewMap("NC_TEST", 50, feats); err == nil {
		t.Fatal("NewMap() expected out-of-model error")
	}
}

func Test_ChildrenOf(t *testing.T) {
	m, err := NewMap("NC_TEST", 50, []Feature{
		{Name: "ORF1", Kind: CDS, Coords: segs(t, "11..31:+"), ParentIdx: NoParent},
		{Name: "nsp1", Kind: MaturePeptide, Coords: segs(t, "11..22:+"), ParentIdx: 0},
		{Name: "nsp2", Kind: MaturePeptide, Coords: segs(t, "23..28:+"), ParentIdx: 0},
		{Name: "ORF2", Kind: CDS, Coords: segs(t, "35..46:+"), ParentIdx: NoParent},
	})
	if err != nil {
		t.Fatal(err)
	}

	kids := m.ChildrenOf(0)
	if len(kids) != 2 || kids[0] != 1 || kids[1] != 2 {
		t.Errorf("ChildrenOf(0) = %v, want [1 2]", kids)
	}
	if len(m.ChildrenOf(3)) != 0 {
		t.Errorf("ChildrenOf(3) = %v, want none", m.ChildrenOf(3))
	}
	if m.ParentOf(1) != 0 || m.ParentOf(0) != NoParent {
		t.Error("ParentOf() wrong")
	}
}

func Test_IdenticalCoords(t *testing.T) {
	m, err := NewMap("NC_TEST", 50, []Feature{
		{Name: "gene1", Kind: Gene, Coords: segs(t, "11..31:+"), ParentIdx: NoParent},
		{Name: "ORF1", Kind: CDS, Coords: segs(t, "11..31:+"), ParentIdx: NoParent},
		{Name: "ORF2", Kind: CDS, Coords: segs(t, "35..46:+"), ParentIdx: NoParent},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !m.IdenticalCoords(0, 1) {
		t.Error("gene1 and ORF1 cover the same coords")
	}
	if m.IdenticalCoords(1, 2) {
		t.Error("ORF1 and ORF2 differ")
	}
	if got := m.CodingIdx(0); got != 1 {
		t.Errorf("CodingIdx(0) = %d, want 1", got)
	}
	if got := m.CodingIdx(2); got != -1 {
		t.Errorf("CodingIdx(2) = %d, want -1", got)
	}
}

func Test_DefaultTransTable(t *testing.T) {
	m, err := NewMap("NC_TEST", 50, []Feature{
		{Name: "ORF1", Kind: CDS, Coords: segs(t, "11..31:+"), ParentIdx: NoParent},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.At(0).TransTable != 1 {
		t.Errorf("TransTable = %d, want default 1", m.At(0).TransTable)
	}
}
