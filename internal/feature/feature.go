// Package feature holds the per-model feature definitions the
// detectors annotate against. A model's features are loaded once,
// validated, and shared read-only across every sequence classified to
// that model.
package feature

import (
	"fmt"

	"github.com/ncbi/vadr-sub007/internal/coord"
)

// Kind is the closed set of feature types the engine reasons about.
type Kind int

const (
	// Gene is a gene feature.
	Gene Kind = iota
	// CDS is a protein-coding region.
	CDS
	// MaturePeptide is a cleaved product of a CDS.
	MaturePeptide
	// Other covers every remaining annotated feature type.
	Other
)

// String returns the feature-table name of the kind.
func (k Kind) String() string {
	switch k {
	case Gene:
		return "gene"
	case CDS:
		return "CDS"
	case MaturePeptide:
		return "mat_peptide"
	default:
		return "misc_feature"
	}
}

// ParseKind maps a model-info type string to a Kind. Unrecognized
// types map to Other, matching how unknown feature types are carried
// through annotation untouched.
func ParseKind(in string) Kind {
	switch in {
	case "gene":
		return Gene
	case "CDS", "cds":
		return CDS
	case "mat_peptide":
		return MaturePeptide
	}
	return Other
}

// NoParent marks a feature without a parent.
const NoParent = -1

// Feature is one annotated region on a model. Features reference each
// other by index into the model's feature list; a parent index always
// points at an earlier entry (enforced at load).
type Feature struct {
	// the product or gene name, used in alert details
	Name string

	Kind   Kind
	Coords coord.Segments

	// index of the parent feature, NoParent if none; for a
	// MaturePeptide the parent is always a CDS
	ParentIdx int

	// expendable features tolerate demotable alerts without failing
	// their sequence; they are demoted to misc_feature in reporting
	Expendable bool

	// deletable features may be dropped from annotation entirely when
	// completely absent from the sequence
	Deletable bool

	// the NCBI translation table used for this feature's codon checks
	TransTable int
}

// IsCoding reports whether codon-level checks apply to the feature.
func (f *Feature) IsCoding() bool {
	return f.Kind == CDS || f.Kind == MaturePeptide
}

// Map is the validated, read-only feature set for one model.
type Map struct {
	ModelID  string
	ModelLen int

	feats []Feature

	// children[i] lists the indexes of features whose ParentIdx == i
	children [][]int
}

// NewMap validates and indexes a model's features. Violations here are
// configuration errors fatal to model loading, never per-sequence
// alerts: a parent index must reference an earlier feature, and a
// mature peptide's coordinates must be contained in its parent CDS.
func NewMap(modelID string, modelLen int, feats []Feature) (*Map, error) {
	m := &Map{
		ModelID:  modelID,
		ModelLen: modelLen,
		feats:    feats,
		children: make([][]int, len(feats)),
	}
	for i := range feats {
		f := &feats[i]
		if len(f.Coords) == 0 {
			return nil, fmt.Errorf("model %s feature %d (%s): empty coordinates", modelID, i, f.Name)
		}
		for _, iv := range f.Coords {
			if iv.Low() < 1 || iv.High() > modelLen {
				return nil, fmt.Errorf("model %s feature %d (%s): coords %s outside model 1..%d",
					modelID, i, f.Name, f.Coords, modelLen)
			}
		}
		if f.TransTable == 0 {
			f.TransTable = 1
		}
		if f.ParentIdx == NoParent {
			continue
		}
		if f.ParentIdx < 0 || f.ParentIdx >= i {
			return nil, fmt.Errorf("model %s feature %d (%s): parent index %d does not reference an earlier feature",
				modelID, i, f.Name, f.ParentIdx)
		}
		parent := &feats[f.ParentIdx]
		if f.Kind == MaturePeptide {
			if parent.Kind != CDS {
				return nil, fmt.Errorf("model %s feature %d (%s): mat_peptide parent %d is a %s, not a CDS",
					modelID, i, f.Name, f.ParentIdx, parent.Kind)
			}
			if !parent.Coords.ContainsAll(f.Coords) {
				return nil, fmt.Errorf("model %s feature %d (%s): coords %s not contained in parent CDS %s",
					modelID, i, f.Name, f.Coords, parent.Coords)
			}
		}
		m.children[f.ParentIdx] = append(m.children[f.ParentIdx], i)
	}
	return m, nil
}

// Len returns the number of features.
func (m *Map) Len() int { return len(m.feats) }

// At returns the feature at index i. Panics on a bad index, which the
// load-time validation makes unreachable from detector code.
func (m *Map) At(i int) *Feature { return &m.feats[i] }

// Features returns the ordered feature list.
func (m *Map) Features() []Feature { return m.feats }

// ChildrenOf returns the indexes of the features whose parent is i.
func (m *Map) ChildrenOf(i int) []int {
	if i < 0 || i >= len(m.children) {
		return nil
	}
	return m.children[i]
}

// ParentOf returns the parent index of feature i, NoParent if none.
func (m *Map) ParentOf(i int) int {
	if i < 0 || i >= len(m.feats) {
		return NoParent
	}
	return m.feats[i].ParentIdx
}

// IdenticalCoords reports whether two features cover exactly the same
// model coordinates. Used to suppress generic-feature alerts in favor
// of the CDS- or mat_peptide-specific variant on the identical twin.
func (m *Map) IdenticalCoords(a, b int) bool {
	if a < 0 || b < 0 || a >= len(m.feats) || b >= len(m.feats) {
		return false
	}
	return m.feats[a].Coords.Equal(m.feats[b].Coords)
}

// CodingIdx returns, for feature i, the index of the CDS or
// mat_peptide with identical coordinates if one exists, else -1.
func (m *Map) CodingIdx(i int) int {
	for j := range m.feats {
		if j != i && m.feats[j].IsCoding() && m.IdenticalCoords(i, j) {
			return j
		}
	}
	return -1
}
