// Package align exposes a read-only view over a sequence-to-model
// alignment. The view is built once per sequence from the columns the
// external aligner produced and answers the coordinate lookups the
// detectors need in O(1) via precomputed position indexes. It never
// mutates the underlying alignment.
package align

import (
	"fmt"

	"github.com/ncbi/vadr-sub007/internal/coord"
)

// End names one of the two boundaries of a feature or alignment.
type End int

const (
	// Five is the 5' boundary.
	Five End = iota
	// Three is the 3' boundary.
	Three
)

func (e End) String() string {
	if e == Five {
		return "5'"
	}
	return "3'"
}

// Column is one column of the alignment. Exactly one of ModelPos >= 1
// or Insertion identifies whether the column consumes a model
// reference position. SeqPos is -1 when the sequence has a gap
// (deletion relative to the model). Conf is the posterior probability
// in [0,1], -1 when no confidence track is available.
type Column struct {
	ModelPos  int
	SeqPos    int
	Insertion bool
	Conf      float32
}

// GapInSeq reports whether the sequence is gapped at this column.
func (c Column) GapInSeq() bool { return c.SeqPos < 1 }

// Hit is one local-alignment match from the external coverage search.
// Hits are kept in sequence-position order for topology checks.
type Hit struct {
	SeqInterval coord.Interval
	MdlInterval coord.Interval
	Strand      coord.Strand
	Bit         float64
	Bias        float64
}

// View is the per-sequence read-only alignment adapter.
type View struct {
	SeqID   string
	ModelID string

	// the unaligned sequence, 1-based positions index into it via Nt
	seq string

	cols []Column

	// modelCol[p] is the index of the column consuming model position
	// p, -1 if the model position is deleted in (or not covered by)
	// the sequence. Index 0 is unused.
	modelCol []int

	// seqCol[p] is the index of the column holding sequence position
	// p. Index 0 is unused.
	seqCol []int

	// nextAligned[p] is the smallest model position >= p aligned to a
	// sequence nucleotide, 0 if none; prevAligned[p] is the largest
	// such position <= p. Index 0 is unused.
	nextAligned []int
	prevAligned []int

	// first and last model positions aligned to a nucleotide; covFirst
	// is 0 when nothing aligns
	covFirst int
	covLast  int

	modelLen int
	hasConf  bool
}

// New builds a view from aligner output columns. modelLen is the
// reference length of the model. Column invariants are checked here so
// the detectors never have to.
func New(seqID, modelID, seq string, cols []Column, modelLen int) (*View, error) {
	v := &View{
		SeqID:    seqID,
		ModelID:  modelID,
		seq:      seq,
		cols:     cols,
		modelLen: modelLen,
		modelCol: make([]int, modelLen+1),
		seqCol:   make([]int, len(seq)+1),
	}
	for i := range v.modelCol {
		v.modelCol[i] = -1
	}
	for i := range v.seqCol {
		v.seqCol[i] = -1
	}

	lastModel, lastSeq := 0, 0
	for i, c := range cols {
		if (c.ModelPos >= 1) == c.Insertion {
			return nil, fmt.Errorf("column %d: exactly one of model position and insertion flag must be set", i)
		}
		if c.Insertion && c.GapInSeq() {
			return nil, fmt.Errorf("column %d: insertion column without a sequence position", i)
		}
		if c.ModelPos >= 1 {
			if c.ModelPos > modelLen {
				return nil, fmt.Errorf("column %d: model position %d beyond model length %d", i, c.ModelPos, modelLen)
			}
			if c.ModelPos <= lastModel {
				return nil, fmt.Errorf("column %d: model positions out of order (%d after %d)", i, c.ModelPos, lastModel)
			}
			lastModel = c.ModelPos
			v.modelCol[c.ModelPos] = i
		}
		if !c.GapInSeq() {
			if c.SeqPos > len(seq) {
				return nil, fmt.Errorf("column %d: sequence position %d beyond sequence length %d", i, c.SeqPos, len(seq))
			}
			if c.SeqPos <= lastSeq {
				return nil, fmt.Errorf("column %d: sequence positions out of order (%d after %d)", i, c.SeqPos, lastSeq)
			}
			lastSeq = c.SeqPos
			v.seqCol[c.SeqPos] = i
			if c.Conf >= 0 {
				v.hasConf = true
			}
		}
	}

	v.prevAligned = make([]int, modelLen+1)
	v.nextAligned = make([]int, modelLen+1)
	prev := 0
	for p := 1; p <= modelLen; p++ {
		if i := v.modelCol[p]; i >= 0 && !v.cols[i].GapInSeq() {
			prev = p
			if v.covFirst == 0 {
				v.covFirst = p
			}
			v.covLast = p
		}
		v.prevAligned[p] = prev
	}
	next := 0
	for p := modelLen; p >= 1; p-- {
		if i := v.modelCol[p]; i >= 0 && !v.cols[i].GapInSeq() {
			next = p
		}
		v.nextAligned[p] = next
	}
	return v, nil
}

// SeqLen returns the unaligned sequence length.
func (v *View) SeqLen() int { return len(v.seq) }

// ModelLen returns the model reference length.
func (v *View) ModelLen() int { return v.modelLen }

// Seq returns the unaligned sequence.
func (v *View) Seq() string { return v.seq }

// Nt returns the nucleotide at a 1-based sequence position, 0 if the
// position is out of range.
func (v *View) Nt(seqPos int) byte {
	if seqPos < 1 || seqPos > len(v.seq) {
		return 0
	}
	return v.seq[seqPos-1]
}

// HasConf reports whether a confidence track accompanies the
// alignment. False in the alternate (pairwise) alignment mode.
func (v *View) HasConf() bool { return v.hasConf }

// ConfidenceAt returns the posterior probability at a sequence
// position. ok is false when no confidence is available there.
func (v *View) ConfidenceAt(seqPos int) (float32, bool) {
	if seqPos < 1 || seqPos >= len(v.seqCol) {
		return 0, false
	}
	i := v.seqCol[seqPos]
	if i < 0 || v.cols[i].Conf < 0 {
		return 0, false
	}
	return v.cols[i].Conf, true
}

// ModelPosAt returns the model position a sequence position aligns to.
// ok is false when the sequence position sits in an insertion relative
// to the model.
func (v *View) ModelPosAt(seqPos int) (int, bool) {
	if seqPos < 1 || seqPos >= len(v.seqCol) {
		return 0, false
	}
	i := v.seqCol[seqPos]
	if i < 0 || v.cols[i].Insertion {
		return 0, false
	}
	return v.cols[i].ModelPos, true
}

// SeqPosAtModel returns the sequence position aligned to a model
// position. ok is false when the model position is deleted in the
// sequence or outside the aligned region.
func (v *View) SeqPosAtModel(modelPos int) (int, bool) {
	if modelPos < 1 || modelPos >= len(v.modelCol) {
		return 0, false
	}
	i := v.modelCol[modelPos]
	if i < 0 || v.cols[i].GapInSeq() {
		return 0, false
	}
	return v.cols[i].SeqPos, true
}

// FirstSeqPosAtOrAfter returns the first non-gap sequence position
// aligned to modelPos or any later model position. ok is false when
// every remaining model position is deleted in the sequence. O(1) via
// the precomputed next-aligned index.
func (v *View) FirstSeqPosAtOrAfter(modelPos int) (int, bool) {
	if modelPos < 1 {
		modelPos = 1
	}
	if modelPos > v.modelLen {
		return 0, false
	}
	p := v.nextAligned[modelPos]
	if p == 0 {
		return 0, false
	}
	return v.SeqPosAtModel(p)
}

// LastSeqPosAtOrBefore returns the last non-gap sequence position
// aligned to modelPos or any earlier model position. O(1) via the
// precomputed previous-aligned index.
func (v *View) LastSeqPosAtOrBefore(modelPos int) (int, bool) {
	if modelPos > v.modelLen {
		modelPos = v.modelLen
	}
	if modelPos < 1 {
		return 0, false
	}
	p := v.prevAligned[modelPos]
	if p == 0 {
		return 0, false
	}
	return v.SeqPosAtModel(p)
}

// InsertionAfter returns the run of insertion columns immediately
// following the column that consumes modelPos: the 1-based sequence
// start of the run and its length, (0, 0) when there is none.
func (v *View) InsertionAfter(modelPos int) (seqStart, n int) {
	if modelPos < 1 || modelPos >= len(v.modelCol) {
		return 0, 0
	}
	i := v.modelCol[modelPos]
	if i < 0 {
		return 0, 0
	}
	for j := i + 1; j < len(v.cols) && v.cols[j].Insertion; j++ {
		if n == 0 {
			seqStart = v.cols[j].SeqPos
		}
		n++
	}
	return seqStart, n
}

// DeletionAt returns the length of the run of deleted model positions
// starting at modelPos, 0 when modelPos is present in the sequence.
func (v *View) DeletionAt(modelPos int) int {
	if modelPos < 1 || modelPos > v.modelLen {
		return 0
	}
	if _, ok := v.SeqPosAtModel(modelPos); ok {
		return 0
	}
	next := v.nextAligned[modelPos]
	if next == 0 {
		return v.modelLen - modelPos + 1
	}
	return next - modelPos
}

// CoveredSpan returns the first and last model positions aligned to a
// sequence nucleotide, ok false when nothing aligns.
func (v *View) CoveredSpan() (first, last int, ok bool) {
	return v.covFirst, v.covLast, v.covFirst > 0
}

// IsBoundaryGap reports whether the named end of a model-space feature
// is a gap in the sequence (the boundary model position aligns to no
// nucleotide).
func (v *View) IsBoundaryGap(segs coord.Segments, end End) bool {
	if len(segs) == 0 {
		return false
	}
	var pos int
	if end == Five {
		pos = segs[0].Start
	} else {
		pos = segs[len(segs)-1].End
	}
	_, ok := v.SeqPosAtModel(pos)
	return !ok
}
