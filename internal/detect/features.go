package detect

import (
	"fmt"

	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/align"
	"github.com/ncbi/vadr-sub007/internal/codon"
	"github.com/ncbi/vadr-sub007/internal/coord"
	"github.com/ncbi/vadr-sub007/internal/feature"
)

// featureAlerts runs every per-feature detector family.
func featureAlerts(in Input, cfg Config) []alert.Alert {
	v := in.View
	fm := in.Map
	if v == nil || fm == nil {
		return nil
	}

	var out []alert.Alert
	annotated := 0
	for i := 0; i < fm.Len(); i++ {
		f := fm.At(i)

		segs, missing, ok := seqSpanOf(v, f)
		if !ok {
			if f.Deletable {
				continue
			}
			out = append(out, alert.NewFeature(v.SeqID, v.ModelID, i, alert.DeletInS,
				nil, coord.Segments(f.Coords), "feature has no aligned coverage"))
			continue
		}
		annotated++
		if missing > 0 {
			out = append(out, alert.NewFeature(v.SeqID, v.ModelID, i, alert.DeletInF,
				segs, coord.Segments(f.Coords),
				fmt.Sprintf("%d of %d segments have no aligned coverage", missing, len(f.Coords))))
		}

		out = append(out, boundaryAlerts(in, i, f, segs, cfg)...)
		out = append(out, featureAmbiguityAlerts(v, fm, i, f, segs)...)

		if f.IsCoding() {
			out = append(out, lengthAlerts(v, i, f, segs)...)
		}
		if f.Kind == feature.CDS {
			out = append(out, cdsAlerts(in, i, f, cfg)...)
		}
	}

	if annotated == 0 && fm.Len() > 0 && len(in.Hits) > 0 {
		out = append(out, alert.New(v.SeqID, v.ModelID, alert.NoFtrAnn, nil, nil,
			"hits found but no feature could be annotated"))
	}

	out = append(out, adjacencyAlerts(v, fm)...)
	return out
}

// boundaryAlerts classifies a feature's 5' and 3' boundaries:
// boundary outside the aligned region, gap-at-boundary, low confidence
// at the boundary, and (for CDS) a mismatch against the
// protein-homology boundary beyond tolerance.
func boundaryAlerts(in Input, ftrIdx int, f *feature.Feature, segs coord.Segments, cfg Config) []alert.Alert {
	v := in.View
	var out []alert.Alert

	thresh := cfg.BoundaryConf
	if f.Kind == feature.MaturePeptide {
		thresh = cfg.BoundaryConfMP
	}
	covFirst, covLast, _ := v.CoveredSpan()

	check := func(end align.End, gapCode, locCode alert.Code, boundarySeqPos int) {
		boundary := f.Coords[0].Start
		if end == align.Three {
			boundary = f.Coords[len(f.Coords)-1].End
		}
		if boundary < covFirst || boundary > covLast {
			out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, alert.IndfAntn,
				nil, coord.Segments(f.Coords),
				fmt.Sprintf("%s boundary lies outside the aligned region", end)))
			return
		}
		if v.IsBoundaryGap(f.Coords, end) {
			out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, gapCode,
				nil, coord.Segments(f.Coords),
				fmt.Sprintf("%s boundary aligns to a gap", end)))
			return
		}
		if conf, ok := v.ConfidenceAt(boundarySeqPos); ok && float64(conf) < thresh {
			out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, locCode,
				coord.Single(boundarySeqPos, boundarySeqPos, coord.Plus), nil,
				fmt.Sprintf("%s boundary confidence %.2f < %.2f", end, conf, thresh)))
		}
	}
	start := segs[0].Start
	end := segs[len(segs)-1].End
	five, three := start, end
	if f.Coords.Strand() == coord.Minus {
		five, three = end, start
	}
	check(align.Five, alert.Indf5Gap, alert.Indf5Loc, five)
	check(align.Three, alert.Indf3Gap, alert.Indf3Loc, three)

	// protein-homology boundary comparison, CDS only, direction
	// dependent: the protein alignment extending past the nucleotide
	// boundary and stopping short of it are distinct alerts
	if f.Kind != feature.CDS {
		return out
	}
	ph := proteinHitFor(in, ftrIdx)
	if ph == nil {
		return out
	}
	if d := start - ph.SeqStart; d > cfg.ProteinBoundaryTol {
		out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, alert.Indf5Plg,
			coord.Single(ph.SeqStart, start, coord.Plus), nil,
			fmt.Sprintf("protein alignment extends %d nt 5' of the nucleotide boundary", d)))
	} else if d := ph.SeqStart - start; d > cfg.ProteinBoundaryTol {
		out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, alert.Indf5Pst,
			coord.Single(start, ph.SeqStart, coord.Plus), nil,
			fmt.Sprintf("protein alignment stops %d nt short of the nucleotide boundary", d)))
	}
	if d := ph.SeqEnd - end; d > cfg.ProteinBoundaryTol {
		out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, alert.Indf3Plg,
			coord.Single(end, ph.SeqEnd, coord.Plus), nil,
			fmt.Sprintf("protein alignment extends %d nt 3' of the nucleotide boundary", d)))
	} else if d := end - ph.SeqEnd; d > cfg.ProteinBoundaryTol {
		out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, alert.Indf3Pst,
			coord.Single(ph.SeqEnd, end, coord.Plus), nil,
			fmt.Sprintf("protein alignment stops %d nt short of the nucleotide boundary", d)))
	}
	return out
}

// featureAmbiguityAlerts flags ambiguous first/last nucleotides of a
// feature. The generic-feature and CDS-specific granularities fire
// independently; the generic variant is suppressed from reporting by
// the registry when the CDS variant co-occurs on the same feature.
func featureAmbiguityAlerts(v *align.View, fm *feature.Map, ftrIdx int, f *feature.Feature, segs coord.Segments) []alert.Alert {
	var out []alert.Alert
	first := segs[0].Start
	last := segs[len(segs)-1].End
	if f.Coords.Strand() == coord.Minus {
		first, last = last, first
	}

	emit := func(pos int, genericCode, cdsCode alert.Code, label string) {
		nt := v.Nt(pos)
		if !codon.IsAmbiguous(nt) {
			return
		}
		detail := fmt.Sprintf("%s nucleotide of %s is %c", label, f.Name, nt)
		coords := coord.Single(pos, pos, coord.Plus)
		if f.Kind == feature.CDS {
			out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, cdsCode, coords, nil, detail))
		}
		out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, genericCode, coords, nil, detail))
	}
	emit(first, alert.AmbgNt5f, alert.AmbgNt5c, "first")
	emit(last, alert.AmbgNt3f, alert.AmbgNt3c, "final")
	return out
}

// lengthAlerts checks that a coding feature's consumed length on the
// sequence is a multiple of 3. Runs for CDS and mature peptides alike,
// independently of the stop-codon checks; features truncated by the
// aligned region are skipped, their full length is unknowable.
func lengthAlerts(v *align.View, ftrIdx int, f *feature.Feature, segs coord.Segments) []alert.Alert {
	n, complete := consumedLength(v, f)
	if !complete || n == 0 || n%3 == 0 {
		return nil
	}
	return []alert.Alert{alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, alert.UnexLeng,
		segs, coord.Segments(f.Coords),
		fmt.Sprintf("feature length on the sequence is %d, %d mod 3", n, n%3))}
}

// consumedLength counts the sequence nucleotides a feature consumes:
// its aligned model positions plus the insertion runs strictly inside
// its span. complete is false when the feature extends beyond the
// aligned region.
func consumedLength(v *align.View, f *feature.Feature) (n int, complete bool) {
	covFirst, covLast, covered := v.CoveredSpan()
	if !covered {
		return 0, false
	}
	lo, hi := f.Coords[0].Low(), f.Coords[0].High()
	for _, iv := range f.Coords[1:] {
		if iv.Low() < lo {
			lo = iv.Low()
		}
		if iv.High() > hi {
			hi = iv.High()
		}
	}
	if lo < covFirst || hi > covLast {
		return 0, false
	}
	for _, iv := range f.Coords {
		for q := iv.Low(); q <= iv.High(); q++ {
			if _, ok := v.SeqPosAtModel(q); ok {
				n++
			}
			if q == hi {
				continue
			}
			_, ins := v.InsertionAfter(q)
			n += ins
		}
	}
	return n, true
}

// adjacencyAlerts fires when two mature peptides that are contiguous
// in model space are not contiguous in predicted sequence coordinates.
func adjacencyAlerts(v *align.View, fm *feature.Map) []alert.Alert {
	var out []alert.Alert
	for parent := 0; parent < fm.Len(); parent++ {
		kids := fm.ChildrenOf(parent)
		for k := 1; k < len(kids); k++ {
			a := fm.At(kids[k-1])
			b := fm.At(kids[k])
			if a.Kind != feature.MaturePeptide || b.Kind != feature.MaturePeptide {
				continue
			}
			// expected contiguous in model space?
			if a.Coords[len(a.Coords)-1].End+1 != b.Coords[0].Start {
				continue
			}
			aSegs, _, aOK := seqSpanOf(v, a)
			bSegs, _, bOK := seqSpanOf(v, b)
			if !aOK || !bOK {
				continue
			}
			aEnd := aSegs[len(aSegs)-1].End
			bStart := bSegs[0].Start
			if aEnd+1 == bStart {
				continue
			}
			out = append(out, alert.NewFeature(v.SeqID, v.ModelID, kids[k], alert.PepAdjcy,
				coord.Segments{coord.NewInterval(aEnd, bStart, coord.Plus)}, nil,
				fmt.Sprintf("%s ends at %d but %s starts at %d", a.Name, aEnd, b.Name, bStart)))
		}
	}
	return out
}

// propagationAlerts marks every child mature peptide of a CDS that
// carries a fatal alert with a propagated alert, no coordinates.
func propagationAlerts(in Input, produced []alert.Alert, opts *alert.Options) []alert.Alert {
	fm := in.Map
	v := in.View
	if fm == nil || v == nil || opts == nil {
		return nil
	}

	fatalCDS := make(map[int]bool)
	for _, a := range produced {
		if a.FeatureIdx == alert.NoFeature {
			continue
		}
		if fm.At(a.FeatureIdx).Kind != feature.CDS {
			continue
		}
		if opts.IsFatal(a.Code) {
			fatalCDS[a.FeatureIdx] = true
		}
	}

	var out []alert.Alert
	for idx := range fatalCDS {
		for _, kid := range fm.ChildrenOf(idx) {
			if fm.At(kid).Kind != feature.MaturePeptide {
				continue
			}
			out = append(out, alert.NewFeature(v.SeqID, v.ModelID, kid, alert.PepTrans,
				nil, nil,
				fmt.Sprintf("parent CDS %s has a fatal alert", fm.At(idx).Name)))
		}
	}
	return out
}
