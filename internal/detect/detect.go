// Package detect holds the fixed set of per-sequence anomaly
// detectors. Every detector is a pure function over fully materialized
// inputs (alignment view, feature map, hit list, protein-homology
// boundaries, classification scores) and emits zero or more alerts;
// combination and pruning happen in the policy and verdict layers.
// Detectors are total: missing upstream data degrades to "no alert",
// never to a partial one.
package detect

import (
	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/align"
	"github.com/ncbi/vadr-sub007/internal/codon"
	"github.com/ncbi/vadr-sub007/internal/coord"
	"github.com/ncbi/vadr-sub007/internal/feature"
)

// Config is the flat set of detector thresholds. Zero values are
// replaced by the defaults noted per field.
type Config struct {
	// minimum boundary confidence, per feature type (defaults 0.8,
	// mat_peptide 0.6)
	BoundaryConf   float64
	BoundaryConfMP float64

	// tolerance in nucleotides between the nucleotide-based CDS
	// boundary and the protein-homology boundary (default 5)
	ProteinBoundaryTol int

	// maximum single-locus indel lengths, nucleotide alignment
	// (defaults 27) and protein alignment (defaults 27)
	MaxInsertNt   int
	MaxDeleteNt   int
	MaxInsertProt int
	MaxDeleteProt int

	// coverage-stage thresholds: minimum model-coordinate overlap and
	// bit score for duplicate-region hits (defaults 20, 10), bit score
	// for an opposite-strand hit (default 25), minimum covered
	// fraction (default 0.9), minimum uncovered terminal and internal
	// region lengths for low-similarity alerts (defaults 15, 1)
	DupReginOverlap int
	DupReginBits    float64
	IndfStrnBits    float64
	MinCoverageFrac float64
	LowSimTermLen   int
	LowSimIntLen    int

	// classification thresholds: minimum bits per nucleotide
	// (default 0.3), maximum biased-composition fraction of the score
	// (default 0.25), minimum bits-per-nucleotide margin to the
	// second-best model and to the expected group/subgroup best
	// (defaults 0.05, 0.15)
	MinBitsPerNt    float64
	MaxBiasFrac     float64
	MinClassMargin  float64
	MinGroupMargin  float64

	// codon/frame analyzer thresholds
	Codon codon.Config
}

func (c Config) withDefaults() Config {
	def := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	defi := func(v *int, d int) {
		if *v == 0 {
			*v = d
		}
	}
	def(&c.BoundaryConf, 0.8)
	def(&c.BoundaryConfMP, 0.6)
	defi(&c.ProteinBoundaryTol, 5)
	defi(&c.MaxInsertNt, 27)
	defi(&c.MaxDeleteNt, 27)
	defi(&c.MaxInsertProt, 27)
	defi(&c.MaxDeleteProt, 27)
	defi(&c.DupReginOverlap, 20)
	def(&c.DupReginBits, 10)
	def(&c.IndfStrnBits, 25)
	def(&c.MinCoverageFrac, 0.9)
	defi(&c.LowSimTermLen, 15)
	defi(&c.LowSimIntLen, 1)
	def(&c.MinBitsPerNt, 0.3)
	def(&c.MaxBiasFrac, 0.25)
	def(&c.MinClassMargin, 0.05)
	def(&c.MinGroupMargin, 0.15)
	return c
}

// Locus is a single-position indel reported by the external protein
// alignment.
type Locus struct {
	SeqPos int
	MdlPos int
	Len    int
}

// ProteinHit carries the optional per-CDS results of the external
// translated search: predicted boundaries in sequence coordinates,
// the raw score, the largest indels, and a premature stop if the
// protein alignment implied one.
type ProteinHit struct {
	FeatureIdx int
	SeqStart   int
	SeqEnd     int
	Score      float64

	BigInsert     *Locus
	BigDelete     *Locus
	PrematureStop *Locus
}

// GroupScore is the classification result against a user-specified
// expected group or subgroup.
type GroupScore struct {
	// whether the winning model belongs to the expected group
	Matches bool
	// bit score of the best model inside the expected group
	Best float64
}

// Scores are the sequence's classification-stage summary scores. A nil
// Scores disables the classification detectors.
type Scores struct {
	Best       float64
	SecondBest float64
	HasSecond  bool
	Bias       float64

	ExpGroup    *GroupScore
	ExpSubgroup *GroupScore
}

// Input is everything one sequence/model pair's detectors consume.
// All fields except View and Map are optional; detectors skip what is
// absent.
type Input struct {
	View        *align.View
	Map         *feature.Map
	Hits        []align.Hit
	ProteinHits []ProteinHit
	Scores      *Scores
}

// Run executes every detector family over one sequence and returns
// the combined alert list. opts is needed to know which parent-CDS
// alerts count as fatal for translation propagation.
func Run(in Input, cfg Config, opts *alert.Options) []alert.Alert {
	cfg = cfg.withDefaults()

	var out []alert.Alert
	out = append(out, classificationAlerts(in, cfg)...)
	out = append(out, coverageAlerts(in, cfg)...)
	out = append(out, sequenceAmbiguityAlerts(in)...)
	out = append(out, featureAlerts(in, cfg)...)
	out = append(out, propagationAlerts(in, out, opts)...)
	return out
}

// proteinHitFor returns the protein-homology record for a feature
// index, nil when the translated search produced none.
func proteinHitFor(in Input, ftrIdx int) *ProteinHit {
	for i := range in.ProteinHits {
		if in.ProteinHits[i].FeatureIdx == ftrIdx {
			return &in.ProteinHits[i]
		}
	}
	return nil
}

// seqSpanOf maps a feature's model-space segments onto predicted
// sequence coordinates. Segments with zero aligned coverage are
// skipped; ok is false when no segment aligned at all.
func seqSpanOf(v *align.View, f *feature.Feature) (segs coord.Segments, missing int, ok bool) {
	for _, iv := range f.Coords {
		start, okS := v.FirstSeqPosAtOrAfter(iv.Low())
		end, okE := v.LastSeqPosAtOrBefore(iv.High())
		if !okS || !okE || start > end {
			missing++
			continue
		}
		// clamp to the segment: FirstSeqPosAtOrAfter may have walked
		// past the segment's 3' end when the segment is fully deleted
		if mp, aligned := v.ModelPosAt(start); aligned && mp > iv.High() {
			missing++
			continue
		}
		segs = append(segs, coord.NewInterval(start, end, iv.Strand))
	}
	return segs, missing, len(segs) > 0
}
