// Package alert defines the closed catalog of anomaly codes, the
// immutable per-code metadata registry, and the policy that resolves
// each alert instance to fatal or non-fatal given user overrides.
package alert

import (
	"github.com/ncbi/vadr-sub007/internal/coord"
)

// Code identifies one alert kind. The set is closed: detectors only
// emit codes present in the registry below.
type Code string

// Sequence-level codes (no feature reference).
const (
	NoAnnotn Code = "noannotn" // no features could be annotated
	RevCompl Code = "revcompl" // sequence appears reverse complemented
	QstGroup Code = "qstgroup" // best model not in expected group
	QstSbgrp Code = "qstsbgrp" // best model not in expected subgroup
	IncGroup Code = "incgroup" // score margin to expected group too small
	IncSbgrp Code = "incsbgrp" // score margin to expected subgroup too small
	IndfClas Code = "indfclas" // score margin to second-best model too small
	LowScore Code = "lowscore" // classification score per nucleotide too low
	BiasdSeq Code = "biasdseq" // biased composition score too high
	DupRegin Code = "dupregin" // two hits overlap in model coordinates
	DisContn Code = "discontn" // hit order differs between seq and model
	IndfStrn Code = "indfstrn" // significant hit on the opposite strand
	LowCovrg Code = "lowcovrg" // too little of the sequence covered by hits
	LowSim5s Code = "lowsim5s" // low similarity at the sequence 5' end
	LowSim3s Code = "lowsim3s" // low similarity at the sequence 3' end
	LowSimIs Code = "lowsimis" // low similarity internal to the sequence
	AmbgNt5s Code = "ambgnt5s" // ambiguous first nucleotide of the sequence
	AmbgNt3s Code = "ambgnt3s" // ambiguous final nucleotide of the sequence
	NoFtrAnn Code = "noftrann" // hits found but no feature annotated
	UnexDivg Code = "unexdivg" // unexpected divergence from the model
)

// Feature-level codes.
const (
	MutStart Code = "mutstart" // invalid start codon
	MutEndCd Code = "mutendcd" // invalid stop codon at the expected position
	MutEndNs Code = "mutendns" // no in-frame stop codon anywhere downstream
	MutEndEx Code = "mutendex" // first in-frame stop is 3' of the expected one
	CdsStopN Code = "cdsstopn" // in-frame stop 5' of the expected one
	CdsStopP Code = "cdsstopp" // stop codon problem per protein alignment
	UnexLeng Code = "unexleng" // coding length not a multiple of 3
	FstHiCnf Code = "fsthicnf" // frameshift, high alignment confidence
	FstLoCnf Code = "fstlocnf" // frameshift, low alignment confidence
	FstUkCnf Code = "fstukcnf" // frameshift, confidence unavailable
	PepTrans Code = "peptrans" // parent CDS fatal alert propagated to peptide
	PepAdjcy Code = "pepadjcy" // expected-adjacent peptides not contiguous
	IndfAntn Code = "indfantn" // feature boundary could not be determined
	Indf5Gap Code = "indf5gap" // 5' boundary aligns to a gap
	Indf5Loc Code = "indf5loc" // 5' boundary confidence too low
	Indf5Plg Code = "indf5plg" // protein alignment extends 5' of nucleotide
	Indf5Pst Code = "indf5pst" // protein alignment stops short of 5' boundary
	Indf3Gap Code = "indf3gap" // 3' boundary aligns to a gap
	Indf3Loc Code = "indf3loc" // 3' boundary confidence too low
	Indf3Plg Code = "indf3plg" // protein alignment extends 3' of nucleotide
	Indf3Pst Code = "indf3pst" // protein alignment stops short of 3' boundary
	InsertNn Code = "insertnn" // large insertion in nucleotide alignment
	InsertNp Code = "insertnp" // large insertion in protein alignment
	DeletInn Code = "deletinn" // large deletion in nucleotide alignment
	DeletInp Code = "deletinp" // large deletion in protein alignment
	DeletInS Code = "deletins" // feature entirely deleted in the sequence
	DeletInF Code = "deletinf" // one but not all feature segments deleted
	LowSim5f Code = "lowsim5f" // low similarity at the feature 5' end
	LowSim3f Code = "lowsim3f" // low similarity at the feature 3' end
	LowSimIf Code = "lowsimif" // low similarity internal to the feature
	AmbgNt5f Code = "ambgnt5f" // ambiguous first nucleotide of a feature
	AmbgNt3f Code = "ambgnt3f" // ambiguous final nucleotide of a feature
	AmbgNt5c Code = "ambgnt5c" // ambiguous first nucleotide of a CDS
	AmbgNt3c Code = "ambgnt3c" // ambiguous final nucleotide of a CDS
	AmbgCd5c Code = "ambgcd5c" // ambiguity inside an otherwise valid start
	AmbgCd3c Code = "ambgcd3c" // ambiguity inside an otherwise valid stop
)

// Meta is the immutable metadata attached to one code.
type Meta struct {
	Code Code
	Desc string

	// PerFeature fixes whether instances carry a feature reference;
	// this is per code, never per instance.
	PerFeature bool

	// AlwaysFatal codes ignore pass/fail-list overrides entirely.
	AlwaysFatal bool

	// DefaultFatal is the registry default, overridable by policy
	// unless AlwaysFatal.
	DefaultFatal bool

	// MiscNotFailure marks codes that, on an expendable feature,
	// demote the feature to misc_feature instead of failing the
	// sequence.
	MiscNotFailure bool

	// SuppressedBy lists codes whose presence on the same feature (or
	// sequence, for sequence-level codes) drops this code from the
	// report-facing alert list. Asymmetric by construction: a code
	// never appears in the SuppressedBy list of its own suppressors.
	SuppressedBy []Code

	// Order is the fixed reporting order within a feature group.
	Order int
}

// registryRows is ordered; a row's position defines Meta.Order and the
// order codes are listed by `vadr alerts`.
var registryRows = []Meta{
	{Code: NoAnnotn, Desc: "no significant similarity detected, nothing annotated", AlwaysFatal: true, DefaultFatal: true},
	{Code: RevCompl, Desc: "sequence appears to be reverse complemented", AlwaysFatal: true, DefaultFatal: true},
	{Code: UnexDivg, Desc: "sequence is too divergent from the model", AlwaysFatal: true, DefaultFatal: true},
	{Code: IndfClas, Desc: "low score difference between best and second-best model", DefaultFatal: true},
	{Code: QstGroup, Desc: "best-scoring model is not in the expected group"},
	{Code: QstSbgrp, Desc: "best-scoring model is not in the expected subgroup"},
	{Code: IncGroup, Desc: "score difference to the expected group is too small", DefaultFatal: true},
	{Code: IncSbgrp, Desc: "score difference to the expected subgroup is too small", DefaultFatal: true},
	{Code: LowScore, Desc: "classification score per nucleotide below threshold", DefaultFatal: true},
	{Code: BiasdSeq, Desc: "too much of the classification score from biased composition", DefaultFatal: true},
	{Code: DupRegin, Desc: "two hits overlap the same model region", DefaultFatal: true},
	{Code: DisContn, Desc: "hit order on the sequence disagrees with the model", DefaultFatal: true},
	{Code: IndfStrn, Desc: "significant hit on the non-dominant strand", DefaultFatal: true},
	{Code: LowCovrg, Desc: "too small a fraction of the sequence covered by hits", DefaultFatal: true},
	{Code: LowSim5s, Desc: "uncovered region at the 5' end of the sequence", DefaultFatal: true},
	{Code: LowSim3s, Desc: "uncovered region at the 3' end of the sequence", DefaultFatal: true},
	{Code: LowSimIs, Desc: "uncovered region internal to the sequence", DefaultFatal: true},
	{Code: AmbgNt5s, Desc: "first nucleotide of the sequence is ambiguous"},
	{Code: AmbgNt3s, Desc: "final nucleotide of the sequence is ambiguous"},
	{Code: NoFtrAnn, Desc: "hits found but no feature overlaps them", DefaultFatal: true},

	{Code: MutStart, Desc: "CDS has an invalid start codon", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: MutEndCd, Desc: "CDS has an invalid stop codon at the expected position", PerFeature: true, DefaultFatal: true, MiscNotFailure: true,
		SuppressedBy: []Code{CdsStopN, MutEndNs, MutEndEx}},
	{Code: MutEndNs, Desc: "CDS has no in-frame stop codon downstream of its start", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: MutEndEx, Desc: "first in-frame stop codon is 3' of the expected position", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: CdsStopN, Desc: "CDS has an in-frame stop codon 5' of the expected position", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: CdsStopP, Desc: "protein alignment implies a premature stop codon", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: UnexLeng, Desc: "coding feature length is not a multiple of 3", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: FstHiCnf, Desc: "frameshift region with high alignment confidence", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: FstLoCnf, Desc: "possible frameshift region with low alignment confidence", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: FstUkCnf, Desc: "possible frameshift region, confidence unavailable", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: PepTrans, Desc: "mature peptide may not be translated, parent CDS has a fatal alert", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: PepAdjcy, Desc: "expected-adjacent mature peptides are not contiguous", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: IndfAntn, Desc: "feature boundary could not be determined", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: Indf5Gap, Desc: "5' boundary of the feature aligns to a gap", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: Indf5Loc, Desc: "5' boundary alignment confidence below threshold", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: Indf5Plg, Desc: "protein alignment extends 5' of the nucleotide boundary", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: Indf5Pst, Desc: "protein alignment stops short of the 5' nucleotide boundary", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: Indf3Gap, Desc: "3' boundary of the feature aligns to a gap", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: Indf3Loc, Desc: "3' boundary alignment confidence below threshold", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: Indf3Plg, Desc: "protein alignment extends 3' of the nucleotide boundary", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: Indf3Pst, Desc: "protein alignment stops short of the 3' nucleotide boundary", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: InsertNn, Desc: "insertion longer than allowed in the nucleotide alignment", PerFeature: true},
	{Code: InsertNp, Desc: "insertion longer than allowed in the protein alignment", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: DeletInn, Desc: "deletion longer than allowed in the nucleotide alignment", PerFeature: true},
	{Code: DeletInp, Desc: "deletion longer than allowed in the protein alignment", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: DeletInS, Desc: "feature is entirely deleted in the sequence", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: DeletInF, Desc: "one but not all segments of the feature are deleted", PerFeature: true, DefaultFatal: true, MiscNotFailure: true,
		SuppressedBy: []Code{DeletInS}},
	{Code: LowSim5f, Desc: "uncovered region at the 5' end of the feature", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: LowSim3f, Desc: "uncovered region at the 3' end of the feature", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: LowSimIf, Desc: "uncovered region internal to the feature", PerFeature: true, DefaultFatal: true, MiscNotFailure: true},
	{Code: AmbgNt5f, Desc: "first nucleotide of the feature is ambiguous", PerFeature: true,
		SuppressedBy: []Code{AmbgNt5c}},
	{Code: AmbgNt3f, Desc: "final nucleotide of the feature is ambiguous", PerFeature: true,
		SuppressedBy: []Code{AmbgNt3c}},
	{Code: AmbgNt5c, Desc: "first nucleotide of the CDS is ambiguous", PerFeature: true},
	{Code: AmbgNt3c, Desc: "final nucleotide of the CDS is ambiguous", PerFeature: true},
	{Code: AmbgCd5c, Desc: "start codon has an internal ambiguous nucleotide", PerFeature: true},
	{Code: AmbgCd3c, Desc: "stop codon has an internal ambiguous nucleotide", PerFeature: true},
}

var registry = func() map[Code]Meta {
	m := make(map[Code]Meta, len(registryRows))
	for i := range registryRows {
		registryRows[i].Order = i
		m[registryRows[i].Code] = registryRows[i]
	}
	return m
}()

// Lookup returns the metadata for a code.
func Lookup(c Code) (Meta, bool) {
	m, ok := registry[c]
	return m, ok
}

// All returns every code's metadata in fixed registry order.
func All() []Meta {
	out := make([]Meta, len(registryRows))
	copy(out, registryRows)
	return out
}

// NoFeature marks a sequence-level alert's feature index.
const NoFeature = -1

// Alert is one anomaly record produced by a detector. SeqCoords and
// MdlCoords are nil (blank, "-") when the alert has no well-defined
// coordinate region.
type Alert struct {
	SeqID      string
	ModelID    string
	FeatureIdx int
	Code       Code
	SeqCoords  coord.Segments
	MdlCoords  coord.Segments
	Detail     string
}

// New returns a sequence-level alert.
func New(seqID, modelID string, code Code, seqCoords, mdlCoords coord.Segments, detail string) Alert {
	return Alert{
		SeqID:      seqID,
		ModelID:    modelID,
		FeatureIdx: NoFeature,
		Code:       code,
		SeqCoords:  seqCoords,
		MdlCoords:  mdlCoords,
		Detail:     detail,
	}
}

// NewFeature returns a feature-level alert.
func NewFeature(seqID, modelID string, ftrIdx int, code Code, seqCoords, mdlCoords coord.Segments, detail string) Alert {
	a := New(seqID, modelID, code, seqCoords, mdlCoords, detail)
	a.FeatureIdx = ftrIdx
	return a
}
