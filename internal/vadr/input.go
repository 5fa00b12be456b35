package vadr

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ncbi/vadr-sub007/internal/align"
	"github.com/ncbi/vadr-sub007/internal/coord"
	"github.com/ncbi/vadr-sub007/internal/detect"
	"github.com/ncbi/vadr-sub007/internal/pipeline"
)

// seqInput is the JSON shape of one sequence's upstream results: the
// aligned sequence with its reference and confidence annotation, the
// coverage hits, the optional translated-search hits, and the optional
// classification scores.
type seqInput struct {
	Seq   string `json:"seq"`
	Model string `json:"model"`

	Aligned string `json:"aligned"`
	RF      string `json:"rf"`
	PP      string `json:"pp,omitempty"`

	Hits        []hitInput     `json:"hits,omitempty"`
	ProteinHits []proteinInput `json:"protein_hits,omitempty"`
	Scores      *scoresInput   `json:"scores,omitempty"`
}

type hitInput struct {
	SeqCoords string  `json:"seq_coords"`
	MdlCoords string  `json:"mdl_coords"`
	Bit       float64 `json:"bit"`
	Bias      float64 `json:"bias,omitempty"`
}

type proteinInput struct {
	Feature  int     `json:"ftr_idx"`
	SeqStart int     `json:"seq_start"`
	SeqEnd   int     `json:"seq_end"`
	Score    float64 `json:"score"`

	BigInsert     *locusInput `json:"big_insert,omitempty"`
	BigDelete     *locusInput `json:"big_delete,omitempty"`
	PrematureStop *locusInput `json:"premature_stop,omitempty"`
}

type locusInput struct {
	SeqPos int `json:"seq_pos"`
	MdlPos int `json:"mdl_pos"`
	Len    int `json:"len"`
}

type scoresInput struct {
	Best       float64 `json:"best"`
	SecondBest float64 `json:"second_best"`
	HasSecond  bool    `json:"has_second"`
	Bias       float64 `json:"bias"`

	ExpGroup    *groupInput `json:"exp_group,omitempty"`
	ExpSubgroup *groupInput `json:"exp_subgroup,omitempty"`
}

type groupInput struct {
	Matches bool    `json:"matches"`
	Best    float64 `json:"best"`
}

// ReadInputs decodes a JSON array of per-sequence inputs and resolves
// each against the model library into a pipeline unit.
func ReadInputs(path string, lib *Library) ([]pipeline.Unit, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []seqInput
	if err := json.Unmarshal(dat, &raw); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}

	units := make([]pipeline.Unit, 0, len(raw))
	for i, in := range raw {
		u, err := buildUnit(in, lib)
		if err != nil {
			return nil, fmt.Errorf("%s: sequence %d (%s): %v", path, i+1, in.Seq, err)
		}
		units = append(units, u)
	}
	return units, nil
}

func buildUnit(in seqInput, lib *Library) (pipeline.Unit, error) {
	u := pipeline.Unit{SeqID: in.Seq, ModelID: in.Model}

	fm, err := lib.Map(in.Model)
	if err != nil {
		return u, err
	}

	v, err := align.FromAligned(in.Seq, in.Model, in.Aligned, in.RF, in.PP)
	if err != nil {
		return u, err
	}

	hits := make([]align.Hit, 0, len(in.Hits))
	for _, h := range in.Hits {
		seqSegs, err := coord.ParseSegments(h.SeqCoords)
		if err != nil {
			return u, fmt.Errorf("hit seq_coords: %v", err)
		}
		mdlSegs, err := coord.ParseSegments(h.MdlCoords)
		if err != nil {
			return u, fmt.Errorf("hit mdl_coords: %v", err)
		}
		if len(seqSegs) != 1 || len(mdlSegs) != 1 {
			return u, fmt.Errorf("hit coords must be single intervals, got %s / %s", h.SeqCoords, h.MdlCoords)
		}
		hits = append(hits, align.Hit{
			SeqInterval: seqSegs[0],
			MdlInterval: mdlSegs[0],
			Strand:      seqSegs[0].Strand,
			Bit:         h.Bit,
			Bias:        h.Bias,
		})
	}

	var phits []detect.ProteinHit
	for _, p := range in.ProteinHits {
		if p.Feature < 0 || p.Feature >= fm.Len() {
			return u, fmt.Errorf("protein hit references feature %d of %d", p.Feature, fm.Len())
		}
		phits = append(phits, detect.ProteinHit{
			FeatureIdx:    p.Feature,
			SeqStart:      p.SeqStart,
			SeqEnd:        p.SeqEnd,
			Score:         p.Score,
			BigInsert:     locusOf(p.BigInsert),
			BigDelete:     locusOf(p.BigDelete),
			PrematureStop: locusOf(p.PrematureStop),
		})
	}

	var scores *detect.Scores
	if in.Scores != nil {
		scores = &detect.Scores{
			Best:        in.Scores.Best,
			SecondBest:  in.Scores.SecondBest,
			HasSecond:   in.Scores.HasSecond,
			Bias:        in.Scores.Bias,
			ExpGroup:    groupOf(in.Scores.ExpGroup),
			ExpSubgroup: groupOf(in.Scores.ExpSubgroup),
		}
	}

	u.Input = detect.Input{
		View:        v,
		Map:         fm,
		Hits:        hits,
		ProteinHits: phits,
		Scores:      scores,
	}
	return u, nil
}

func locusOf(l *locusInput) *detect.Locus {
	if l == nil {
		return nil
	}
	return &detect.Locus{SeqPos: l.SeqPos, MdlPos: l.MdlPos, Len: l.Len}
}

func groupOf(g *groupInput) *detect.GroupScore {
	if g == nil {
		return nil
	}
	return &detect.GroupScore{Matches: g.Matches, Best: g.Best}
}
