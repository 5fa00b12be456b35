package detect

import (
	"fmt"

	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/codon"
	"github.com/ncbi/vadr-sub007/internal/coord"
)

// classificationAlerts covers the score-based sequence-level checks
// fed by the external classification stage.
func classificationAlerts(in Input, cfg Config) []alert.Alert {
	if in.Scores == nil || in.View == nil {
		return nil
	}
	s := in.Scores
	v := in.View
	seqLen := v.SeqLen()
	if seqLen == 0 {
		return nil
	}

	var out []alert.Alert
	seq := func(code alert.Code, detail string) {
		out = append(out, alert.New(v.SeqID, v.ModelID, code, nil, nil, detail))
	}

	perNt := s.Best / float64(seqLen)
	if perNt < cfg.MinBitsPerNt {
		seq(alert.LowScore, fmt.Sprintf("%.3f bits/nt < %.3f", perNt, cfg.MinBitsPerNt))
	}

	if s.Best+s.Bias > 0 {
		frac := s.Bias / (s.Best + s.Bias)
		if frac > cfg.MaxBiasFrac {
			seq(alert.BiasdSeq, fmt.Sprintf("%.3f of score from biased composition > %.3f", frac, cfg.MaxBiasFrac))
		}
	}

	if s.HasSecond {
		margin := (s.Best - s.SecondBest) / float64(seqLen)
		if margin < cfg.MinClassMargin {
			seq(alert.IndfClas, fmt.Sprintf("%.3f bits/nt to second-best model < %.3f", margin, cfg.MinClassMargin))
		}
	}

	group := func(g *GroupScore, qst, inc alert.Code, label string) {
		if g == nil || g.Matches {
			return
		}
		seq(qst, fmt.Sprintf("best model is not in the expected %s", label))
		margin := (s.Best - g.Best) / float64(seqLen)
		if margin < cfg.MinGroupMargin {
			seq(inc, fmt.Sprintf("%.3f bits/nt to best %s model < %.3f", margin, label, cfg.MinGroupMargin))
		}
	}
	group(s.ExpGroup, alert.QstGroup, alert.IncGroup, "group")
	group(s.ExpSubgroup, alert.QstSbgrp, alert.IncSbgrp, "subgroup")

	return out
}

// sequenceAmbiguityAlerts flags an ambiguous first or last nucleotide
// of the whole sequence. The CDS- and generic-feature granularities
// fire independently in featureAlerts.
func sequenceAmbiguityAlerts(in Input) []alert.Alert {
	v := in.View
	if v == nil || v.SeqLen() == 0 {
		return nil
	}

	var out []alert.Alert
	if nt := v.Nt(1); codon.IsAmbiguous(nt) {
		out = append(out, alert.New(v.SeqID, v.ModelID, alert.AmbgNt5s,
			coord.Single(1, 1, coord.Plus), nil,
			fmt.Sprintf("first nucleotide of the sequence is %c", nt)))
	}
	if nt := v.Nt(v.SeqLen()); codon.IsAmbiguous(nt) {
		out = append(out, alert.New(v.SeqID, v.ModelID, alert.AmbgNt3s,
			coord.Single(v.SeqLen(), v.SeqLen(), coord.Plus), nil,
			fmt.Sprintf("final nucleotide of the sequence is %c", nt)))
	}
	return out
}
