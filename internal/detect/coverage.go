package detect

import (
	"fmt"
	"sort"

	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/align"
	"github.com/ncbi/vadr-sub007/internal/coord"
)

// coverageAlerts runs the detectors that operate on the hit list from
// the coverage-determination search rather than on the alignment.
func coverageAlerts(in Input, cfg Config) []alert.Alert {
	v := in.View
	if v == nil {
		return nil
	}

	if len(in.Hits) == 0 {
		return []alert.Alert{alert.New(v.SeqID, v.ModelID, alert.NoAnnotn, nil, nil,
			"no significant similarity detected")}
	}

	// hits exist but the full alignment placed nothing: the sequence is
	// too divergent for the model to align
	if _, _, ok := v.CoveredSpan(); !ok {
		return []alert.Alert{alert.New(v.SeqID, v.ModelID, alert.UnexDivg, nil, nil,
			"alignment covers no model positions")}
	}

	hits := make([]align.Hit, len(in.Hits))
	copy(hits, in.Hits)
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].SeqInterval.Low() < hits[j].SeqInterval.Low()
	})

	var out []alert.Alert

	// the winning strand is the strand of the highest-scoring hit
	top := hits[0]
	for _, h := range hits[1:] {
		if h.Bit > top.Bit {
			top = h
		}
	}
	if top.Strand == coord.Minus {
		out = append(out, alert.New(v.SeqID, v.ModelID, alert.RevCompl, nil, nil,
			"highest-scoring hit is on the minus strand"))
	}

	out = append(out, duplicateRegionAlerts(v, hits, cfg)...)
	out = append(out, discontinuityAlerts(v, hits)...)
	out = append(out, strandAlerts(v, hits, top, cfg)...)
	out = append(out, lowCoverageAlerts(in, v, hits, top, cfg)...)
	return out
}

// duplicateRegionAlerts fires when two hits on the winning strand
// cover overlapping model regions beyond the length and score
// thresholds: one alert per overlapping pair, coordinates listing both
// contributing intervals in hit order.
func duplicateRegionAlerts(v *align.View, hits []align.Hit, cfg Config) []alert.Alert {
	var out []alert.Alert
	for i := 0; i < len(hits); i++ {
		for j := i + 1; j < len(hits); j++ {
			a, b := hits[i], hits[j]
			if a.Strand != b.Strand {
				continue
			}
			if a.Bit < cfg.DupReginBits || b.Bit < cfg.DupReginBits {
				continue
			}
			// fires only when the overlap exceeds the threshold
			overlap := coord.OverlapLen(a.MdlInterval, b.MdlInterval)
			if overlap <= cfg.DupReginOverlap {
				continue
			}
			out = append(out, alert.New(v.SeqID, v.ModelID, alert.DupRegin,
				coord.Segments{a.SeqInterval, b.SeqInterval},
				coord.Segments{a.MdlInterval, b.MdlInterval},
				fmt.Sprintf("hits overlap by %d model positions (%s and %s)",
					overlap, a.MdlInterval, b.MdlInterval)))
		}
	}
	return out
}

// discontinuityAlerts fires when the hits' sequence order disagrees
// with their model order.
func discontinuityAlerts(v *align.View, hits []align.Hit) []alert.Alert {
	for i := 1; i < len(hits); i++ {
		prev, cur := hits[i-1], hits[i]
		if prev.Strand != cur.Strand {
			continue
		}
		if cur.MdlInterval.Low() < prev.MdlInterval.Low() {
			return []alert.Alert{alert.New(v.SeqID, v.ModelID, alert.DisContn,
				coord.Segments{prev.SeqInterval, cur.SeqInterval},
				coord.Segments{prev.MdlInterval, cur.MdlInterval},
				"hit order on the sequence disagrees with the model")}
		}
	}
	return nil
}

// strandAlerts fires when a hit on the strand opposite the top hit
// scores beyond the threshold.
func strandAlerts(v *align.View, hits []align.Hit, top align.Hit, cfg Config) []alert.Alert {
	for _, h := range hits {
		if h.Strand == top.Strand {
			continue
		}
		if h.Bit < cfg.IndfStrnBits {
			continue
		}
		return []alert.Alert{alert.New(v.SeqID, v.ModelID, alert.IndfStrn,
			coord.Segments{h.SeqInterval}, coord.Segments{h.MdlInterval},
			fmt.Sprintf("opposite-strand hit with %.1f bits >= %.1f", h.Bit, cfg.IndfStrnBits))}
	}
	return nil
}

// lowCoverageAlerts computes the regions of the sequence not covered
// by any winning-strand hit, fires lowcovrg on the total fraction, and
// classifies each long-enough uncovered region as a terminal or
// internal low-similarity alert, feature-level when the region
// overlaps an annotated feature.
func lowCoverageAlerts(in Input, v *align.View, hits []align.Hit, top align.Hit, cfg Config) []alert.Alert {
	covered := make([]bool, v.SeqLen()+1)
	n := 0
	for _, h := range hits {
		if h.Strand != top.Strand {
			continue
		}
		for p := h.SeqInterval.Low(); p <= h.SeqInterval.High() && p <= v.SeqLen(); p++ {
			if !covered[p] {
				covered[p] = true
				n++
			}
		}
	}

	var out []alert.Alert
	frac := float64(n) / float64(v.SeqLen())
	if frac < cfg.MinCoverageFrac {
		out = append(out, alert.New(v.SeqID, v.ModelID, alert.LowCovrg, nil, nil,
			fmt.Sprintf("%.3f of the sequence covered < %.3f", frac, cfg.MinCoverageFrac)))
	}

	for p := 1; p <= v.SeqLen(); {
		if covered[p] {
			p++
			continue
		}
		start := p
		for p <= v.SeqLen() && !covered[p] {
			p++
		}
		end := p - 1
		out = append(out, lowSimAlerts(in, v, start, end, cfg)...)
	}
	return out
}

// lowSimAlerts classifies one uncovered region [start, end].
func lowSimAlerts(in Input, v *align.View, start, end int, cfg Config) []alert.Alert {
	length := end - start + 1
	terminal := start == 1 || end == v.SeqLen()
	if terminal && length < cfg.LowSimTermLen {
		return nil
	}
	if !terminal && length < cfg.LowSimIntLen {
		return nil
	}

	region := coord.NewInterval(start, end, coord.Plus)
	detail := fmt.Sprintf("%d nt region without significant similarity (%s)", length, region)

	// feature-level variants when the region overlaps an annotated
	// feature's predicted sequence span
	var out []alert.Alert
	if in.Map != nil {
		for i := 0; i < in.Map.Len(); i++ {
			segs, _, ok := seqSpanOf(v, in.Map.At(i))
			if !ok {
				continue
			}
			span := segs.Span()
			if coord.OverlapLen(span, region) == 0 {
				continue
			}
			code := alert.LowSimIf
			switch {
			case start == 1:
				code = alert.LowSim5f
			case end == v.SeqLen():
				code = alert.LowSim3f
			}
			out = append(out, alert.NewFeature(v.SeqID, v.ModelID, i, code,
				coord.Segments{region}, nil, detail))
		}
	}
	if len(out) > 0 {
		return out
	}

	code := alert.LowSimIs
	switch {
	case start == 1:
		code = alert.LowSim5s
	case end == v.SeqLen():
		code = alert.LowSim3s
	}
	return []alert.Alert{alert.New(v.SeqID, v.ModelID, code, coord.Segments{region}, nil, detail)}
}
