package detect

import (
	"fmt"

	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/codon"
	"github.com/ncbi/vadr-sub007/internal/coord"
	"github.com/ncbi/vadr-sub007/internal/feature"
)

// cdsAlerts runs the codon/frame analyzer over one CDS and converts
// its findings into alerts: start/stop codon problems, frameshifts,
// and over-length indels from both the nucleotide and the protein
// alignment. Minus-strand CDSs are walked 5' to 3' through the
// reverse complement.
func cdsAlerts(in Input, ftrIdx int, f *feature.Feature, cfg Config) []alert.Alert {
	v := in.View
	p, err := codon.Analyze(v, f, cfg.Codon)
	if err != nil || len(p.Nts) == 0 {
		return nil
	}

	var out []alert.Alert
	ftr := func(code alert.Code, seqCoords, mdlCoords coord.Segments, detail string) {
		out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, code, seqCoords, mdlCoords, detail))
	}

	if start, ok := p.StartCodon(f.TransTable, cfg.Codon.ATGOnly); ok && !start.Valid {
		if start.InnerAmbig {
			ftr(alert.AmbgCd5c, start.SeqCoords, start.MdlCoords,
				fmt.Sprintf("start codon %s has an internal ambiguity", start.Codon))
		} else {
			ftr(alert.MutStart, start.SeqCoords, start.MdlCoords,
				fmt.Sprintf("%s is not a valid start codon", start.Codon))
		}
	}

	if stop, ok := p.StopCodon(v, f.TransTable); ok {
		out = append(out, stopAlerts(in, ftrIdx, stop, cfg)...)
	}

	out = append(out, frameshiftAlerts(in, ftrIdx, p)...)
	out = append(out, indelAlerts(in, ftrIdx, f, cfg)...)
	return out
}

func stopAlerts(in Input, ftrIdx int, stop codon.StopCheck, cfg Config) []alert.Alert {
	v := in.View
	var out []alert.Alert
	ftr := func(code alert.Code, seqCoords, mdlCoords coord.Segments, detail string) {
		out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, code, seqCoords, mdlCoords, detail))
	}

	if !stop.Valid {
		if stop.InnerAmbig {
			ftr(alert.AmbgCd3c, stop.SeqCoords, stop.MdlCoords,
				fmt.Sprintf("stop codon %s has an internal ambiguity", stop.Codon))
		} else {
			// the generic mutation-at-end alert; suppressed from
			// reporting when a more specific stop alert co-occurs
			ftr(alert.MutEndCd, stop.SeqCoords, stop.MdlCoords,
				fmt.Sprintf("%s is not a valid stop codon", stop.Codon))
		}
	}

	switch {
	case stop.Early != nil:
		ftr(alert.CdsStopN, stop.Early.SeqCoords, stop.Early.MdlCoords,
			fmt.Sprintf("in-frame stop codon %s ends %d nt 5' of the expected stop position; shift:%d",
				stop.Early.Codon, stop.Early.Shift, stop.Early.Shift))
	case stop.NoStop:
		ftr(alert.MutEndNs, nil, nil, "no in-frame stop codon exists downstream of the start")
	case stop.Beyond != nil:
		ftr(alert.MutEndEx, stop.Beyond.SeqCoords, stop.Beyond.MdlCoords,
			fmt.Sprintf("first in-frame stop codon %s ends %d nt 3' of the expected stop position; shift:%d",
				stop.Beyond.Codon, stop.Beyond.Shift, stop.Beyond.Shift))
	}

	// premature stop implied by the external protein alignment
	if ph := proteinHitFor(in, ftrIdx); ph != nil && ph.PrematureStop != nil {
		ps := ph.PrematureStop
		ftr(alert.CdsStopP, coord.Single(ps.SeqPos, ps.SeqPos, coord.Plus),
			coord.Single(ps.MdlPos, ps.MdlPos, coord.Plus),
			"protein alignment implies a premature stop codon")
	}
	return out
}

func frameshiftAlerts(in Input, ftrIdx int, p *codon.Profile) []alert.Alert {
	v := in.View
	var out []alert.Alert
	for _, fs := range p.Frameshifts {
		code := alert.FstUkCnf
		switch fs.Confidence {
		case codon.HighConf:
			code = alert.FstHiCnf
		case codon.LowConf:
			code = alert.FstLoCnf
		}

		detail := fmt.Sprintf("cause:%s", fs.Cause)
		if fs.Restore != nil {
			detail += fmt.Sprintf(" restore:%s", fs.Restore)
		}
		detail += fmt.Sprintf(" frame:%s length:%s",
			codon.FrameString(fs.Runs), codon.LengthString(fs.Runs))

		out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, code,
			coord.Segments{fs.SeqIv}, coord.Segments{fs.MdlIv}, detail))
	}
	return out
}

// indelAlerts flags single-locus indels inside a CDS exceeding the
// configured maxima, evaluated once from the nucleotide alignment and
// once from the protein alignment, each with its own threshold and
// code.
func indelAlerts(in Input, ftrIdx int, f *feature.Feature, cfg Config) []alert.Alert {
	v := in.View
	var out []alert.Alert
	ftr := func(code alert.Code, seqCoords, mdlCoords coord.Segments, detail string) {
		out = append(out, alert.NewFeature(v.SeqID, v.ModelID, ftrIdx, code, seqCoords, mdlCoords, detail))
	}

	for _, seg := range f.Coords {
		for q := seg.Low(); q <= seg.High(); q++ {
			if q != seg.High() {
				if insStart, n := v.InsertionAfter(q); n > cfg.MaxInsertNt {
					ftr(alert.InsertNn,
						coord.Single(insStart, insStart+n-1, coord.Plus),
						coord.Single(q, q, coord.Plus),
						fmt.Sprintf("%d nt insertion after model position %d > %d", n, q, cfg.MaxInsertNt))
				}
			}
			// count a deletion run once, at its first model position
			if n := v.DeletionAt(q); n > cfg.MaxDeleteNt && v.DeletionAt(q-1) == 0 {
				prev, _ := v.LastSeqPosAtOrBefore(q)
				ftr(alert.DeletInn,
					coord.Single(prev, prev, coord.Plus),
					coord.Single(q, q+n-1, coord.Plus),
					fmt.Sprintf("%d nt deletion at model position %d > %d", n, q, cfg.MaxDeleteNt))
				q += n - 1
			}
		}
	}

	if ph := proteinHitFor(in, ftrIdx); ph != nil {
		if bi := ph.BigInsert; bi != nil && bi.Len > cfg.MaxInsertProt {
			ftr(alert.InsertNp,
				coord.Single(bi.SeqPos, bi.SeqPos+bi.Len-1, coord.Plus),
				coord.Single(bi.MdlPos, bi.MdlPos, coord.Plus),
				fmt.Sprintf("%d nt insertion in the protein alignment > %d", bi.Len, cfg.MaxInsertProt))
		}
		if bd := ph.BigDelete; bd != nil && bd.Len > cfg.MaxDeleteProt {
			ftr(alert.DeletInp,
				coord.Single(bd.SeqPos, bd.SeqPos, coord.Plus),
				coord.Single(bd.MdlPos, bd.MdlPos+bd.Len-1, coord.Plus),
				fmt.Sprintf("%d nt deletion in the protein alignment > %d", bd.Len, cfg.MaxDeleteProt))
		}
	}
	return out
}
