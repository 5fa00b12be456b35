package codon

import (
	"github.com/ncbi/vadr-sub007/internal/align"
	"github.com/ncbi/vadr-sub007/internal/coord"
)

// StartCheck is the validity verdict on a CDS's first codon.
type StartCheck struct {
	Codon      string
	Valid      bool
	InnerAmbig bool // outer nucleotide canonical, an inner one ambiguous
	SeqCoords  coord.Segments
	MdlCoords  coord.Segments
}

// StartCodon checks the first codon of the profile against the start
// set of the given translation table. ok is false when the check does
// not apply: the CDS is 5'-truncated or fewer than 3 nucleotides
// aligned.
func (p *Profile) StartCodon(tableID int, atgOnly bool) (StartCheck, bool) {
	if p.Trunc5 || len(p.Nts) < 3 {
		return StartCheck{}, false
	}
	nts := p.Nts[:3]
	c := StartCheck{
		Codon:     string([]byte{nts[0].Base, nts[1].Base, nts[2].Base}),
		SeqCoords: coord.Single(nts[0].SeqPos, nts[2].SeqPos, p.Strand),
		MdlCoords: mdlCoordsOf(nts, p.Strand),
	}
	c.Valid = IsValidStart(c.Codon, tableID, atgOnly)
	if !c.Valid {
		c.InnerAmbig = HasInnerAmbiguity(c.Codon, true)
	}
	return c, true
}

// StopHit is one in-frame stop codon found away from the expected
// position. Shift is the distance in nucleotides between the expected
// stop's final position and the hit's.
type StopHit struct {
	Codon     string
	SeqCoords coord.Segments
	MdlCoords coord.Segments
	Shift     int
}

// StopCheck is the verdict on a CDS's expected stop codon and the
// in-frame stop scan around it.
type StopCheck struct {
	// the codon at the homology-predicted stop position
	Codon     string
	Valid     bool
	SeqCoords coord.Segments
	MdlCoords coord.Segments

	InnerAmbig bool

	// first valid in-frame stop 5' of the expected position
	Early *StopHit

	// first valid in-frame stop 3' of the expected position, found by
	// continuing the frame into the downstream sequence
	Beyond *StopHit

	// no valid in-frame stop exists anywhere at or downstream of the
	// start; the distinct "no stop at all" case with blank coordinates
	NoStop bool

	// feature length on the sequence modulo 3
	LengthMod3 int
}

// StopCodon checks the profile's expected stop codon and scans for
// in-frame stops. ok is false when the check does not apply: the CDS
// is 3'-truncated or fewer than 3 nucleotides aligned. v is needed to
// continue the scan into the sequence downstream of the feature.
func (p *Profile) StopCodon(v *align.View, tableID int) (StopCheck, bool) {
	n := len(p.Nts)
	if p.Trunc3 || n < 3 {
		return StopCheck{}, false
	}
	last3 := p.Nts[n-3:]
	c := StopCheck{
		Codon:      string([]byte{last3[0].Base, last3[1].Base, last3[2].Base}),
		SeqCoords:  coord.Single(last3[0].SeqPos, last3[2].SeqPos, p.Strand),
		MdlCoords:  mdlCoordsOf(last3, p.Strand),
		LengthMod3: n % 3,
	}
	c.Valid = IsValidStop(c.Codon, tableID)
	if !c.Valid {
		c.InnerAmbig = HasInnerAmbiguity(c.Codon, false)
	}

	expectedEnd := last3[2].SeqPos
	dir := p.dir()

	// translation frame offset: a 5'-truncated CDS starts mid-codon
	offset := (4 - p.ExpFrame) % 3

	// early: first valid in-frame stop strictly 5' of the expected one
	for i := offset; i+3 <= n-3; i += 3 {
		codon := string([]byte{p.Nts[i].Base, p.Nts[i+1].Base, p.Nts[i+2].Base})
		if !IsValidStop(codon, tableID) {
			continue
		}
		c.Early = &StopHit{
			Codon:     codon,
			SeqCoords: coord.Single(p.Nts[i].SeqPos, p.Nts[i+2].SeqPos, p.Strand),
			MdlCoords: mdlCoordsOf(p.Nts[i:i+3], p.Strand),
			Shift:     dir * (expectedEnd - p.Nts[i+2].SeqPos),
		}
		return c, true
	}
	if c.Valid {
		return c, true
	}

	// the expected stop is invalid and nothing stops earlier: continue
	// the frame into the downstream sequence looking for the first
	// valid stop past the expected position
	if hit := p.scanBeyond(v, tableID, offset, expectedEnd); hit != nil {
		c.Beyond = hit
	} else {
		c.NoStop = true
	}
	return c, true
}

// scanBeyond extends the consumed nucleotides with the raw sequence 3'
// of the feature and scans codon-aligned triples for the first valid
// stop ending past expectedEnd. On the minus strand the extension runs
// toward sequence position 1 with complemented bases.
func (p *Profile) scanBeyond(v *align.View, tableID, offset, expectedEnd int) *StopHit {
	n := len(p.Nts)
	lastSeq := p.Nts[n-1].SeqPos
	dir := p.dir()

	base := func(i int) (byte, int) { // nucleotide and sequence position at frame index i
		if i < n {
			return p.Nts[i].Base, p.Nts[i].SeqPos
		}
		sp := lastSeq + dir*(i-n+1)
		b := v.Nt(sp)
		if p.Strand == coord.Minus {
			b = Complement(b)
		}
		return b, sp
	}

	remaining := v.SeqLen() - lastSeq
	if dir < 0 {
		remaining = lastSeq - 1
	}
	total := n + remaining
	for i := offset; i+3 <= total; i += 3 {
		b0, s0 := base(i)
		b1, _ := base(i + 1)
		b2, s2 := base(i + 2)
		if dir*(s2-expectedEnd) <= 0 {
			continue
		}
		codon := string([]byte{b0, b1, b2})
		if IsValidStop(codon, tableID) {
			return &StopHit{
				Codon:     codon,
				SeqCoords: coord.Single(s0, s2, p.Strand),
				Shift:     dir * (s2 - expectedEnd),
			}
		}
	}
	return nil
}

// mdlCoordsOf returns the model coordinates spanned by a short run of
// nucleotides, blank when all of them are insertions.
func mdlCoordsOf(nts []Nt, strand coord.Strand) coord.Segments {
	first, last := 0, 0
	for _, nt := range nts {
		if nt.MdlPos == 0 {
			continue
		}
		if first == 0 {
			first = nt.MdlPos
		}
		last = nt.MdlPos
	}
	if first == 0 {
		return nil
	}
	return coord.Single(first, last, strand)
}
