package codon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ncbi/vadr-sub007/internal/align"
	"github.com/ncbi/vadr-sub007/internal/coord"
	"github.com/ncbi/vadr-sub007/internal/feature"
)

// Config holds the analyzer thresholds. Zero values are replaced by
// the defaults noted per field.
type Config struct {
	// minimum length in nucleotides of a shifted region reported as a
	// frameshift candidate when the region ends before the CDS 3' end
	// (default 6)
	MinShiftLen int

	// the distinct minimum when the shifted region reaches the CDS 3'
	// end (default 3)
	MinShiftLenEnd int

	// mean-confidence threshold over the shifted region (default 0.8)
	HighConf float64

	// mean-confidence threshold over the expected-frame region
	// immediately preceding the shift (default 0.0)
	PrevConf float64

	// by default only a net indel length that is an exact multiple of
	// 3 restores the frame, so a shifted region runs until the frame
	// returns to the expected value; with LooseRestore set, a change
	// between two non-expected frame values also ends the candidate
	// region, splitting it per frame value
	LooseRestore bool

	// accept only ATG as a start codon, regardless of the model's
	// translation table
	ATGOnly bool
}

func (c Config) withDefaults() Config {
	if c.MinShiftLen == 0 {
		c.MinShiftLen = 6
	}
	if c.MinShiftLenEnd == 0 {
		c.MinShiftLenEnd = 3
	}
	if c.HighConf == 0 {
		c.HighConf = 0.8
	}
	return c
}

// Nt is one sequence nucleotide consumed while walking a CDS. MdlPos
// is 0 for nucleotides inserted relative to the model.
type Nt struct {
	SeqPos int
	MdlPos int
	Base   byte
	Conf   float64 // -1 when no confidence track
	Frame  int     // 1..3, frame at this nucleotide
}

// FrameRun is a maximal run of nucleotides sharing one frame value.
// The display strings are generated from runs at the reporting
// boundary; the runs themselves are the source of truth.
type FrameRun struct {
	Frame  int
	Length int
	Trunc5 bool
	Trunc3 bool
}

// FrameString renders runs as frame values with parenthesized
// run lengths, e.g. "1(45),3(12),1(60)". A 5'-truncated run is
// prefixed "<", a 3'-truncated run suffixed ">". A single full-length
// run renders as just its frame value ("1").
func FrameString(runs []FrameRun) string {
	if len(runs) == 1 && !runs[0].Trunc5 && !runs[0].Trunc3 {
		return strconv.Itoa(runs[0].Frame)
	}
	parts := make([]string, len(runs))
	for i, r := range runs {
		s := fmt.Sprintf("%d(%d)", r.Frame, r.Length)
		if r.Trunc5 {
			s = "<" + s
		}
		if r.Trunc3 {
			s += ">"
		}
		parts[i] = s
	}
	return strings.Join(parts, ",")
}

// LengthString renders the nucleotide count of each frame run,
// e.g. "45,12,60".
func LengthString(runs []FrameRun) string {
	parts := make([]string, len(runs))
	for i, r := range runs {
		parts[i] = strconv.Itoa(r.Length)
	}
	return strings.Join(parts, ",")
}

// Edit is one indel event in the alignment: the cause or restoring
// edit of a frameshift region.
type Edit struct {
	Insert bool
	SeqIv  coord.Interval
	MdlIv  coord.Interval
	Len    int
}

func (e Edit) String() string {
	kind := "delete"
	if e.Insert {
		kind = "insert"
	}
	return fmt.Sprintf("%s[len:%d,seq:%s,mdl:%s]", kind, e.Len, e.SeqIv, e.MdlIv)
}

// Conf classifies a frameshift candidate's alignment confidence.
type Conf int

const (
	// HighConf means both the shifted and the preceding region clear
	// their confidence thresholds.
	HighConf Conf = iota
	// LowConf means at least one threshold was missed.
	LowConf
	// UnknownConf means no confidence track was available.
	UnknownConf
)

// Frameshift is one candidate frameshift region inside a CDS.
type Frameshift struct {
	Cause   Edit
	Restore *Edit // nil when the shift runs to the CDS 3' end

	SeqIv coord.Interval // shifted region in sequence coordinates
	MdlIv coord.Interval // shifted region in model coordinates

	Runs []FrameRun // the full frame-run list of the CDS

	ShiftedAvg float64 // mean confidence over the shifted region, -1 unknown
	PrevAvg    float64 // mean confidence over the preceding region, -1 unknown

	Confidence Conf
}

// Profile is the analyzer's output for one CDS feature.
type Profile struct {
	// consumed sequence nucleotides, 5' to 3' along the feature; on a
	// minus-strand feature the bases are complemented and the sequence
	// positions descend
	Nts []Nt

	Strand coord.Strand

	Runs        []FrameRun
	Frameshifts []Frameshift

	// the feature extends beyond the aligned region at the given end
	Trunc5 bool
	Trunc3 bool

	// expected frame: 1 unless 5'-truncated, then derived from the
	// number of missing nucleotides
	ExpFrame int
}

// SeqSpan returns the feature's predicted sequence interval, ok false
// when no nucleotide aligned.
func (p *Profile) SeqSpan() (coord.Interval, bool) {
	if len(p.Nts) == 0 {
		return coord.Interval{}, false
	}
	return coord.NewInterval(p.Nts[0].SeqPos, p.Nts[len(p.Nts)-1].SeqPos, p.Strand), true
}

// dir is +1 walking up the sequence coordinates, -1 on the minus
// strand.
func (p *Profile) dir() int {
	if p.Strand == coord.Minus {
		return -1
	}
	return 1
}

// indelEvent is an Edit plus the index of the first consumed
// nucleotide it precedes.
type indelEvent struct {
	Edit
	atNt int
}

// Analyze walks a coding feature's aligned region 5' to 3' and returns
// its codon/frame profile. Minus-strand features are walked in
// descending sequence order with complemented bases.
func Analyze(v *align.View, f *feature.Feature, cfg Config) (*Profile, error) {
	strand := f.Coords.Strand()
	if strand != coord.Plus && strand != coord.Minus {
		return nil, fmt.Errorf("codon analysis requires a stranded feature, got %s", strand)
	}
	cfg = cfg.withDefaults()

	covFirst, covLast, covered := v.CoveredSpan()
	p := &Profile{ExpFrame: 1, Strand: strand}
	if !covered {
		return p, nil
	}
	dir := p.dir()

	// a model position is 5' of the covered span when it sits before
	// covFirst on the plus strand, after covLast on the minus strand
	before5 := func(q int) bool {
		if dir > 0 {
			return q < covFirst
		}
		return q > covLast
	}
	cds5 := f.Coords[0].Start
	cds3 := f.Coords[len(f.Coords)-1].End
	if before5(cds5) {
		p.Trunc5 = true
		missing := 0
		for _, iv := range f.Coords {
			for q := iv.Low(); q <= iv.High(); q++ {
				if before5(q) {
					missing++
				}
			}
		}
		p.ExpFrame = 1 + missing%3
	}
	if (dir > 0 && covLast < cds3) || (dir < 0 && covFirst > cds3) {
		p.Trunc3 = true
	}

	var events []indelEvent
	netShift := 0
	frame := func() int {
		return 1 + (((p.ExpFrame-1+netShift)%3)+3)%3
	}

	// pending deletion run, flushed when the next nucleotide arrives
	var del *indelEvent

	flushDel := func() {
		if del != nil {
			events = append(events, *del)
			del = nil
		}
	}

	consume := func(seqPos, mdlPos int) {
		flushDel()
		conf := -1.0
		if c, ok := v.ConfidenceAt(seqPos); ok {
			conf = float64(c)
		}
		base := v.Nt(seqPos)
		if strand == coord.Minus {
			base = Complement(base)
		}
		p.Nts = append(p.Nts, Nt{
			SeqPos: seqPos,
			MdlPos: mdlPos,
			Base:   base,
			Conf:   conf,
			Frame:  frame(),
		})
	}

	for si, seg := range f.Coords {
		for q := seg.Start; seg.Contains(q); q += dir {
			if q < covFirst || q > covLast {
				continue
			}
			seqPos, aligned := v.SeqPosAtModel(q)
			if !aligned {
				// deletion relative to the model; anchored at the
				// nearest consumed nucleotide 5' of it
				netShift--
				if del == nil {
					var prev int
					if dir > 0 {
						prev, _ = v.LastSeqPosAtOrBefore(q)
					} else {
						prev, _ = v.FirstSeqPosAtOrAfter(q)
					}
					del = &indelEvent{
						Edit: Edit{
							SeqIv: coord.NewInterval(prev, prev, strand),
							MdlIv: coord.NewInterval(q, q, strand),
							Len:   1,
						},
						atNt: len(p.Nts),
					}
				} else {
					del.MdlIv.End = q
					del.Len++
				}
				continue
			}
			consume(seqPos, q)

			// insertion run between this model position and the next
			// one in walk order; the run past the feature's final
			// model position is outside it
			last := si == len(f.Coords)-1 && q == seg.End
			if last {
				continue
			}
			insAfter := q
			if dir < 0 {
				insAfter = q - 1
			}
			insStart, n := v.InsertionAfter(insAfter)
			if n == 0 {
				continue
			}
			seqIv := coord.NewInterval(insStart, insStart+n-1, strand)
			if dir < 0 {
				seqIv = coord.NewInterval(insStart+n-1, insStart, strand)
			}
			events = append(events, indelEvent{
				Edit: Edit{
					Insert: true,
					SeqIv:  seqIv,
					MdlIv:  coord.NewInterval(q, q, strand),
					Len:    n,
				},
				atNt: len(p.Nts),
			})
			netShift += n
			for k := 0; k < n; k++ {
				sp := insStart + k
				if dir < 0 {
					sp = insStart + n - 1 - k
				}
				consumeInsertion(p, v, sp, frame())
			}
		}
	}
	flushDel()

	p.Runs = buildRuns(p.Nts, p.Trunc5, p.Trunc3)
	p.Frameshifts = findFrameshifts(p, events, cfg)
	return p, nil
}

func consumeInsertion(p *Profile, v *align.View, seqPos, frame int) {
	conf := -1.0
	if c, ok := v.ConfidenceAt(seqPos); ok {
		conf = float64(c)
	}
	base := v.Nt(seqPos)
	if p.Strand == coord.Minus {
		base = Complement(base)
	}
	p.Nts = append(p.Nts, Nt{
		SeqPos: seqPos,
		MdlPos: 0,
		Base:   base,
		Conf:   conf,
		Frame:  frame,
	})
}

func buildRuns(nts []Nt, trunc5, trunc3 bool) []FrameRun {
	var runs []FrameRun
	for _, nt := range nts {
		if len(runs) > 0 && runs[len(runs)-1].Frame == nt.Frame {
			runs[len(runs)-1].Length++
			continue
		}
		runs = append(runs, FrameRun{Frame: nt.Frame, Length: 1})
	}
	if len(runs) > 0 {
		runs[0].Trunc5 = trunc5
		runs[len(runs)-1].Trunc3 = trunc3
	}
	return runs
}

// findFrameshifts locates maximal runs of nucleotides whose frame
// differs from the expected frame and keeps those long enough to be
// candidates. The classification into high/low confidence compares
// the mean confidence of the shifted region and of the preceding
// expected-frame region against independent thresholds.
func findFrameshifts(p *Profile, events []indelEvent, cfg Config) []Frameshift {
	var out []Frameshift
	i := 0
	for i < len(p.Nts) {
		if p.Nts[i].Frame == p.ExpFrame {
			i++
			continue
		}
		j := i
		for j < len(p.Nts) && p.Nts[j].Frame != p.ExpFrame &&
			(!cfg.LooseRestore || p.Nts[j].Frame == p.Nts[i].Frame) {
			j++
		}
		// [i, j) is a shifted region
		reachesEnd := j == len(p.Nts)
		minLen := cfg.MinShiftLen
		if reachesEnd {
			minLen = cfg.MinShiftLenEnd
		}
		if j-i >= minLen {
			fs := Frameshift{
				SeqIv: coord.NewInterval(p.Nts[i].SeqPos, p.Nts[j-1].SeqPos, p.Strand),
				MdlIv: mdlSpan(p.Nts[i:j], p.Strand),
				Runs:  p.Runs,
			}
			// cause: the last event at or before the region start;
			// restore: the first event at the region end
			for _, ev := range events {
				if ev.atNt <= i {
					fs.Cause = ev.Edit
				}
				if ev.atNt == j && !reachesEnd && fs.Restore == nil {
					restore := ev.Edit
					fs.Restore = &restore
				}
			}
			fs.ShiftedAvg = meanConf(p.Nts[i:j])
			fs.PrevAvg = meanConf(precedingRun(p.Nts, i, p.ExpFrame))
			fs.Confidence = classify(fs.ShiftedAvg, fs.PrevAvg, cfg)
			out = append(out, fs)
		}
		i = j
	}
	return out
}

func mdlSpan(nts []Nt, strand coord.Strand) coord.Interval {
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
		// pure insertion: the region spans no model positions
		return coord.Interval{Strand: strand}
	}
	return coord.NewInterval(first, last, strand)
}

// precedingRun returns the expected-frame nucleotides immediately
// before index i.
func precedingRun(nts []Nt, i, expFrame int) []Nt {
	j := i
	for j > 0 && nts[j-1].Frame == expFrame {
		j--
	}
	return nts[j:i]
}

func meanConf(nts []Nt) float64 {
	if len(nts) == 0 {
		return -1
	}
	sum := 0.0
	for _, nt := range nts {
		if nt.Conf < 0 {
			return -1
		}
		sum += nt.Conf
	}
	return sum / float64(len(nts))
}

func classify(shifted, prev float64, cfg Config) Conf {
	if shifted < 0 || prev < 0 {
		return UnknownConf
	}
	if shifted >= cfg.HighConf && prev >= cfg.PrevConf {
		return HighConf
	}
	return LowConf
}
