// Package coord holds the shared coordinate and interval types used by
// the alignment view, the feature map, and every detector. All
// biological coordinates are 1-based and inclusive; alignment column
// indices are 0-based. The two spaces are never mixed without an
// explicit conversion.
package coord

import (
	"fmt"
	"strconv"
	"strings"
)

// Strand is the orientation of an interval.
type Strand int

const (
	// Plus is the forward strand.
	Plus Strand = iota
	// Minus is the reverse strand.
	Minus
	// Unknown is used for hits whose strand could not be determined.
	Unknown
)

// String returns the single-character strand symbol used in coordinate
// strings ("+", "-", "?").
func (s Strand) String() string {
	switch s {
	case Plus:
		return "+"
	case Minus:
		return "-"
	default:
		return "?"
	}
}

// ParseStrand parses a single-character strand symbol.
func ParseStrand(sym string) (Strand, error) {
	switch sym {
	case "+":
		return Plus, nil
	case "-":
		return Minus, nil
	case "?":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("invalid strand %q", sym)
}

// Interval is a 1-based inclusive span on either the sequence or the
// model coordinate space. On the minus strand Start > End numerically
// but Start is still the 5' end of the interval.
type Interval struct {
	Start  int
	End    int
	Strand Strand
}

// NewInterval returns an interval, inferring the strand from the
// coordinate order when st is Unknown.
func NewInterval(start, end int, st Strand) Interval {
	if st == Unknown && start > end {
		st = Minus
	}
	return Interval{Start: start, End: end, Strand: st}
}

// Low returns the numerically smaller endpoint.
func (iv Interval) Low() int {
	if iv.Start <= iv.End {
		return iv.Start
	}
	return iv.End
}

// High returns the numerically larger endpoint.
func (iv Interval) High() int {
	if iv.Start >= iv.End {
		return iv.Start
	}
	return iv.End
}

// Len returns the number of positions covered, strand independent.
func (iv Interval) Len() int {
	return iv.High() - iv.Low() + 1
}

// Contains reports whether pos lies inside the interval.
func (iv Interval) Contains(pos int) bool {
	return pos >= iv.Low() && pos <= iv.High()
}

// OverlapLen returns the number of positions shared by a and b,
// zero if they are disjoint. Symmetric.
func OverlapLen(a, b Interval) int {
	lo := a.Low()
	if b.Low() > lo {
		lo = b.Low()
	}
	hi := a.High()
	if b.High() < hi {
		hi = b.High()
	}
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

// String renders "start..end:strand", e.g. "11..31:+".
func (iv Interval) String() string {
	return fmt.Sprintf("%d..%d:%s", iv.Start, iv.End, iv.Strand)
}

// ToColumn converts a 1-based coordinate to a 0-based column index.
func ToColumn(pos int) int { return pos - 1 }

// FromColumn converts a 0-based column index to a 1-based coordinate.
func FromColumn(col int) int { return col + 1 }

// Segments is an ordered, non-empty list of intervals describing a
// feature possibly split across sections. Consecutive segments are
// strand consistent and ordered 5'->3' along the feature. A nil
// Segments renders as the blank coordinate "-" used by alerts with no
// well-defined region.
type Segments []Interval

// NewSegments wraps a list of intervals, validating strand consistency.
func NewSegments(ivs ...Interval) (Segments, error) {
	if len(ivs) == 0 {
		return nil, fmt.Errorf("empty segment list")
	}
	st := ivs[0].Strand
	for _, iv := range ivs[1:] {
		if iv.Strand != st {
			return nil, fmt.Errorf("mixed strands in segment list: %s vs %s", st, iv.Strand)
		}
	}
	return Segments(ivs), nil
}

// Len returns the total number of positions across all segments.
func (s Segments) Len() int {
	n := 0
	for _, iv := range s {
		n += iv.Len()
	}
	return n
}

// Strand returns the strand shared by all segments, Unknown if blank.
func (s Segments) Strand() Strand {
	if len(s) == 0 {
		return Unknown
	}
	return s[0].Strand
}

// Span returns the single interval from the 5'-most start to the
// 3'-most end of the segment list.
func (s Segments) Span() Interval {
	if len(s) == 0 {
		return Interval{}
	}
	return Interval{Start: s[0].Start, End: s[len(s)-1].End, Strand: s[0].Strand}
}

// Contains reports whether pos falls inside any segment.
func (s Segments) Contains(pos int) bool {
	for _, iv := range s {
		if iv.Contains(pos) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every position of other falls inside s.
// Used to validate that a mature peptide lies within its parent CDS.
func (s Segments) ContainsAll(other Segments) bool {
	for _, iv := range other {
		for p := iv.Low(); p <= iv.High(); p++ {
			if !s.Contains(p) {
				return false
			}
		}
	}
	return true
}

// Equal reports whether two segment lists cover identical coordinates.
func (s Segments) Equal(other Segments) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the comma-separated coordinate string, "-" if blank.
func (s Segments) String() string {
	if len(s) == 0 {
		return "-"
	}
	parts := make([]string, len(s))
	for i, iv := range s {
		parts[i] = iv.String()
	}
	return strings.Join(parts, ",")
}

// ParseSegments parses a coordinate string like "11..31:+,35..40:+".
// "-" parses to a nil (blank) segment list.
func ParseSegments(in string) (Segments, error) {
	if in == "-" || in == "" {
		return nil, nil
	}
	var segs []Interval
	for _, part := range strings.Split(in, ",") {
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid segment %q: missing strand", part)
		}
		ends := strings.SplitN(fields[0], "..", 2)
		if len(ends) != 2 {
			return nil, fmt.Errorf("invalid segment %q: want start..end", part)
		}
		start, err := strconv.Atoi(ends[0])
		if err != nil {
			return nil, fmt.Errorf("invalid segment start %q: %v", ends[0], err)
		}
		end, err := strconv.Atoi(ends[1])
		if err != nil {
			return nil, fmt.Errorf("invalid segment end %q: %v", ends[1], err)
		}
		st, err := ParseStrand(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid segment %q: %v", part, err)
		}
		segs = append(segs, Interval{Start: start, End: end, Strand: st})
	}
	return NewSegments(segs...)
}

// Single returns a one-interval segment list. Convenience for alerts.
func Single(start, end int, st Strand) Segments {
	return Segments{NewInterval(start, end, st)}
}
