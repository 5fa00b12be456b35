package align

import (
	"fmt"
	"strings"
)

// FromAligned builds a view from the three parallel strings the
// external aligner emits for one sequence: the aligned sequence (with
// "-" at deletions), the reference column annotation (non-"." where a
// column consumes a model position), and the per-column confidence
// characters ("0"-"9", "*", or "." at gaps). pp may be empty in the
// alternate alignment mode, in which case the view carries no
// confidence track.
func FromAligned(seqID, modelID, alnSeq, rf, pp string) (*View, error) {
	if len(alnSeq) != len(rf) {
		return nil, fmt.Errorf("aligned sequence length %d != reference annotation length %d", len(alnSeq), len(rf))
	}
	if pp != "" && len(pp) != len(alnSeq) {
		return nil, fmt.Errorf("confidence track length %d != alignment length %d", len(pp), len(alnSeq))
	}

	modelLen := 0
	for i := 0; i < len(rf); i++ {
		if isRefCol(rf[i]) {
			modelLen++
		}
	}

	var (
		cols     []Column
		seq      strings.Builder
		modelPos int
		seqPos   int
	)
	for i := 0; i < len(alnSeq); i++ {
		ref := isRefCol(rf[i])
		gap := alnSeq[i] == '-' || alnSeq[i] == '.'

		if !ref && gap {
			// neither a model position nor a sequence nucleotide,
			// nothing to record (an all-gap column from a larger MSA)
			continue
		}

		c := Column{ModelPos: -1, SeqPos: -1, Conf: -1}
		if ref {
			modelPos++
			c.ModelPos = modelPos
		} else {
			c.Insertion = true
		}
		if !gap {
			seqPos++
			c.SeqPos = seqPos
			seq.WriteByte(upperNt(alnSeq[i]))
			if pp != "" {
				conf, err := ppToConf(pp[i])
				if err != nil {
					return nil, fmt.Errorf("column %d: %v", i, err)
				}
				c.Conf = conf
			}
		}
		cols = append(cols, c)
	}

	return New(seqID, modelID, seq.String(), cols, modelLen)
}

func isRefCol(b byte) bool {
	return b != '.' && b != '~' && b != '-'
}

func upperNt(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// ppToConf converts a posterior-probability character to the midpoint
// of its band: digit d covers [d/10-0.05, d/10+0.05) and "*" covers
// [0.95, 1.0].
func ppToConf(b byte) (float32, error) {
	switch {
	case b == '*':
		return 0.975, nil
	case b >= '0' && b <= '9':
		return float32(b-'0') / 10.0, nil
	case b == '.':
		return -1, nil
	}
	return 0, fmt.Errorf("invalid confidence character %q", string(b))
}
