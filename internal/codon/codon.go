// Package codon walks a CDS feature's aligned region codon by codon,
// tracking the reading frame across indels. It feeds the start/stop,
// length, and frameshift detectors.
package codon

import "strings"

// table holds the start and stop codon sets of one NCBI translation
// table. Only the tables that occur in viral models are carried.
type table struct {
	starts map[string]bool
	stops  map[string]bool
}

var tables = map[int]table{
	1: {
		starts: set("ATG", "CTG", "TTG"),
		stops:  set("TAA", "TAG", "TGA"),
	},
	2: {
		starts: set("ATG", "ATA", "ATT", "ATC", "GTG"),
		stops:  set("TAA", "TAG", "AGA", "AGG"),
	},
	4: {
		starts: set("ATG", "ATA", "ATT", "ATC", "CTG", "GTG", "TTA", "TTG"),
		stops:  set("TAA", "TAG"),
	},
	5: {
		starts: set("ATG", "ATA", "ATT", "ATC", "GTG", "TTG"),
		stops:  set("TAA", "TAG"),
	},
	11: {
		starts: set("ATG", "ATA", "ATT", "ATC", "CTG", "GTG", "TTG"),
		stops:  set("TAA", "TAG", "TGA"),
	},
}

func set(codons ...string) map[string]bool {
	m := make(map[string]bool, len(codons))
	for _, c := range codons {
		m[c] = true
	}
	return m
}

// normalize uppercases and maps U to T so RNA input checks against the
// DNA codon tables.
func normalize(codon string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'a':
			return 'A'
		case 'c':
			return 'C'
		case 'g':
			return 'G'
		case 't', 'u', 'U':
			return 'T'
		}
		return r
	}, codon)
}

// IsValidStart reports whether codon is a valid start under the given
// translation table. With atgOnly set, only ATG qualifies regardless
// of table. Unknown table IDs fall back to table 1.
func IsValidStart(codon string, tableID int, atgOnly bool) bool {
	c := normalize(codon)
	if len(c) != 3 {
		return false
	}
	if atgOnly {
		return c == "ATG"
	}
	t, ok := tables[tableID]
	if !ok {
		t = tables[1]
	}
	return t.starts[c]
}

// IsValidStop reports whether codon is a valid stop under the given
// translation table.
func IsValidStop(codon string, tableID int) bool {
	c := normalize(codon)
	if len(c) != 3 {
		return false
	}
	t, ok := tables[tableID]
	if !ok {
		t = tables[1]
	}
	return t.stops[c]
}

// Complement returns the complementary nucleotide symbol, preserving
// IUPAC ambiguity codes. Case insensitive; unrecognized symbols map
// to N.
func Complement(nt byte) byte {
	if nt >= 'a' && nt <= 'z' {
		nt -= 'a' - 'A'
	}
	switch nt {
	case 'A':
		return 'T'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'T', 'U':
		return 'A'
	case 'R':
		return 'Y'
	case 'Y':
		return 'R'
	case 'S':
		return 'S'
	case 'W':
		return 'W'
	case 'K':
		return 'M'
	case 'M':
		return 'K'
	case 'B':
		return 'V'
	case 'V':
		return 'B'
	case 'D':
		return 'H'
	case 'H':
		return 'D'
	}
	return 'N'
}

// IsAmbiguous reports whether a nucleotide symbol is outside the
// canonical ACGTU set (case insensitive).
func IsAmbiguous(nt byte) bool {
	switch nt {
	case 'A', 'C', 'G', 'T', 'U', 'a', 'c', 'g', 't', 'u':
		return false
	}
	return true
}

// HasInnerAmbiguity reports whether a 3 nt codon's outer nucleotide is
// canonical while an inner one is ambiguous. outerFirst selects which
// end counts as outer: true for a start codon (first nt outer), false
// for a stop codon (last nt outer).
func HasInnerAmbiguity(codon string, outerFirst bool) bool {
	if len(codon) != 3 {
		return false
	}
	if outerFirst {
		return !IsAmbiguous(codon[0]) && (IsAmbiguous(codon[1]) || IsAmbiguous(codon[2]))
	}
	return !IsAmbiguous(codon[2]) && (IsAmbiguous(codon[0]) || IsAmbiguous(codon[1]))
}
