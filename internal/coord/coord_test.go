package coord

import "testing"

func Test_OverlapLen(t *testing.T) {
	tests := []struct {
		name string
		a    Interval
		b    Interval
		want int
	}{
		{
			"disjoint",
			NewInterval(1, 10, Plus),
			NewInterval(20, 30, Plus),
			0,
		},
		{
			"adjacent",
			NewInterval(1, 10, Plus),
			NewInterval(11, 20, Plus),
			0,
		},
		{
			"partial",
			NewInterval(1, 10, Plus),
			NewInterval(5, 20, Plus),
			6,
		},
		{
			"contained",
			NewInterval(1, 100, Plus),
			NewInterval(40, 49, Plus),
			10,
		},
		{
			"minus strand operand",
			NewInterval(1, 10, Plus),
			NewInterval(10, 5, Minus),
			6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverlapLen(tt.a, tt.b); got != tt.want {
				t.Errorf("OverlapLen() = %d, want %d", got, tt.want)
			}
			// symmetric
			if got := OverlapLen(tt.b, tt.a); got != tt.want {
				t.Errorf("OverlapLen() reversed = %d, want %d", got, tt.want)
			}
		})
	}
}

func Test_IntervalLen(t *testing.T) {
	if got := NewInterval(11, 31, Plus).Len(); got != 21 {
		t.Errorf("Len() = %d, want 21", got)
	}
	if got := NewInterval(31, 11, Minus).Len(); got != 21 {
		t.Errorf("minus Len() = %d, want 21", got)
	}
}

func Test_ColumnRoundTrip(t *testing.T) {
	// model-space interval -> column space -> back
	iv := NewInterval(11, 31, Plus)
	back := NewInterval(FromColumn(ToColumn(iv.Start)), FromColumn(ToColumn(iv.End)), iv.Strand)
	if back != iv {
		t.Errorf("round trip = %v, want %v", back, iv)
	}
}

func Test_ParseSegments(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"single plus", "11..31:+", "11..31:+", false},
		{"spliced", "11..31:+,35..40:+", "11..31:+,35..40:+", false},
		{"minus", "31..11:-", "31..11:-", false},
		{"blank", "-", "-", false},
		{"missing strand", "11..31", "", true},
		{"mixed strands", "11..31:+,40..35:-", "", true},
		{"bad number", "a..31:+", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := ParseSegments(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSegments(%q) error = %v, wantErr = %t", tt.in, err, tt.wantErr)
			}
			if err == nil && segs.String() != tt.want {
				t.Errorf("ParseSegments(%q) = %q, want %q", tt.in, segs.String(), tt.want)
			}
		})
	}
}

func Test_SegmentsContainsAll(t *testing.T) {
	cds, _ := ParseSegments("11..31:+")
	pep1, _ := ParseSegments("11..22:+")
	pep2, _ := ParseSegments("23..28:+")
	outside, _ := ParseSegments("23..35:+")

	if !cds.ContainsAll(pep1) || !cds.ContainsAll(pep2) {
		t.Error("expected peptides to be contained in parent CDS")
	}
	if cds.ContainsAll(outside) {
		t.Error("expected 23..35 to fall outside 11..31")
	}
}

func Test_SegmentsLen(t *testing.T) {
	segs, _ := ParseSegments("11..31:+,35..40:+")
	if got := segs.Len(); got != 27 {
		t.Errorf("Len() = %d, want 27", got)
	}
	var blank Segments
	if blank.Len() != 0 || blank.String() != "-" {
		t.Error("blank segments should be zero-length and render as -")
	}
}
