package darn

import "testing"

func Test_RevComp(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"empty", "", ""},
		{"palindrome", "ACGT", "ACGT"},
		{"with N", "ACGTN", "NACGT"},
		{"case preserved", "acgtACGT", "ACGTacgt"},
		{"unknown byte becomes N", "AXG", "CNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RevComp(tt.seq); got != tt.want {
				t.Errorf("RevComp(%q) = %q, want %q", tt.seq, got, tt.want)
			}
		})
	}
}

func Test_RevComp_involution(t *testing.T) {
	for _, seq := range []string{"", "A", "ACGTACGT", "aaccggttNN"} {
		if got := RevComp(RevComp(seq)); got != seq {
			t.Errorf("RevComp(RevComp(%q)) = %q, want the input back", seq, got)
		}
	}
}
