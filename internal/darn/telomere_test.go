package darn

import (
	"reflect"
	"strings"
	"testing"
)

func Test_findRuns(t *testing.T) {
	tests := []struct {
		name   string
		region string
		motif  string
		want   []motifRun
	}{
		{
			"no occurrence",
			"ACGTACGT",
			"CCCTAA",
			nil,
		},
		{
			"one run of two",
			"AACCCTAACCCTAAGG",
			"CCCTAA",
			[]motifRun{{2, 14, 2}},
		},
		{
			"two runs",
			"CCCTAAGGCCCTAACCCTAA",
			"CCCTAA",
			[]motifRun{{0, 6, 1}, {8, 20, 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findRuns(tt.region, tt.motif); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("findRuns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_TelomereFlags(t *testing.T) {
	filler := strings.Repeat("ACGT", 500)

	tests := []struct {
		name      string
		seq       string
		wantLeft  bool
		wantRight bool
	}{
		{
			"left arm only",
			strings.Repeat("CCCTAA", 15) + filler,
			true,
			false,
		},
		{
			"right arm on the other strand",
			filler + strings.Repeat("TTAGGG", 20),
			false,
			true,
		},
		{
			"one copy short",
			strings.Repeat("CCCTAA", 14) + filler,
			false,
			false,
		},
		{
			"no signal",
			filler,
			false,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := TelomereFlags(tt.seq, "", 0, 0)
			if left != tt.wantLeft || right != tt.wantRight {
				t.Errorf("TelomereFlags() = %v/%v, want %v/%v", left, right, tt.wantLeft, tt.wantRight)
			}
		})
	}
}

func Test_TelomereDetails(t *testing.T) {
	// two copies, one mutated base, then three copies
	arm := strings.Repeat("CCCTAA", 2) + "G" + strings.Repeat("CCCTAA", 3)
	seq := arm + strings.Repeat("G", 200)

	left, right := TelomereDetails(seq, "CCCTAA", 100, 3)

	if !left.Present {
		t.Error("TelomereDetails() left.Present = false, want true")
	}
	if left.Motif != "CCCTAA" {
		t.Errorf("TelomereDetails() left.Motif = %q, want CCCTAA", left.Motif)
	}
	if left.Copies != 5 {
		t.Errorf("TelomereDetails() left.Copies = %d, want 5", left.Copies)
	}
	if left.Span != 31 {
		t.Errorf("TelomereDetails() left.Span = %d, want 31", left.Span)
	}
	if left.Mutated != 1 {
		t.Errorf("TelomereDetails() left.Mutated = %d, want 1", left.Mutated)
	}
	if left.LongestRun != 3 {
		t.Errorf("TelomereDetails() left.LongestRun = %d, want 3", left.LongestRun)
	}

	if right.Present || right.Copies != 0 {
		t.Errorf("TelomereDetails() right = %+v, want no signal", right)
	}
}
