package darn

import (
	"reflect"
	"testing"
)

// cigarRecord builds a minimal alignment for projection tests.
func cigarRecord(cigar string, strand byte, qLen, qStart, qEnd, tStart, tEnd int) *Record {
	rec := &Record{
		QName:   "q",
		QLen:    qLen,
		QStart:  qStart,
		QEnd:    qEnd,
		Strand:  strand,
		TName:   "t",
		TLen:    1000,
		TStart:  tStart,
		TEnd:    tEnd,
		Matches: qEnd - qStart,
		AlnLen:  qEnd - qStart,
		MapQ:    60,
	}
	if cigar != "" {
		rec.Tags.Set(TagCigar, Tag{Type: 'Z', Value: cigar})
	}
	return rec
}

func Test_lexCigar(t *testing.T) {
	tests := []struct {
		name  string
		cigar string
		want  []cigarOp
	}{
		{"single op", "10M", []cigarOp{{10, 'M'}}},
		{"mixed ops", "5M3I2D", []cigarOp{{5, 'M'}, {3, 'I'}, {2, 'D'}}},
		{"letters without counts dropped", "abc", nil},
		{"count carries past garbage letter", "12Q3M", []cigarOp{{12, 'Q'}, {3, 'M'}}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lexCigar(tt.cigar); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lexCigar(%q) = %v, want %v", tt.cigar, got, tt.want)
			}
		})
	}
}

func Test_Project(t *testing.T) {
	type args struct {
		cigar          string
		strand         byte
		qLen           int
		qStart, qEnd   int
		tStart, tEnd   int
		qPos           int
	}

	tests := []struct {
		name       string
		args       args
		wantReason string
		wantTPos   int
		wantOp     byte
	}{
		{
			"match lands",
			args{"10M", '+', 100, 0, 10, 100, 110, 5},
			ReasonOK,
			105,
			'M',
		},
		{
			"end of span is out of range",
			args{"10M", '+', 100, 0, 10, 100, 110, 10},
			ReasonOutOfRange,
			-1,
			0,
		},
		{
			"before span is out of range",
			args{"10M", '+', 100, 5, 15, 100, 110, 2},
			ReasonOutOfRange,
			-1,
			0,
		},
		{
			"insertion has no target position",
			args{"5M3I5M", '+', 100, 0, 13, 100, 110, 6},
			ReasonInsertion,
			-1,
			'I',
		},
		{
			"landing at insertion start",
			args{"5M3I5M", '+', 100, 0, 13, 100, 110, 5},
			ReasonInsertion,
			-1,
			'I',
		},
		{
			"match after insertion skips no target",
			args{"5M3I5M", '+', 100, 0, 13, 100, 110, 9},
			ReasonOK,
			106,
			'M',
		},
		{
			"deletion advances the target",
			args{"5M2D5M", '+', 100, 0, 10, 100, 112, 7},
			ReasonOK,
			109,
			'M',
		},
		{
			"minus strand walks in alignment orientation",
			args{"10M", '-', 20, 2, 12, 100, 110, 5},
			ReasonOK,
			106,
			'M',
		},
		{
			"hard clip consumes query",
			args{"2H8M", '+', 100, 0, 10, 100, 108, 3},
			ReasonOK,
			101,
			'M',
		},
		{
			"unknown op stops the walk",
			args{"5M3Q2M", '+', 100, 0, 10, 100, 110, 7},
			ReasonBadCigar,
			-1,
			'Q',
		},
		{
			"letters without counts leave no mapping",
			args{"abc", '+', 100, 0, 10, 100, 110, 5},
			ReasonNoMapping,
			-1,
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := cigarRecord(tt.args.cigar, tt.args.strand,
				tt.args.qLen, tt.args.qStart, tt.args.qEnd, tt.args.tStart, tt.args.tEnd)
			p := Project(rec, tt.args.qPos)
			if p.Reason != tt.wantReason {
				t.Errorf("Project() reason = %s, want %s", p.Reason, tt.wantReason)
			}
			if p.TPos != tt.wantTPos {
				t.Errorf("Project() tPos = %d, want %d", p.TPos, tt.wantTPos)
			}
			if p.Op != tt.wantOp {
				t.Errorf("Project() op = %c, want %c", p.Op, tt.wantOp)
			}
		})
	}
}

func Test_Project_missingCigar(t *testing.T) {
	rec := cigarRecord("", '+', 100, 0, 10, 100, 110)
	p := Project(rec, 5)
	if p.Reason != ReasonNoCigar || p.TPos != -1 {
		t.Errorf("Project() = %s/%d, want %s/-1", p.Reason, p.TPos, ReasonNoCigar)
	}
}

func Test_Project_tallies(t *testing.T) {
	rec := cigarRecord("5M3I2D5M", '+', 100, 0, 13, 100, 112)

	// a landing early in the walk still tallies the whole cigar
	p := Project(rec, 2)
	if p.CountsTotal['M'] != 10 || p.CountsTotal['I'] != 3 || p.CountsTotal['D'] != 2 {
		t.Errorf("Project() totals = M%d I%d D%d, want M10 I3 D2",
			p.CountsTotal['M'], p.CountsTotal['I'], p.CountsTotal['D'])
	}
	if p.CountsBefore['M'] != 0 || p.QConsumed != 0 {
		t.Errorf("Project() before-tallies = M%d consumed %d, want zero", p.CountsBefore['M'], p.QConsumed)
	}

	// a landing after the indels has them all on the books
	p = Project(rec, 9)
	if p.CountsBefore['M'] != 5 || p.CountsBefore['I'] != 3 || p.CountsBefore['D'] != 2 {
		t.Errorf("Project() before-tallies = M%d I%d D%d, want M5 I3 D2",
			p.CountsBefore['M'], p.CountsBefore['I'], p.CountsBefore['D'])
	}
	if p.QConsumed != 8 || p.TConsumed != 7 {
		t.Errorf("Project() consumed = q%d t%d, want q8 t7", p.QConsumed, p.TConsumed)
	}
	if p.TPos != 108 {
		t.Errorf("Project() tPos = %d, want 108", p.TPos)
	}
}

func Test_Project_monotonic(t *testing.T) {
	rec := cigarRecord("10M", '+', 100, 0, 10, 100, 110)

	prev := -1
	for qPos := 0; qPos < 10; qPos++ {
		p := Project(rec, qPos)
		if p.Reason != ReasonOK {
			t.Fatalf("Project(%d) reason = %s, want %s", qPos, p.Reason, ReasonOK)
		}
		if p.TPos <= prev {
			t.Fatalf("Project(%d) tPos = %d, want > %d", qPos, p.TPos, prev)
		}
		prev = p.TPos

		again := Project(rec, qPos)
		if !reflect.DeepEqual(p, again) {
			t.Fatalf("Project(%d) differs between calls", qPos)
		}
	}
}
