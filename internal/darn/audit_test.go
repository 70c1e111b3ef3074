package darn

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func Test_SequenceDigest(t *testing.T) {
	a := SequenceDigest("ACGT")

	if len(a) != 32 {
		t.Fatalf("digest %q is %d chars, want 32", a, len(a))
	}
	if b := SequenceDigest("ACGT"); b != a {
		t.Errorf("digest not deterministic: %s vs %s", a, b)
	}
	if b := SequenceDigest("ACGA"); b == a {
		t.Errorf("digest %s unchanged after editing the sequence", a)
	}
	if b := SequenceDigest(""); len(b) != 32 {
		t.Errorf("empty-sequence digest %q is %d chars, want 32", b, len(b))
	}
}

func Test_replaceExt(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		want string
	}{
		{"out.fa", ".md", "out.md"},
		{filepath.Join("path", "to", "x.fasta"), ".md", filepath.Join("path", "to", "x.md")},
		{"out", ".md", "out.md"},
		{"a.b.c", ".md", "a.b.md"},
	}
	for _, tt := range tests {
		if got := replaceExt(tt.path, tt.ext); got != tt.want {
			t.Errorf("replaceExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func Test_markDiff(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		wantA string
		wantB string
	}{
		{"one diff", "ACGT", "AGGT", "A[C]GT", "A[G]GT"},
		{"equal", "ACGT", "ACGT", "ACGT", "ACGT"},
		{"all diff", "AA", "CC", "[A][A]", "[C][C]"},
		{"uneven lengths", "AC", "ACGT", "AC", "ACGT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma, mb := markDiff(tt.a, tt.b)
			if ma != tt.wantA || mb != tt.wantB {
				t.Errorf("markDiff() = %q, %q, want %q, %q", ma, mb, tt.wantA, tt.wantB)
			}
		})
	}
}

func Test_Export_sessionJSON(t *testing.T) {
	dir := t.TempDir()
	chr := strings.Repeat("A", 30) + strings.Repeat("C", 30) +
		strings.Repeat("G", 30) + strings.Repeat("T", 30)
	path := writeTestFasta(t, dir, "genome.fa", []FastaRecord{{Name: "chr1", Seq: chr}}, 10)

	s := NewSession(nil, 10)
	s.AddSource("t", path)
	for _, seg := range []Segment{
		{Source: "t", Name: "chr1", Start: 0, End: 60},
		{Source: "t", Name: "chr1", Start: 60, End: 120, Reverse: false},
	} {
		if err := s.AddSegment(seg); err != nil {
			t.Fatalf("AddSegment() err = %v", err)
		}
	}

	out := filepath.Join(dir, "merged.fa")
	res, err := s.Export(ExportRequest{Path: out, Name: "joined"})
	if err != nil {
		t.Fatalf("Export() err = %v", err)
	}

	data, err := os.ReadFile(res.SessionPath)
	if err != nil {
		t.Fatalf("ReadFile() err = %v", err)
	}
	var log sessionLog
	if err := json.Unmarshal(data, &log); err != nil {
		t.Fatalf("Unmarshal() err = %v", err)
	}

	if log.OutputFasta != out || log.OutputName != "joined" {
		t.Errorf("log output = %s/%s, want %s/joined", log.OutputFasta, log.OutputName, out)
	}
	if log.MergedLength != 120 || log.Digest != SequenceDigest(chr) {
		t.Errorf("log length/digest = %d/%s, want 120/%s", log.MergedLength, log.Digest, SequenceDigest(chr))
	}
	if log.ContextBp != 10 {
		t.Errorf("log context = %d, want 10", log.ContextBp)
	}
	if log.Sources["t"] != path {
		t.Errorf("log sources = %v, want t -> %s", log.Sources, path)
	}
	if len(log.Segments) != 2 || log.Segments[1].Start != 60 || log.Segments[1].Length != 60 {
		t.Errorf("log segments = %+v, want two of 60 bp", log.Segments)
	}
	if len(log.Breakpoints) != 1 {
		t.Fatalf("log breakpoints = %+v, want one", log.Breakpoints)
	}
	bp := log.Breakpoints[0]
	if bp.Offset != 60 || !bp.LeftFlankMatch || !bp.RightFlankMatch {
		t.Errorf("breakpoint = %+v, want a passing one at 60", bp)
	}

	md, err := os.ReadFile(res.LogPath)
	if err != nil {
		t.Fatalf("ReadFile() err = %v", err)
	}
	for _, want := range []string{
		"# Stitch audit",
		"- record: joined (120 bp)",
		"## Segments",
		"- [0] t:chr1 0-60 (60 bp)",
		"## Junctions",
		"at offset 60: pass",
		"- left flanks match over 10 bp",
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown audit missing %q", want)
		}
	}
}

func Test_Export_sessionLog_mismatch(t *testing.T) {
	dir := t.TempDir()
	chr := strings.Repeat("A", 30) + strings.Repeat("C", 30) +
		strings.Repeat("G", 30) + strings.Repeat("T", 30)
	path := writeTestFasta(t, dir, "genome.fa", []FastaRecord{{Name: "chr1", Seq: chr}}, 10)

	s := NewSession(nil, 10)
	s.AddSource("t", path)
	for _, seg := range []Segment{
		{Source: "t", Name: "chr1", Start: 0, End: 30},
		{Source: "t", Name: "chr1", Start: 90, End: 120},
	} {
		if err := s.AddSegment(seg); err != nil {
			t.Fatalf("AddSegment() err = %v", err)
		}
	}

	res, err := s.Export(ExportRequest{Path: filepath.Join(dir, "merged.fa")})
	if err != nil {
		t.Fatalf("Export() err = %v", err)
	}

	md, err := os.ReadFile(res.LogPath)
	if err != nil {
		t.Fatalf("ReadFile() err = %v", err)
	}
	for _, want := range []string{
		"at offset 30: CHECK",
		"- left flanks differ at 10 of 10 bp:",
		"    - prev: [A][A][A][A][A][A][A][A][A][A]",
		"    - next: [G][G][G][G][G][G][G][G][G][G]",
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown audit missing %q", want)
		}
	}
}

func Test_WriteMergeAudit(t *testing.T) {
	dir := t.TempDir()
	overlap := strings.Repeat("ACGT", 5)
	tSeq := strings.Repeat("A", 80) + overlap
	qSeq := overlap + strings.Repeat("G", 80)
	rec := &Record{
		QName: "q1", QLen: 100, QStart: 0, QEnd: 20,
		Strand: '+',
		TName:  "t1", TLen: 100, TStart: 80, TEnd: 100,
		Matches: 20, AlnLen: 20, MapQ: 60,
	}
	merged, report, err := MergeAlignment(rec, tSeq, qSeq, MergeOptions{})
	if err != nil {
		t.Fatalf("MergeAlignment() err = %v", err)
	}

	fastaPath := filepath.Join(dir, "merged.fa")
	logPath, jsonPath, err := WriteMergeAudit(fastaPath, SequenceDigest(merged), report)
	if err != nil {
		t.Fatalf("WriteMergeAudit() err = %v", err)
	}
	if want := filepath.Join(dir, "merged.md"); logPath != want {
		t.Errorf("logPath = %s, want %s", logPath, want)
	}
	if want := fastaPath + ".session.json"; jsonPath != want {
		t.Errorf("jsonPath = %s, want %s", jsonPath, want)
	}

	md, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() err = %v", err)
	}
	for _, want := range []string{
		"# Merge audit",
		"- record: t1+q1 (180 bp)",
		"- alignment: t1:80-100 + q1:0-20",
		"- identity: 1.000 over 20 bp",
		"- left_overhang: 80 bp from t",
		"- overlap: 20 bp from t",
		"- right_overhang: 80 bp from q",
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown audit missing %q", want)
		}
	}
	// zero-length regions stay out of the markdown
	if strings.Contains(string(md), "- left: ") {
		t.Error("markdown audit lists the empty left region")
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("ReadFile() err = %v", err)
	}
	var log mergeLog
	if err := json.Unmarshal(data, &log); err != nil {
		t.Fatalf("Unmarshal() err = %v", err)
	}
	if log.TargetSpan != [2]int{80, 100} || log.QuerySpan != [2]int{0, 20} {
		t.Errorf("log spans = %v/%v, want [80 100]/[0 20]", log.TargetSpan, log.QuerySpan)
	}
	if log.Strand != "+" || log.Identity != 1 {
		t.Errorf("log strand/identity = %s/%f, want +/1", log.Strand, log.Identity)
	}
	// the JSON keeps every region, empty ones included
	if len(log.Regions) != 5 {
		t.Errorf("log regions = %+v, want all 5", log.Regions)
	}
}
