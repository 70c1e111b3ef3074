package darn

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func Test_headerName(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{">chr1\n", "chr1"},
		{">chr1 unplaced scaffold\n", "chr1"},
		{">\ttig1\n", "tig1"},
		{">\n", ""},
	}
	for _, tt := range tests {
		if got := headerName(tt.line); got != tt.want {
			t.Errorf("headerName(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func Test_ReadSequences(t *testing.T) {
	dir := t.TempDir()
	content := "; junk before the first header\n" +
		">chr1 primary assembly\n" +
		"acgt\n" +
		"ACGT\r\n" +
		">chr2\n" +
		"nnNN\n" +
		">empty\n"
	path := writeFile(t, dir, "genome.fa", content)

	got, err := ReadSequences(path)
	if err != nil {
		t.Fatalf("ReadSequences() err = %v", err)
	}
	want := []FastaRecord{
		{Name: "chr1", Seq: "ACGTACGT"},
		{Name: "chr2", Seq: "NNNN"},
		{Name: "empty", Seq: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadSequences() = %v, want %v", got, want)
	}
}

func Test_ReadSequences_gzip(t *testing.T) {
	dir := t.TempDir()
	content := ">a\nACGTACGT\n>b\nTTTT\n"

	// no .gz suffix, so only the magic bytes give it away
	path := writeGzip(t, dir, "genome.fa", content)

	got, err := ReadSequences(path)
	if err != nil {
		t.Fatalf("ReadSequences() err = %v", err)
	}
	want := []FastaRecord{
		{Name: "a", Seq: "ACGTACGT"},
		{Name: "b", Seq: "TTTT"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadSequences() = %v, want %v", got, want)
	}
}

func Test_ReadSequence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "genome.fa", ">a\nACGT\n>b\nTTTT\n")

	got, err := ReadSequence(path, "b")
	if err != nil || got != "TTTT" {
		t.Errorf("ReadSequence() = %s, %v, want TTTT", got, err)
	}

	if _, err := ReadSequence(path, "zz"); !errors.Is(err, ErrSeqNotFound) {
		t.Errorf("ReadSequence() err = %v, want ErrSeqNotFound", err)
	}
}

func Test_WriteFasta(t *testing.T) {
	tests := []struct {
		name    string
		records []FastaRecord
		width   int
		want    string
	}{
		{
			"wraps at width",
			[]FastaRecord{{Name: "a", Seq: strings.Repeat("ACGTT", 5)}},
			10,
			">a\nACGTTACGTT\nACGTTACGTT\nACGTT\n",
		},
		{
			"default width",
			[]FastaRecord{{Name: "a", Seq: strings.Repeat("A", 85)}},
			0,
			">a\n" + strings.Repeat("A", 80) + "\n" + strings.Repeat("A", 5) + "\n",
		},
		{
			"several records",
			[]FastaRecord{{Name: "a", Seq: "ACGT"}, {Name: "b", Seq: "TT"}},
			80,
			">a\nACGT\n>b\nTT\n",
		},
		{
			"empty sequence keeps its header",
			[]FastaRecord{{Name: "a", Seq: ""}},
			80,
			">a\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.fa")
			if err := WriteFasta(path, tt.records, tt.width); err != nil {
				t.Fatalf("WriteFasta() err = %v", err)
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() err = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("WriteFasta() wrote %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_WriteFasta_roundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.fa")
	records := []FastaRecord{
		{Name: "chr1", Seq: strings.Repeat("ACGTN", 33)},
		{Name: "chr2", Seq: "GATTACA"},
	}

	if err := WriteFasta(path, records, 60); err != nil {
		t.Fatalf("WriteFasta() err = %v", err)
	}
	got, err := ReadSequences(path)
	if err != nil {
		t.Fatalf("ReadSequences() err = %v", err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Errorf("round trip = %v, want %v", got, records)
	}
}

func Test_isGzip(t *testing.T) {
	dir := t.TempDir()

	plain := writeFile(t, dir, "plain.fa", ">a\nACGT\n")
	zipped := writeGzip(t, dir, "zipped.fa", ">a\nACGT\n")
	empty := writeFile(t, dir, "named.fa.gz", "")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"plain", plain, false},
		{"magic bytes", zipped, true},
		{"suffix wins even when empty", empty, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := isGzip(tt.path)
			if err != nil {
				t.Fatalf("isGzip() err = %v", err)
			}
			if got != tt.want {
				t.Errorf("isGzip() = %v, want %v", got, tt.want)
			}
		})
	}
}
