package darn

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/darn-seq/darn/config"
	"github.com/spf13/cobra"
)

// Gap is one run of ambiguous bases.
type Gap struct {
	// Start of the run, 0-based inclusive
	Start int

	// End of the run, exclusive
	End int
}

// Length of the run.
func (g Gap) Length() int {
	return g.End - g.Start
}

// ScanGaps finds every run of at least minGap consecutive N bases,
// either case. minGap <= 0 falls back to 10.
func ScanGaps(seq string, minGap int) []Gap {
	if minGap <= 0 {
		minGap = 10
	}

	var gaps []Gap
	start := -1
	for i := 0; i < len(seq); i++ {
		if seq[i] == 'N' || seq[i] == 'n' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minGap {
			gaps = append(gaps, Gap{Start: start, End: i})
		}
		start = -1
	}
	if start >= 0 && len(seq)-start >= minGap {
		gaps = append(gaps, Gap{Start: start, End: len(seq)})
	}

	return gaps
}

// SequenceGaps pairs a sequence name with its gap scan.
type SequenceGaps struct {
	Name string
	Gaps []Gap
}

// WriteGapTable renders gap scans as one aligned table.
func WriteGapTable(w io.Writer, scans []SequenceGaps) {
	tw := tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "sequence\tn\tstart\tend\tlength\t\n")
	for _, s := range scans {
		for i, g := range s.Gaps {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", s.Name, i, g.Start, g.End, g.Length())
		}
	}
	tw.Flush()
}

// GapsCmd scans an assembly for unresolved gaps and lists them.
func GapsCmd(cmd *cobra.Command, args []string) {
	c := config.New()

	in, _ := cmd.Flags().GetString("in")
	if in == "" {
		cmd.Help()
		stderr.Fatalln("\nno input FASTA passed.")
	}
	name, _ := cmd.Flags().GetString("name")
	minGap, _ := cmd.Flags().GetInt("min-gap")
	if minGap <= 0 {
		minGap = c.Gaps.MinGap
	}

	idx, err := LoadIndex(in)
	if err != nil {
		stderr.Fatalln(err)
	}
	names := idx.Names
	if name != "" {
		names = []string{name}
	}

	var scans []SequenceGaps
	total := 0
	for _, n := range names {
		seq, err := idx.Sequence(n)
		if err != nil {
			stderr.Fatalln(err)
		}
		gaps := ScanGaps(seq, minGap)
		total += len(gaps)
		scans = append(scans, SequenceGaps{Name: n, Gaps: gaps})
	}
	if total == 0 {
		fmt.Printf("no gaps of %d+ bases\n", minGap)
		return
	}
	WriteGapTable(os.Stdout, scans)
}
