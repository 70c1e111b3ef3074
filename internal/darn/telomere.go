package darn

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/darn-seq/darn/config"
	"github.com/spf13/cobra"
)

// motifRun is one stretch of back-to-back motif copies.
type motifRun struct {
	start, end, count int
}

// findRuns locates every maximal run of back-to-back motif copies.
func findRuns(region, motif string) []motifRun {
	if motif == "" {
		return nil
	}

	var runs []motifRun
	i := 0
	for {
		pos := strings.Index(region[i:], motif)
		if pos < 0 {
			break
		}
		pos += i
		end := pos
		count := 0
		for strings.HasPrefix(region[end:], motif) {
			count++
			end += len(motif)
		}
		runs = append(runs, motifRun{start: pos, end: end, count: count})
		i = end
	}

	return runs
}

// TelomereReport describes the telomeric signal at one end of a sequence.
type TelomereReport struct {
	// Present is true when a run of at least the required repeats exists
	Present bool

	// Motif variant with the strongest signal, the probe or its reverse
	// complement
	Motif string

	// Copies counts motif occurrences inside runs of the winning variant
	Copies int

	// Span covers first to last copy of the winning variant
	Span int

	// Mutated estimates non-motif bases inside the span
	Mutated int

	// LongestRun is the best back-to-back copy count
	LongestRun int
}

// scanEnd evaluates one window for a motif and its reverse complement.
func scanEnd(region, motif string, minRepeats int) TelomereReport {
	best := TelomereReport{Motif: motif}
	for _, m := range []string{motif, RevComp(motif)} {
		runs := findRuns(region, m)
		if len(runs) == 0 {
			continue
		}
		copies, longest := 0, 0
		for _, r := range runs {
			copies += r.count
			if r.count > longest {
				longest = r.count
			}
		}
		if copies <= best.Copies {
			continue
		}
		span := runs[len(runs)-1].end - runs[0].start
		mutated := span - copies*len(m)
		if mutated < 0 {
			mutated = 0
		}
		best = TelomereReport{
			Motif:      m,
			Copies:     copies,
			Span:       span,
			Mutated:    mutated,
			LongestRun: longest,
		}
	}
	best.Present = best.LongestRun >= minRepeats

	return best
}

// TelomereDetails reports the telomeric signal within a window at both
// ends of seq. The motif defaults to CCCTAA, the window to 1000 bases per
// end, minRepeats to 15 back-to-back copies.
func TelomereDetails(seq, motif string, window, minRepeats int) (left, right TelomereReport) {
	if motif == "" {
		motif = "CCCTAA"
	}
	motif = strings.ToUpper(motif)
	if window <= 0 {
		window = 1000
	}
	if minRepeats <= 0 {
		minRepeats = 15
	}
	w := window
	if w > len(seq) {
		w = len(seq)
	}

	left = scanEnd(seq[:w], motif, minRepeats)
	right = scanEnd(seq[len(seq)-w:], motif, minRepeats)

	return left, right
}

// TelomereFlags reports just the presence verdict for each end.
func TelomereFlags(seq, motif string, window, minRepeats int) (left, right bool) {
	l, r := TelomereDetails(seq, motif, window, minRepeats)

	return l.Present, r.Present
}

// TelomereCmd reports the telomeric signal at both ends of each sequence.
func TelomereCmd(cmd *cobra.Command, args []string) {
	c := config.New()

	in, _ := cmd.Flags().GetString("in")
	if in == "" {
		cmd.Help()
		stderr.Fatalln("\nno input FASTA passed.")
	}
	name, _ := cmd.Flags().GetString("name")
	motif, _ := cmd.Flags().GetString("motif")
	if motif == "" {
		motif = c.Telomere.Motif
	}
	minRepeats, _ := cmd.Flags().GetInt("min-repeats")
	if minRepeats <= 0 {
		minRepeats = c.Telomere.MinRepeats
	}
	window, _ := cmd.Flags().GetInt("window")
	if window <= 0 {
		window = 10000000 // deep scan, effectively the whole arm
	}

	idx, err := LoadIndex(in)
	if err != nil {
		stderr.Fatalln(err)
	}
	names := idx.Names
	if name != "" {
		names = []string{name}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "sequence\tend\tpresent\tmotif\tcopies\tspan\tmutated\tbest run\t\n")
	for _, n := range names {
		seq, err := idx.Sequence(n)
		if err != nil {
			stderr.Fatalln(err)
		}
		left, right := TelomereDetails(seq, motif, window, minRepeats)
		ends := []struct {
			end string
			r   TelomereReport
		}{{"left", left}, {"right", right}}
		for _, e := range ends {
			fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%d\t%d\t%d\t%d\t\n",
				n, e.end, e.r.Present, e.r.Motif, e.r.Copies, e.r.Span, e.r.Mutated, e.r.LongestRun)
		}
	}
	tw.Flush()
}
