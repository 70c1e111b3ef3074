package darn

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// MergeOptions picks the donor sequence for each region of an
// alignment-driven merge. Every region defaults to the target; flipping a
// flag takes that region from the (orientation-normalized) query instead.
// Overhangs have no choice: only one side has bases there.
type MergeOptions struct {
	// LeftFromQuery takes the shared left region from the query
	LeftFromQuery bool

	// OverlapFromQuery takes the aligned overlap from the query
	OverlapFromQuery bool

	// RightFromQuery takes the shared right region from the query
	RightFromQuery bool

	// Name overrides the default "target+query" record name
	Name string
}

// MergeRegion describes one slice of the merged sequence.
type MergeRegion struct {
	// Label is left, left_overhang, overlap, right, or right_overhang
	Label string

	// Source is "t" or "q"; empty when the region has no bases
	Source string

	// Length of the region in bases
	Length int
}

// MergeReport summarizes an alignment-driven merge for audit logs.
type MergeReport struct {
	// Name of the merged record
	Name string

	// Record is the alignment the merge followed
	Record *Record

	// Identity of the alignment
	Identity float64

	// Length of the merged sequence
	Length int

	// Regions in merged order
	Regions []MergeRegion
}

// MergeAlignment joins a target and query sequence across one alignment.
// Both sequences are split at the alignment ends into a shared left
// region, the aligned overlap, and a shared right region; regions present
// on only one side become overhangs and are always kept. A '-' strand
// alignment first reverse-complements the query and mirrors its span, so
// all arithmetic runs on target orientation.
func MergeAlignment(rec *Record, tSeq, qSeq string, opts MergeOptions) (string, *MergeReport, error) {
	if len(tSeq) != rec.TLen {
		return "", nil, fmt.Errorf("%w: target %s is %d bases but the alignment says %d",
			ErrBadInterval, rec.TName, len(tSeq), rec.TLen)
	}
	if len(qSeq) != rec.QLen {
		return "", nil, fmt.Errorf("%w: query %s is %d bases but the alignment says %d",
			ErrBadInterval, rec.QName, len(qSeq), rec.QLen)
	}

	query := qSeq
	qStart, qEnd := rec.QStart, rec.QEnd
	if rec.Strand == '-' {
		query = RevComp(qSeq)
		qStart = rec.QLen - rec.QEnd
		qEnd = rec.QLen - rec.QStart
	}

	leftCommon := rec.TStart
	if qStart < leftCommon {
		leftCommon = qStart
	}
	rightCommon := len(tSeq) - rec.TEnd
	if tail := len(query) - qEnd; tail < rightCommon {
		rightCommon = tail
	}
	overlapLen := rec.Overlap()

	pick := func(fromQuery bool, t, q string) (string, string) {
		if fromQuery {
			return q, "q"
		}
		return t, "t"
	}
	left, leftSrc := pick(opts.LeftFromQuery, tSeq[:leftCommon], query[:leftCommon])
	overlap, overlapSrc := pick(opts.OverlapFromQuery,
		tSeq[rec.TStart:rec.TStart+overlapLen], query[qStart:qStart+overlapLen])
	right, rightSrc := pick(opts.RightFromQuery,
		tSeq[rec.TEnd:rec.TEnd+rightCommon], query[qEnd:qEnd+rightCommon])

	var leftOver, leftOverSrc string
	if rec.TStart > qStart {
		leftOver, leftOverSrc = tSeq[leftCommon:rec.TStart], "t"
	} else if qStart > rec.TStart {
		leftOver, leftOverSrc = query[leftCommon:qStart], "q"
	}

	var rightOver, rightOverSrc string
	if len(tSeq)-rec.TEnd > len(query)-qEnd {
		rightOver, rightOverSrc = tSeq[rec.TEnd+rightCommon:], "t"
	} else if len(query)-qEnd > len(tSeq)-rec.TEnd {
		rightOver, rightOverSrc = query[qEnd+rightCommon:], "q"
	}

	merged := left + leftOver + overlap + right + rightOver

	name := opts.Name
	if name == "" {
		name = rec.TName + "+" + rec.QName
	}

	report := &MergeReport{
		Name:     name,
		Record:   rec,
		Identity: rec.Identity(),
		Length:   len(merged),
		Regions: []MergeRegion{
			{Label: "left", Source: leftSrc, Length: len(left)},
			{Label: "left_overhang", Source: leftOverSrc, Length: len(leftOver)},
			{Label: "overlap", Source: overlapSrc, Length: len(overlap)},
			{Label: "right", Source: rightSrc, Length: len(right)},
			{Label: "right_overhang", Source: rightOverSrc, Length: len(rightOver)},
		},
	}

	return merged, report, nil
}

// donorFlag turns a t/q flag value into the from-query bool.
func donorFlag(cmd *cobra.Command, flag string) bool {
	v, _ := cmd.Flags().GetString(flag)
	switch v {
	case "", "t":
		return false
	case "q":
		return true
	}
	cmd.Help()
	stderr.Fatalf("\nbad --%s value %q, want t or q.", flag, v)
	return false
}

// MergeCmd aligns a query against a target and merges the two across the
// best alignment, writing the merged FASTA and its audit logs.
func MergeCmd(cmd *cobra.Command, args []string) {
	req, conf := parseAlignFlags(cmd)

	opts := MergeOptions{
		LeftFromQuery:    donorFlag(cmd, "left"),
		OverlapFromQuery: donorFlag(cmd, "overlap"),
		RightFromQuery:   donorFlag(cmd, "right"),
	}
	opts.Name, _ = cmd.Flags().GetString("name")
	out, _ := cmd.Flags().GetString("out")

	m := &Minimap2{Path: conf.Align.Minimap2, Dir: conf.Align.Dir}
	pafPath, err := m.Align(req)
	if err != nil {
		stderr.Fatalln(err)
	}
	tName, qName := req.OrientedNames()
	rec, err := BestCandidate(pafPath, tName, qName)
	if err != nil {
		stderr.Fatalln(err)
	}

	// the merged bases must match what minimap2 saw, orientation included
	tSeq, err := ReadSequence(req.TargetPath, req.Target)
	if err != nil {
		stderr.Fatalln(err)
	}
	qSeq, err := ReadSequence(req.QueryPath, req.Query)
	if err != nil {
		stderr.Fatalln(err)
	}
	if req.ReverseTarget {
		tSeq = RevComp(tSeq)
	}
	if req.ReverseQuery {
		qSeq = RevComp(qSeq)
	}

	if conf.Verbose {
		tc := conf.Telomere
		lt, rt := TelomereFlags(tSeq, tc.Motif, tc.Window, tc.MinRepeats)
		lq, rq := TelomereFlags(qSeq, tc.Motif, tc.Window, tc.MinRepeats)
		fmt.Printf("telomeres: target %v/%v, query %v/%v\n", lt, rt, lq, rq)
	}

	merged, report, err := MergeAlignment(rec, tSeq, qSeq, opts)
	if err != nil {
		stderr.Fatalln(err)
	}

	if out == "" {
		out = safePart(report.Name) + ".fa"
	}
	if err := WriteFasta(out, []FastaRecord{{Name: report.Name, Seq: merged}}, conf.Output.LineWidth); err != nil {
		stderr.Fatalln(err)
	}
	logPath, jsonPath, err := WriteMergeAudit(out, SequenceDigest(merged), report)
	if err != nil {
		stderr.Fatalln(err)
	}

	fmt.Printf("merged %s and %s into %s (%s, %d bp)\n",
		rec.TName, rec.QName, out, report.Name, report.Length)
	if conf.Verbose {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 3, ' ', 0)
		fmt.Fprintf(tw, "region\tsource\tlength\t\n")
		for _, r := range report.Regions {
			if r.Length == 0 {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t\n", r.Label, r.Source, r.Length)
		}
		tw.Flush()
	}
	fmt.Printf("audit: %s, %s\n", logPath, jsonPath)
}
