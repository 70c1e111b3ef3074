package darn

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Projection outcomes.
const (
	ReasonOK         = "ok"
	ReasonNoCigar    = "missing_cigar"
	ReasonOutOfRange = "out_of_range"
	ReasonInsertion  = "insertion"
	ReasonBadCigar   = "bad_cigar"
	ReasonNoMapping  = "no_mapping"
)

// cigarOps in consumption-class order: M, = and X advance both sequences;
// I, S and H advance the query; D and N advance the target; P advances
// neither.
const cigarOps = "M=XIDNSHP"

// cigarOp is one run-length operation lexed from a cigar string.
type cigarOp struct {
	// n is the operation's run length
	n int

	// op is the operation letter
	op byte
}

// lexCigar splits a cigar string into run-length operations. Letters
// without a preceding count are dropped; whether a letter is a valid
// operation is judged during the walk.
func lexCigar(cigar string) []cigarOp {
	var ops []cigarOp
	n := 0
	hasNum := false
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			hasNum = true
			continue
		}
		if hasNum {
			ops = append(ops, cigarOp{n: n, op: c})
			n = 0
			hasNum = false
		}
	}

	return ops
}

// Projection locates one query position on the target after walking an
// alignment's cigar. TPos is -1 unless Reason is ReasonOK. The tallies and
// consumed counters are diagnostics for audit display; they never affect
// the mapping decision.
type Projection struct {
	// QPos is the query position as requested, on the query's forward strand
	QPos int

	// QPosOriented is the position in alignment orientation; '-' strand
	// records flip it to qLen-1-QPos
	QPosOriented int

	// TPos is the projected target position
	TPos int

	// Reason is the walk outcome
	Reason string

	// Op is the operation the position landed in (0 when the walk never landed)
	Op byte

	// OpLen is the landing operation's run length
	OpLen int

	// OpOffset is the position's offset into the landing operation
	OpOffset int

	// QConsumed counts query bases consumed by operations before the landing one
	QConsumed int

	// TConsumed counts target bases consumed by operations before the landing one
	TConsumed int

	// CountsBefore tallies bases per operation letter before the landing point
	CountsBefore map[byte]int

	// CountsTotal tallies bases per operation letter across the whole cigar
	CountsTotal map[byte]int
}

func newTally() map[byte]int {
	m := make(map[byte]int, len(cigarOps))
	for i := 0; i < len(cigarOps); i++ {
		m[cigarOps[i]] = 0
	}

	return m
}

// Project maps a query position onto the target through the record's cigar.
// The position is given on the query's forward strand, as PAF spans are;
// '-' strand records are walked in alignment orientation. Identical inputs
// always produce identical output, and inside one match operation the
// target position is strictly monotonic in the query position.
func Project(r *Record, qPos int) Projection {
	p := Projection{
		QPos:         qPos,
		QPosOriented: qPos,
		TPos:         -1,
		Reason:       ReasonNoMapping,
		CountsBefore: newTally(),
		CountsTotal:  newTally(),
	}

	cigar, err := r.Cigar()
	if err != nil {
		p.Reason = ReasonNoCigar
		return p
	}
	if qPos < r.QStart || qPos >= r.QEnd {
		p.Reason = ReasonOutOfRange
		return p
	}

	qCursor := r.QStart
	if r.Strand == '-' {
		p.QPosOriented = r.QLen - 1 - qPos
		qCursor = r.QLen - r.QEnd
	}
	tCursor := r.TStart

	ops := lexCigar(cigar)
	for _, o := range ops {
		if _, known := p.CountsTotal[o.op]; known {
			p.CountsTotal[o.op] += o.n
		}
	}

	for _, o := range ops {
		switch o.op {
		case 'M', '=', 'X':
			if p.QPosOriented < qCursor+o.n {
				p.TPos = tCursor + (p.QPosOriented - qCursor)
				p.Reason = ReasonOK
				p.Op = o.op
				p.OpLen = o.n
				p.OpOffset = p.QPosOriented - qCursor
				return p
			}
			qCursor += o.n
			tCursor += o.n
			p.CountsBefore[o.op] += o.n
			p.QConsumed += o.n
			p.TConsumed += o.n
		case 'I', 'S', 'H':
			if p.QPosOriented < qCursor+o.n {
				p.Reason = ReasonInsertion
				p.Op = o.op
				p.OpLen = o.n
				p.OpOffset = p.QPosOriented - qCursor
				return p
			}
			qCursor += o.n
			p.CountsBefore[o.op] += o.n
			p.QConsumed += o.n
		case 'D', 'N':
			tCursor += o.n
			p.CountsBefore[o.op] += o.n
			p.TConsumed += o.n
		case 'P':
			continue
		default:
			p.Reason = ReasonBadCigar
			p.Op = o.op
			p.OpLen = o.n
			return p
		}
	}

	return p
}

// MapCmd projects query positions onto the target through the best
// alignment in a PAF file. Positions are passed as arguments.
func MapCmd(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		cmd.Help()
		stderr.Fatalln("\nno positions passed.")
	}
	in, _ := cmd.Flags().GetString("in")
	if in == "" {
		cmd.Help()
		stderr.Fatalln("\nno PAF passed.")
	}
	target, _ := cmd.Flags().GetString("target")
	query, _ := cmd.Flags().GetString("query")

	records, err := ParsePAF(in, target, query)
	if err != nil {
		stderr.Fatalln(err)
	}
	ranked := Rank(records, 1)
	if len(ranked) == 0 {
		stderr.Fatalln("no alignments matched")
	}
	rec := ranked[0]

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "query pos\ttarget pos\treason\top\tM before\tI before\tD before\t\n")
	for _, arg := range args {
		pos, err := strconv.Atoi(arg)
		if err != nil {
			stderr.Fatalf("bad position %q: %v", arg, err)
		}
		p := Project(rec, pos)
		tPos := "-"
		if p.TPos >= 0 {
			tPos = strconv.Itoa(p.TPos)
		}
		op := "-"
		if p.Op != 0 {
			op = string(p.Op)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t\n",
			pos, tPos, p.Reason, op,
			p.CountsBefore['M'], p.CountsBefore['I'], p.CountsBefore['D'])
	}
	tw.Flush()
}
