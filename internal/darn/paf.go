package darn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Tag keys the projector and stitcher know about. Everything else is
// carried through opaquely for round trips.
const (
	// TagCigar is the alignment operation string
	TagCigar = "cg"

	// TagDiff is the difference string
	TagDiff = "cs"
)

// Tag is the typed part of one optional PAF column (tag:type:value).
type Tag struct {
	// Type is the single-letter PAF type code ('Z', 'i', 'f', ...).
	// A zero Type marks a column that did not parse as tag:type:value;
	// its key holds the raw column text.
	Type byte

	// Value is the column text after the second colon
	Value string
}

// Tags holds a record's optional PAF columns in file order.
type Tags struct {
	keys  []string
	byKey map[string]Tag
}

// Set stores a tag under key, keeping first-seen order.
func (t *Tags) Set(key string, tag Tag) {
	if t.byKey == nil {
		t.byKey = map[string]Tag{}
	}
	if _, seen := t.byKey[key]; !seen {
		t.keys = append(t.keys, key)
	}
	t.byKey[key] = tag
}

// Get returns the tag stored under key.
func (t *Tags) Get(key string) (Tag, bool) {
	tag, ok := t.byKey[key]
	return tag, ok
}

// Keys returns the tag keys in file order.
func (t *Tags) Keys() []string {
	return t.keys
}

// Len reports how many tags are stored.
func (t *Tags) Len() int {
	return len(t.keys)
}

// Record is one PAF alignment row: the 12 mandatory columns plus any
// optional tags. All coordinates are 0-based half-open on the forward
// strand of their sequence.
type Record struct {
	// QName is the query sequence name
	QName string

	// QLen is the query sequence length
	QLen int

	// QStart of the aligned query span
	QStart int

	// QEnd of the aligned query span
	QEnd int

	// Strand is '+' or '-'
	Strand byte

	// TName is the target sequence name
	TName string

	// TLen is the target sequence length
	TLen int

	// TStart of the aligned target span
	TStart int

	// TEnd of the aligned target span
	TEnd int

	// Matches is the number of matching bases (column 10)
	Matches int

	// AlnLen is the alignment block length (column 11)
	AlnLen int

	// MapQ is the mapping quality (column 12)
	MapQ int

	// Tags are the optional columns, preserved in file order
	Tags Tags
}

// Overlap is the shorter of the two aligned spans, the usable merge length.
func (r *Record) Overlap() int {
	t := r.TEnd - r.TStart
	q := r.QEnd - r.QStart
	if t < q {
		return t
	}

	return q
}

// Identity is the fraction of matching bases over the alignment block.
func (r *Record) Identity() float64 {
	if r.AlnLen == 0 {
		return 0
	}

	return float64(r.Matches) / float64(r.AlnLen)
}

// Cigar returns the record's alignment operation string.
func (r *Record) Cigar() (string, error) {
	if tag, ok := r.Tags.Get(TagCigar); ok && tag.Type != 0 {
		return tag.Value, nil
	}

	return "", fmt.Errorf("%w: %s vs %s", ErrNoCigar, r.TName, r.QName)
}

// parseTagField splits one optional PAF column. Columns that are not
// tag:type:value are kept whole under their raw text, so writing the
// record back reproduces the row byte for byte.
func parseTagField(field string) (key string, tag Tag) {
	parts := strings.SplitN(field, ":", 3)
	if len(parts) == 3 && parts[0] != "" && len(parts[1]) == 1 {
		return parts[0], Tag{Type: parts[1][0], Value: parts[2]}
	}

	return field, Tag{}
}

// parseRecord turns one PAF line into a Record. ok is false for rows that
// are malformed or that violate span bounds.
func parseRecord(line string) (rec *Record, ok bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 12 {
		return nil, false
	}
	if len(fields[4]) != 1 || (fields[4][0] != '+' && fields[4][0] != '-') {
		return nil, false
	}

	var nums [9]int
	for i, col := range []int{1, 2, 3, 6, 7, 8, 9, 10, 11} {
		n, err := strconv.Atoi(fields[col])
		if err != nil {
			return nil, false
		}
		nums[i] = n
	}

	rec = &Record{
		QName:   fields[0],
		QLen:    nums[0],
		QStart:  nums[1],
		QEnd:    nums[2],
		Strand:  fields[4][0],
		TName:   fields[5],
		TLen:    nums[3],
		TStart:  nums[4],
		TEnd:    nums[5],
		Matches: nums[6],
		AlnLen:  nums[7],
		MapQ:    nums[8],
	}
	if rec.QStart < 0 || rec.QStart >= rec.QEnd || rec.QEnd > rec.QLen {
		return nil, false
	}
	if rec.TStart < 0 || rec.TStart >= rec.TEnd || rec.TEnd > rec.TLen {
		return nil, false
	}

	for _, field := range fields[12:] {
		key, tag := parseTagField(field)
		rec.Tags.Set(key, tag)
	}

	return rec, true
}

// ParsePAF reads the alignments between one target and one query sequence
// from a PAF file; an empty target or query name matches any. Blank
// lines, rows with fewer than twelve columns, rows that fail to parse,
// and rows for other sequence pairs are all skipped.
func ParsePAF(path, target, query string) (records []*Record, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if trimmed := strings.TrimRight(line, "\r\n"); strings.TrimSpace(trimmed) != "" {
			if rec, ok := parseRecord(trimmed); ok &&
				(target == "" || rec.TName == target) && (query == "" || rec.QName == query) {
				records = append(records, rec)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	return records, nil
}

// Rank orders records by descending overlap, keeping file order between
// equals, and truncates to limit when limit > 0. The input is not mutated.
func Rank(records []*Record, limit int) []*Record {
	ranked := append([]*Record(nil), records...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Overlap() > ranked[j].Overlap()
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// BestCandidate parses and ranks the pair's alignments and returns the
// longest-overlap record.
func BestCandidate(path, target, query string) (*Record, error) {
	records, err := ParsePAF(path, target, query)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s vs %s in %s", ErrNoCandidates, target, query, path)
	}

	return Rank(records, 1)[0], nil
}

// formatRecord renders a record as one PAF row.
func formatRecord(r *Record) string {
	cols := []string{
		r.QName,
		strconv.Itoa(r.QLen),
		strconv.Itoa(r.QStart),
		strconv.Itoa(r.QEnd),
		string(r.Strand),
		r.TName,
		strconv.Itoa(r.TLen),
		strconv.Itoa(r.TStart),
		strconv.Itoa(r.TEnd),
		strconv.Itoa(r.Matches),
		strconv.Itoa(r.AlnLen),
		strconv.Itoa(r.MapQ),
	}
	for _, key := range r.Tags.Keys() {
		tag, _ := r.Tags.Get(key)
		if tag.Type == 0 {
			cols = append(cols, key)
		} else {
			cols = append(cols, key+":"+string(tag.Type)+":"+tag.Value)
		}
	}

	return strings.Join(cols, "\t")
}

// WritePAF writes records as PAF rows, optional tags re-emitted unchanged.
func WritePAF(w io.Writer, records []*Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, formatRecord(r)); err != nil {
			return err
		}
	}

	return nil
}

// WriteCandidateTable lists ranked candidates on w, one row per record.
func WriteCandidateTable(w io.Writer, records []*Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "n\tquery\tstrand\ttarget\toverlap\tidentity\tmapq\tt span\tq span\t\n")
	for i, r := range records {
		fmt.Fprintf(tw, "%d\t%s (%dbp)\t%c\t%s (%dbp)\t%d\t%.3f\t%d\t%d-%d\t%d-%d\t\n",
			i, r.QName, r.QLen, r.Strand, r.TName, r.TLen,
			r.Overlap(), r.Identity(), r.MapQ,
			r.TStart, r.TEnd, r.QStart, r.QEnd)
	}
	tw.Flush()
}

// PafCmd ranks the alignments in an existing PAF file.
func PafCmd(cmd *cobra.Command, args []string) {
	in, _ := cmd.Flags().GetString("in")
	if in == "" {
		cmd.Help()
		stderr.Fatalln("\nno PAF passed.")
	}
	target, _ := cmd.Flags().GetString("target")
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")

	records, err := ParsePAF(in, target, query)
	if err != nil {
		stderr.Fatalln(err)
	}
	if len(records) == 0 {
		stderr.Fatalln("no alignments matched")
	}
	WriteCandidateTable(os.Stdout, Rank(records, limit))
}
