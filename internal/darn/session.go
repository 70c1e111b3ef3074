package darn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/darn-seq/darn/config"
	"github.com/spf13/cobra"
)

// flankWindow is the fixed comparison width for junction consistency
// checks, per side.
const flankWindow = 50

// previewHighlight is how many bases on each side of a junction preview
// get bracketed.
const previewHighlight = 10

// Segment is one manually chosen sub-range of a source sequence.
// Coordinates are 0-based half-open. When Reverse is set they are
// interpreted on the reverse-complemented sequence, so the fetched bases
// come from the mirrored range of the original.
type Segment struct {
	// Source key the segment reads from ("t", "q", or any registered key)
	Source string

	// Name of the sequence within the source FASTA
	Name string

	// Start of the range, inclusive
	Start int

	// End of the range, exclusive
	End int

	// Reverse flips the segment to the other strand
	Reverse bool
}

// String renders a segment as source:name start-end, with an rc suffix
// for reversed segments.
func (g Segment) String() string {
	out := fmt.Sprintf("%s:%s %d-%d", g.Source, g.Name, g.Start, g.End)
	if g.Reverse {
		out += " rc"
	}
	return out
}

// materialized carries a segment's bases plus the four flanking contexts
// around its start and end, all in the segment's own orientation.
type materialized struct {
	Segment

	seq         string
	leftBefore  string
	leftAfter   string
	rightBefore string
	rightAfter  string
}

// FlankCheck is one side of a junction consistency comparison.
type FlankCheck struct {
	// Window is how many bases were compared (the minimum of flankWindow
	// and both flank lengths; 0 means no comparable context)
	Window int

	// Prev is the compared slice from the earlier segment
	Prev string

	// Next is the compared slice from the later segment
	Next string

	// Match is true when Prev equals Next over a non-empty window
	Match bool

	// Mismatches holds the differing offsets within the window
	Mismatches []int
}

// Junction is the consistency report between two adjacent segments.
type Junction struct {
	// Index of the junction, between segments Index and Index+1
	Index int

	// Offset of the breakpoint within the merged sequence
	Offset int

	// Preview shows the bases around the join with the midpoint marked
	Preview string

	// Left compares the context before the join on both segments
	Left FlankCheck

	// Right compares the context after the join on both segments
	Right FlankCheck

	// Pass is true when both sides match
	Pass bool
}

// Session drives a manual coordinate-driven merge. It owns the segment
// list and source registry; indexes come from the caller's cache. All
// operations are synchronous and the session never blocks on input: the
// only interaction point is the optional Confirm hook on export.
type Session struct {
	cache   *IndexCache
	sources map[string]string
	order   []string

	segments []Segment

	// Context is how many flanking bases are fetched around each
	// breakpoint for previews and consistency checks
	Context int
}

// NewSession returns an empty session using the given index cache
// (a private one when nil) and flanking context width (200 when <= 0).
func NewSession(cache *IndexCache, context int) *Session {
	if cache == nil {
		cache = NewIndexCache()
	}
	if context <= 0 {
		context = 200
	}

	return &Session{
		cache:   cache,
		sources: map[string]string{},
		Context: context,
	}
}

// AddSource registers a FASTA path under a source key ("t", "q", "x1"...).
// Re-registering a key replaces its path.
func (s *Session) AddSource(key, path string) {
	if _, seen := s.sources[key]; !seen {
		s.order = append(s.order, key)
	}
	s.sources[key] = path
}

// SourcePath returns the path registered under key.
func (s *Session) SourcePath(key string) (string, bool) {
	path, ok := s.sources[key]
	return path, ok
}

// AddSegment validates seg against its source's index and appends it.
// Bounds are checked here so a bad segment never reaches materialization.
func (s *Session) AddSegment(seg Segment) error {
	path, ok := s.sources[seg.Source]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSource, seg.Source)
	}
	idx, err := s.cache.Get(path)
	if err != nil {
		return err
	}
	e, err := idx.Entry(seg.Name)
	if err != nil {
		return err
	}
	if seg.Start < 0 || seg.Start >= seg.End || seg.End > e.Length {
		return fmt.Errorf("%w: %s:%s %d-%d with length %d",
			ErrBadInterval, seg.Source, seg.Name, seg.Start, seg.End, e.Length)
	}

	s.segments = append(s.segments, seg)

	return nil
}

// RemoveSegment drops the segment at position i.
func (s *Session) RemoveSegment(i int) error {
	if i < 0 || i >= len(s.segments) {
		return fmt.Errorf("no segment %d (%d in session)", i, len(s.segments))
	}
	s.segments = append(s.segments[:i], s.segments[i+1:]...)

	return nil
}

// Move reorders the segment at position from to position to.
func (s *Session) Move(from, to int) error {
	if from < 0 || from >= len(s.segments) || to < 0 || to >= len(s.segments) {
		return fmt.Errorf("cannot move segment %d to %d (%d in session)", from, to, len(s.segments))
	}

	seg := s.segments[from]
	s.segments = append(s.segments[:from], s.segments[from+1:]...)
	rest := append([]Segment(nil), s.segments[to:]...)
	s.segments = append(append(s.segments[:to], seg), rest...)

	return nil
}

// Clear drops every segment.
func (s *Session) Clear() {
	s.segments = nil
}

// Segments returns a copy of the segment list in merge order.
func (s *Session) Segments() []Segment {
	return append([]Segment(nil), s.segments...)
}

// materializeSegment fetches a segment's bases and flanks. handles maps
// source paths to open descriptors shared across segments; the caller
// closes them.
func (s *Session) materializeSegment(seg Segment, ctx int, handles map[string]*os.File) (materialized, error) {
	path, ok := s.sources[seg.Source]
	if !ok {
		return materialized{}, fmt.Errorf("%w: %q", ErrUnknownSource, seg.Source)
	}
	idx, err := s.cache.Get(path)
	if err != nil {
		return materialized{}, err
	}
	e, err := idx.Entry(seg.Name)
	if err != nil {
		return materialized{}, err
	}

	var r io.ReaderAt
	if !e.InMemory() {
		f, open := handles[path]
		if !open {
			if f, err = os.Open(path); err != nil {
				return materialized{}, err
			}
			handles[path] = f
		}
		r = f
	}

	// flank fetches near the ends clamp to the sequence
	var ferr error
	get := func(start, end int) string {
		if ferr != nil {
			return ""
		}
		if start < 0 {
			start = 0
		}
		if end > e.Length {
			end = e.Length
		}
		sub, err := idx.ReadRange(seg.Name, start, end, r)
		if err != nil {
			ferr = err
		}
		return sub
	}

	m := materialized{Segment: seg}
	if seg.Reverse {
		// mirror the range onto the original orientation, fetch, flip back
		ms, me := e.Length-seg.End, e.Length-seg.Start
		m.seq = RevComp(get(ms, me))
		m.leftBefore = RevComp(get(me, me+ctx))
		m.leftAfter = RevComp(get(me-ctx, me))
		m.rightBefore = RevComp(get(ms, ms+ctx))
		m.rightAfter = RevComp(get(ms-ctx, ms))
	} else {
		m.seq = get(seg.Start, seg.End)
		m.leftBefore = get(seg.Start-ctx, seg.Start)
		m.leftAfter = get(seg.Start, seg.Start+ctx)
		m.rightBefore = get(seg.End-ctx, seg.End)
		m.rightAfter = get(seg.End, seg.End+ctx)
	}
	if ferr != nil {
		return materialized{}, ferr
	}

	return m, nil
}

// materialize fetches every segment, sharing one read handle per source
// file. Handles are released on every exit path.
func (s *Session) materialize(ctx int) (mats []materialized, err error) {
	handles := map[string]*os.File{}
	defer func() {
		for _, f := range handles {
			f.Close()
		}
	}()

	for _, seg := range s.segments {
		m, err := s.materializeSegment(seg, ctx, handles)
		if err != nil {
			return nil, err
		}
		mats = append(mats, m)
	}

	return mats, nil
}

// compareTails checks the last flankWindow bases of two flanks.
func compareTails(prev, next string) FlankCheck {
	n := flankWindow
	if len(prev) < n {
		n = len(prev)
	}
	if len(next) < n {
		n = len(next)
	}
	fc := FlankCheck{Window: n}
	if n == 0 {
		return fc
	}
	fc.Prev = prev[len(prev)-n:]
	fc.Next = next[len(next)-n:]
	fc.Match, fc.Mismatches = diffStrings(fc.Prev, fc.Next)

	return fc
}

// compareHeads checks the first flankWindow bases of two flanks.
func compareHeads(prev, next string) FlankCheck {
	n := flankWindow
	if len(prev) < n {
		n = len(prev)
	}
	if len(next) < n {
		n = len(next)
	}
	fc := FlankCheck{Window: n}
	if n == 0 {
		return fc
	}
	fc.Prev = prev[:n]
	fc.Next = next[:n]
	fc.Match, fc.Mismatches = diffStrings(fc.Prev, fc.Next)

	return fc
}

// diffStrings compares equal-length strings, returning the differing
// offsets.
func diffStrings(a, b string) (match bool, mismatches []int) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			mismatches = append(mismatches, i)
		}
	}

	return len(mismatches) == 0, mismatches
}

// junctionPreview renders the bases around a join as tail|head with the
// innermost previewHighlight bases bracketed.
func junctionPreview(left, right string, ctx int) string {
	if ctx < 0 {
		ctx = 0
	}
	lTail := left
	if len(lTail) > ctx {
		lTail = lTail[len(lTail)-ctx:]
	}
	rHead := right
	if len(rHead) > ctx {
		rHead = rHead[:ctx]
	}

	hl := previewHighlight
	if len(lTail) < hl {
		hl = len(lTail)
	}
	if len(rHead) < hl {
		hl = len(rHead)
	}
	if hl == 0 {
		return lTail + "|" + rHead
	}

	return lTail[:len(lTail)-hl] + "[" + lTail[len(lTail)-hl:] + "]|[" + rHead[:hl] + "]" + rHead[hl:]
}

// buildJunctions runs the consistency checks between each adjacent pair.
// The left pair compares context before the join (earlier segment's
// right-before flank against the later one's left-before), the right pair
// the context after it.
func buildJunctions(mats []materialized, ctx int) []Junction {
	var junctions []Junction
	offset := 0
	for i := 0; i+1 < len(mats); i++ {
		offset += len(mats[i].seq)
		prev, next := mats[i], mats[i+1]

		j := Junction{
			Index:   i,
			Offset:  offset,
			Preview: junctionPreview(prev.rightBefore, next.leftAfter, ctx),
			Left:    compareTails(prev.rightBefore, next.leftBefore),
			Right:   compareHeads(prev.rightAfter, next.leftAfter),
		}
		j.Pass = j.Left.Match && j.Right.Match
		junctions = append(junctions, j)
	}

	return junctions
}

// CheckBreakpoints materializes the current segments and reports every
// junction without writing anything.
func (s *Session) CheckBreakpoints() ([]Junction, error) {
	if len(s.segments) == 0 {
		return nil, nil
	}
	mats, err := s.materialize(s.Context)
	if err != nil {
		return nil, err
	}

	return buildJunctions(mats, s.Context), nil
}

// ExportRequest parameterizes Session.Export.
type ExportRequest struct {
	// Path of the merged FASTA to write
	Path string

	// Name of the merged record ("stitched" when empty)
	Name string

	// Width wraps FASTA output lines (80 when <= 0)
	Width int

	// Confirm, when set, sees the junction reports before anything is
	// written; returning false abandons the export
	Confirm func(junctions []Junction) bool
}

// ExportResult records what Export wrote.
type ExportResult struct {
	// FastaPath holds the merged sequence
	FastaPath string

	// LogPath is the human-readable markdown audit
	LogPath string

	// SessionPath is the machine-readable JSON audit
	SessionPath string

	// Name of the merged record
	Name string

	// Length of the merged sequence
	Length int

	// Digest fingerprints the merged sequence
	Digest string

	// Junctions in merge order
	Junctions []Junction
}

// Export materializes the segments, runs the junction checks, and writes
// the merged FASTA plus its audit logs. When a Confirm hook declines the
// junction reports the export aborts with ErrCancelled before any file is
// touched.
func (s *Session) Export(req ExportRequest) (*ExportResult, error) {
	if len(s.segments) == 0 {
		return nil, fmt.Errorf("export: no segments in session")
	}
	if req.Path == "" {
		return nil, fmt.Errorf("export: output path required")
	}

	mats, err := s.materialize(s.Context)
	if err != nil {
		return nil, err
	}
	junctions := buildJunctions(mats, s.Context)
	if req.Confirm != nil && !req.Confirm(junctions) {
		return nil, fmt.Errorf("export to %s: %w", req.Path, ErrCancelled)
	}

	var merged strings.Builder
	for _, m := range mats {
		merged.WriteString(m.seq)
	}
	name := req.Name
	if name == "" {
		name = "stitched"
	}

	res := &ExportResult{
		FastaPath:   req.Path,
		LogPath:     replaceExt(req.Path, ".md"),
		SessionPath: req.Path + ".session.json",
		Name:        name,
		Length:      merged.Len(),
		Digest:      SequenceDigest(merged.String()),
		Junctions:   junctions,
	}

	if err := WriteFasta(req.Path, []FastaRecord{{Name: name, Seq: merged.String()}}, req.Width); err != nil {
		return nil, err
	}
	if err := writeSessionLog(res, s, mats); err != nil {
		return nil, err
	}
	if err := writeSessionJSON(res, s, mats); err != nil {
		return nil, err
	}

	return res, nil
}

// parseSegment parses a source:name:start:end[:rc] segment flag.
func parseSegment(spec string) (Segment, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 4 || len(parts) > 5 {
		return Segment{}, fmt.Errorf("bad segment %q, want source:name:start:end[:rc]", spec)
	}

	seg := Segment{Source: parts[0], Name: parts[1]}
	var err error
	if seg.Start, err = strconv.Atoi(parts[2]); err != nil {
		return Segment{}, fmt.Errorf("bad segment start in %q: %v", spec, err)
	}
	if seg.End, err = strconv.Atoi(parts[3]); err != nil {
		return Segment{}, fmt.Errorf("bad segment end in %q: %v", spec, err)
	}
	if len(parts) == 5 {
		if parts[4] != "rc" {
			return Segment{}, fmt.Errorf("bad segment suffix %q in %q, only rc is recognized", parts[4], spec)
		}
		seg.Reverse = true
	}

	return seg, nil
}

// writeJunctionTable renders junction verdicts as an aligned table, the
// preview clipped to the bracketed midpoint.
func writeJunctionTable(w io.Writer, junctions []Junction) {
	verdict := func(fc FlankCheck) string {
		switch {
		case fc.Window == 0:
			return "none"
		case fc.Match:
			return "match"
		}
		return fmt.Sprintf("%d diffs", len(fc.Mismatches))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "n\toffset\tleft\tright\tpreview\t\n")
	for _, j := range junctions {
		short := j.Preview
		if bar := strings.IndexByte(short, '|'); bar >= 0 {
			start := bar - previewHighlight - 3
			if start < 0 {
				start = 0
			}
			end := bar + previewHighlight + 4
			if end > len(short) {
				end = len(short)
			}
			short = short[start:end]
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t\n", j.Index, j.Offset, verdict(j.Left), verdict(j.Right), short)
	}
	tw.Flush()
}

// StitchCmd builds a merged sequence from manually chosen segments,
// checking every junction along the way.
func StitchCmd(cmd *cobra.Command, args []string) {
	c := config.New()

	segSpecs, _ := cmd.Flags().GetStringArray("segment")
	if len(segSpecs) == 0 {
		cmd.Help()
		stderr.Fatalln("\nno segments passed.")
	}
	context, _ := cmd.Flags().GetInt("context")
	if context <= 0 {
		context = c.Stitch.Context
	}

	session := NewSession(NewIndexCache(), context)
	if tPath, _ := cmd.Flags().GetString("target"); tPath != "" {
		session.AddSource("t", tPath)
	}
	if qPath, _ := cmd.Flags().GetString("query"); qPath != "" {
		session.AddSource("q", qPath)
	}
	extra, _ := cmd.Flags().GetStringArray("source")
	for _, kv := range extra {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			stderr.Fatalf("bad source %q, want key=path", kv)
		}
		session.AddSource(parts[0], parts[1])
	}
	for _, spec := range segSpecs {
		seg, err := parseSegment(spec)
		if err != nil {
			stderr.Fatalln(err)
		}
		if err := session.AddSegment(seg); err != nil {
			stderr.Fatalln(err)
		}
	}

	if checkOnly, _ := cmd.Flags().GetBool("check"); checkOnly {
		junctions, err := session.CheckBreakpoints()
		if err != nil {
			stderr.Fatalln(err)
		}
		writeJunctionTable(os.Stdout, junctions)
		return
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		cmd.Help()
		stderr.Fatalln("\nno output path passed.")
	}
	name, _ := cmd.Flags().GetString("name")

	req := ExportRequest{Path: out, Name: name, Width: c.Output.LineWidth}
	if confirm, _ := cmd.Flags().GetBool("confirm"); confirm {
		req.Confirm = func(junctions []Junction) bool {
			writeJunctionTable(os.Stderr, junctions)
			fmt.Fprint(os.Stderr, "write the merged sequence? [y/N] ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			line = strings.ToLower(strings.TrimSpace(line))
			return line == "y" || line == "yes"
		}
	}

	res, err := session.Export(req)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			stderr.Fatalln("cancelled, nothing written")
		}
		stderr.Fatalln(err)
	}

	fmt.Printf("wrote %s (%s, %d bp)\n", res.FastaPath, res.Name, res.Length)
	fmt.Printf("audit: %s, %s\n", res.LogPath, res.SessionPath)
	for _, j := range res.Junctions {
		if !j.Pass {
			stderr.Printf("junction %d at offset %d needs review (see %s)", j.Index, j.Offset, res.LogPath)
		}
	}
}
