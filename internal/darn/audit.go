package darn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/blake2b"
)

// SequenceDigest fingerprints a sequence so audit logs can tie an output
// file back to the exact bases that were written.
func SequenceDigest(seq string) string {
	sum := blake2b.Sum256([]byte(seq))
	return fmt.Sprintf("%x", sum[:16])
}

// replaceExt swaps a path's extension.
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// markDiff renders two strings with their differing positions bracketed.
func markDiff(a, b string) (string, string) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var ma, mb strings.Builder
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			ma.WriteByte('[')
			ma.WriteByte(a[i])
			ma.WriteByte(']')
			mb.WriteByte('[')
			mb.WriteByte(b[i])
			mb.WriteByte(']')
		} else {
			ma.WriteByte(a[i])
			mb.WriteByte(b[i])
		}
	}
	ma.WriteString(a[n:])
	mb.WriteString(b[n:])

	return ma.String(), mb.String()
}

// writeFlank appends one side's verdict to a junction report.
func writeFlank(say func(string, ...interface{}), side string, fc FlankCheck) {
	switch {
	case fc.Window == 0:
		say("- %s flanks: no comparable context", side)
	case fc.Match:
		say("- %s flanks match over %d bp", side, fc.Window)
	default:
		prev, next := markDiff(fc.Prev, fc.Next)
		say("- %s flanks differ at %d of %d bp:", side, len(fc.Mismatches), fc.Window)
		say("    - prev: %s", prev)
		say("    - next: %s", next)
	}
}

// writeSessionLog writes the human-readable markdown audit for a manual
// merge.
func writeSessionLog(res *ExportResult, s *Session, mats []materialized) error {
	var b strings.Builder
	say := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	say("# Stitch audit")
	say("")
	say("- output: %s", res.FastaPath)
	say("- record: %s (%d bp)", res.Name, res.Length)
	say("- digest: %s", res.Digest)
	say("- context: %d bp", s.Context)
	for _, key := range s.order {
		say("- source %s: %s", key, s.sources[key])
	}
	say("")
	say("## Segments")
	say("")
	for i, m := range mats {
		say("- [%d] %s (%d bp)", i, m.Segment, len(m.seq))
	}
	say("")
	say("## Junctions")
	say("")
	if len(res.Junctions) == 0 {
		say("single segment, nothing to check")
	}
	for _, j := range res.Junctions {
		prev, next := mats[j.Index], mats[j.Index+1]
		verdict := "pass"
		if !j.Pass {
			verdict = "CHECK"
		}
		say("### [%d] %s -> %s at offset %d: %s", j.Index, prev.Segment, next.Segment, j.Offset, verdict)
		say("")
		say("    %s", j.Preview)
		say("")
		writeFlank(say, "left", j.Left)
		writeFlank(say, "right", j.Right)
		say("")
	}

	return os.WriteFile(res.LogPath, []byte(b.String()), 0644)
}

// sessionLog is the machine-readable audit for a manual merge, written
// beside the FASTA so a session can be reviewed or rebuilt later.
type sessionLog struct {
	OutputFasta  string            `json:"output_fasta"`
	OutputName   string            `json:"output_name"`
	MergedLength int               `json:"merged_length"`
	Digest       string            `json:"digest"`
	ContextBp    int               `json:"context_bp"`
	Sources      map[string]string `json:"sources"`
	Segments     []segmentLog      `json:"segments"`
	Breakpoints  []breakpointLog   `json:"breakpoints"`
}

// segmentLog mirrors one Segment plus its materialized length.
type segmentLog struct {
	Source  string `json:"source"`
	Name    string `json:"name"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Reverse bool   `json:"reverse"`
	Length  int    `json:"length"`
}

// breakpointLog mirrors one Junction verdict.
type breakpointLog struct {
	Index           int    `json:"index"`
	Offset          int    `json:"offset"`
	LeftFlankMatch  bool   `json:"left_flank_match"`
	RightFlankMatch bool   `json:"right_flank_match"`
	Preview         string `json:"preview"`
}

func writeSessionJSON(res *ExportResult, s *Session, mats []materialized) error {
	out := sessionLog{
		OutputFasta:  res.FastaPath,
		OutputName:   res.Name,
		MergedLength: res.Length,
		Digest:       res.Digest,
		ContextBp:    s.Context,
		Sources:      s.sources,
		Segments:     make([]segmentLog, 0, len(mats)),
		Breakpoints:  make([]breakpointLog, 0, len(res.Junctions)),
	}
	for _, m := range mats {
		out.Segments = append(out.Segments, segmentLog{
			Source:  m.Source,
			Name:    m.Name,
			Start:   m.Start,
			End:     m.End,
			Reverse: m.Reverse,
			Length:  len(m.seq),
		})
	}
	for _, j := range res.Junctions {
		out.Breakpoints = append(out.Breakpoints, breakpointLog{
			Index:           j.Index,
			Offset:          j.Offset,
			LeftFlankMatch:  j.Left.Match,
			RightFlankMatch: j.Right.Match,
			Preview:         j.Preview,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(res.SessionPath, append(data, '\n'), 0644)
}

// mergeLog is the machine-readable audit for an alignment-driven merge.
type mergeLog struct {
	OutputFasta  string      `json:"output_fasta"`
	OutputName   string      `json:"output_name"`
	MergedLength int         `json:"merged_length"`
	Digest       string      `json:"digest"`
	Target       string      `json:"target"`
	TargetSpan   [2]int      `json:"target_span"`
	Query        string      `json:"query"`
	QuerySpan    [2]int      `json:"query_span"`
	Strand       string      `json:"strand"`
	Identity     float64     `json:"identity"`
	Regions      []regionLog `json:"regions"`
}

// regionLog mirrors one MergeRegion.
type regionLog struct {
	Label  string `json:"label"`
	Source string `json:"source"`
	Length int    `json:"length"`
}

// WriteMergeAudit writes the markdown and JSON audit for an
// alignment-driven merge beside the output FASTA, returning the two paths
// written.
func WriteMergeAudit(fastaPath, digest string, report *MergeReport) (logPath, jsonPath string, err error) {
	logPath = replaceExt(fastaPath, ".md")
	jsonPath = fastaPath + ".session.json"
	rec := report.Record

	var b strings.Builder
	say := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}
	say("# Merge audit")
	say("")
	say("- output: %s", fastaPath)
	say("- record: %s (%d bp)", report.Name, report.Length)
	say("- digest: %s", digest)
	say("- alignment: %s:%d-%d %c %s:%d-%d", rec.TName, rec.TStart, rec.TEnd,
		rec.Strand, rec.QName, rec.QStart, rec.QEnd)
	say("- identity: %.3f over %d bp", report.Identity, rec.AlnLen)
	say("")
	say("## Regions")
	say("")
	for _, r := range report.Regions {
		if r.Length == 0 {
			continue
		}
		say("- %s: %d bp from %s", r.Label, r.Length, r.Source)
	}
	if err = os.WriteFile(logPath, []byte(b.String()), 0644); err != nil {
		return "", "", err
	}

	out := mergeLog{
		OutputFasta:  fastaPath,
		OutputName:   report.Name,
		MergedLength: report.Length,
		Digest:       digest,
		Target:       rec.TName,
		TargetSpan:   [2]int{rec.TStart, rec.TEnd},
		Query:        rec.QName,
		QuerySpan:    [2]int{rec.QStart, rec.QEnd},
		Strand:       string(rec.Strand),
		Identity:     report.Identity,
		Regions:      make([]regionLog, 0, len(report.Regions)),
	}
	for _, r := range report.Regions {
		out.Regions = append(out.Regions, regionLog{Label: r.Label, Source: r.Source, Length: r.Length})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", "", err
	}
	if err = os.WriteFile(jsonPath, append(data, '\n'), 0644); err != nil {
		return "", "", err
	}

	return logPath, jsonPath, nil
}
