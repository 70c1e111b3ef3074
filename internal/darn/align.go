package darn

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/darn-seq/darn/config"
	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"
)

// AlignRequest names one pairwise alignment job: a single query sequence
// mapped against a single target sequence, each pulled out of its FASTA.
type AlignRequest struct {
	// TargetPath is the FASTA holding the target
	TargetPath string

	// Target sequence name within TargetPath
	Target string

	// QueryPath is the FASTA holding the query
	QueryPath string

	// Query sequence name within QueryPath
	Query string

	// ReverseTarget aligns against the reverse complement of the target
	ReverseTarget bool

	// ReverseQuery aligns the reverse complement of the query
	ReverseQuery bool

	// Preset is the minimap2 -x preset (asm10 when empty)
	Preset string

	// Threads for minimap2 (4 when <= 0)
	Threads int

	// Output overrides the derived PAF path
	Output string

	// Reuse returns an existing PAF without rerunning the aligner
	Reuse bool
}

// OrientedNames returns the sequence names as they appear in the PAF,
// with an _rc suffix on reversed inputs.
func (req AlignRequest) OrientedNames() (target, query string) {
	target, query = req.Target, req.Query
	if req.ReverseTarget {
		target += "_rc"
	}
	if req.ReverseQuery {
		query += "_rc"
	}

	return target, query
}

// Aligner produces a PAF file for an alignment request.
type Aligner interface {
	Align(req AlignRequest) (pafPath string, err error)
}

// Minimap2 shells out to a minimap2 binary.
type Minimap2 struct {
	// Path of the binary ("minimap2" when empty, resolved via PATH)
	Path string

	// Dir receives derived PAF outputs ("." when empty)
	Dir string
}

// safePart keeps a sequence name filesystem-friendly.
func safePart(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return b.String()
}

func rcSuffix(reversed bool) string {
	if reversed {
		return "_rc"
	}
	return ""
}

// pairDigest folds both oriented sequences into a short content hash so a
// cached PAF is never reused after its inputs change.
func pairDigest(tSeq, qSeq string) string {
	var h xxh3.Hasher
	h.WriteString(tSeq)
	h.WriteString("\x00")
	h.WriteString(qSeq)

	return fmt.Sprintf("%08x", uint32(h.Sum64()))
}

// pafPath derives the cache layout for a pair: one directory per oriented
// pair, one PAF per preset and input digest.
func (m *Minimap2) pafPath(req AlignRequest, preset, digest string) string {
	dir := m.Dir
	if dir == "" {
		dir = "."
	}
	pair := fmt.Sprintf("%s.%s%s_vs_%s.%s%s",
		filepath.Base(req.QueryPath), safePart(req.Query), rcSuffix(req.ReverseQuery),
		filepath.Base(req.TargetPath), safePart(req.Target), rcSuffix(req.ReverseTarget))

	return filepath.Join(dir, pair, fmt.Sprintf("%s.%s.%s.paf", pair, preset, digest))
}

// Align materializes the two oriented sequences into single-record temp
// FASTAs and maps the query against the target. With Reuse set an
// existing PAF for the same inputs is returned without running minimap2.
func (m *Minimap2) Align(req AlignRequest) (string, error) {
	preset := req.Preset
	if preset == "" {
		preset = "asm10"
	}
	threads := req.Threads
	if threads <= 0 {
		threads = 4
	}

	tSeq, err := ReadSequence(req.TargetPath, req.Target)
	if err != nil {
		return "", err
	}
	qSeq, err := ReadSequence(req.QueryPath, req.Query)
	if err != nil {
		return "", err
	}
	if req.ReverseTarget {
		tSeq = RevComp(tSeq)
	}
	if req.ReverseQuery {
		qSeq = RevComp(qSeq)
	}

	pafPath := req.Output
	if pafPath == "" {
		pafPath = m.pafPath(req, preset, pairDigest(tSeq, qSeq))
	}
	if req.Reuse {
		if _, err := os.Stat(pafPath); err == nil {
			stderr.Printf("reusing %s", pafPath)
			return pafPath, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(pafPath), 0755); err != nil {
		return "", err
	}

	// single-record inputs keep the PAF scoped to the requested pair
	tName, qName := req.OrientedNames()
	tmpDir, err := os.MkdirTemp("", "align")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	tmpT := filepath.Join(tmpDir, "target.fa")
	if err := WriteFasta(tmpT, []FastaRecord{{Name: tName, Seq: tSeq}}, 0); err != nil {
		return "", err
	}
	tmpQ := filepath.Join(tmpDir, "query.fa")
	if err := WriteFasta(tmpQ, []FastaRecord{{Name: qName, Seq: qSeq}}, 0); err != nil {
		return "", err
	}

	bin := m.Path
	if bin == "" {
		bin = "minimap2"
	}
	cmd := exec.Command(
		bin,
		"-x", preset,
		"-t", strconv.Itoa(threads),
		"-c",   // base-level alignment, cg tag
		"--cs", // difference strings for the audit trail
		tmpT,
		tmpQ,
	)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute minimap2: %v: %s", err, errb.String())
	}
	if err := os.WriteFile(pafPath, out.Bytes(), 0644); err != nil {
		return "", err
	}

	return pafPath, nil
}

// firstName returns the first sequence name in a FASTA.
func firstName(path string) (string, error) {
	idx, err := LoadIndex(path)
	if err != nil {
		return "", err
	}
	if len(idx.Names) == 0 {
		return "", fmt.Errorf("no sequences in %s", path)
	}

	return idx.Names[0], nil
}

// parseAlignFlags gathers an alignment request from a cobra cmd, filling
// unset values from the config. Sequence names default to the first
// record of each FASTA.
func parseAlignFlags(cmd *cobra.Command) (AlignRequest, *config.Config) {
	c := config.New()
	req := AlignRequest{}

	req.TargetPath, _ = cmd.Flags().GetString("target")
	req.QueryPath, _ = cmd.Flags().GetString("query")
	if req.TargetPath == "" || req.QueryPath == "" {
		cmd.Help()
		stderr.Fatalln("\nboth --target and --query FASTA paths are required.")
	}

	var err error
	req.Target, _ = cmd.Flags().GetString("target-name")
	if req.Target == "" {
		if req.Target, err = firstName(req.TargetPath); err != nil {
			stderr.Fatalln(err)
		}
	}
	req.Query, _ = cmd.Flags().GetString("query-name")
	if req.Query == "" {
		if req.Query, err = firstName(req.QueryPath); err != nil {
			stderr.Fatalln(err)
		}
	}

	req.ReverseTarget, _ = cmd.Flags().GetBool("rc-target")
	req.ReverseQuery, _ = cmd.Flags().GetBool("rc-query")
	req.Preset, _ = cmd.Flags().GetString("preset")
	if req.Preset == "" {
		req.Preset = c.Align.Preset
	}
	req.Threads, _ = cmd.Flags().GetInt("threads")
	if req.Threads <= 0 {
		req.Threads = c.Align.Threads
	}
	req.Output, _ = cmd.Flags().GetString("paf")
	reuse, _ := cmd.Flags().GetBool("reuse")
	req.Reuse = reuse || c.Align.Reuse

	return req, c
}

// AlignCmd maps a query sequence against a target sequence and ranks the
// resulting alignments.
func AlignCmd(cmd *cobra.Command, args []string) {
	req, conf := parseAlignFlags(cmd)

	m := &Minimap2{Path: conf.Align.Minimap2, Dir: conf.Align.Dir}
	pafPath, err := m.Align(req)
	if err != nil {
		stderr.Fatalln(err)
	}

	target, query := req.OrientedNames()
	records, err := ParsePAF(pafPath, target, query)
	if err != nil {
		stderr.Fatalln(err)
	}

	fmt.Printf("wrote %s\n", pafPath)
	if len(records) == 0 {
		stderr.Fatalln("no alignments found")
	}
	WriteCandidateTable(os.Stdout, Rank(records, 0))
}
