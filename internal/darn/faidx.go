package darn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Entry locates one sequence inside an indexed FASTA file.
type Entry struct {
	// name of the sequence (first whitespace-delimited header token)
	Name string

	// number of bases in the sequence
	Length int

	// byte offset of the first base
	Offset int64

	// bases per full-width line, sampled from the record's first sequence line
	LineBases int

	// bytes per full-width line, line terminator included
	LineBytes int

	// the whole sequence, set only on in-memory entries (compressed input
	// or a file whose index could not be built or persisted); offset
	// arithmetic is skipped when present
	Seq string
}

// InMemory reports whether the entry carries its sequence directly.
func (e *Entry) InMemory() bool {
	return e.Seq != ""
}

// Index is a byte-offset index over a FASTA file, equivalent to a samtools
// .fai. Interior lines of a record are assumed to share the width of its
// first line; irregularly wrapped records are a documented limitation and
// are not validated here.
type Index struct {
	// Path of the indexed FASTA file
	Path string

	// Entries by sequence name
	Entries map[string]*Entry

	// Names in file order
	Names []string
}

// Entry returns the named sequence's index entry.
func (x *Index) Entry(name string) (*Entry, error) {
	if e, ok := x.Entries[name]; ok {
		return e, nil
	}

	return nil, fmt.Errorf("%w: %s in %s", ErrSeqNotFound, name, x.Path)
}

// Length returns the named sequence's base count, or -1 when unknown.
func (x *Index) Length(name string) int {
	if e, ok := x.Entries[name]; ok {
		return e.Length
	}

	return -1
}

func (x *Index) add(e *Entry) {
	if _, seen := x.Entries[e.Name]; !seen {
		x.Names = append(x.Names, e.Name)
	}
	x.Entries[e.Name] = e
}

// faiPath is the conventional index filename beside a FASTA file.
func faiPath(path string) string {
	return path + ".fai"
}

// BuildIndex scans the FASTA at path and writes a 5-column .fai beside it,
// returning the index it wrote. Line geometry is sampled from each record's
// first sequence line only. Compressed input cannot be indexed by byte
// offset; LoadIndex handles it by reading the file whole instead.
func BuildIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var magic [2]byte
	if n, _ := f.ReadAt(magic[:], 0); n == 2 && magic[0] == gzipMagic0 && magic[1] == gzipMagic1 {
		return nil, fmt.Errorf("cannot index compressed input %s", path)
	}

	idx := &Index{Path: path, Entries: map[string]*Entry{}}
	r := bufio.NewReader(f)

	var cur *Entry
	var offset int64
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			if strings.HasPrefix(line, ">") {
				cur = &Entry{
					Name:   headerName(line),
					Offset: offset + int64(len(line)),
				}
				idx.add(cur)
			} else if cur != nil {
				bases := strings.TrimRight(line, "\r\n")
				if cur.LineBases == 0 && cur.Length == 0 && len(bases) > 0 {
					term := len(line) - len(bases)
					if term == 0 {
						// last line of the file without a terminator
						term = 1
					}
					cur.LineBases = len(bases)
					cur.LineBytes = len(bases) + term
				}
				cur.Length += len(bases)
			}
			offset += int64(len(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	out, err := os.Create(faiPath(path))
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(out)
	for _, name := range idx.Names {
		e := idx.Entries[name]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", e.Name, e.Length, e.Offset, e.LineBases, e.LineBytes)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, err
	}

	return idx, nil
}

// parseFai reads a 5-column .fai. Malformed rows are skipped. Zero line
// geometry falls back to treating the record as a single unwrapped line.
func parseFai(path, fai string) (*Index, error) {
	f, err := os.Open(fai)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx := &Index{Path: path, Entries: map[string]*Entry{}}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 5 {
			continue
		}

		length, err1 := strconv.Atoi(cols[1])
		offset, err2 := strconv.ParseInt(cols[2], 10, 64)
		lineBases, err3 := strconv.Atoi(cols[3])
		lineBytes, err4 := strconv.Atoi(cols[4])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		if lineBases == 0 {
			lineBases = length
		}
		if lineBytes == 0 {
			lineBytes = lineBases
		}

		idx.add(&Entry{
			Name:      cols[0],
			Length:    length,
			Offset:    offset,
			LineBases: lineBases,
			LineBytes: lineBytes,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return idx, nil
}

// LoadIndex returns a usable index for the FASTA at path. An existing .fai
// beside the file is parsed; otherwise one is built and written. Compressed
// input, or a failure to build or persist the .fai, falls back to reading
// the whole file into in-memory entries.
func LoadIndex(path string) (*Index, error) {
	if _, err := os.Stat(faiPath(path)); err == nil {
		if idx, err := parseFai(path, faiPath(path)); err == nil {
			return idx, nil
		}
	}

	if gz, _ := isGzip(path); !gz {
		if idx, err := BuildIndex(path); err == nil {
			return idx, nil
		}
	}

	idx, err := memoryIndex(path)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrIndexUnavailable, path, err)
	}

	return idx, nil
}

// memoryIndex reads every sequence whole, for files that cannot be indexed
// by byte offset.
func memoryIndex(path string) (*Index, error) {
	records, err := ReadSequences(path)
	if err != nil {
		return nil, err
	}

	idx := &Index{Path: path, Entries: map[string]*Entry{}}
	for _, rec := range records {
		idx.add(&Entry{
			Name:      rec.Name,
			Length:    len(rec.Seq),
			Offset:    0,
			LineBases: len(rec.Seq),
			LineBytes: len(rec.Seq),
			Seq:       rec.Seq,
		})
	}

	return idx, nil
}

// IndexCache memoizes loaded indexes by FASTA path. It is unbounded and
// does no locking of its own: the owner serializes access, and evicts a
// path when its file changes on disk.
type IndexCache struct {
	indexes map[string]*Index
}

// NewIndexCache returns an empty cache.
func NewIndexCache() *IndexCache {
	return &IndexCache{indexes: map[string]*Index{}}
}

// Get returns the cached index for path, loading it on first use.
func (c *IndexCache) Get(path string) (*Index, error) {
	if idx, ok := c.indexes[path]; ok {
		return idx, nil
	}

	idx, err := LoadIndex(path)
	if err != nil {
		return nil, err
	}
	c.indexes[path] = idx

	return idx, nil
}

// Evict drops the cached index for path.
func (c *IndexCache) Evict(path string) {
	delete(c.indexes, path)
}

// Reset drops every cached index.
func (c *IndexCache) Reset() {
	c.indexes = map[string]*Index{}
}

// Len reports how many indexes are cached.
func (c *IndexCache) Len() int {
	return len(c.indexes)
}

// IndexCmd indexes a FASTA and lists its sequences.
func IndexCmd(cmd *cobra.Command, args []string) {
	in, _ := cmd.Flags().GetString("in")
	if in == "" {
		cmd.Help()
		stderr.Fatalln("\nno input FASTA passed.")
	}

	idx, err := LoadIndex(in)
	if err != nil {
		stderr.Fatalln(err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "name\tlength\toffset\tline bases\tline bytes\t\n")
	for _, name := range idx.Names {
		e := idx.Entries[name]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", e.Name, e.Length, e.Offset, e.LineBases, e.LineBytes)
	}
	tw.Flush()
}
