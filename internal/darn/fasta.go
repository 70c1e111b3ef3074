package darn

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)
)

// gzip magic bytes
const (
	gzipMagic0 = 0x1f
	gzipMagic1 = 0x8b
)

// FastaRecord is one named sequence read whole from a FASTA file.
type FastaRecord struct {
	// Name is the first whitespace-delimited header token
	Name string

	// Seq holds the record's bases, uppercased
	Seq string
}

// headerName returns the record name from a ">" header line.
func headerName(line string) string {
	fields := strings.Fields(strings.TrimPrefix(line, ">"))
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// isGzip sniffs the gzip magic bytes at the start of path. A .gz suffix
// also counts, so an empty or truncated file is still routed correctly.
func isGzip(path string) (bool, error) {
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		return true, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var magic [2]byte
	if n, _ := io.ReadFull(f, magic[:]); n < 2 {
		return false, nil
	}

	return magic[0] == gzipMagic0 && magic[1] == gzipMagic1, nil
}

// openMaybeGzip opens path for reading, transparently decompressing
// gzipped files. The caller closes the returned closer.
func openMaybeGzip(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	gz, err := isGzip(path)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !gz {
		return f, f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("open gzip %s: %w", path, err)
	}

	return zr, readCloserPair{zr, f}, nil
}

// readCloserPair closes a decompressor and its underlying file together.
type readCloserPair struct {
	first  io.Closer
	second io.Closer
}

func (p readCloserPair) Close() error {
	err := p.first.Close()
	if err2 := p.second.Close(); err == nil {
		err = err2
	}

	return err
}

// ReadSequences parses every record of the FASTA at path, gzipped or not.
// Bases are uppercased and line terminators dropped.
func ReadSequences(path string) ([]FastaRecord, error) {
	r, closer, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var records []FastaRecord
	var name string
	var seq strings.Builder
	flush := func() {
		if name != "" {
			records = append(records, FastaRecord{Name: name, Seq: strings.ToUpper(seq.String())})
		}
		seq.Reset()
	}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if strings.HasPrefix(line, ">") {
				flush()
				name = headerName(line)
			} else if name != "" {
				seq.WriteString(strings.TrimRight(line, "\r\n"))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	flush()

	return records, nil
}

// ReadSequence returns one named sequence from the FASTA at path.
func ReadSequence(path, name string) (string, error) {
	records, err := ReadSequences(path)
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if rec.Name == name {
			return rec.Seq, nil
		}
	}

	return "", fmt.Errorf("%w: %s in %s", ErrSeqNotFound, name, path)
}

// WriteFasta writes records to path with sequence lines wrapped at width
// columns (80 when width <= 0).
func WriteFasta(path string, records []FastaRecord, width int) error {
	if width <= 0 {
		width = 80
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, rec := range records {
		fmt.Fprintf(w, ">%s\n", rec.Name)
		for i := 0; i < len(rec.Seq); i += width {
			end := i + width
			if end > len(rec.Seq) {
				end = len(rec.Seq)
			}
			w.WriteString(rec.Seq[i:end])
			w.WriteByte('\n')
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
