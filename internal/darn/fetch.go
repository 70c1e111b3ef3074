package darn

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadRange returns bases [start, end) of the named sequence, uppercased.
// start >= end yields "" without error; coordinates otherwise outside
// [0, length] are rejected. r may be an already-open handle on x.Path so
// many reads share one descriptor; when nil, the file is opened and closed
// within the call. In-memory entries are sliced directly.
func (x *Index) ReadRange(name string, start, end int, r io.ReaderAt) (string, error) {
	e, err := x.Entry(name)
	if err != nil {
		return "", err
	}
	if start >= end {
		return "", nil
	}
	if start < 0 || end > e.Length {
		return "", fmt.Errorf("%w: %s[%d:%d) with length %d", ErrBadInterval, name, start, end, e.Length)
	}

	if e.InMemory() {
		return strings.ToUpper(e.Seq[start:end]), nil
	}

	lineBases := e.LineBases
	if lineBases == 0 {
		lineBases = e.Length
	}
	lineBytes := e.LineBytes
	if lineBytes == 0 {
		lineBytes = lineBases
	}

	if r == nil {
		f, err := os.Open(x.Path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	dst := make([]byte, end-start)
	n := 0
	for pos := start; pos < end; {
		lineOff := pos % lineBases
		// bases we can take before the current line or the request ends
		take := lineBases - lineOff
		if take > end-pos {
			take = end - pos
		}
		off := e.Offset + int64(pos/lineBases)*int64(lineBytes) + int64(lineOff)
		if _, err := r.ReadAt(dst[n:n+take], off); err != nil {
			return "", fmt.Errorf("read %s[%d:%d) from %s: %w", name, start, end, x.Path, err)
		}
		n += take
		pos += take
	}

	return strings.ToUpper(string(dst)), nil
}

// Sequence returns the named sequence whole.
func (x *Index) Sequence(name string) (string, error) {
	e, err := x.Entry(name)
	if err != nil {
		return "", err
	}

	return x.ReadRange(name, 0, e.Length, nil)
}
