// Package darn holds the curation core: FASTA indexing and range reads,
// PAF parsing and candidate ranking, cigar-walk coordinate projection,
// and the two stitching modes (alignment-driven and manual segments).
package darn

import "errors"

// Sentinel errors for programmatic handling. Callers can use errors.Is to
// tell validation failures (ErrBadInterval) apart from missing inputs
// (ErrSeqNotFound, ErrUnknownSource) and aborted operations (ErrCancelled).
// Malformed lines in .fai and PAF files are not errors: they are skipped.
var (
	ErrSeqNotFound      = errors.New("sequence not found")
	ErrBadInterval      = errors.New("invalid interval")
	ErrNoCigar          = errors.New("no cigar tag on alignment")
	ErrNoCandidates     = errors.New("no alignments between the sequence pair")
	ErrUnknownSource    = errors.New("unknown segment source")
	ErrIndexUnavailable = errors.New("index unavailable")
	ErrCancelled        = errors.New("cancelled")
)
