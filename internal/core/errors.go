package core

import (
	"errors"
	"fmt"
)

// ErrOutputLocked is returned when another run holds the output lock.
var ErrOutputLocked = errors.New("output locked by another run")

// ErrUnknownShape is returned for a shape key that is not registered.
var ErrUnknownShape = errors.New("unknown shape")

// SourceUnavailableError reports that the source database could not be
// reached or rejected the export query.
type SourceUnavailableError struct {
	Query string // Short name of the export (abstracts, fulltexts, pmids)
	Err   error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source unavailable (%s): %v", e.Query, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// DataFormatError reports a raw table row that does not match its layout.
type DataFormatError struct {
	Line   int64  // 1-based physical line in the input file
	Column string // Empty when the row is short
	Reason string
	Err    error
}

func (e *DataFormatError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("invalid csv at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("invalid csv at line %d, column %q: %s", e.Line, e.Column, e.Reason)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// DecodeError reports a payload that could not be hex-decoded, decompressed
// or read as UTF-8.
type DecodeError struct {
	Row    int64 // Zero-based input data row
	RefID  int64
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed for row %d (ref_id %d, column %s): %v", e.Row, e.RefID, e.Column, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ExtractionError reports a document the paragraph extractor rejected.
type ExtractionError struct {
	Row   int64
	RefID int64
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for row %d (ref_id %d): %v", e.Row, e.RefID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ResumeInconsistencyError reports an output file whose last line is not
// terminated, meaning a chunk write was torn and the row count cannot be
// trusted as a skip count.
type ResumeInconsistencyError struct {
	Path string
	Rows int64 // Complete data rows before the torn line
}

func (e *ResumeInconsistencyError) Error() string {
	return fmt.Sprintf("resume inconsistent: %s ends with a partial row after %d complete rows", e.Path, e.Rows)
}
