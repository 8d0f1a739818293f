package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestMapError(t *testing.T) {
	_, statErr := os.Open(filepath.Join(t.TempDir(), "missing.csv"))

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "decode error",
			err:      fmt.Errorf("chunk 3: %w", &DecodeError{Row: 4, RefID: 7, Column: "title_hex", Err: errors.New("bad hex")}),
			wantCode: "DEC001",
		},
		{
			name:     "extraction error",
			err:      &ExtractionError{Row: 1, RefID: 2, Err: errors.New("boom")},
			wantCode: "EXT001",
		},
		{
			name:     "data format error",
			err:      &DataFormatError{Line: 3, Reason: "row has 2 fields, expected 3"},
			wantCode: "FILE001",
		},
		{
			name:     "resume inconsistency",
			err:      &ResumeInconsistencyError{Path: "out.csv", Rows: 10},
			wantCode: "RES001",
		},
		{
			name:     "output locked",
			err:      fmt.Errorf("lock out.csv: %w", ErrOutputLocked),
			wantCode: "LCK001",
		},
		{
			name:     "missing input file",
			err:      statErr,
			wantCode: "FILE002",
		},
		{
			name:     "source unavailable",
			err:      &SourceUnavailableError{Query: "abstracts", Err: errors.New(`ERROR: relation "text_content" does not exist`)},
			wantCode: "SRC001",
		},
		{
			name:     "source connection refused",
			err:      &SourceUnavailableError{Query: "pmids", Err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")},
			wantCode: "SRC002",
		},
		{
			name:     "cancelled",
			err:      fmt.Errorf("chunk 9: %w", context.Canceled),
			wantCode: "RUN001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := &ResumeInconsistencyError{Path: "out.csv", Rows: 3}
	result := FormatUserError(err)

	expected := "Output file ends with an incomplete row (Code: RES001). Remove the partial last line or re-run without --restart"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: ErrOutputLocked, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
