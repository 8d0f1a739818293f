package core

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func testRows(refIDs ...int64) []TransformedRow {
	rows := make([]TransformedRow, len(refIDs))
	for i, id := range refIDs {
		rows[i] = TransformedRow{
			RefID:       id,
			ContentID:   id * 10,
			SecondaryID: pgtype.Int8{Int64: id*10 + 1, Valid: id%2 == 0},
			Category:    CategoryFulltext,
			Content:     `["p1","p, ""two"""]`,
		}
	}
	return rows
}

func TestAppendChunk_HeaderOnlyWhenNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	wrote, err := AppendChunk(path, ProcessedHeader, testRows(1, 2))
	if err != nil {
		t.Fatalf("first AppendChunk() error = %v", err)
	}
	if !wrote {
		t.Error("first AppendChunk() should write the header")
	}

	wrote, err = AppendChunk(path, ProcessedHeader, testRows(3))
	if err != nil {
		t.Fatalf("second AppendChunk() error = %v", err)
	}
	if wrote {
		t.Error("second AppendChunk() should not write the header")
	}

	want := "ref_id,content_id_primary,content_id_secondary,category,content\n" +
		`1,10,,fulltext,"[""p1"",""p, """"two""""""]"` + "\n" +
		`2,20,21,fulltext,"[""p1"",""p, """"two""""""]"` + "\n" +
		`3,30,,fulltext,"[""p1"",""p, """"two""""""]"` + "\n"
	if got := readFile(t, path); got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestAppendChunk_EmptyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	wrote, err := AppendChunk(path, ProcessedHeader, nil)
	if err != nil || wrote {
		t.Fatalf("AppendChunk(nil) = (%v, %v), want (false, nil)", wrote, err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("empty append created the output: %v", err)
	}
}

func TestAppendChunk_EmptyFileGetsHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "out.csv", "")

	wrote, err := AppendChunk(path, ProcessedHeader, testRows(1))
	if err != nil {
		t.Fatalf("AppendChunk() error = %v", err)
	}
	if !wrote {
		t.Error("header not written to an empty file")
	}
	if got := readFile(t, path); !strings.HasPrefix(got, "ref_id,") {
		t.Errorf("output does not start with header: %q", got)
	}
}

func TestAppendChunk_NonEmptyFileGetsNoHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "out.csv", "ref_id,content_id_primary,content_id_secondary,category,content\n")

	wrote, err := AppendChunk(path, ProcessedHeader, testRows(1))
	if err != nil {
		t.Fatalf("AppendChunk() error = %v", err)
	}
	if wrote {
		t.Error("header written to a non-empty file")
	}
	if got := readFile(t, path); strings.Count(got, "ref_id,") != 1 {
		t.Errorf("header count != 1: %q", got)
	}
}

func TestAppendChunk_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	if _, err := AppendChunk(path, ProcessedHeader, testRows(1)); err == nil {
		t.Error("AppendChunk() expected error for missing directory")
	}
}
