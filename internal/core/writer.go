package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// AppendChunk appends rows to the table at path and reports whether the
// header was written.
//
// The header goes first only if the file does not exist or is empty at the
// moment of the call. The whole chunk is encoded in memory, appended with a single
// write, and synced before the file is closed, so the file is never held
// open across chunks.
func AppendChunk(path string, header []string, rows []TransformedRow) (bool, error) {
	if len(rows) == 0 {
		return false, nil
	}

	info, err := os.Stat(path)
	writeHeader := errors.Is(err, fs.ErrNotExist)
	if err != nil && !writeHeader {
		return false, fmt.Errorf("stat output: %w", err)
	}
	if err == nil && info.Size() == 0 {
		writeHeader = true
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return false, fmt.Errorf("encode header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return false, fmt.Errorf("encode row %d: %w", row.RefID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return false, fmt.Errorf("encode chunk: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return false, fmt.Errorf("open output: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return false, fmt.Errorf("append chunk: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return false, fmt.Errorf("sync output: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close output: %w", err)
	}

	return writeHeader, nil
}
