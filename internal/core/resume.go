package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ComputeSkip returns how many input rows a run must skip.
//
// Without restart the output is deleted and the run starts from row 0.
// With restart the skip is the number of data rows already in the output
// (line count minus the header). An output whose last line is not
// newline-terminated yields a *ResumeInconsistencyError.
func ComputeSkip(path string, restart bool) (int64, error) {
	if !restart {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("remove existing output: %w", err)
		}
		return 0, nil
	}

	lines, complete, err := countLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count output rows: %w", err)
	}

	rows := max(lines-1, 0)
	if !complete {
		return 0, &ResumeInconsistencyError{Path: path, Rows: rows}
	}
	return rows, nil
}

// countLines counts newline-terminated lines in the file at path and reports
// whether the file is empty or ends with a newline.
func countLines(path string) (int64, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	var (
		lines int64
		last  byte = '\n'
		buf        = make([]byte, 64*1024)
	)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			lines += int64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, false, err
		}
	}
	return lines, last == '\n', nil
}
