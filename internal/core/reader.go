package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"
)

// ChunkReader reads a raw dump forward in fixed-size windows of rows.
// It holds the input file open until the table is exhausted, a read fails,
// or Close is called.
type ChunkReader struct {
	file      *os.File
	csv       *csv.Reader
	counter   *CountingReader
	layout    Layout
	chunkSize int

	nextRow int64 // Index of the next data row to be read
	chunks  int
	done    bool
}

// OpenChunks opens the raw table at path and discards the first skipRows
// data rows. Raw dumps have no header, so every line is a data row.
// Chunk N then starts at data row skipRows + (N-1)*chunkSize.
func OpenChunks(path string, layout Layout, skipRows int64, chunkSize int) (*ChunkReader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if skipRows < 0 {
		return nil, fmt.Errorf("skip rows must be non-negative, got %d", skipRows)
	}
	if layout.IDColumns < 2 || layout.Payloads() < 1 {
		return nil, fmt.Errorf("invalid layout: %d columns, %d id columns", len(layout.Columns), layout.IDColumns)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	wrapped, counter := WrapForStreaming(f, size)
	cr := csv.NewReader(wrapped)
	cr.FieldsPerRecord = -1

	r := &ChunkReader{
		file:      f,
		csv:       cr,
		counter:   counter,
		layout:    layout,
		chunkSize: chunkSize,
	}

	if err := r.skip(skipRows); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// skip discards n records without parsing their cells.
func (r *ChunkReader) skip(n int64) error {
	for r.nextRow < n {
		if _, err := r.csv.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				// The input is shorter than the skip; nothing left to do.
				r.Close()
				return nil
			}
			return r.formatError(err)
		}
		r.nextRow++
	}
	return nil
}

// Next returns the next chunk. It returns ok=false once the input is
// exhausted, after which the file has already been released.
func (r *ChunkReader) Next(ctx context.Context) (Chunk, bool, error) {
	if r.done {
		return Chunk{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return Chunk{}, false, err
	}

	chunk := Chunk{
		Number:   r.chunks + 1,
		StartRow: r.nextRow,
		Rows:     make([]RawRow, 0, min(r.chunkSize, 4096)),
	}

	for len(chunk.Rows) < r.chunkSize {
		record, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.Close()
				break
			}
			r.Close()
			return Chunk{}, false, r.formatError(err)
		}

		row, err := r.parseRow(record)
		if err != nil {
			r.Close()
			return Chunk{}, false, err
		}
		chunk.Rows = append(chunk.Rows, row)
		r.nextRow++
	}

	if len(chunk.Rows) == 0 {
		return Chunk{}, false, nil
	}

	r.chunks++
	return chunk, true, nil
}

// All returns the remaining chunks as a sequence. The reader is closed when
// the sequence ends, including when the caller stops early.
func (r *ChunkReader) All(ctx context.Context) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		defer r.Close()
		for {
			chunk, ok, err := r.Next(ctx)
			if err != nil {
				yield(Chunk{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Close releases the input file. Safe to call more than once.
func (r *ChunkReader) Close() error {
	r.done = true
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// BytesRead returns how many input bytes have been consumed.
func (r *ChunkReader) BytesRead() int64 { return r.counter.BytesRead() }

// BytesTotal returns the input size in bytes (0 if unknown).
func (r *ChunkReader) BytesTotal() int64 { return r.counter.Total }

// parseRow validates a record against the layout and decodes its id cells.
func (r *ChunkReader) parseRow(record []string) (RawRow, error) {
	line, _ := r.csv.FieldPos(0)
	cols := r.layout.Columns

	if len(record) < len(cols) {
		return RawRow{}, &DataFormatError{
			Line:   int64(line),
			Reason: fmt.Sprintf("row has %d fields, expected %d", len(record), len(cols)),
		}
	}

	ids := make([]int64, r.layout.IDColumns)
	for i := range ids {
		v, err := strconv.ParseInt(strings.TrimSpace(record[i]), 10, 64)
		if err != nil {
			return RawRow{}, &DataFormatError{
				Line:   int64(line),
				Column: cols[i],
				Reason: fmt.Sprintf("invalid integer %q", record[i]),
				Err:    err,
			}
		}
		ids[i] = v
	}

	row := RawRow{
		Index:     r.nextRow,
		RefID:     ids[0],
		ContentID: ids[1],
		Payloads:  record[r.layout.IDColumns:len(cols)],
	}
	if r.layout.IDColumns > 2 {
		row.SecondaryID.Int64 = ids[2]
		row.SecondaryID.Valid = true
	}
	return row, nil
}

func (r *ChunkReader) formatError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &DataFormatError{Line: int64(pe.StartLine), Reason: pe.Err.Error(), Err: err}
	}
	return fmt.Errorf("read input: %w", err)
}
