package core

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
)

var errInvalidUTF8 = errors.New("decompressed payload is not valid UTF-8")

// AbstractTransformer converts joined title/abstract rows.
// Payloads are expected in (title_hex, abstract_hex) order.
type AbstractTransformer struct {
	Decompressor Decompressor
}

// Transform implements RowTransformer.
func (t AbstractTransformer) Transform(_ context.Context, row RawRow) (TransformedRow, error) {
	if len(row.Payloads) < 2 {
		return TransformedRow{}, &DecodeError{Row: row.Index, RefID: row.RefID, Column: "abstract_hex", Err: errors.New("missing payload")}
	}

	title, err := unpackPayload(t.Decompressor, row, "title_hex", row.Payloads[0])
	if err != nil {
		return TransformedRow{}, err
	}
	abstract, err := unpackPayload(t.Decompressor, row, "abstract_hex", row.Payloads[1])
	if err != nil {
		return TransformedRow{}, err
	}

	content, err := SerializeContent([]string{title, abstract})
	if err != nil {
		return TransformedRow{}, fmt.Errorf("serialize row %d: %w", row.Index, err)
	}

	return TransformedRow{
		RefID:       row.RefID,
		ContentID:   row.ContentID,
		SecondaryID: row.SecondaryID,
		Category:    CategoryAbstract,
		Content:     content,
	}, nil
}

// FulltextTransformer converts single-payload fulltext rows.
type FulltextTransformer struct {
	Decompressor Decompressor
	Extractor    ParagraphExtractor
}

// Transform implements RowTransformer.
func (t FulltextTransformer) Transform(_ context.Context, row RawRow) (TransformedRow, error) {
	if len(row.Payloads) < 1 {
		return TransformedRow{}, &DecodeError{Row: row.Index, RefID: row.RefID, Column: "fulltext_hex", Err: errors.New("missing payload")}
	}

	markup, err := unpackPayload(t.Decompressor, row, "fulltext_hex", row.Payloads[0])
	if err != nil {
		return TransformedRow{}, err
	}

	paragraphs, err := t.Extractor.ExtractParagraphs(markup)
	if err != nil {
		return TransformedRow{}, &ExtractionError{Row: row.Index, RefID: row.RefID, Err: err}
	}

	content, err := SerializeContent(paragraphs)
	if err != nil {
		return TransformedRow{}, fmt.Errorf("serialize row %d: %w", row.Index, err)
	}

	return TransformedRow{
		RefID:       row.RefID,
		ContentID:   row.ContentID,
		SecondaryID: pgtype.Int8{},
		Category:    CategoryFulltext,
		Content:     content,
	}, nil
}

// DecodeHex decodes a hex payload as produced by Postgres encode(..., 'hex').
// A leading \x (bytea escape output) is accepted.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `\x`)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// unpackPayload hex-decodes and decompresses one payload into text.
func unpackPayload(d Decompressor, row RawRow, column, payload string) (string, error) {
	raw, err := DecodeHex(payload)
	if err != nil {
		return "", &DecodeError{Row: row.Index, RefID: row.RefID, Column: column, Err: err}
	}
	text, err := d.Decompress(raw)
	if err != nil {
		return "", &DecodeError{Row: row.Index, RefID: row.RefID, Column: column, Err: err}
	}
	if !utf8.Valid(text) {
		return "", &DecodeError{Row: row.Index, RefID: row.RefID, Column: column, Err: errInvalidUTF8}
	}
	return string(text), nil
}

// SerializeContent encodes a list of strings as a compact JSON array.
// HTML characters are left unescaped and a nil list encodes as [].
func SerializeContent(parts []string) (string, error) {
	if parts == nil {
		parts = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(parts); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
