package core

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// packHex gzips s and hex-encodes the result, the way the raw dumps store
// content.
func packHex(t testing.TB, s string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return hex.EncodeToString(buf.Bytes())
}

// gzipDecompressor is a minimal Decompressor for tests in this package.
type gzipDecompressor struct{}

func (gzipDecompressor) Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(zr); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// splitExtractor treats each line of the markup as a paragraph.
type splitExtractor struct{}

func (splitExtractor) ExtractParagraphs(markup string) ([]string, error) {
	if markup == "" {
		return []string{}, nil
	}
	return strings.Split(markup, "\n"), nil
}

func writeFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func readFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

var testFulltextLayout = Layout{
	Columns:   []string{"ref_id", "content_id", "fulltext_hex"},
	IDColumns: 2,
}

var testAbstractLayout = Layout{
	Columns:   []string{"ref_id", "content_id_primary", "content_id_secondary", "title_hex", "abstract_hex"},
	IDColumns: 3,
}
