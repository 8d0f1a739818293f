package content

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// DefaultMaxDecompressedSize caps the size of a single decompressed payload.
const DefaultMaxDecompressedSize = 256 << 20

// GzipDecompressor unpacks gzip-compressed text content.
type GzipDecompressor struct {
	// MaxSize is the largest decompressed payload accepted.
	// Zero means DefaultMaxDecompressedSize.
	MaxSize int64
}

// Decompress returns the decompressed bytes of data.
func (d GzipDecompressor) Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip header: %w", err)
	}
	defer zr.Close()

	limit := d.MaxSize
	if limit <= 0 {
		limit = DefaultMaxDecompressedSize
	}

	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, fmt.Errorf("gzip body: %w", err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("decompressed payload exceeds %d bytes", limit)
	}
	return out, nil
}
