package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

// ============================================================================
// Per-row Benchmarks
// ============================================================================

// BenchmarkDecodeHex benchmarks payload hex decoding, run twice per abstract row.
func BenchmarkDecodeHex(b *testing.B) {
	payload := packHex(b, strings.Repeat("The quick brown fox. ", 200))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeHex(payload); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSerializeContent benchmarks JSON encoding of a paragraph list.
func BenchmarkSerializeContent(b *testing.B) {
	parts := make([]string, 40)
	for i := range parts {
		parts[i] = fmt.Sprintf("Paragraph %d with <tags> & \"quotes\" that stay unescaped.", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SerializeContent(parts); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAbstractTransform benchmarks the full abstract row path.
func BenchmarkAbstractTransform(b *testing.B) {
	row := RawRow{
		RefID:       7,
		ContentID:   101,
		SecondaryID: pgtype.Int8{Int64: 102, Valid: true},
		Payloads:    []string{packHex(b, "A title"), packHex(b, strings.Repeat("Abstract text. ", 100))},
	}
	tr := AbstractTransformer{Decompressor: gzipDecompressor{}}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tr.Transform(ctx, row); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Per-chunk Benchmarks
// ============================================================================

// BenchmarkOrderedMap benchmarks fan-out overhead for a fulltext-sized chunk.
func BenchmarkOrderedMap(b *testing.B) {
	items := make([]int, 1000)
	for i := range items {
		items[i] = i
	}
	fn := func(_ context.Context, n int) (int, error) { return n * 2, nil }

	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := OrderedMap(context.Background(), workers, items, fn); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkAppendChunk benchmarks encoding and appending a 1000-row chunk.
func BenchmarkAppendChunk(b *testing.B) {
	rows := make([]TransformedRow, 1000)
	for i := range rows {
		rows[i] = TransformedRow{
			RefID:     int64(i),
			ContentID: int64(i),
			Category:  CategoryFulltext,
			Content:   `["Paragraph one.","Paragraph, two."]`,
		}
	}
	path := filepath.Join(b.TempDir(), "out.csv")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := AppendChunk(path, ProcessedHeader, rows); err != nil {
			b.Fatal(err)
		}
	}
}
