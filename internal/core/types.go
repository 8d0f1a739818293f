package core

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Category tags a processed row with the kind of text it was derived from.
type Category string

const (
	CategoryAbstract Category = "abstract"
	CategoryFulltext Category = "fulltext"
)

// ProcessedHeader is the header row of every processed table.
var ProcessedHeader = []string{
	"ref_id",
	"content_id_primary",
	"content_id_secondary",
	"category",
	"content",
}

// RawRow is one decoded record of a raw dump. It only lives inside a Chunk.
type RawRow struct {
	Index       int64       // Zero-based data row index in the input table
	RefID       int64       // text_ref id
	ContentID   int64       // Primary text_content id
	SecondaryID pgtype.Int8 // Secondary text_content id (joined shape only)
	Payloads    []string    // Hex payloads in column order
}

// TransformedRow is one record of the processed table.
type TransformedRow struct {
	RefID       int64
	ContentID   int64
	SecondaryID pgtype.Int8
	Category    Category
	Content     string // JSON array of strings
}

// Record renders the row in ProcessedHeader column order.
// A null secondary id becomes an empty cell.
func (r TransformedRow) Record() []string {
	secondary := ""
	if r.SecondaryID.Valid {
		secondary = strconv.FormatInt(r.SecondaryID.Int64, 10)
	}
	return []string{
		strconv.FormatInt(r.RefID, 10),
		strconv.FormatInt(r.ContentID, 10),
		secondary,
		string(r.Category),
		r.Content,
	}
}

// Chunk is an ordered window of input rows processed and written as a unit.
type Chunk struct {
	Number   int   // 1-based chunk number within this run
	StartRow int64 // Index of the first row in the input table
	Rows     []RawRow
}

// Layout describes the columns of a raw dump.
// The first IDColumns columns are integers; the rest are hex payloads.
type Layout struct {
	Columns   []string
	IDColumns int
}

// Payloads returns the number of payload columns.
func (l Layout) Payloads() int {
	return len(l.Columns) - l.IDColumns
}

// Decompressor inverts the packing the source database applies to content.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// ParagraphExtractor turns document markup into plain-text paragraphs.
type ParagraphExtractor interface {
	ExtractParagraphs(markup string) ([]string, error)
}

// RowTransformer converts one raw row into one processed row.
type RowTransformer interface {
	Transform(ctx context.Context, row RawRow) (TransformedRow, error)
}

// RunPhase indicates the current stage of a pipeline run.
type RunPhase string

const (
	PhaseStarting     RunPhase = "starting"
	PhaseReading      RunPhase = "reading"
	PhaseTransforming RunPhase = "transforming"
	PhaseWriting      RunPhase = "writing"
	PhaseComplete     RunPhase = "complete"
	PhaseFailed       RunPhase = "failed"
	PhaseCancelled    RunPhase = "cancelled"
)

// Terminal reports whether no further updates follow this phase.
func (p RunPhase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed || p == PhaseCancelled
}

// RunProgress represents the current state of a pipeline run.
type RunProgress struct {
	RunID       string   `json:"runId"`
	Shape       string   `json:"shape"`
	Phase       RunPhase `json:"phase"`
	Input       string   `json:"input"`
	Output      string   `json:"output"`
	SkippedRows int64    `json:"skippedRows"`
	Chunks      int      `json:"chunks"`
	RowsWritten int64    `json:"rowsWritten"`
	BytesRead   int64    `json:"bytesRead"`
	BytesTotal  int64    `json:"bytesTotal"`
	Error       string   `json:"error,omitempty"` // Non-empty if Phase is PhaseFailed
}

// Percent returns input progress as a percentage (0-100), based on bytes.
func (p RunProgress) Percent() int {
	if p.BytesTotal <= 0 {
		return 0
	}
	pct := int((p.BytesRead * 100) / p.BytesTotal)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ProgressCallback is called after every phase change and chunk write.
type ProgressCallback func(RunProgress)

// RunResult contains the final result of a pipeline run.
type RunResult struct {
	RunID       string
	Shape       string
	Input       string
	Output      string
	SkippedRows int64
	Chunks      int
	RowsWritten int64
	Duration    time.Duration
}
