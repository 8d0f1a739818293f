// Package database exports raw tables from the source PostgreSQL database
// into local CSV files using COPY.
package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/bestcontent/internal/config"
	"github.com/JonMunkholm/bestcontent/internal/core"
	"github.com/JonMunkholm/bestcontent/internal/logging"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CopySource runs a COPY ... TO STDOUT statement and streams its output to w.
type CopySource interface {
	CopyTo(ctx context.Context, w io.Writer, sql string) (pgconn.CommandTag, error)
}

// PoolSource runs COPY statements on connections from a pgx pool.
type PoolSource struct {
	Pool *pgxpool.Pool
}

// CopyTo implements CopySource.
func (s PoolSource) CopyTo(ctx context.Context, w io.Writer, sql string) (pgconn.CommandTag, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return conn.Conn().PgConn().CopyTo(ctx, w, sql)
}

// Connect opens and pings a connection pool for cfg.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// ExportResult describes one finished export.
type ExportResult struct {
	Name     string
	Path     string
	Rows     int64
	Bytes    int64
	Duration time.Duration
}

// Exporter writes the result of export queries to CSV files.
type Exporter struct {
	src     CopySource
	timeout time.Duration
}

// NewExporter creates an Exporter. A zero timeout leaves queries unbounded.
func NewExporter(src CopySource, timeout time.Duration) *Exporter {
	return &Exporter{src: src, timeout: timeout}
}

// DumpAbstracts writes the raw abstracts table to dest.
func (e *Exporter) DumpAbstracts(ctx context.Context, dest string) (*ExportResult, error) {
	return e.Dump(ctx, exports["abstracts"], dest)
}

// DumpFulltexts writes the raw fulltexts table to dest.
func (e *Exporter) DumpFulltexts(ctx context.Context, dest string) (*ExportResult, error) {
	return e.Dump(ctx, exports["fulltexts"], dest)
}

// DumpPMIDMap writes the pmid to ref_id table to dest.
func (e *Exporter) DumpPMIDMap(ctx context.Context, dest string) (*ExportResult, error) {
	return e.Dump(ctx, exports["pmids"], dest)
}

// Dump runs the export's query and writes its rows to dest as headerless
// CSV. Rows are written to a temporary file in the destination directory
// that is renamed over dest only after the query succeeds, so a failed
// export leaves no partial file.
func (e *Exporter) Dump(ctx context.Context, export Export, dest string) (*ExportResult, error) {
	logger := logging.WithFields(ctx, "export", export.Name, "dest", dest)
	start := time.Now()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriterSize(tmp, 1<<20)

	logger.Info("export started")
	tag, err := e.src.CopyTo(ctx, bw, CopySQL(export.Query))
	if err != nil {
		logger.Error("export failed", "error", err)
		return nil, &core.SourceUnavailableError{Query: export.Name, Err: err}
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	info, err := tmp.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, fmt.Errorf("rename to %s: %w", dest, err)
	}
	committed = true

	result := &ExportResult{
		Name:     export.Name,
		Path:     dest,
		Rows:     tag.RowsAffected(),
		Bytes:    info.Size(),
		Duration: time.Since(start),
	}
	logger.Info("export completed",
		"rows", result.Rows,
		"bytes", result.Bytes,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// CopySQL wraps query in a COPY statement producing headerless CSV.
func CopySQL(query string) string {
	return fmt.Sprintf("COPY (%s) TO STDOUT WITH (FORMAT csv)", strings.TrimSpace(query))
}
