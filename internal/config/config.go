// Package config loads bestcontent settings from environment variables.
// Defaults cover every value except the database URL, which only the dump
// commands need. Command-line flags override what is loaded here.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Pipeline PipelineConfig
	Status   StatusConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds source database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int32 `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int32 `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// QueryTimeout bounds a single export query; 0 disables it (default: 0)
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" default:"0s"`
}

// PipelineConfig holds transformation run settings.
type PipelineConfig struct {
	// AbstractChunkSize is rows per chunk for abstracts (default: 1000000)
	AbstractChunkSize int `env:"PIPELINE_ABSTRACT_CHUNK_SIZE" default:"1000000"`

	// FulltextChunkSize is rows per chunk for fulltexts (default: 1000)
	FulltextChunkSize int `env:"PIPELINE_FULLTEXT_CHUNK_SIZE" default:"1000"`

	// Workers is the worker pool size for fulltext extraction (default: 1)
	Workers int `env:"PIPELINE_WORKERS" default:"1"`

	// Restart resumes from existing output instead of replacing it (default: false)
	Restart bool `env:"PIPELINE_RESTART" default:"false"`

	// MaxConcurrentRuns bounds runs executing in one process (default: 2)
	MaxConcurrentRuns int `env:"PIPELINE_MAX_CONCURRENT_RUNS" default:"2"`

	// MaxDecompressedSize caps a single decompressed payload in bytes (default: 256MB)
	MaxDecompressedSize int64 `env:"PIPELINE_MAX_DECOMPRESSED_SIZE" default:"268435456"`
}

// StatusConfig holds settings for the optional status server.
type StatusConfig struct {
	// Addr is the listen address; empty disables the server (default: "")
	Addr string `env:"STATUS_ADDR"`

	// ShutdownTimeout is how long to wait for the server to stop (default: 5s)
	ShutdownTimeout time.Duration `env:"STATUS_SHUTDOWN_TIMEOUT" default:"5s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Enabled reports whether the status server should run.
func (c *StatusConfig) Enabled() bool {
	return c.Addr != ""
}

// validAddr reports whether addr is a host:port with a usable port.
func validAddr(addr string) bool {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p >= 0 && p <= 65535
}
