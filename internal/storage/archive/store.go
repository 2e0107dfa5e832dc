// Package archive provides cold storage for pipeline reports and data
// snapshots, backed by the local filesystem or an S3-compatible service.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfarm/harvest/internal/config"
	"github.com/quantfarm/harvest/internal/core"
)

// Store defines the interface for cold storage backends
type Store interface {
	// Put stores data at the given key
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves data for the given key
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given key
	Delete(ctx context.Context, key string) error

	// Exists checks if data exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// Name identifies the backend for logs and metrics
	Name() string
}

// ReportKey builds the archive key for a commodity's pipeline report.
// Reports are laid out by date so List can page through a day's runs.
func ReportKey(commodity string, runTime time.Time, runID string) string {
	return fmt.Sprintf("reports/%s/%s/%s.json",
		runTime.UTC().Format("2006/01/02"), commodity, runID)
}

// New builds the cold storage backend named by the config.
func New(cfg config.ColdStorage) (Store, error) {
	switch cfg.Type {
	case "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cold storage type %q", cfg.Type))
	}
}
