package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reelscript/internal/config"
	"reelscript/internal/dialogue"
	"reelscript/internal/services"
)

// DefaultBatchSize bounds the number of segment rows per insert statement.
const DefaultBatchSize = 500

// MaxBatchSize keeps a multi-row SQLite insert (seven parameters per row)
// under SQLite's 32766 bound-variable limit.
const MaxBatchSize = 4000

// schemaVersion is bumped whenever either schema file changes. Existing
// catalogs with a different version must be rebuilt.
const schemaVersion = 1

// ErrSchemaMismatch indicates the catalog was created by an incompatible build.
var ErrSchemaMismatch = errors.New("catalog schema version mismatch")

// TitleRecord is a title as stored in the catalog.
type TitleRecord struct {
	ID         int64
	Title      dialogue.Title
	Slug       string
	Generation int64
	UpdatedAt  time.Time
}

// TitleSummary pairs a stored title with its current segment count.
type TitleSummary struct {
	TitleRecord
	Segments int
}

// ReplaceResult reports what a Replace call changed.
type ReplaceResult struct {
	TitleID    int64
	Generation int64
	Inserted   int
	Removed    int64
}

// Store is the catalog contract shared by every backend.
type Store interface {
	Replace(ctx context.Context, title dialogue.Title, segments []dialogue.Segment) (ReplaceResult, error)
	Title(ctx context.Context, externalID string) (TitleRecord, error)
	Segments(ctx context.Context, externalID string) ([]dialogue.Segment, error)
	CountSegments(ctx context.Context, externalID string) (int, error)
	ListTitles(ctx context.Context) ([]TitleSummary, error)
	Close() error
}

// Open returns the backend selected by cfg.Catalog.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, services.StagePersist, "open catalog", "config is nil", nil)
	}
	switch cfg.Catalog.Driver {
	case config.CatalogPostgres:
		return OpenPostgres(ctx, cfg.Catalog.DSN, cfg.Catalog.BatchSize)
	case config.CatalogSQLite, "":
		return OpenSQLite(ctx, cfg.Catalog.Path, cfg.Catalog.BatchSize)
	default:
		return nil, services.Wrap(services.ErrConfiguration, services.StagePersist, "open catalog",
			fmt.Sprintf("unsupported driver %q", cfg.Catalog.Driver), nil)
	}
}

func validateReplace(title dialogue.Title) error {
	if strings.TrimSpace(title.ExternalVideoID) == "" {
		return services.Wrap(services.ErrPersistence, services.StagePersist, "upsert title", "external video id is empty", nil)
	}
	return nil
}

func persistErr(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, services.StagePersist, operation, "", err)
	}
	return services.Wrap(services.ErrPersistence, services.StagePersist, operation, "", err)
}

func notFound(externalID string) error {
	return services.Wrap(services.ErrNotFound, services.StagePersist, "lookup title",
		fmt.Sprintf("no title with video id %q", externalID), nil)
}

func batchSizeOrDefault(size int) int {
	if size <= 0 {
		return DefaultBatchSize
	}
	return min(size, MaxBatchSize)
}

// chunks splits segments into consecutive slices of at most size rows.
func chunks(segments []dialogue.Segment, size int) [][]dialogue.Segment {
	if len(segments) == 0 {
		return nil
	}
	out := make([][]dialogue.Segment, 0, (len(segments)+size-1)/size)
	for start := 0; start < len(segments); start += size {
		end := min(start+size, len(segments))
		out = append(out, segments[start:end])
	}
	return out
}

func trimmedCast(cast []string) []string {
	out := make([]string, 0, len(cast))
	for _, name := range cast {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
