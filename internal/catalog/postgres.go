package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reelscript/internal/dialogue"
	"reelscript/internal/services"
)

//go:embed schema_postgres.sql
var postgresSchema string

// PostgresStore is the pooled Postgres catalog backend.
type PostgresStore struct {
	pool      *pgxpool.Pool
	batchSize int
}

// OpenPostgres connects to dsn and ensures the catalog schema exists.
func OpenPostgres(ctx context.Context, dsn string, batchSize int) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, services.Wrap(services.ErrConfiguration, services.StagePersist, "open catalog", "postgres dsn is empty", nil)
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, services.StagePersist, "open catalog", "parse dsn", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, persistErr("connect postgres", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, persistErr("ping postgres", err)
	}

	store := &PostgresStore{pool: pool, batchSize: batchSizeOrDefault(batchSize)}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	var version int
	err = tx.QueryRow(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx, "INSERT INTO schema_version (version) VALUES ($1)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Replace upserts title and swaps its segments for the given set in one transaction.
func (s *PostgresStore) Replace(ctx context.Context, title dialogue.Title, segments []dialogue.Segment) (ReplaceResult, error) {
	if err := validateReplace(title); err != nil {
		return ReplaceResult{}, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ReplaceResult{}, persistErr("begin replace", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var titleID, generation int64
	err = tx.QueryRow(ctx,
		`INSERT INTO titles (
            external_video_id, slug, name, native_name, year, cast_names, director, description, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (external_video_id) DO UPDATE SET
            slug = EXCLUDED.slug,
            name = EXCLUDED.name,
            native_name = EXCLUDED.native_name,
            year = EXCLUDED.year,
            cast_names = EXCLUDED.cast_names,
            director = EXCLUDED.director,
            description = EXCLUDED.description,
            updated_at = EXCLUDED.updated_at
        RETURNING id, generation`,
		title.ExternalVideoID,
		title.Slug(),
		title.Name,
		nullableString(title.NativeName),
		nullableInt(title.Year),
		trimmedCast(title.Cast),
		nullableString(title.Director),
		nullableString(title.Description),
		time.Now().UTC(),
	).Scan(&titleID, &generation)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && titleID == 0) {
		return ReplaceResult{}, services.Wrap(services.ErrPersistence, services.StagePersist, "upsert title", "no identity returned", err)
	}
	if err != nil {
		return ReplaceResult{}, persistErr("upsert title", err)
	}

	next := generation + 1
	inserted := 0
	for _, chunk := range chunks(segments, s.batchSize) {
		batch := &pgx.Batch{}
		for i, seg := range chunk {
			batch.Queue(
				`INSERT INTO segments (title_id, generation, seq, text, start_ms, duration_ms, language)
                 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				titleID, next, inserted+i, seg.Text, seg.StartMS, seg.DurationMS, seg.Language,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return ReplaceResult{}, persistErr("insert segments", err)
		}
		inserted += len(chunk)
	}

	if _, err := tx.Exec(ctx, "UPDATE titles SET generation = $1 WHERE id = $2", next, titleID); err != nil {
		return ReplaceResult{}, persistErr("advance generation", err)
	}
	tag, err := tx.Exec(ctx, "DELETE FROM segments WHERE title_id = $1 AND generation < $2", titleID, next)
	if err != nil {
		return ReplaceResult{}, persistErr("drop old segments", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return ReplaceResult{}, persistErr("commit replace", err)
	}
	return ReplaceResult{TitleID: titleID, Generation: next, Inserted: inserted, Removed: tag.RowsAffected()}, nil
}

const postgresTitleColumns = `t.id, t.external_video_id, t.slug, t.name, t.native_name, t.year, t.cast_names, t.director, t.description, t.generation, t.updated_at`

// Title returns the stored title with the given external video id.
func (s *PostgresStore) Title(ctx context.Context, externalID string) (TitleRecord, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+postgresTitleColumns+" FROM titles t WHERE t.external_video_id = $1", externalID)
	rec, err := scanPostgresTitle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return TitleRecord{}, notFound(externalID)
	}
	if err != nil {
		return TitleRecord{}, persistErr("read title", err)
	}
	return rec, nil
}

// Segments returns the current segment set for a title in insertion order.
func (s *PostgresStore) Segments(ctx context.Context, externalID string) ([]dialogue.Segment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT s.text, s.start_ms, s.duration_ms, s.language
         FROM segments s JOIN titles t ON t.id = s.title_id
         WHERE t.external_video_id = $1 AND s.generation = t.generation
         ORDER BY s.seq`, externalID)
	if err != nil {
		return nil, persistErr("read segments", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dialogue.Segment, error) {
		seg := dialogue.Segment{TitleKey: externalID}
		err := row.Scan(&seg.Text, &seg.StartMS, &seg.DurationMS, &seg.Language)
		return seg, err
	})
	if err != nil {
		return nil, persistErr("read segments", err)
	}
	return out, nil
}

// CountSegments returns the number of current segments for a title.
func (s *PostgresStore) CountSegments(ctx context.Context, externalID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(s.id)
         FROM titles t LEFT JOIN segments s ON s.title_id = t.id AND s.generation = t.generation
         WHERE t.external_video_id = $1
         GROUP BY t.id`, externalID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, notFound(externalID)
	}
	if err != nil {
		return 0, persistErr("count segments", err)
	}
	return count, nil
}

// ListTitles returns every stored title ordered by name and year.
func (s *PostgresStore) ListTitles(ctx context.Context) ([]TitleSummary, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+postgresTitleColumns+`, COUNT(s.id)
         FROM titles t LEFT JOIN segments s ON s.title_id = t.id AND s.generation = t.generation
         GROUP BY t.id
         ORDER BY lower(t.name), t.year`)
	if err != nil {
		return nil, persistErr("list titles", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TitleSummary, error) {
		var summary TitleSummary
		var count int64
		rec, err := scanPostgresTitle(row, &count)
		summary.TitleRecord = rec
		summary.Segments = int(count)
		return summary, err
	})
	if err != nil {
		return nil, persistErr("list titles", err)
	}
	return out, nil
}

func scanPostgresTitle(row pgx.Row, extra ...any) (TitleRecord, error) {
	var (
		rec         TitleRecord
		nativeName  *string
		year        *int32
		director    *string
		description *string
	)
	dest := []any{
		&rec.ID, &rec.Title.ExternalVideoID, &rec.Slug, &rec.Title.Name, &nativeName, &year,
		&rec.Title.Cast, &director, &description, &rec.Generation, &rec.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return TitleRecord{}, err
	}
	if nativeName != nil {
		rec.Title.NativeName = *nativeName
	}
	if year != nil {
		rec.Title.Year = int(*year)
	}
	if director != nil {
		rec.Title.Director = *director
	}
	if description != nil {
		rec.Title.Description = *description
	}
	return rec, nil
}
