package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelscript/internal/dialogue"
	"reelscript/internal/services"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteStore is the single-file catalog backend.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	batchSize int
}

// OpenSQLite opens or creates the catalog database at path.
func OpenSQLite(ctx context.Context, path string, batchSize int) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, services.StagePersist, "open catalog", "sqlite path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// PRAGMAs below are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path, batchSize: batchSizeOrDefault(batchSize)}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: %s has version %d, expected %d (delete the file to rebuild)",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Replace upserts title and swaps its segments for the given set in one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, title dialogue.Title, segments []dialogue.Segment) (ReplaceResult, error) {
	if err := validateReplace(title); err != nil {
		return ReplaceResult{}, err
	}
	castJSON, err := json.Marshal(trimmedCast(title.Cast))
	if err != nil {
		return ReplaceResult{}, persistErr("encode cast", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ReplaceResult{}, persistErr("begin replace", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		titleID    int64
		generation int64
	)
	err = tx.QueryRowContext(ctx,
		`INSERT INTO titles (
            external_video_id, slug, name, native_name, year, cast_json, director, description, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(external_video_id) DO UPDATE SET
            slug = excluded.slug,
            name = excluded.name,
            native_name = excluded.native_name,
            year = excluded.year,
            cast_json = excluded.cast_json,
            director = excluded.director,
            description = excluded.description,
            updated_at = excluded.updated_at
        RETURNING id, generation`,
		title.ExternalVideoID,
		title.Slug(),
		title.Name,
		nullableString(title.NativeName),
		nullableInt(title.Year),
		string(castJSON),
		nullableString(title.Director),
		nullableString(title.Description),
		time.Now().UTC().Format(time.RFC3339Nano),
	).Scan(&titleID, &generation)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && titleID == 0) {
		return ReplaceResult{}, services.Wrap(services.ErrPersistence, services.StagePersist, "upsert title", "no identity returned", err)
	}
	if err != nil {
		return ReplaceResult{}, persistErr("upsert title", err)
	}

	next := generation + 1
	inserted := 0
	for _, batch := range chunks(segments, s.batchSize) {
		query, args := sqliteInsertBatch(titleID, next, inserted, batch)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return ReplaceResult{}, persistErr("insert segments", err)
		}
		inserted += len(batch)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE titles SET generation = ? WHERE id = ?", next, titleID); err != nil {
		return ReplaceResult{}, persistErr("advance generation", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM segments WHERE title_id = ? AND generation < ?", titleID, next)
	if err != nil {
		return ReplaceResult{}, persistErr("drop old segments", err)
	}
	removed, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ReplaceResult{}, persistErr("commit replace", err)
	}
	return ReplaceResult{TitleID: titleID, Generation: next, Inserted: inserted, Removed: removed}, nil
}

func sqliteInsertBatch(titleID, generation int64, offset int, batch []dialogue.Segment) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO segments (title_id, generation, seq, text, start_ms, duration_ms, language) VALUES ")
	args := make([]any, 0, len(batch)*7)
	for i, seg := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, titleID, generation, offset+i, seg.Text, seg.StartMS, seg.DurationMS, seg.Language)
	}
	return b.String(), args
}

const sqliteTitleColumns = `id, external_video_id, slug, name, native_name, year, cast_json, director, description, generation, updated_at`

// Title returns the stored title with the given external video id.
func (s *SQLiteStore) Title(ctx context.Context, externalID string) (TitleRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sqliteTitleColumns+" FROM titles WHERE external_video_id = ?", externalID)
	rec, err := scanSQLiteTitle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TitleRecord{}, notFound(externalID)
	}
	if err != nil {
		return TitleRecord{}, persistErr("read title", err)
	}
	return rec, nil
}

// Segments returns the current segment set for a title in insertion order.
func (s *SQLiteStore) Segments(ctx context.Context, externalID string) ([]dialogue.Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.text, s.start_ms, s.duration_ms, s.language
         FROM segments s JOIN titles t ON t.id = s.title_id
         WHERE t.external_video_id = ? AND s.generation = t.generation
         ORDER BY s.seq`, externalID)
	if err != nil {
		return nil, persistErr("read segments", err)
	}
	defer rows.Close()

	var out []dialogue.Segment
	for rows.Next() {
		seg := dialogue.Segment{TitleKey: externalID}
		if err := rows.Scan(&seg.Text, &seg.StartMS, &seg.DurationMS, &seg.Language); err != nil {
			return nil, persistErr("scan segment", err)
		}
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("read segments", err)
	}
	return out, nil
}

// CountSegments returns the number of current segments for a title.
func (s *SQLiteStore) CountSegments(ctx context.Context, externalID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(s.id)
         FROM titles t LEFT JOIN segments s ON s.title_id = t.id AND s.generation = t.generation
         WHERE t.external_video_id = ?
         GROUP BY t.id`, externalID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound(externalID)
	}
	if err != nil {
		return 0, persistErr("count segments", err)
	}
	return count, nil
}

// ListTitles returns every stored title ordered by name and year.
func (s *SQLiteStore) ListTitles(ctx context.Context) ([]TitleSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.external_video_id, t.slug, t.name, t.native_name, t.year, t.cast_json,
                t.director, t.description, t.generation, t.updated_at, COUNT(s.id)
         FROM titles t LEFT JOIN segments s ON s.title_id = t.id AND s.generation = t.generation
         GROUP BY t.id
         ORDER BY t.name COLLATE NOCASE, t.year`)
	if err != nil {
		return nil, persistErr("list titles", err)
	}
	defer rows.Close()

	var out []TitleSummary
	for rows.Next() {
		var summary TitleSummary
		rec, err := scanSQLiteTitle(rows, &summary.Segments)
		if err != nil {
			return nil, persistErr("scan title", err)
		}
		summary.TitleRecord = rec
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list titles", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTitle(row rowScanner, extra ...any) (TitleRecord, error) {
	var (
		rec         TitleRecord
		nativeName  sql.NullString
		year        sql.NullInt64
		castJSON    string
		director    sql.NullString
		description sql.NullString
		updatedAt   string
	)
	dest := []any{
		&rec.ID, &rec.Title.ExternalVideoID, &rec.Slug, &rec.Title.Name, &nativeName, &year,
		&castJSON, &director, &description, &rec.Generation, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return TitleRecord{}, err
	}
	rec.Title.NativeName = nativeName.String
	rec.Title.Year = int(year.Int64)
	rec.Title.Director = director.String
	rec.Title.Description = description.String
	if castJSON != "" {
		if err := json.Unmarshal([]byte(castJSON), &rec.Title.Cast); err != nil {
			return TitleRecord{}, fmt.Errorf("decode cast: %w", err)
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		rec.UpdatedAt = ts
	}
	return rec, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value <= 0 {
		return nil
	}
	return value
}
