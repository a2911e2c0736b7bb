package opensubtitles

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CachedFile is one downloaded subtitle kept on disk. Payload is the decoded
// SRT text; the whole record is stored as a single JSON document per file id.
type CachedFile struct {
	FileID   int64     `json:"file_id"`
	Language string    `json:"language"`
	FileName string    `json:"file_name,omitempty"`
	IMDBID   string    `json:"imdb_id,omitempty"`
	Feature  string    `json:"feature,omitempty"`
	StoredAt time.Time `json:"stored_at"`
	Payload  []byte    `json:"payload"`
}

// Cache keeps decoded subtitle payloads so re-ingesting a title does not
// spend the account's daily download quota.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// NewCache creates dir if needed and returns a cache rooted there.
func NewCache(dir string, logger *slog.Logger) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, logger: logger}, nil
}

// Get returns the cached file for fileID. A missing, unreadable-as-JSON or
// empty record is a miss; only I/O failures are errors.
func (c *Cache) Get(fileID int64) (CachedFile, bool, error) {
	if fileID <= 0 {
		return CachedFile{}, false, fmt.Errorf("invalid file id %d", fileID)
	}
	raw, err := os.ReadFile(c.path(fileID))
	if errors.Is(err, os.ErrNotExist) {
		return CachedFile{}, false, nil
	}
	if err != nil {
		return CachedFile{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	var file CachedFile
	if err := json.Unmarshal(raw, &file); err != nil || file.FileID != fileID || len(file.Payload) == 0 {
		c.discard(fileID)
		return CachedFile{}, false, nil
	}
	return file, true, nil
}

// Put stores file, replacing any previous record for the same id.
func (c *Cache) Put(file CachedFile) error {
	if file.FileID <= 0 {
		return fmt.Errorf("invalid file id %d", file.FileID)
	}
	if len(file.Payload) == 0 {
		return errors.New("empty payload")
	}
	file.Language = strings.TrimSpace(file.Language)
	file.StoredAt = time.Now().UTC()
	raw, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	_, werr := tmp.Write(raw)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(file.FileID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit cache entry: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("subtitle cached",
			slog.Int64("file_id", file.FileID),
			slog.String("language", file.Language),
			slog.Int("bytes", len(file.Payload)),
		)
	}
	return nil
}

func (c *Cache) discard(fileID int64) {
	if err := os.Remove(c.path(fileID)); err != nil && !errors.Is(err, os.ErrNotExist) && c.logger != nil {
		c.logger.Debug("discard cache entry failed", slog.Int64("file_id", fileID), slog.Any("error", err))
	}
}

func (c *Cache) path(fileID int64) string {
	return filepath.Join(c.dir, strconv.FormatInt(fileID, 10)+".json")
}
