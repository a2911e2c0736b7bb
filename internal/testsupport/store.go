package testsupport

import (
	"context"
	"fmt"
	"testing"

	"reelscript/internal/catalog"
	"reelscript/internal/config"
	"reelscript/internal/dialogue"
)

// MustOpenCatalog opens the SQLite catalog named by cfg and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.SQLiteStore {
	t.Helper()

	store, err := catalog.OpenSQLite(context.Background(), cfg.Catalog.Path, cfg.Catalog.BatchSize)
	if err != nil {
		t.Fatalf("catalog.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Segments builds n canonical segments for key spaced one second apart.
func Segments(key string, n int) []dialogue.Segment {
	out := make([]dialogue.Segment, 0, n)
	for i := range n {
		out = append(out, dialogue.Segment{
			TitleKey:   key,
			Text:       fmt.Sprintf("line number %d", i+1),
			StartMS:    int64(i) * 1000,
			DurationMS: 900,
			Language:   "english",
		})
	}
	return out
}
