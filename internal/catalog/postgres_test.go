package catalog_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"reelscript/internal/catalog"
	"reelscript/internal/dialogue"
	"reelscript/internal/testsupport"
)

func TestPostgresReplaceIsIdempotent(t *testing.T) {
	dsn := os.Getenv("REELSCRIPT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("REELSCRIPT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := catalog.OpenPostgres(ctx, dsn, 2)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer store.Close()

	title := dialogue.Title{
		ExternalVideoID: "test-" + uuid.NewString(),
		Name:            "Chandramukhi",
		NativeName:      "சந்திரமுகி",
		Year:            2005,
		Cast:            []string{"Rajinikanth", "Jyothika"},
		Director:        "P. Vasu",
	}
	segments := testsupport.Segments(title.ExternalVideoID, 5)
	if _, err := store.Replace(ctx, title, segments); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	res, err := store.Replace(ctx, title, segments)
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if res.Inserted != 5 || res.Removed != 5 {
		t.Fatalf("unexpected result: %+v", res)
	}
	count, err := store.CountSegments(ctx, title.ExternalVideoID)
	if err != nil || count != 5 {
		t.Fatalf("count = %d, %v", count, err)
	}
	rec, err := store.Title(ctx, title.ExternalVideoID)
	if err != nil {
		t.Fatalf("title: %v", err)
	}
	if rec.Title.NativeName != title.NativeName || len(rec.Title.Cast) != 2 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
