package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"reelscript/internal/dialogue"
	"reelscript/internal/testsupport"
)

func TestCatalogListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"catalog", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	requireContains(t, out, "Catalog is empty")

	store := testsupport.MustOpenCatalog(t, env.cfg)
	title := dialogue.Title{ExternalVideoID: "IfkZMODd0A0", Name: "Vikram", Year: 2022, Director: "Lokesh Kanagaraj"}
	if _, err := store.Replace(context.Background(), title, testsupport.Segments(title.ExternalVideoID, 3)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out, _, err = runCLI(t, []string{"catalog", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	requireContains(t, out, "Vikram (2022)")
	requireContains(t, out, "1 titles, 3 segments")

	out, _, err = runCLI(t, []string{"catalog", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog list --json: %v", err)
	}
	var titles []jsonTitle
	if err := json.Unmarshal([]byte(out), &titles); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(titles) != 1 || titles[0].VideoID != "IfkZMODd0A0" || titles[0].Segments != 3 {
		t.Fatalf("unexpected titles: %+v", titles)
	}

	out, _, err = runCLI(t, []string{"catalog", "show", "IfkZMODd0A0", "--limit", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog show: %v", err)
	}
	requireContains(t, out, "Lokesh Kanagaraj")
	requireContains(t, out, "line number 2")
	if strings.Contains(out, "line number 3") {
		t.Fatalf("expected --limit 2 to hide the third segment:\n%s", out)
	}

	if _, _, err := runCLI(t, []string{"catalog", "show", "missing"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown video id")
	}
}
