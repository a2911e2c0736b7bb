// Package seeds holds the built-in batch of titles ingested by `reelscript batch`.
package seeds

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"reelscript/internal/dialogue"
)

//go:embed seeds.toml
var builtin []byte

type entry struct {
	Name        string   `toml:"name"`
	NativeName  string   `toml:"native_name"`
	Year        int      `toml:"year"`
	VideoID     string   `toml:"video_id"`
	VideoURL    string   `toml:"video_url"`
	IMDBID      string   `toml:"imdb_id"`
	Director    string   `toml:"director"`
	Description string   `toml:"description"`
	Cast        []string `toml:"cast"`
}

type file struct {
	AI        []entry `toml:"ai"`
	Subtitles []entry `toml:"subtitles"`
}

// Builtin returns the embedded seed batch, AI clips first.
func Builtin() ([]dialogue.Source, error) {
	return Parse(builtin)
}

// Load reads a seed file with the same layout as the embedded one.
func Load(path string) ([]dialogue.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seeds: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte) ([]dialogue.Source, error) {
	var f file
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seeds: %w", err)
	}
	sources := make([]dialogue.Source, 0, len(f.AI)+len(f.Subtitles))
	for _, e := range f.AI {
		sources = append(sources, e.source(dialogue.KindAI))
	}
	for _, e := range f.Subtitles {
		sources = append(sources, e.source(dialogue.KindSubtitles))
	}
	return sources, nil
}

func (e entry) source(kind string) dialogue.Source {
	id := strings.TrimSpace(e.VideoID)
	url := strings.TrimSpace(e.VideoURL)
	if id == "" {
		id, _ = dialogue.VideoIDFromURL(url)
	}
	if url == "" && id != "" && !dialogue.IsPlaceholderID(id) {
		url = dialogue.WatchURL(id)
	}
	return dialogue.Source{
		Kind:     kind,
		VideoURL: url,
		IMDBID:   strings.TrimSpace(e.IMDBID),
		Title: dialogue.Title{
			ExternalVideoID: id,
			Name:            strings.TrimSpace(e.Name),
			NativeName:      strings.TrimSpace(e.NativeName),
			Year:            e.Year,
			Cast:            e.Cast,
			Director:        strings.TrimSpace(e.Director),
			Description:     strings.TrimSpace(e.Description),
		},
	}
}
