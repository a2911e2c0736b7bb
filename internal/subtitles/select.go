package subtitles

import (
	"sort"
	"strings"

	"reelscript/internal/subtitles/opensubtitles"
)

// Rank returns the candidates in lang. Human-made files come before AI or
// machine translations, then higher download counts win. Equal counts prefer
// files without hearing-impaired cues, then the lower file id.
func Rank(candidates []opensubtitles.Subtitle, lang string) []opensubtitles.Subtitle {
	lang = strings.ToLower(strings.TrimSpace(lang))
	ranked := make([]opensubtitles.Subtitle, 0, len(candidates))
	for _, c := range candidates {
		if c.FileID <= 0 || strings.ToLower(c.Language) != lang {
			continue
		}
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AITranslated != ranked[j].AITranslated {
			return !ranked[i].AITranslated
		}
		if ranked[i].Downloads != ranked[j].Downloads {
			return ranked[i].Downloads > ranked[j].Downloads
		}
		if ranked[i].HearingImpaired != ranked[j].HearingImpaired {
			return !ranked[i].HearingImpaired
		}
		return ranked[i].FileID < ranked[j].FileID
	})
	return ranked
}

// Select picks the best candidate, trying each language in order and
// returning the top-ranked entry of the first language that has any.
func Select(candidates []opensubtitles.Subtitle, languages ...string) (opensubtitles.Subtitle, bool) {
	for _, lang := range languages {
		if ranked := Rank(candidates, lang); len(ranked) > 0 {
			return ranked[0], true
		}
	}
	return opensubtitles.Subtitle{}, false
}
