package services

import (
	"fmt"
	"strings"

	"github.com/itish2003/supportbot/models"
)

const (
	contextSeparator = "\n\n---\n\n"
	defaultTitle     = "doc"
)

// BuildContext renders retrieval hits as a numbered context block and the
// parallel source list. Rank n in the block and in the list is the n-th hit.
func BuildContext(hits []models.RetrievalHit) (string, []models.Source) {
	blocks := make([]string, 0, len(hits))
	sources := make([]models.Source, 0, len(hits))
	for i, hit := range hits {
		n := i + 1
		blocks = append(blocks, fmt.Sprintf("[%d] %s", n, hit.Text))
		sources = append(sources, models.Source{
			N:     n,
			Title: metaString(hit.Metadata, models.MetaTitle, defaultTitle),
			URL:   metaString(hit.Metadata, models.MetaSource, ""),
		})
	}
	return strings.Join(blocks, contextSeparator), sources
}

// RenderSources formats the source list as "[n] title - url" lines.
func RenderSources(sources []models.Source) string {
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, fmt.Sprintf("[%d] %s - %s", s.N, s.Title, s.URL))
	}
	return strings.Join(lines, "\n")
}

func metaString(meta map[string]any, key, fallback string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
