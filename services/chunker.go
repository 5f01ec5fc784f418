package services

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

// Chunking defaults used when the configuration leaves them unset.
const (
	DefaultMaxChars = 800
	DefaultOverlap  = 100
)

// Chunking strategies selectable through RAG_CHUNK_STRATEGY.
const (
	StrategyParagraph = "paragraph"
	StrategyRecursive = "recursive"
)

const paragraphSeparator = "\n\n"

// Chunker splits the full text of one document into embeddable segments.
type Chunker interface {
	Split(text string) ([]string, error)
}

// NewChunker returns the chunker registered under strategy.
func NewChunker(strategy string, maxChars, overlap int) (Chunker, error) {
	switch strategy {
	case StrategyParagraph, "":
		return NewParagraphChunker(maxChars, overlap), nil
	case StrategyRecursive:
		return NewRecursiveChunker(maxChars, overlap), nil
	default:
		return nil, fmt.Errorf("unknown chunk strategy %q", strategy)
	}
}

// ParagraphChunker greedily packs blank-line separated paragraphs into
// chunks of at most maxChars runes, carrying the last overlap runes of each
// emitted chunk into the next one.
type ParagraphChunker struct {
	maxChars int
	overlap  int
}

// NewParagraphChunker creates a ParagraphChunker. A non-positive maxChars
// falls back to DefaultMaxChars; an overlap outside [0, maxChars) is dropped.
func NewParagraphChunker(maxChars, overlap int) *ParagraphChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 || overlap >= maxChars {
		overlap = 0
	}
	return &ParagraphChunker{maxChars: maxChars, overlap: overlap}
}

// Split implements Chunker.
func (c *ParagraphChunker) Split(text string) ([]string, error) {
	return slices.Collect(c.Chunks(text)), nil
}

// Chunks returns the chunk sequence for text. The sequence is lazy and can be
// ranged over any number of times with identical results.
func (c *ParagraphChunker) Chunks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var buf []rune
		for _, para := range strings.Split(text, paragraphSeparator) {
			p := []rune(strings.TrimSpace(para))
			if len(p) == 0 {
				continue
			}

			switch {
			case len(buf) == 0:
				buf = p
			case len(buf)+len(paragraphSeparator)+len(p) <= c.maxChars:
				buf = joinParagraphs(buf, p)
			default:
				if !yield(string(buf)) {
					return
				}
				seed := string(c.tail(buf)) + paragraphSeparator + string(p)
				buf = []rune(strings.TrimSpace(seed))
			}

			// Oversized buffers are cut at maxChars; the next window restarts
			// overlap runes before the cut, without leading whitespace.
			for len(buf) > c.maxChars {
				if !yield(strings.TrimRightFunc(string(buf[:c.maxChars]), unicode.IsSpace)) {
					return
				}
				buf = buf[c.maxChars-c.overlap:]
				for len(buf) > 0 && unicode.IsSpace(buf[0]) {
					buf = buf[1:]
				}
			}
		}
		if len(buf) > 0 {
			yield(string(buf))
		}
	}
}

func (c *ParagraphChunker) tail(buf []rune) []rune {
	if len(buf) > c.overlap {
		return buf[len(buf)-c.overlap:]
	}
	return buf
}

func joinParagraphs(buf, p []rune) []rune {
	out := make([]rune, 0, len(buf)+len(paragraphSeparator)+len(p))
	out = append(out, buf...)
	out = append(out, []rune(paragraphSeparator)...)
	return append(out, p...)
}

// RecursiveChunker delegates to langchaingo's recursive character splitter.
type RecursiveChunker struct {
	splitter textsplitter.RecursiveCharacter
}

// NewRecursiveChunker creates a RecursiveChunker with the given size and overlap.
func NewRecursiveChunker(maxChars, overlap int) *RecursiveChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 || overlap >= maxChars {
		overlap = 0
	}
	return &RecursiveChunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(maxChars),
			textsplitter.WithChunkOverlap(overlap),
		),
	}
}

// Split implements Chunker. Whitespace-only pieces are dropped.
func (c *RecursiveChunker) Split(text string) ([]string, error) {
	parts, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("recursive split: %w", err)
	}
	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks, nil
}

// NewChunkID builds the identifier of the index-th chunk of a document:
// title, index and an 8 hex digit random suffix.
func NewChunkID(title string, index int) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", title, index, suffix)
}
