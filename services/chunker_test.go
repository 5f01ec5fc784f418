package services

import (
	"regexp"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func split(t *testing.T, c Chunker, text string) []string {
	t.Helper()
	chunks, err := c.Split(text)
	require.NoError(t, err)
	return chunks
}

func TestParagraphChunker_SingleChunk(t *testing.T) {
	c := NewParagraphChunker(800, 100)

	chunks := split(t, c, "  First paragraph.  \n\n\n\nSecond paragraph.\n")
	assert.Equal(t, []string{"First paragraph.\n\nSecond paragraph."}, chunks)
}

func TestParagraphChunker_EmptyInput(t *testing.T) {
	c := NewParagraphChunker(800, 100)

	assert.Empty(t, split(t, c, ""))
	assert.Empty(t, split(t, c, "   \n\n \n\n\t"))
}

func TestParagraphChunker_GreedyFillCarriesOverlap(t *testing.T) {
	c := NewParagraphChunker(20, 5)
	a, b, cc := strings.Repeat("a", 10), strings.Repeat("b", 10), strings.Repeat("c", 10)

	chunks := split(t, c, a+"\n\n"+b+"\n\n"+cc)
	assert.Equal(t, []string{
		a,
		"aaaaa\n\n" + b,
		"bbbbb\n\n" + cc,
	}, chunks)

	for i := 0; i+1 < len(chunks); i++ {
		prev := []rune(chunks[i])
		tail := string(prev[len(prev)-5:])
		assert.True(t, strings.HasPrefix(chunks[i+1], tail), "chunk %d should start with %q", i+1, tail)
	}
}

func TestParagraphChunker_ExactFit(t *testing.T) {
	c := NewParagraphChunker(22, 5)
	a, b := strings.Repeat("a", 10), strings.Repeat("b", 10)

	assert.Equal(t, []string{a + "\n\n" + b}, split(t, c, a+"\n\n"+b))
}

func TestParagraphChunker_OversizedParagraphSlides(t *testing.T) {
	c := NewParagraphChunker(10, 3)

	chunks := split(t, c, "abcdefghijklmnopqrstuvwxy")
	assert.Equal(t, []string{"abcdefghij", "hijklmnopq", "opqrstuvwx", "vwxy"}, chunks)
}

func TestParagraphChunker_SlideSkipsWhitespace(t *testing.T) {
	c := NewParagraphChunker(10, 3)

	chunks := split(t, c, "abcdefg   hijklmnopqrst")
	assert.Equal(t, []string{"abcdefg", "hijklmnopq", "opqrst"}, chunks)
}

func TestParagraphChunker_OversizedSeedIsCut(t *testing.T) {
	c := NewParagraphChunker(12, 5)
	a, b := strings.Repeat("a", 10), strings.Repeat("b", 12)

	chunks := split(t, c, a+"\n\n"+b)
	assert.Equal(t, []string{a, "aaaaa\n\nbbbbb", b}, chunks)
}

func TestParagraphChunker_CountsRunes(t *testing.T) {
	c := NewParagraphChunker(3, 0)

	assert.Equal(t, []string{"ééé", "éé"}, split(t, c, "ééééé"))
}

func TestParagraphChunker_Properties(t *testing.T) {
	var sb strings.Builder
	for i := range 40 {
		sb.WriteString(strings.Repeat("word ", (i*7)%60+1))
		sb.WriteString("\n\n")
		if i%9 == 0 {
			sb.WriteString("\n\n   \n\n")
		}
	}
	text := sb.String()

	for _, params := range [][2]int{{800, 100}, {120, 30}, {50, 0}, {17, 16}} {
		c := NewParagraphChunker(params[0], params[1])
		first := split(t, c, text)
		require.NotEmpty(t, first)
		for _, chunk := range first {
			assert.NotEmpty(t, strings.TrimSpace(chunk))
			assert.Equal(t, strings.TrimSpace(chunk), chunk)
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk), params[0])
		}
		assert.Equal(t, first, split(t, c, text), "chunking must be deterministic")
	}
}

func TestParagraphChunker_SequenceIsRestartable(t *testing.T) {
	c := NewParagraphChunker(20, 5)
	seq := c.Chunks("one\n\n" + strings.Repeat("x", 30) + "\n\nthree")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	assert.Greater(t, len(first), 1)

	var taken []string
	for chunk := range seq {
		taken = append(taken, chunk)
		break
	}
	assert.Equal(t, first[:1], taken)
}

func TestNewParagraphChunker_NormalizesParameters(t *testing.T) {
	c := NewParagraphChunker(0, -1)
	assert.Equal(t, DefaultMaxChars, c.maxChars)
	assert.Zero(t, c.overlap)

	c = NewParagraphChunker(10, 10)
	assert.Zero(t, c.overlap)
}

func TestRecursiveChunker(t *testing.T) {
	c := NewRecursiveChunker(50, 10)
	text := strings.Repeat("refunds are processed quickly. ", 20) + "\n\n" + strings.Repeat("shipping is free. ", 10)

	chunks := split(t, c, text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk)
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
	}
}

func TestNewChunker(t *testing.T) {
	c, err := NewChunker(StrategyParagraph, 800, 100)
	require.NoError(t, err)
	assert.IsType(t, &ParagraphChunker{}, c)

	c, err = NewChunker(StrategyRecursive, 800, 100)
	require.NoError(t, err)
	assert.IsType(t, &RecursiveChunker{}, c)

	_, err = NewChunker("sentence", 800, 100)
	assert.Error(t, err)
}

func TestNewChunkID(t *testing.T) {
	id := NewChunkID("faq.md", 3)
	assert.Regexp(t, regexp.MustCompile(`^faq\.md-3-[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, NewChunkID("faq.md", 3))
}
