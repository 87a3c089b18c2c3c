package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threadBody = `Hi John,

I looked at the draft you sent yesterday. Antonio added a few comments.
Tony will finalize the introduction section tonight if he has time.

Best,
Antonio`

func spanOf(t *testing.T, text, needle string, occurrence int) (int, int) {
	t.Helper()
	offset := 0
	for i := 0; ; i++ {
		idx := strings.Index(text[offset:], needle)
		require.GreaterOrEqual(t, idx, 0, "needle %q not found", needle)
		if i == occurrence {
			return offset + idx, offset + idx + len(needle)
		}
		offset += idx + len(needle)
	}
}

func TestSegment(t *testing.T) {
	t.Run("Sentences split at punctuation and blank lines", func(t *testing.T) {
		s := Segment(threadBody)
		// "Hi John," | "I looked ... yesterday." | "Antonio added ..." | "Tony will ..." | "Best, Antonio"
		assert.Equal(t, 5, s.Sentences())
	})

	t.Run("Abbreviated titles do not end a sentence", func(t *testing.T) {
		s := Segment("Dr. Ache sent it. Thanks.")
		assert.Equal(t, 2, s.Sentences())
	})

	t.Run("Empty text has no sentences", func(t *testing.T) {
		assert.Equal(t, 0, Segment("").Sentences())
	})
}

func TestSegmentationLocate(t *testing.T) {
	s := Segment(threadBody)

	t.Run("Locate first word of the text", func(t *testing.T) {
		start, end := spanOf(t, threadBody, "John", 0)
		pos, ok := s.Locate(start, end)
		require.True(t, ok)
		assert.Equal(t, Position{Sentence: 1, Start: 2, End: 3}, pos)
	})

	t.Run("Locate name at sentence start", func(t *testing.T) {
		start, end := spanOf(t, threadBody, "Tony", 0)
		pos, ok := s.Locate(start, end)
		require.True(t, ok)
		assert.Equal(t, Position{Sentence: 4, Start: 1, End: 2}, pos)
	})

	t.Run("Locate last word after a blank line", func(t *testing.T) {
		start, end := spanOf(t, threadBody, "Antonio", 1)
		pos, ok := s.Locate(start, end)
		require.True(t, ok)
		assert.Equal(t, Position{Sentence: 5, Start: 3, End: 4}, pos)
	})

	t.Run("Locate multi token span", func(t *testing.T) {
		text := "Please ask Antonio Ache about it."
		start, end := spanOf(t, text, "Antonio Ache", 0)
		pos, ok := Segment(text).Locate(start, end)
		require.True(t, ok)
		assert.Equal(t, Position{Sentence: 1, Start: 3, End: 5}, pos)
	})

	t.Run("Out of range spans are rejected", func(t *testing.T) {
		_, ok := s.Locate(-1, 3)
		assert.False(t, ok)
		_, ok = s.Locate(0, len(threadBody)+1)
		assert.False(t, ok)
		_, ok = s.Locate(5, 5)
		assert.False(t, ok)
	})

	t.Run("Whitespace only span is rejected", func(t *testing.T) {
		start := strings.Index(threadBody, "\n\n")
		_, ok := s.Locate(start, start+2)
		assert.False(t, ok)
	})
}
