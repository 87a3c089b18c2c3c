package pipeline

import (
	"regexp"
	"strings"
)

var (
	tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*|[^\s\p{L}\p{N}]`)
	// Abbreviations whose trailing period does not end a sentence
	abbreviations = map[string]struct{}{
		"dr": {}, "mr": {}, "mrs": {}, "ms": {}, "prof": {}, "st": {}, "jr": {}, "sr": {},
	}
)

type token struct {
	start int
	end   int
}

// Position locates a span by one-based sentence and token indices.
// End is exclusive.
type Position struct {
	Sentence int
	Start    int
	End      int
}

// Segmentation splits a text into sentences of word and punctuation tokens.
// Sentences end after ".", "!" or "?" and at blank lines.
type Segmentation struct {
	text      string
	sentences [][]token
}

// Segment tokenizes text into sentences
func Segment(text string) *Segmentation {
	s := &Segmentation{text: text}

	var current []token
	prevEnd := 0
	for _, loc := range tokenPattern.FindAllStringIndex(text, -1) {
		if len(current) > 0 && strings.Count(text[prevEnd:loc[0]], "\n") >= 2 {
			s.sentences = append(s.sentences, current)
			current = nil
		}

		current = append(current, token{start: loc[0], end: loc[1]})
		prevEnd = loc[1]

		if s.endsSentence(current) {
			s.sentences = append(s.sentences, current)
			current = nil
		}
	}
	if len(current) > 0 {
		s.sentences = append(s.sentences, current)
	}

	return s
}

func (s *Segmentation) endsSentence(tokens []token) bool {
	last := s.text[tokens[len(tokens)-1].start:tokens[len(tokens)-1].end]
	switch last {
	case "!", "?":
		return true
	case ".":
		if len(tokens) < 2 {
			return true
		}
		prev := tokens[len(tokens)-2]
		if prev.end != tokens[len(tokens)-1].start {
			return true
		}
		_, abbreviation := abbreviations[strings.ToLower(s.text[prev.start:prev.end])]
		return !abbreviation
	}
	return false
}

// Sentences returns the number of sentences
func (s *Segmentation) Sentences() int {
	return len(s.sentences)
}

// Locate returns the position of the byte range [start, end).
// A span crossing a sentence boundary is cut at the end of its first sentence.
// It returns false if no token overlaps the range.
func (s *Segmentation) Locate(start, end int) (Position, bool) {
	if start < 0 || end > len(s.text) || start >= end {
		return Position{}, false
	}

	for si, sentence := range s.sentences {
		first := -1
		last := -1
		for ti, tok := range sentence {
			if tok.end <= start {
				continue
			}
			if tok.start >= end {
				break
			}
			if first < 0 {
				first = ti
			}
			last = ti
		}
		if first >= 0 {
			return Position{
				Sentence: si + 1,
				Start:    first + 1,
				End:      last + 2,
			}, true
		}
	}

	return Position{}, false
}
