package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/siherrmann/mailcoref/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordAnnotator returns one chain per capitalized word, all in sentence 1
func wordAnnotator(text string) (model.CorefChains, error) {
	chains := model.CorefChains{}
	for i, word := range strings.Fields(text) {
		if word[0] >= 'A' && word[0] <= 'Z' {
			chains[len(chains)+1] = []model.MentionSpan{{Text: word, SentenceIndex: 1, StartIndex: i + 1, EndIndex: i + 2}}
		}
	}
	if len(chains) == 0 {
		return nil, nil
	}
	return chains, nil
}

func testEmails() []*model.EmailMessage {
	return []*model.EmailMessage{
		{MessageID: "m1", FromName: "Antonio Ache", FromEmail: "antonio@example.com", Body: "hi John"},
		{MessageID: "m2", FromName: "John Smith", FromEmail: "jsmith@corp.com", Body: "hi Antonio and Tony"},
		{MessageID: "m3", FromName: "Tony", FromEmail: "tony@example.com", Body: "thanks all"},
	}
}

func TestNewPipeline(t *testing.T) {
	t.Run("New pipeline is sequential", func(t *testing.T) {
		p := NewPipeline(wordAnnotator)
		assert.NotNil(t, p.Annotator)
		assert.Equal(t, 1, p.Concurrency)
	})
}

func TestPipelineProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("Process annotates every email in order", func(t *testing.T) {
		p := NewPipeline(wordAnnotator)

		results, err := p.Process(ctx, testEmails())
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, "m1", results[0].Email.MessageID)
		require.Len(t, results[0].Mentions, 1)
		assert.Equal(t, "John", results[0].Mentions[0].Text)
		assert.Equal(t, 1, results[0].Mentions[0].StartToken, "Expected zero-based token index")

		require.Len(t, results[1].Mentions, 2)
		assert.Equal(t, "Antonio", results[1].Mentions[0].Text)
		assert.Equal(t, "Tony", results[1].Mentions[1].Text)

		assert.Empty(t, results[2].Mentions, "Expected no mentions when the annotator finds no chains")
	})

	t.Run("Parallel annotation keeps input order", func(t *testing.T) {
		slowFirst := func(text string) (model.CorefChains, error) {
			if strings.Contains(text, "John") && !strings.Contains(text, "Antonio") {
				time.Sleep(20 * time.Millisecond)
			}
			return wordAnnotator(text)
		}
		p := NewPipeline(slowFirst)
		p.SetConcurrency(3)

		results, err := p.Process(ctx, testEmails())
		require.NoError(t, err)
		require.Len(t, results, 3)
		for i, id := range []string{"m1", "m2", "m3"} {
			assert.Equal(t, id, results[i].Email.MessageID)
		}
	})

	t.Run("Concurrency is bounded", func(t *testing.T) {
		var running, peak atomic.Int32
		annotator := func(text string) (model.CorefChains, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil, nil
		}

		emails := make([]*model.EmailMessage, 10)
		for i := range emails {
			emails[i] = &model.EmailMessage{MessageID: string(rune('a' + i))}
		}

		p := NewPipeline(annotator)
		p.SetConcurrency(2)

		_, err := p.Process(ctx, emails)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("Annotator error is surfaced with the message id", func(t *testing.T) {
		failing := func(text string) (model.CorefChains, error) {
			if strings.Contains(text, "Tony") {
				return nil, errors.New("annotator timeout")
			}
			return wordAnnotator(text)
		}
		p := NewPipeline(failing)

		results, err := p.Process(ctx, testEmails())
		require.Error(t, err)
		assert.Nil(t, results)
		assert.Contains(t, err.Error(), "m2")
		assert.Contains(t, err.Error(), "annotator timeout")
	})

	t.Run("Missing annotator is an error", func(t *testing.T) {
		p := NewPipeline(nil)

		_, err := p.Process(ctx, testEmails())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "annotator not set")
	})

	t.Run("Nil email is an error", func(t *testing.T) {
		p := NewPipeline(wordAnnotator)

		_, err := p.Process(ctx, []*model.EmailMessage{nil})
		assert.Error(t, err)
	})

	t.Run("Cancelled context stops annotation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		var calls atomic.Int32
		p := NewPipeline(func(text string) (model.CorefChains, error) {
			calls.Add(1)
			return nil, nil
		})

		_, err := p.Process(cancelled, testEmails())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("Empty batch", func(t *testing.T) {
		p := NewPipeline(wordAnnotator)

		results, err := p.Process(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
