package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siherrmann/mailcoref/helper"
	"github.com/siherrmann/mailcoref/model"
	"golang.org/x/sync/errgroup"
)

// AnnotateFunc runs within-document coreference on an email body.
// It returns the chains found, each keyed by its chain-local id with one-based indices.
// A nil result means no coreference was found.
type AnnotateFunc func(text string) (model.CorefChains, error)

// Pipeline annotates emails and flattens the annotator output into mentions
type Pipeline struct {
	Annotator AnnotateFunc
	// Concurrency bounds how many emails are annotated in parallel, values < 1 mean sequential
	Concurrency int
	log         *slog.Logger
}

// NewPipeline creates a new annotation pipeline
func NewPipeline(annotator AnnotateFunc) *Pipeline {
	return &Pipeline{
		Annotator:   annotator,
		Concurrency: 1,
		log:         slog.New(slog.DiscardHandler),
	}
}

// SetConcurrency sets how many emails are annotated in parallel
func (p *Pipeline) SetConcurrency(concurrency int) {
	p.Concurrency = concurrency
}

// SetLogger sets the logger used for per-email progress
func (p *Pipeline) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.log = logger
	}
}

// Process annotates every email and returns the emails with their mentions in input order.
// Annotation may run in parallel; the first annotator error cancels the remaining work and is returned.
func (p *Pipeline) Process(ctx context.Context, emails []*model.EmailMessage) ([]*model.EmailWithMentions, error) {
	if p.Annotator == nil {
		return nil, helper.NewError("process emails", fmt.Errorf("annotator not set"))
	}

	for i, email := range emails {
		if email == nil {
			return nil, helper.NewError("process emails", fmt.Errorf("email %d is nil", i))
		}
	}

	results := make([]*model.EmailWithMentions, len(emails))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Concurrency, 1))

	for i, email := range emails {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			mentions, err := p.annotate(email)
			if err != nil {
				return err
			}
			results[i] = &model.EmailWithMentions{
				Email:    email,
				Mentions: mentions,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, helper.NewError("annotate emails", err)
	}

	return results, nil
}

func (p *Pipeline) annotate(email *model.EmailMessage) ([]model.Mention, error) {
	chains, err := p.Annotator(email.Body)
	if err != nil {
		return nil, fmt.Errorf("annotate email %s: %w", email.MessageID, err)
	}

	mentions := FlattenChains(email.MessageID, chains)
	p.log.Debug("Annotated email",
		slog.String("message_id", email.MessageID),
		slog.Int("chains", len(chains)),
		slog.Int("mentions", len(mentions)),
	)

	return mentions, nil
}
