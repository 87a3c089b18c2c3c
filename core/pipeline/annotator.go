package pipeline

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/mailcoref/core/naming"
	"github.com/siherrmann/mailcoref/helper"
	"github.com/siherrmann/mailcoref/model"
)

// NERAnnotator is an AnnotateFunc source backed by a hugot NER model.
// It has no pronoun resolution: person entities sharing a normalized
// name key form one chain.
type NERAnnotator struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
	labels   map[string]struct{}
	minScore float32
}

// personEntity is a recognized entity with byte offsets into the annotated text
type personEntity struct {
	Word  string
	Label string
	Score float32
	Start int
	End   int
}

// NewNERAnnotator downloads the configured model if needed and starts a hugot session
func NewNERAnnotator(config model.AnnotatorConfig) (*NERAnnotator, error) {
	modelPath, err := helper.PrepareModel(config.ModelName, config.OnnxFilePath)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	pipelineConfig := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "person-ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, pipelineConfig)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	labels := make(map[string]struct{}, len(config.Labels))
	for _, label := range config.Labels {
		labels[label] = struct{}{}
	}

	return &NERAnnotator{
		session:  session,
		pipeline: nerPipeline,
		labels:   labels,
		minScore: config.MinScore,
	}, nil
}

// Annotate runs NER on text and returns the person chains. It satisfies AnnotateFunc.
func (a *NERAnnotator) Annotate(text string) (model.CorefChains, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	result, err := a.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to run NER: %w", err)
	}
	if len(result.Entities) == 0 {
		return nil, nil
	}

	entities := make([]personEntity, 0, len(result.Entities[0]))
	for _, entity := range result.Entities[0] {
		entities = append(entities, personEntity{
			Word:  entity.Word,
			Label: normalizeEntityType(entity.Entity),
			Score: entity.Score,
			Start: int(entity.Start),
			End:   int(entity.End),
		})
	}

	return buildChains(text, entities, a.labels, a.minScore), nil
}

// Close destroys the hugot session
func (a *NERAnnotator) Close() error {
	if a.session == nil {
		return nil
	}
	return a.session.Destroy()
}

// buildChains groups person entities by normalized name key.
// Chain ids start at 1 in order of first appearance.
func buildChains(text string, entities []personEntity, labels map[string]struct{}, minScore float32) model.CorefChains {
	segmentation := Segment(text)
	chains := model.CorefChains{}
	chainByKey := map[string]int{}

	for _, entity := range entities {
		if _, ok := labels[entity.Label]; !ok {
			continue
		}
		if entity.Score < minScore {
			continue
		}

		position, ok := segmentation.Locate(entity.Start, entity.End)
		if !ok {
			continue
		}

		surface := strings.TrimSpace(text[entity.Start:entity.End])
		if surface == "" {
			surface = strings.TrimSpace(entity.Word)
		}
		key := naming.NormalizeNameKey(surface)
		if key == "" {
			continue
		}

		id, ok := chainByKey[key]
		if !ok {
			id = len(chainByKey) + 1
			chainByKey[key] = id
		}

		chains[id] = append(chains[id], model.MentionSpan{
			Text:          surface,
			SentenceIndex: position.Sentence,
			StartIndex:    position.Start,
			EndIndex:      position.End,
		})
	}

	if len(chains) == 0 {
		return nil
	}
	return chains
}

// normalizeEntityType removes B- and I- prefixes from NER labels
func normalizeEntityType(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
