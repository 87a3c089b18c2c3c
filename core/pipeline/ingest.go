package pipeline

import (
	"sort"

	"github.com/siherrmann/mailcoref/model"
)

// FlattenChains turns annotator chains into mentions of the given email.
// Chains are visited in ascending id order, spans in the order given.
// Sentence and token indices are shifted from one-based to zero-based.
func FlattenChains(emailID string, chains model.CorefChains) []model.Mention {
	mentions := []model.Mention{}
	if len(chains) == 0 {
		return mentions
	}

	ids := make([]int, 0, len(chains))
	for id := range chains {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		for _, span := range chains[id] {
			mentions = append(mentions, model.Mention{
				EmailID:        emailID,
				LocalClusterID: id,
				Text:           span.Text,
				SentenceIndex:  span.SentenceIndex - 1,
				StartToken:     span.StartIndex - 1,
				EndToken:       span.EndIndex - 1,
			})
		}
	}

	return mentions
}
