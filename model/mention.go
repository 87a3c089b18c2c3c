package model

// Mention is a span the annotator judged to refer to an entity.
// LocalClusterID is the annotator's chain id and only meaningful inside EmailID.
// All indices are zero-based, EndToken is exclusive.
type Mention struct {
	EmailID        string `json:"email_id"`
	LocalClusterID int    `json:"local_cluster_id"`
	Text           string `json:"text"`
	SentenceIndex  int    `json:"sentence_index"`
	StartToken     int    `json:"start_token"`
	EndToken       int    `json:"end_token"`
}

// MentionSpan is a mention as reported by the annotator.
// Indices are one-based, EndIndex is exclusive.
type MentionSpan struct {
	Text          string `json:"text"`
	SentenceIndex int    `json:"sentence_index"`
	StartIndex    int    `json:"start_index"`
	EndIndex      int    `json:"end_index"`
}

// CorefChains maps a chain-local id to its spans in textual order.
// A nil map means the annotator found no coreference in the document.
type CorefChains map[int][]MentionSpan
