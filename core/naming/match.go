package naming

import "strings"

// NamesMatch reports whether mentionText plausibly refers to the person named fullName.
//
// Keys equal: match. A single-token mention matches when it occurs anywhere
// inside the full key ("toni" in "antonio ache", but also "ann" in "joanne"),
// or when it has at least 3 characters and equals the first token of the full key.
// Only the mention side triggers the single-token rules, so the order of
// the arguments matters.
func NamesMatch(mentionText, fullName string) bool {
	mentionKey := NormalizeNameKey(mentionText)
	fullKey := NormalizeNameKey(fullName)

	if mentionKey == "" || fullKey == "" {
		return false
	}

	if mentionKey == fullKey {
		return true
	}

	mentionTokens := strings.Split(mentionKey, " ")
	fullTokens := strings.Split(fullKey, " ")

	if len(mentionTokens) == 1 && strings.Contains(fullKey, mentionKey) {
		return true
	}

	if len(mentionTokens) == 1 && len(fullTokens) > 0 &&
		len(mentionTokens[0]) >= 3 && mentionTokens[0] == fullTokens[0] {
		return true
	}

	return false
}
