package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNameKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty input", "", ""},
		{"Whitespace only", "   \t ", ""},
		{"Lower-cases and trims", "  Antonio Ache ", "antonio ache"},
		{"Strips title with period", "Dr. Antonio Ache", "antonio ache"},
		{"Strips title without period", "prof antonio ache", "antonio ache"},
		{"Strips several titles", "Mr. Dr. John Smith", "john smith"},
		{"Strips mrs as a whole word", "Mrs Smith", "smith"},
		{"Keeps names starting with a title", "Drew Msomi", "drew msomi"},
		{"Strips accents", "José Álvarez", "jose alvarez"},
		{"Punctuation becomes space", "O'Brien, Pat", "o brien pat"},
		{"Collapses whitespace", "John \t  Smith", "john smith"},
		{"Keeps digits", "Agent 007", "agent 007"},
		{"Only punctuation", "...", ""},
		{"Title only", "Dr.", ""},
		{"Non latin letters become spaces", "Zoë ø Smith", "zoe smith"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeNameKey(tc.input))
		})
	}

	t.Run("Title and plain form collide", func(t *testing.T) {
		assert.Equal(t, NormalizeNameKey("antonio ache"), NormalizeNameKey("Dr. Antonio Ache"))
		assert.Equal(t, "antonio ache", NormalizeNameKey("Dr. Antonio Ache"))
	})
}

func TestNormalizeNameKeyIdempotent(t *testing.T) {
	inputs := []string{
		"Dr. Antonio Ache",
		"dr_x",
		"drdrew",
		"d.r. Smith",
		"Mr.Mrs.Ms.Prof. Jane",
		"  Ünïcödé  Nàmé ",
		"ann-marie o'neil",
		"DR",
		"a-dr-b",
		"Prof. Zoë",
		"",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := NormalizeNameKey(input)
			assert.Equal(t, once, NormalizeNameKey(once), "Expected normalizing a key to not change it")
		})
	}
}

func TestNormalizeEmailAddress(t *testing.T) {
	t.Run("Trims and lower-cases", func(t *testing.T) {
		address, ok := NormalizeEmailAddress("  Antonio@Example.COM ")
		assert.True(t, ok)
		assert.Equal(t, "antonio@example.com", address)
	})

	t.Run("Blank address is absent", func(t *testing.T) {
		_, ok := NormalizeEmailAddress("   ")
		assert.False(t, ok)

		_, ok = NormalizeEmailAddress("")
		assert.False(t, ok)
	})
}
