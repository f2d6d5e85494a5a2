package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ascii words", "Hello World", "hello-world"},
		{"punctuation dropped", "Lev Tolstoy: War & Peace!", "lev-tolstoy-war-peace"},
		{"cyrillic kept", "Лев Толстой", "лев-толстой"},
		{"runs collapse", "a -- b\t\nc", "a-b-c"},
		{"edges trimmed", "  _-hello-_  ", "hello"},
		{"underscore kept inside", "snake_case title", "snake_case-title"},
		{"nfkc folds compatibility forms", "ｆｕｌｌ　ｗｉｄｔｈ", "full-width"},
		{"digits kept", "Top 10", "top-10"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestMakeTruncatesToMaxLength(t *testing.T) {
	got := Make(strings.Repeat("Ж", 100))
	assert.Equal(t, strings.Repeat("ж", 100), got)

	got = Make(strings.Repeat("Ж", 150))
	assert.Equal(t, strings.Repeat("ж", MaxLength), got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("ab-cd", 3))
	assert.Equal(t, "жж", Truncate("жжж", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("lev-tolstoy"))
	assert.True(t, Valid("лев_толстой"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("has space"))
	assert.False(t, Valid("slash/y"))
	assert.False(t, Valid(strings.Repeat("a", MaxLength+1)))
}
