package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackathon-judge/internal/models"
)

func TestRubricTruncatesDocument(t *testing.T) {
	doc := strings.Repeat("a", 20) + "TAIL"
	p, err := Rubric(doc, 20)
	require.NoError(t, err)
	assert.Contains(t, p, strings.Repeat("a", 20))
	assert.NotContains(t, p, "TAIL")
	assert.Contains(t, p, `"criteria"`)
}

func TestScoreEmbedsWeightsVerbatim(t *testing.T) {
	rubric := []models.Criterion{{Name: "Tech", Weight: 0.6}, {Name: "Design", Weight: 0.45}}
	p, err := Score(rubric,
		models.Project{Name: "Foo", URL: "https://x.test/project/1"},
		models.ProjectPage{Title: "Foo App", Description: "does things" + strings.Repeat("z", 50)},
		12)
	require.NoError(t, err)
	assert.Contains(t, p, "- Tech (weight 0.6)")
	assert.Contains(t, p, "- Design (weight 0.45)")
	assert.Contains(t, p, "Title: Foo App")
	assert.Contains(t, p, "URL: https://x.test/project/1")
	assert.Contains(t, p, "does thingsz\n")
	assert.NotContains(t, p, "zz")
	assert.Contains(t, p, "do NOT renormalize")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "日本", Truncate("日本語", 2))
	assert.Equal(t, "abc", Truncate("abc", 10))
}
