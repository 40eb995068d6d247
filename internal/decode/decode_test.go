package decode

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFencedBlockIgnoresProse(t *testing.T) {
	raw := "Sure! Here is the rubric {not this}:\n```JSON\n{\"criteria\":[{\"name\":\"Tech\",\"weight\":0.6}]}\n```\nHope that helps {really}."
	p, err := Decode(raw)
	require.NoError(t, err)
	crit := Objects(p["criteria"])
	require.Len(t, crit, 1)
	assert.Equal(t, "Tech", String(crit[0]["name"]))
	assert.Equal(t, 0.6, Number(crit[0]["weight"]))
}

func TestDecodeBraceFallback(t *testing.T) {
	raw := `The answer is {"total": 68, "items": []} as requested.`
	assert.Equal(t, `{"total": 68, "items": []}`, Extract(raw))
	p, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 68.0, Number(p["total"]))
}

func TestExtractRawWhenNothingFound(t *testing.T) {
	assert.Equal(t, "no json here", Extract("no json here"))
	assert.Equal(t, "} backwards {", Extract("} backwards {"))
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode("```json\n{\"criteria\": [ {\"name\": }\n```")
	var de *DecodeError
	require.True(t, errors.As(err, &de), "got %v", err)
	assert.NotEmpty(t, de.Excerpt)

	_, err = Decode("I cannot help with that.")
	require.True(t, errors.As(err, &de))
}

func TestDecodeNonObject(t *testing.T) {
	_, err := Decode(`[1, 2, 3]`)
	var de *DecodeError
	assert.True(t, errors.As(err, &de))
}

func TestNumberCoercion(t *testing.T) {
	assert.Equal(t, 80.0, Number(80.0))
	assert.Equal(t, 42.5, Number(" 42.5 "))
	assert.Equal(t, 1.0, Number(true))
	assert.Equal(t, 0.0, Number("eighty"))
	assert.Equal(t, 0.0, Number(nil))
	assert.Equal(t, 0.0, Number(map[string]any{}))
	assert.Equal(t, 0.0, Number(math.NaN()))
	assert.Equal(t, 0.0, Number("NaN"))
	assert.Equal(t, 0.0, Number(math.Inf(1)))
}

func TestObjectsCoercion(t *testing.T) {
	assert.Empty(t, Objects(nil))
	assert.Empty(t, Objects("criteria"))
	assert.Len(t, Objects([]any{map[string]any{"a": 1.0}, "junk", 3.0}), 1)
}

func TestStringCoercion(t *testing.T) {
	assert.Equal(t, "", String(nil))
	assert.Equal(t, "12.5", String(12.5))
	assert.Equal(t, "true", String(true))
}

func TestValidator(t *testing.T) {
	v := MustValidator("score", ScoreSchema)

	ok, err := Decode(`{"items":[{"name":"Tech","weight":0.6,"score":80,"feedback":"solid"}],"total":48}`)
	require.NoError(t, err)
	assert.NoError(t, v.Check(ok))

	bad, err := Decode(`{"items":[{"name":"Tech","weight":0.6,"score":180}]}`)
	require.NoError(t, err)
	assert.Error(t, v.Check(bad))

	_, err = NewValidator("broken", `{"type": 12}`)
	assert.Error(t, err)
}
