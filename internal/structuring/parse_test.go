package structuring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidscribe/models"
)

var rawInput = []models.RawSegment{
	{ID: 0, Start: 0, End: 2.4, Text: "hello"},
	{ID: 1, Start: 2.4, End: 5.0, Text: "world"},
	{ID: 2, Start: 5.0, End: 8.2, Text: "goodbye"},
}

const goodResponse = `[
  {
    "id": 1,
    "title": "Greeting",
    "segments": [
      {"id": 0, "start": 0, "end": 2.4, "text": "hello", "highlighted": true},
      {"id": 1, "start": 2.4, "end": 5.0, "text": "world", "highlighted": false}
    ]
  },
  {
    "id": 2,
    "title": "Farewell",
    "segments": [
      {"id": 2, "start": 5.0, "end": 8.2, "text": "goodbye", "highlighted": false}
    ]
  }
]`

func TestParseValidResponse(t *testing.T) {
	res, err := Parse(goodResponse, rawInput)
	require.NoError(t, err)
	require.Len(t, res.Transcript, 2)

	assert.Equal(t, "Greeting", res.Transcript[0].Title)
	assert.Equal(t, 1, res.Transcript[0].ID)
	require.Len(t, res.Transcript[0].Segments, 2)
	assert.True(t, res.Transcript[0].Segments[0].Highlighted)
	assert.False(t, res.DegenerateHighlights)
}

func TestParseStripsMarkdownFence(t *testing.T) {
	fenced := "```json\n" + goodResponse + "\n```"
	res, err := Parse(fenced, rawInput)
	require.NoError(t, err)
	assert.Len(t, res.Transcript, 2)
}

func TestParseRejectsProse(t *testing.T) {
	_, err := Parse("Sure! Here is the breakdown you asked for.", rawInput)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
}

func TestParseRejectsDroppedID(t *testing.T) {
	dropped := `[{"id": 1, "title": "T", "segments": [
		{"id": 0, "start": 0, "end": 2.4, "text": "hello", "highlighted": true},
		{"id": 1, "start": 2.4, "end": 5.0, "text": "world"}
	]}]`
	_, err := Parse(dropped, rawInput)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
	assert.Contains(t, pErr.Reason, "dropped")
}

func TestParseRejectsDuplicateID(t *testing.T) {
	dup := `[{"id": 1, "title": "T", "segments": [
		{"id": 0, "start": 0, "end": 2.4, "text": "hello", "highlighted": true},
		{"id": 0, "start": 0, "end": 2.4, "text": "hello"},
		{"id": 1, "start": 2.4, "end": 5.0, "text": "world"},
		{"id": 2, "start": 5.0, "end": 8.2, "text": "goodbye"}
	]}]`
	_, err := Parse(dup, rawInput)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
	assert.Contains(t, pErr.Reason, "more than once")
}

func TestParseRejectsInventedID(t *testing.T) {
	invented := `[{"id": 1, "title": "T", "segments": [
		{"id": 0, "start": 0, "end": 2.4, "text": "hello", "highlighted": true},
		{"id": 1, "start": 2.4, "end": 5.0, "text": "world"},
		{"id": 2, "start": 5.0, "end": 8.2, "text": "goodbye"},
		{"id": 7, "start": 9.0, "end": 10.0, "text": "surprise"}
	]}]`
	_, err := Parse(invented, rawInput)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
	assert.Contains(t, pErr.Reason, "not in the input")
}

func TestParseRejectsNonNumericTimes(t *testing.T) {
	bad := `[{"id": 1, "title": "T", "segments": [
		{"id": 0, "start": "zero", "end": 2.4, "text": "hello", "highlighted": true}
	]}]`
	_, err := Parse(bad, rawInput)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
}

func TestParseRejectsInvertedRange(t *testing.T) {
	bad := `[{"id": 1, "title": "T", "segments": [
		{"id": 0, "start": 5.0, "end": 2.0, "text": "hello", "highlighted": true},
		{"id": 1, "start": 2.4, "end": 5.0, "text": "world"},
		{"id": 2, "start": 5.0, "end": 8.2, "text": "goodbye"}
	]}]`
	_, err := Parse(bad, rawInput)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
	assert.Contains(t, pErr.Reason, "time range")
}

func TestParseRejectsNonPositiveSectionID(t *testing.T) {
	bad := `[{"id": 0, "title": "T", "segments": [
		{"id": 0, "start": 0, "end": 2.4, "text": "hello", "highlighted": true},
		{"id": 1, "start": 2.4, "end": 5.0, "text": "world"},
		{"id": 2, "start": 5.0, "end": 8.2, "text": "goodbye"}
	]}]`
	_, err := Parse(bad, rawInput)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
	assert.Contains(t, pErr.Reason, "not positive")
}

func TestParseZeroHighlightsIsDegenerateNotFatal(t *testing.T) {
	none := `[{"id": 1, "title": "T", "segments": [
		{"id": 0, "start": 0, "end": 2.4, "text": "hello"},
		{"id": 1, "start": 2.4, "end": 5.0, "text": "world"},
		{"id": 2, "start": 5.0, "end": 8.2, "text": "goodbye"}
	]}]`
	res, err := Parse(none, rawInput)
	require.NoError(t, err)
	assert.True(t, res.DegenerateHighlights)
	assert.Len(t, res.Transcript, 1)
}

func TestParseMissingHighlightedDefaultsToFalse(t *testing.T) {
	mixed := `[{"id": 1, "title": "T", "segments": [
		{"id": 0, "start": 0, "end": 2.4, "text": "hello", "highlighted": true},
		{"id": 1, "start": 2.4, "end": 5.0, "text": "world"},
		{"id": 2, "start": 5.0, "end": 8.2, "text": "goodbye"}
	]}]`
	res, err := Parse(mixed, rawInput)
	require.NoError(t, err)
	segs := res.Transcript[0].Segments
	assert.True(t, segs[0].Highlighted)
	assert.False(t, segs[1].Highlighted)
	assert.False(t, segs[2].Highlighted)
	assert.False(t, res.DegenerateHighlights)
}

func TestParseSortsSegmentsWithinSection(t *testing.T) {
	shuffled := `[{"id": 1, "title": "T", "segments": [
		{"id": 2, "start": 5.0, "end": 8.2, "text": "goodbye", "highlighted": true},
		{"id": 0, "start": 0, "end": 2.4, "text": "hello"},
		{"id": 1, "start": 2.4, "end": 5.0, "text": "world"}
	]}]`
	res, err := Parse(shuffled, rawInput)
	require.NoError(t, err)
	segs := res.Transcript[0].Segments
	assert.Equal(t, []int{0, 1, 2}, []int{segs[0].ID, segs[1].ID, segs[2].ID})
}

func TestBuildPromptEmbedsSegments(t *testing.T) {
	prompt := BuildPrompt(rawInput)
	assert.Contains(t, prompt, "id:0, start:0, end:2.4, text:hello")
	assert.Contains(t, prompt, "id:2, start:5, end:8.2, text:goodbye")
	assert.Contains(t, prompt, `"highlighted"`)
}
