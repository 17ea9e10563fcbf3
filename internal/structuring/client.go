package structuring

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"vidscribe/models"
)

// Result carries the structured transcript plus the non-fatal signal that the
// model marked nothing as a highlight.
type Result struct {
	Transcript models.Transcript
	// DegenerateHighlights is set when a non-empty input came back with zero
	// highlighted segments. Not fatal, but highlight playback has no seek
	// target until the user marks something, so the caller should surface it.
	DegenerateHighlights bool
}

// Client asks a chat model to group raw segments into titled sections and
// classify each segment as highlight or filler. The model is untrusted: its
// response is validated against the section/segment shape before acceptance.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
}

// NewClient wraps an OpenAI client. An empty model defaults to gpt-4-turbo.
func NewClient(api *openai.Client, model string) *Client {
	if model == "" {
		model = openai.GPT4Turbo
	}
	// Low temperature keeps the output close to the strict JSON contract.
	return &Client{api: api, model: model, temperature: 0.1}
}

// Structure submits the raw segments and returns the validated transcript.
// An empty input produces an empty transcript without calling the model.
func (c *Client) Structure(ctx context.Context, raw []models.RawSegment) (*Result, error) {
	if len(raw) == 0 {
		return &Result{Transcript: models.Transcript{}}, nil
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildPrompt(raw)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("structuring request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ParseError{Reason: "model returned no choices"}
	}

	return Parse(resp.Choices[0].Message.Content, raw)
}

// BuildPrompt embeds the raw segment list into the structuring instructions.
// The response contract is a bare JSON array; anything else is rejected by
// Parse.
func BuildPrompt(raw []models.RawSegment) string {
	var lines strings.Builder
	for _, seg := range raw {
		fmt.Fprintf(&lines, "id:%d, start:%g, end:%g, text:%s\n", seg.ID, seg.Start, seg.End, seg.Text)
	}

	return fmt.Sprintf(`These are the subtitles of a video:
%s
Process them as follows:
1. Group the subtitles into sections by topic. Give every section a concise title.
2. Return a JSON array. Each element has "id" (section identifier, incrementing from 1), "title" (section title) and "segments" (the subtitle segments of that section).
3. Each object in "segments" keeps "id", "start", "end" and "text" exactly as in the input, and adds "highlighted" (true for key information, core concepts or summaries; false for filler, repetition or unnecessary detail).
4. At least one segment across all sections must have "highlighted": true; they must not all be false.
5. Output strict JSON only. Do not add explanations, headings or comments.

Example response format:
[
  {
    "id": 1,
    "title": "Section title",
    "segments": [
      { "id": 0, "start": 0, "end": 5, "text": "first subtitle", "highlighted": true },
      { "id": 1, "start": 5, "end": 10, "text": "second subtitle", "highlighted": false }
    ]
  }
]`, lines.String())
}
