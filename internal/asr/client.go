package asr

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"vidscribe/models"
)

// Result is the raw timestamped output of one transcription call. Duration
// is reported by the service independently of the segments and may exceed
// the last segment's end (trailing silence).
type Result struct {
	Segments []models.RawSegment
	Duration float64
}

// Client submits extracted audio to the Whisper API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient wraps an OpenAI client. An empty model defaults to whisper-1.
func NewClient(api *openai.Client, model string) *Client {
	if model == "" {
		model = openai.Whisper1
	}
	return &Client{api: api, model: model}
}

// Transcribe sends the audio and returns timestamped segments. The request
// always asks for verbose_json: downstream sectioning needs per-segment
// timestamps, not flat text. An empty segment list is a valid result and is
// returned as such, never as an error.
func (c *Client) Transcribe(ctx context.Context, name string, audio []byte) (*Result, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: name,
		Reader:   bytes.NewReader(audio),
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription: %w", err)
	}

	out := &Result{Duration: resp.Duration}
	for _, seg := range resp.Segments {
		out.Segments = append(out.Segments, models.RawSegment{
			ID:    seg.ID,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return out, nil
}
