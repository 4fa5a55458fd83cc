package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"captioner/internal/captions"
)

// OpenAIConfig configures the transcription API client.
type OpenAIConfig struct {
	APIKey string
	// BaseURL points at a Whisper-compatible server. Empty uses api.openai.com.
	BaseURL  string
	Model    string
	Language string
}

type audioClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// OpenAI transcribes audio through the OpenAI audio transcription endpoint.
type OpenAI struct {
	client   audioClient
	model    string
	language string
}

// NewOpenAI builds a client from cfg.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("openai transcription requires an api key")
	}
	clientCfg := openai.DefaultConfig(key)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	return newOpenAIWithClient(openai.NewClientWithConfig(clientCfg), cfg), nil
}

func newOpenAIWithClient(client audioClient, cfg OpenAIConfig) *OpenAI {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAI{client: client, model: model, language: isoCode(cfg.Language)}
}

// Transcribe uploads audioPath and converts the verbose JSON segments.
func (o *OpenAI) Transcribe(ctx context.Context, audioPath string) ([]captions.Segment, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, fmt.Errorf("openai transcription: audio path required")
	}
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: o.language,
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	segments := make([]captions.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, captions.Segment{Text: seg.Text, Start: seg.Start, End: seg.End})
	}
	// Some compatible servers omit segments; keep the text as one span.
	if len(segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		segments = append(segments, captions.Segment{Text: resp.Text, Start: 0, End: resp.Duration})
	}
	return normalizeSegments(segments), nil
}
