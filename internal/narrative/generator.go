package narrative

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the model answers with no usable text.
var ErrEmptyResponse = errors.New("empty completion")

// GenerationError wraps every failure of a completion call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generate narrative: " + e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator produces commentary for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Params are the fixed sampling parameters of every completion.
type Params struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// OpenAIGenerator implements Generator with an OpenAI-compatible chat API.
type OpenAIGenerator struct {
	client  *openai.Client
	persona string
	params  Params
}

// NewOpenAIGenerator creates a generator. An empty baseURL uses the OpenAI
// default and an empty persona uses DefaultPersona.
func NewOpenAIGenerator(apiKey, baseURL, proxyURL, persona string, params Params) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	cfg.HTTPClient = &http.Client{Transport: transport}

	if persona == "" {
		persona = DefaultPersona
	}
	if params.Timeout <= 0 {
		params.Timeout = 10 * time.Second
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(cfg),
		persona: persona,
		params:  params,
	}
}

// Generate makes a single completion call. It never retries.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.params.Timeout)
	defer cancel()

	// The request field is omitempty, so an exact zero would fall back to the
	// server default of 1.
	temperature := g.params.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.params.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.persona},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:        g.params.MaxTokens,
		Temperature:      temperature,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	})
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("openai completion failed: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Err: fmt.Errorf("no choices: %w", ErrEmptyResponse)}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &GenerationError{Err: ErrEmptyResponse}
	}

	log.Debug().Str("model", resp.Model).Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("narrative generated")
	return text, nil
}
