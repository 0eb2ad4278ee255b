// Package gateway wraps the hosted generative-AI API behind two primitives:
// schema-constrained JSON completion and speech synthesis. Prompt content
// belongs to the callers; this package owns transport, model selection and
// the request timeout.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// ErrGeneration marks any gateway failure, including timeouts. Callers map
// it to their own error surface.
var ErrGeneration = errors.New("generation failed")

const systemPrompt = "You are an expert linguist and English teacher helping language learners build vocabulary."

type Client struct {
	oai      *openai.Client
	model    string
	ttsModel string
	voice    string
	timeout  time.Duration
}

type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	TTSModel string
	Voice    string
	Timeout  time.Duration
}

func NewClient(cfg Config) *Client {
	oaiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		oai:      openai.NewClientWithConfig(oaiCfg),
		model:    cfg.Model,
		ttsModel: cfg.TTSModel,
		voice:    cfg.Voice,
		timeout:  cfg.Timeout,
	}
}

// Complete runs the prompt and decodes the schema-constrained JSON reply
// into out. A hung upstream call is cut off by the configured timeout.
func (c *Client) Complete(ctx context.Context, prompt, schemaName string, schema *jsonschema.Definition, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.oai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: chat completion: %v", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: no choices returned", ErrGeneration)
	}

	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("%w: decode structured output: %v", ErrGeneration, err)
	}

	return nil
}

// Speech synthesizes the text and returns raw WAV bytes.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.oai.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.ttsModel),
		Input:          text,
		Voice:          openai.SpeechVoice(c.voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create speech: %v", ErrGeneration, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrGeneration, err)
	}

	return audio, nil
}
