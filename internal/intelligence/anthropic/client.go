// Package anthropic implements the text-generation backend on the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// Client generates completions through the Anthropic Messages API.
type Client struct {
	api         anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	logger      logging.Logger
}

// NewClient builds an Anthropic-backed generator from configuration.
func NewClient(cfg config.ModelConfig, logger logging.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:         anthropic.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		logger:      logger.Named("anthropic"),
	}
}

// Generate sends the system and user prompts and returns the concatenated
// text blocks of the response.  The caller's context carries the deadline.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTimeout, "anthropic request timed out")
		}
		return "", apperrors.Wrap(err, apperrors.ErrCodeModelInvocationFailure, "anthropic request failed")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", apperrors.New(apperrors.ErrCodeModelInvocationFailure, "anthropic response contained no text")
	}
	return b.String(), nil
}
