// Package openai implements the text-generation backend on the OpenAI
// chat-completions HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client generates completions through the OpenAI chat-completions API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	logger      logging.Logger
}

// NewClient builds an OpenAI-backed generator from configuration.  The
// request deadline comes from the caller's context, so the underlying HTTP
// client carries no timeout of its own.
func NewClient(cfg config.ModelConfig, logger logging.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:  &http.Client{},
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger.Named("openai"),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the system and user prompts and returns the first choice's
// content.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encoding chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "building chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTimeout, "openai request timed out")
		}
		return "", apperrors.Wrap(err, apperrors.ErrCodeModelInvocationFailure, "openai request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeModelInvocationFailure, "reading openai response")
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeModelInvocationFailure,
			fmt.Sprintf("decoding openai response (status %d)", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		msg := "openai request rejected"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", apperrors.Newf(apperrors.ErrCodeModelInvocationFailure,
			"openai returned status %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.New(apperrors.ErrCodeModelInvocationFailure, "openai response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
