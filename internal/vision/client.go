// Package vision generates reverse prompts (image-to-text descriptions) for
// dataset images through any OpenAI-compatible chat endpoint, with a
// resumable batch runner for large image folders.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/logging"
)

// DefaultPrompt is the standardized instruction every image is described
// with. The fixed section order keeps outputs uniform across the dataset.
const DefaultPrompt = "Create a 30–60 word reverse prompt that describes only what is visible. " +
	"Order exactly: Subject; Setting; Style; Composition; Palette; Lighting; Mood; " +
	"Details (2–3 nouns); Camera; Post; Avoid. " +
	"No lore, brands, or software/model names."

const (
	defaultModel   = openai.GPT4oMini
	defaultRetries = 3
	baseBackoff    = 2 * time.Second
)

// Config sets up a Client. BaseURL may point at any OpenAI-compatible
// server; empty means the standard endpoint.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Prompt     string
	MaxRetries int
}

// completer is the slice of the API client Describe needs; tests substitute
// their own.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client turns images into reverse prompts.
type Client struct {
	api     completer
	model   string
	prompt  string
	retries int
	sleep   func(time.Duration)
}

// New builds a Client from the config, applying defaults for the model,
// prompt, and retry count.
func New(cfg Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultRetries
	}

	return &Client{
		api:     openai.NewClientWithConfig(clientConfig),
		model:   model,
		prompt:  prompt,
		retries: retries,
		sleep:   time.Sleep,
	}
}

// Describe reads an image and returns its reverse prompt. Transient API
// errors are retried with exponential backoff (2s, 4s, 8s, ...); anything
// else fails immediately. An empty model response is an error.
func (c *Client) Describe(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	dataURL := "data:" + mimeByExt(imagePath) + ";base64," + base64.StdEncoding.EncodeToString(data)

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: c.prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
			},
		}},
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", errors.New("response has no choices")
			}
			text := strings.TrimSpace(resp.Choices[0].Message.Content)
			if text == "" {
				return "", errors.New("empty response")
			}
			return text, nil
		}
		if !isTransient(err) {
			return "", err
		}
		lastErr = err
		if attempt == c.retries {
			break
		}
		wait := baseBackoff << (attempt - 1)
		logging.Warn().
			Err(err).
			Str("image", filepath.Base(imagePath)).
			Dur("wait", wait).
			Msg("transient error, retrying")
		c.sleep(wait)
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func mimeByExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	}
	return "application/octet-stream"
}
