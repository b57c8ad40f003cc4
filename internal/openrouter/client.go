package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voicenote-service/internal/gemini"
	"voicenote-service/internal/models"

	"go.uber.org/zap"
)

// Client represents an OpenRouter API client.
type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for OpenRouter client.
type Config struct {
	APIKey    string
	ModelName string // must accept audio input, e.g. "google/gemini-2.0-flash-001"
	BaseURL   string
}

// openRouterRequest represents the request structure for OpenRouter API.
type openRouterRequest struct {
	Model          string              `json:"model"`
	Messages       []openRouterMessage `json:"messages"`
	Temperature    float64             `json:"temperature,omitempty"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
}

// Content is either a plain string or a list of contentPart values.
type openRouterMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type       string      `json:"type"`
	Text       string      `json:"text,omitempty"`
	InputAudio *inputAudio `json:"input_audio,omitempty"`
}

type inputAudio struct {
	Data   string `json:"data"` // base64
	Format string `json:"format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// openRouterResponse represents the response structure from OpenRouter API.
type openRouterResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// NewClient creates a new OpenRouter client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "google/gemini-2.0-flash-001"
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}

	client := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		modelName:  cfg.ModelName,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
	}

	logger.Info("OpenRouter client initialized", zap.String("model", cfg.ModelName))

	return client, nil
}

// Transcribe sends the audio as an input_audio part next to the note instruction.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (*models.NoteResponse, error) {
	format, err := audioFormat(mimeType)
	if err != nil {
		return nil, err
	}

	content, err := c.complete(ctx, []contentPart{
		{Type: "text", Text: gemini.NoteInstruction},
		{Type: "input_audio", InputAudio: &inputAudio{
			Data:   base64.StdEncoding.EncodeToString(audio),
			Format: format,
		}},
	})
	if err != nil {
		return nil, err
	}

	result, err := gemini.ParseNoteResponse(content)
	if err != nil {
		c.logger.Error("Failed to parse JSON response",
			zap.Error(err),
			zap.String("original_response", content))
		return nil, fmt.Errorf("failed to parse openrouter response: %w", err)
	}

	return result, nil
}

// Report asks the model for a report over a prepared prompt.
func (c *Client) Report(ctx context.Context, prompt string) (*models.ReportResponse, error) {
	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := gemini.ParseReportResponse(content)
	if err != nil {
		c.logger.Error("Failed to parse JSON response",
			zap.Error(err),
			zap.String("original_response", content))
		return nil, fmt.Errorf("failed to parse openrouter response: %w", err)
	}

	return result, nil
}

func (c *Client) complete(ctx context.Context, content interface{}) (string, error) {
	reqBody := openRouterRequest{
		Model: c.modelName,
		Messages: []openRouterMessage{
			{Role: "user", Content: content},
		},
		Temperature:    0.3,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "Voice Notes")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("OpenRouter API error", zap.Error(err))
		return "", fmt.Errorf("openrouter API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OpenRouter API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", fmt.Errorf("openrouter API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp openRouterResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("openrouter API error: %s", apiResp.Error.Message)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in openrouter response")
	}

	return apiResp.Choices[0].Message.Content, nil
}

// audioFormat maps a MIME type to the input_audio format names OpenRouter accepts.
func audioFormat(mimeType string) (string, error) {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	switch base {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav", nil
	case "audio/mpeg", "audio/mp3":
		return "mp3", nil
	case "audio/ogg":
		return "ogg", nil
	case "audio/flac":
		return "flac", nil
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "m4a", nil
	case "audio/aac":
		return "aac", nil
	}
	return "", fmt.Errorf("openrouter does not accept audio type %q", mimeType)
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// GetModelInfo returns information about the model being used.
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider": "openrouter",
		"model":    c.modelName,
		"base_url": c.baseURL,
	}
}
