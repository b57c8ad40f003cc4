package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"voicenote-service/internal/gemini"
	"voicenote-service/internal/models"

	"go.uber.org/zap"
)

// Client wraps the Groq API client
type Client struct {
	apiKey             string
	baseURL            string
	modelName          string
	transcriptionModel string
	httpClient         *http.Client
	logger             *zap.Logger
}

// Config for Groq client
type Config struct {
	APIKey             string
	ModelName          string // Default: "llama-3.3-70b-versatile"
	TranscriptionModel string // Default: "whisper-large-v3"
	BaseURL            string
}

// groqRequest represents the request to Groq chat API
type groqRequest struct {
	Model          string          `json:"model"`
	Messages       []groqMessage   `json:"messages"`
	Stream         bool            `json:"stream"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// groqResponse represents the response from Groq chat API
type groqResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// NewClient creates a new Groq client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "llama-3.3-70b-versatile"
	}

	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = "whisper-large-v3"
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}

	logger.Info("Groq client initialized",
		zap.String("model", cfg.ModelName),
		zap.String("transcription_model", cfg.TranscriptionModel))

	return &Client{
		apiKey:             cfg.APIKey,
		baseURL:            strings.TrimSuffix(cfg.BaseURL, "/"),
		modelName:          cfg.ModelName,
		transcriptionModel: cfg.TranscriptionModel,
		httpClient:         &http.Client{Timeout: 120 * time.Second},
		logger:             logger,
	}, nil
}

// Close closes the Groq client
func (c *Client) Close() error {
	return nil
}

// Transcribe runs speech-to-text first, then asks the chat model to enhance the transcript
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (*models.NoteResponse, error) {
	transcript, err := c.speechToText(ctx, audio, mimeType)
	if err != nil {
		return nil, err
	}

	content, err := c.chat(ctx, gemini.BuildEnhancePrompt(transcript))
	if err != nil {
		return nil, err
	}

	result, err := gemini.ParseNoteResponse(content)
	if err != nil {
		c.logger.Error("Failed to parse JSON response",
			zap.Error(err),
			zap.String("original_response", content))
		return nil, fmt.Errorf("failed to parse groq response: %w", err)
	}

	return result, nil
}

// Report asks the chat model for a report over a prepared prompt
func (c *Client) Report(ctx context.Context, prompt string) (*models.ReportResponse, error) {
	content, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := gemini.ParseReportResponse(content)
	if err != nil {
		c.logger.Error("Failed to parse JSON response",
			zap.Error(err),
			zap.String("original_response", content))
		return nil, fmt.Errorf("failed to parse groq response: %w", err)
	}

	return result, nil
}

func (c *Client) speechToText(ctx context.Context, audio []byte, mimeType string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "recording"+extensionFor(mimeType))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	_ = writer.WriteField("model", c.transcriptionModel)
	_ = writer.WriteField("response_format", "json")
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("failed to parse transcription: %w", err)
	}
	if strings.TrimSpace(tr.Text) == "" {
		return "", fmt.Errorf("empty transcription from groq")
	}
	return tr.Text, nil
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	reqBody := groqRequest{
		Model: c.modelName,
		Messages: []groqMessage{
			{Role: "system", Content: "You answer with a single JSON object and nothing else."},
			{Role: "user", Content: prompt},
		},
		Stream:         false,
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
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var groqResp groqResponse
	if err := json.Unmarshal(body, &groqResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(groqResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from groq")
	}

	return groqResp.Choices[0].Message.Content, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Groq API error", zap.Error(err))
		return nil, fmt.Errorf("groq API error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Groq API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("groq API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// extensionFor picks a file name extension the transcription endpoint recognizes
func extensionFor(mimeType string) string {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	switch base {
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/flac":
		return ".flac"
	default:
		return ".wav"
	}
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":            "groq",
		"model":               c.modelName,
		"transcription_model": c.transcriptionModel,
	}
}
