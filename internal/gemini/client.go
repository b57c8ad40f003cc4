package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voicenote-service/internal/models"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client wraps the Gemini API client
type Client struct {
	client      *genai.Client
	noteModel   *genai.GenerativeModel
	reportModel *genai.GenerativeModel
	logger      *zap.Logger
	modelName   string
}

// Config for Gemini client
type Config struct {
	APIKey    string
	ModelName string // Default: "gemini-2.0-flash"
}

var noteSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"originalText": {Type: genai.TypeString},
		"enhancedText": {Type: genai.TypeString},
		"category":     {Type: genai.TypeString},
		"summary":      {Type: genai.TypeString},
		"isUrgent":     {Type: genai.TypeBoolean},
		"keywords":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"originalText", "enhancedText", "category", "summary", "isUrgent", "keywords"},
}

var reportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"totalNotes":            {Type: genai.TypeNumber},
		"summary":               {Type: genai.TypeString},
		"keyTopics":             {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"insights":              {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"actionRecommendations": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"totalNotes", "summary", "keyTopics", "insights", "actionRecommendations"},
}

// NewClient creates a new Gemini client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.0-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	noteModel := client.GenerativeModel(cfg.ModelName)
	noteModel.GenerationConfig = genai.GenerationConfig{
		Temperature:      genai.Ptr[float32](0.3),
		ResponseMIMEType: "application/json",
		ResponseSchema:   noteSchema,
	}

	reportModel := client.GenerativeModel(cfg.ModelName)
	reportModel.GenerationConfig = genai.GenerationConfig{
		Temperature:      genai.Ptr[float32](0.5),
		ResponseMIMEType: "application/json",
		ResponseSchema:   reportSchema,
	}

	logger.Info("Gemini client initialized", zap.String("model", cfg.ModelName))

	return &Client{
		client:      client,
		noteModel:   noteModel,
		reportModel: reportModel,
		logger:      logger,
		modelName:   cfg.ModelName,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// Transcribe sends the audio inline together with the note instruction
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (*models.NoteResponse, error) {
	resp, err := c.noteModel.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: audio},
		genai.Text(NoteInstruction),
	)
	if err != nil {
		c.logger.Error("Gemini API error", zap.Error(err))
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		c.logger.Error("Empty response from Gemini", zap.Error(err))
		return nil, err
	}

	result, err := ParseNoteResponse(text)
	if err != nil {
		c.logger.Error("Failed to parse JSON response",
			zap.Error(err),
			zap.String("original_response", text))
		return nil, err
	}

	c.logger.Debug("Transcribed voice note",
		zap.String("category", *result.Category),
		zap.Int("audio_bytes", len(audio)))

	return result, nil
}

// Report asks the model for a report over a prepared prompt
func (c *Client) Report(ctx context.Context, prompt string) (*models.ReportResponse, error) {
	resp, err := c.reportModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("Gemini API error", zap.Error(err))
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		c.logger.Error("Empty response from Gemini", zap.Error(err))
		return nil, err
	}

	result, err := ParseReportResponse(text)
	if err != nil {
		c.logger.Error("Failed to parse JSON response",
			zap.Error(err),
			zap.String("original_response", text))
		return nil, err
	}

	return result, nil
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("unexpected response type from gemini")
	}
	return sb.String(), nil
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider": "gemini",
		"model":    c.modelName,
	}
}
