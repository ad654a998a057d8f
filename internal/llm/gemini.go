package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Cyriloo7/Interviewer/internal/models"
)

// Generator produces free-form text from a prompt. The interview flow only
// needs this slice of the client, which keeps it easy to fake in tests.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// resumeSchema declares the structured output contract for resume extraction.
// The hosted model is constrained to return JSON matching this shape.
var resumeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":             {Type: genai.TypeString, Description: "Candidate name"},
		"summary":          {Type: genai.TypeString, Description: "Professional summary, without phone numbers, emails or links"},
		"experience_years": {Type: genai.TypeInteger, Description: "Years of experience, 0 if not stated"},
		"skills":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Skills list"},
		"links":            {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Relevant links (GitHub, LinkedIn, etc.)"},
		"projects":         {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Notable projects or achievements"},
	},
	Required: []string{"name", "summary", "experience_years", "skills", "links", "projects"},
}

// GeminiClient wraps the Gemini API for both free-text generation and
// schema-constrained resume extraction.
type GeminiClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

// NewGeminiClient creates a new Gemini client authenticated with an API key.
func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = "gemini-2.5-flash-lite"
	}

	return &GeminiClient{
		client:      client,
		modelName:   model,
		temperature: temperature,
	}, nil
}

// GenerateContent sends a prompt to the model and returns the response text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// ExtractResume asks the model for a structured view of the resume text. The
// response is constrained to the declared schema; a payload that still cannot
// be decoded propagates as an error with no retry.
func (c *GeminiClient) ExtractResume(ctx context.Context, resumeText string) (models.ResumeRecord, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = resumeSchema

	prompt := "Extract the structured fields from this resume:\n\n" + resumeText

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.ResumeRecord{}, fmt.Errorf("failed to extract resume: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return models.ResumeRecord{}, err
	}

	return ParseResumeJSON(text)
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.modelName
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ParseResumeJSON decodes a structured extraction payload into a resume
// record, tolerating markdown code fences around the JSON.
func ParseResumeJSON(payload string) (models.ResumeRecord, error) {
	cleaned := cleanJSONBlock(payload)

	var record models.ResumeRecord
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		return models.ResumeRecord{}, fmt.Errorf("failed to decode resume payload: %w", err)
	}

	return record, nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
