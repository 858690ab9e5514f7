package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"cvprofile-backend/internal/llm"
)

const defaultTimeout = 90 * time.Second

// Client implements llm.Client using the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewClient constructs a Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client:  client,
		model:   model,
		timeout: defaultTimeout,
	}, nil
}

// Generate sends a single generation request. File bytes, when present,
// travel as an inline part next to the prompt.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var contents []*genai.Content
	if len(req.FileData) > 0 {
		parts := []*genai.Part{
			genai.NewPartFromText(req.Prompt),
			genai.NewPartFromBytes(req.FileData, req.FileMIME),
		}
		contents = []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	} else {
		contents = genai.Text(req.Prompt)
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}

	result, err := c.client.Models.GenerateContent(timeoutCtx, c.model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if err := validateResponse(result); err != nil {
		return "", err
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func validateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return llm.ErrEmptyResponse
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response: %w", llm.ErrEmptyResponse)
	}
	if resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in candidate content: %w", llm.ErrEmptyResponse)
	}
	return nil
}
