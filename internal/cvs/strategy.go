package cvs

import (
	"context"
	"fmt"

	"cvprofile-backend/internal/extract"
	"cvprofile-backend/internal/llm"
)

// ExtractionStrategy prepares the model request for one upload. Prepare also
// returns the extracted_text audit artifact persisted on completion.
type ExtractionStrategy interface {
	Name() string
	Prepare(ctx context.Context, data []byte, mimeType, fileName string) (llm.Request, string, error)
}

// DirectStrategy sends the original file bytes to the model as an inline
// part; no local text extraction happens.
type DirectStrategy struct{}

func (DirectStrategy) Name() string { return "direct" }

func (DirectStrategy) Prepare(ctx context.Context, data []byte, mimeType, fileName string) (llm.Request, string, error) {
	if err := ctx.Err(); err != nil {
		return llm.Request{}, "", err
	}
	return llm.Request{
		Prompt:   llm.ExtractProfilePrompt(),
		FileData: data,
		FileMIME: mimeType,
	}, DirectExtractionText, nil
}

// TraditionalStrategy extracts plain text locally and prompts the model with
// it.
type TraditionalStrategy struct{}

func (TraditionalStrategy) Name() string { return "traditional" }

func (TraditionalStrategy) Prepare(ctx context.Context, data []byte, mimeType, fileName string) (llm.Request, string, error) {
	text, err := extract.ExtractText(ctx, data, mimeType, fileName)
	if err != nil {
		return llm.Request{}, "", fmt.Errorf("text extraction: %w", err)
	}
	return llm.Request{Prompt: llm.ExtractProfilePromptWithText(text)}, text, nil
}

// SelectStrategy resolves the configured strategy name. An unknown name is a
// fatal configuration error, never silently defaulted.
func SelectStrategy(name string) (ExtractionStrategy, error) {
	switch name {
	case "direct":
		return DirectStrategy{}, nil
	case "traditional":
		return TraditionalStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoExtractionStrategy, name)
	}
}
