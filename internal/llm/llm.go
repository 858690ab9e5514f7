package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for CV analysis.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request captures a single generation call. When FileData is set the
// provider sends the raw document inline alongside the prompt; otherwise
// the prompt stands alone.
type Request struct {
	Prompt   string
	FileData []byte
	FileMIME string
}

// ErrEmptyResponse indicates the provider returned no usable text.
var ErrEmptyResponse = errors.New("empty model response")

// PlaceholderClient stands in when no provider is configured. Every call
// fails, which lets the rest of the stack run locally without an API key.
type PlaceholderClient struct{}

func (PlaceholderClient) Generate(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", errors.New("llm client not configured")
}
