package suggestions

import (
	"context"
	"encoding/json"
	"fmt"

	"cvprofile-backend/internal/llm"
	"cvprofile-backend/internal/llmretry"
	"cvprofile-backend/internal/profile"
	"cvprofile-backend/internal/shared/metrics"
	"cvprofile-backend/internal/shared/telemetry"
)

// Result is a generation outcome after the contactInfo policy filter.
type Result struct {
	Items               []Item
	Attempt             int
	Degraded            bool
	ValidationErrors    []string
	ValidationWarnings  []string
	RemovedContactItems int
}

// Service generates suggestions for a structured CV.
type Service struct {
	llm   llm.Client
	retry llmretry.Config
}

// NewService wires the generation dependencies explicitly.
func NewService(client llm.Client, retry llmretry.Config) *Service {
	if retry.Flow == "" {
		retry.Flow = "suggestions"
	}
	return &Service{llm: client, retry: retry}
}

// Generate runs the retry controller and applies the contactInfo filter to
// both success and degraded outcomes. Exhaustion surfaces as
// llmretry.ErrRetryExhausted.
func (s *Service) Generate(ctx context.Context, cv *profile.ExtractedProfile) (Result, error) {
	cvJSON, err := json.Marshal(cv)
	if err != nil {
		return Result{}, fmt.Errorf("encode cv: %w", err)
	}
	req := llm.Request{Prompt: llm.SuggestionsPrompt(string(cvJSON))}

	outcome, err := llmretry.Run(ctx, s.retry, llmretry.Steps[Batch]{
		Invoke: func(ctx context.Context, attempt int) (string, error) {
			metrics.IncLLMAttempt()
			return s.llm.Generate(ctx, req)
		},
		Parse: func(candidate string) (Batch, error) {
			var b Batch
			if err := json.Unmarshal([]byte(candidate), &b); err != nil {
				return Batch{}, err
			}
			return b, nil
		},
		Validate: ValidateBatch,
	})
	if err != nil {
		metrics.IncSuggestionExhausted()
		return Result{}, err
	}

	kept, removed := filterContactInfo(outcome.Value.Suggestions)
	if removed > 0 {
		telemetry.Info("suggestions.contact_filtered", map[string]any{
			"removed": removed,
			"kept":    len(kept),
		})
	}

	if outcome.Degraded {
		metrics.IncSuggestionDegraded()
	} else {
		metrics.IncSuggestionCompleted()
	}

	return Result{
		Items:               kept,
		Attempt:             outcome.Attempt,
		Degraded:            outcome.Degraded,
		ValidationErrors:    outcome.Errors,
		ValidationWarnings:  outcome.Warnings,
		RemovedContactItems: removed,
	}, nil
}

// filterContactInfo drops contactInfo-section items. The removed count is
// observable in logs only, never in the response body.
func filterContactInfo(items []Item) ([]Item, int) {
	kept := make([]Item, 0, len(items))
	removed := 0
	for _, item := range items {
		if item.Section == SectionContactInfo {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}
