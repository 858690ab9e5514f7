package suggestions

import (
	"context"
	"errors"
	"testing"
	"time"

	"cvprofile-backend/internal/llm"
	"cvprofile-backend/internal/llmretry"
	"cvprofile-backend/internal/profile"
)

type mockLLM struct {
	responses []string
	calls     int
}

func (m *mockLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	idx := m.calls
	m.calls++
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	if len(m.responses) > 0 {
		return m.responses[len(m.responses)-1], nil
	}
	return "", errors.New("no scripted response")
}

func noDelay() llmretry.Config {
	return llmretry.Config{MaxAttempts: 7, Delay: func(int) time.Duration { return 0 }}
}

func sampleCV() *profile.ExtractedProfile {
	name := "Jane"
	return &profile.ExtractedProfile{
		ContactInfo: &profile.ContactInfo{Name: &name},
		Skills:      []profile.Skill{{Name: "Go"}},
	}
}

const validBatchJSON = `{"suggestions": [
  {"section": "contactInfo", "suggestionType": "add_content", "suggestedText": "Add LinkedIn", "reasoning": "visibility", "priority": "high"},
  {"section": "contactInfo", "suggestionType": "wording", "suggestedText": "Professional email", "reasoning": "tone", "priority": "low"},
  {"section": "skills", "suggestionType": "add_content", "suggestedText": "Add Kubernetes", "reasoning": "market fit", "priority": "high"},
  {"section": "skills", "suggestionType": "reorder", "suggestedText": "Lead with Go", "reasoning": "relevance", "priority": "medium"},
  {"section": "about", "suggestionType": "wording", "suggestedText": "Sharper opener", "reasoning": "clarity", "priority": "high"},
  {"section": "experience", "suggestionType": "format", "suggestedText": "Bullet points", "reasoning": "scanability", "priority": "low"},
  {"section": "education", "suggestionType": "add_content", "suggestedText": "Add graduation year", "reasoning": "completeness", "priority": "medium"}
]}`

func TestGenerateFiltersContactInfo(t *testing.T) {
	client := &mockLLM{responses: []string{validBatchJSON}}
	svc := NewService(client, noDelay())

	result, err := svc.Generate(context.Background(), sampleCV())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Items) != 5 {
		t.Fatalf("expected 5 items after filtering, got %d", len(result.Items))
	}
	if result.RemovedContactItems != 2 {
		t.Fatalf("expected 2 removed, got %d", result.RemovedContactItems)
	}
	for _, item := range result.Items {
		if item.Section == SectionContactInfo {
			t.Fatalf("contactInfo item leaked: %+v", item)
		}
	}
	if result.Degraded {
		t.Fatalf("expected full success")
	}
}

func TestGenerateRetriesThenSucceeds(t *testing.T) {
	client := &mockLLM{responses: []string{"garbage", "more garbage", validBatchJSON}}
	svc := NewService(client, noDelay())

	result, err := svc.Generate(context.Background(), sampleCV())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Attempt != 3 {
		t.Fatalf("expected success on attempt 3, got %d", result.Attempt)
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 model calls, got %d", client.calls)
	}
}

func TestGenerateExhaustsAfterSevenAttempts(t *testing.T) {
	client := &mockLLM{responses: []string{"never json"}}
	svc := NewService(client, noDelay())

	_, err := svc.Generate(context.Background(), sampleCV())
	if !errors.Is(err, llmretry.ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if client.calls != 7 {
		t.Fatalf("expected exactly 7 attempts, got %d", client.calls)
	}
}

func TestGenerateDegradedCarriesPartialItems(t *testing.T) {
	// One bad item makes every attempt invalid; the last attempt still
	// yields the good ones.
	mixed := `{"suggestions": [
	  {"section": "skills", "suggestionType": "add_content", "suggestedText": "Add Docker", "reasoning": "demand", "priority": "high"},
	  {"section": "hobbies", "suggestionType": "add_content", "suggestedText": "x", "reasoning": "y"}
	]}`
	client := &mockLLM{responses: []string{mixed}}
	svc := NewService(client, llmretry.Config{MaxAttempts: 2, Delay: func(int) time.Duration { return 0 }})

	result, err := svc.Generate(context.Background(), sampleCV())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !result.Degraded {
		t.Fatalf("expected degraded result")
	}
	if len(result.Items) != 1 || result.Items[0].Section != "skills" {
		t.Fatalf("expected only the quality item, got %+v", result.Items)
	}
	if len(result.ValidationErrors) == 0 {
		t.Fatalf("expected validation errors surfaced")
	}
}
