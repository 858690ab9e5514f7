package profile

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestScoreEmptyProfile(t *testing.T) {
	if got := Score(&ExtractedProfile{}); got != 0 {
		t.Fatalf("expected 0 for empty profile, got %d", got)
	}
	if got := Score(nil); got != 0 {
		t.Fatalf("expected 0 for nil profile, got %d", got)
	}
}

func TestScoreWeights(t *testing.T) {
	about := strings.Repeat("x", 60)
	p := &ExtractedProfile{
		ContactInfo: &ContactInfo{
			Name:  strPtr("Jane Doe"),
			Email: strPtr("jane@example.com"),
		},
		About: &about,
		Skills: []Skill{
			{Name: "Go"}, {Name: "SQL"}, {Name: "Docker"},
		},
		Experience: []Experience{
			{Title: "Engineer", Company: "Acme"},
		},
	}
	// 10 + 5 + 15 + 3*2 + 1*5 = 41
	if got := Score(p); got != 41 {
		t.Fatalf("expected 41, got %d", got)
	}
}

func TestScoreShortAboutDoesNotCount(t *testing.T) {
	about := strings.Repeat("x", 50)
	p := &ExtractedProfile{About: &about}
	if got := Score(p); got != 0 {
		t.Fatalf("expected 0 for 50-char about, got %d", got)
	}
}

func TestScoreClampsAt100(t *testing.T) {
	p := &ExtractedProfile{}
	for i := 0; i < 60; i++ {
		p.Skills = append(p.Skills, Skill{Name: "s"})
	}
	if got := Score(p); got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
}

func TestScoreEmptyStringContactDoesNotCount(t *testing.T) {
	p := &ExtractedProfile{ContactInfo: &ContactInfo{Name: strPtr("  ")}}
	if got := Score(p); got != 0 {
		t.Fatalf("expected 0 for blank name, got %d", got)
	}
}
