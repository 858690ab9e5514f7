package profile

import "testing"

func TestValidateExtractionRejectsEmptyProfile(t *testing.T) {
	verdict := ValidateExtraction(&ExtractedProfile{})
	if verdict.Valid {
		t.Fatalf("expected invalid verdict")
	}
	if verdict.Count != 0 {
		t.Fatalf("expected count 0, got %d", verdict.Count)
	}
	if len(verdict.Errors) == 0 {
		t.Fatalf("expected errors")
	}
}

func TestValidateExtractionCountsSections(t *testing.T) {
	verdict := ValidateExtraction(&ExtractedProfile{
		ContactInfo: &ContactInfo{Name: strPtr("Jane")},
		Skills:      []Skill{{Name: "Go"}},
	})
	if !verdict.Valid {
		t.Fatalf("expected valid verdict: %+v", verdict)
	}
	if verdict.Count != 2 {
		t.Fatalf("expected 2 populated sections, got %d", verdict.Count)
	}
}

func TestValidateExtractionNormalizesBlankFields(t *testing.T) {
	verdict := ValidateExtraction(&ExtractedProfile{
		ContactInfo: &ContactInfo{Name: strPtr("  "), Email: strPtr("")},
		Skills:      []Skill{{Name: "  "}, {Name: "Go"}},
		Experience:  []Experience{{Title: ""}},
	})
	p := verdict.Filtered
	if p.ContactInfo != nil {
		t.Fatalf("expected blank contact info collapsed to nil")
	}
	if len(p.Skills) != 1 || p.Skills[0].Name != "Go" {
		t.Fatalf("expected blank skill dropped, got %+v", p.Skills)
	}
	if len(p.Experience) != 0 {
		t.Fatalf("expected titleless experience dropped, got %+v", p.Experience)
	}
}

func TestValidateExtractionNilProfile(t *testing.T) {
	verdict := ValidateExtraction(nil)
	if verdict.Valid || verdict.Count != 0 {
		t.Fatalf("expected invalid empty verdict, got %+v", verdict)
	}
}
