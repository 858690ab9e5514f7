package profile

import (
	"strings"

	"cvprofile-backend/internal/llmretry"
)

// ValidateExtraction normalizes a parsed profile and judges whether it
// carries enough data to be worth persisting. Count is the number of
// populated sections; an attempt succeeds only with at least one.
func ValidateExtraction(p *ExtractedProfile) llmretry.Verdict[*ExtractedProfile] {
	if p == nil {
		return llmretry.Verdict[*ExtractedProfile]{
			Errors: []string{"profile is nil"},
		}
	}

	normalize(p)

	count := 0
	var warnings []string

	if p.ContactInfo != nil {
		count++
	} else {
		warnings = append(warnings, "no contact info extracted")
	}
	if p.About != nil {
		count++
	}
	if len(p.Skills) > 0 {
		count++
	} else {
		warnings = append(warnings, "no skills extracted")
	}
	if len(p.Experience) > 0 {
		count++
	}
	if len(p.Education) > 0 {
		count++
	}
	if len(p.Achievements) > 0 {
		count++
	}

	var errs []string
	if count == 0 {
		errs = append(errs, "no recognizable profile data")
	}

	return llmretry.Verdict[*ExtractedProfile]{
		Valid:    len(errs) == 0,
		Filtered: p,
		Count:    count,
		Errors:   errs,
		Warnings: warnings,
	}
}

// normalize enforces the missing-is-absent invariant: blank strings become
// nil pointers, list items without their primary field are dropped.
func normalize(p *ExtractedProfile) {
	if p.ContactInfo != nil {
		c := p.ContactInfo
		c.Name = cleanPtr(c.Name)
		c.Email = cleanPtr(c.Email)
		c.Phone = cleanPtr(c.Phone)
		c.Links = cleanList(c.Links)
		if c.Name == nil && c.Email == nil && c.Phone == nil && len(c.Links) == 0 {
			p.ContactInfo = nil
		}
	}
	p.About = cleanPtr(p.About)

	skills := p.Skills[:0]
	for _, s := range p.Skills {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		s.Level = cleanPtr(s.Level)
		skills = append(skills, s)
	}
	p.Skills = skills

	exp := p.Experience[:0]
	for _, e := range p.Experience {
		e.Title = strings.TrimSpace(e.Title)
		if e.Title == "" {
			continue
		}
		exp = append(exp, e)
	}
	p.Experience = exp

	edu := p.Education[:0]
	for _, e := range p.Education {
		e.Institution = strings.TrimSpace(e.Institution)
		if e.Institution == "" {
			continue
		}
		edu = append(edu, e)
	}
	p.Education = edu

	ach := p.Achievements[:0]
	for _, a := range p.Achievements {
		a.Title = strings.TrimSpace(a.Title)
		if a.Title == "" {
			continue
		}
		ach = append(ach, a)
	}
	p.Achievements = ach
}

func cleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cleanList(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
