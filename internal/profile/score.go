package profile

import "strings"

// Score computes the improvement score for an extracted profile. It is a
// coarse completeness heuristic, not a quality judgment.
func Score(p *ExtractedProfile) int {
	if p == nil {
		return 0
	}
	score := 0
	if p.ContactInfo != nil {
		if present(p.ContactInfo.Name) {
			score += 10
		}
		if present(p.ContactInfo.Email) {
			score += 5
		}
	}
	if p.About != nil && len(strings.TrimSpace(*p.About)) > 50 {
		score += 15
	}
	score += 2 * len(p.Skills)
	score += 5 * len(p.Experience)
	score += 3 * len(p.Education)
	score += 2 * len(p.Achievements)

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
