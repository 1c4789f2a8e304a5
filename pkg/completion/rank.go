package completion

import "sort"

// languageSpecificBonus nudges suggestions tailored to the active
// language above generic ones with equal confidence.
const languageSpecificBonus = 0.1

func score(s Suggestion) float64 {
	v := s.Confidence
	if s.LanguageSpecific {
		v += languageSpecificBonus
	}
	return v
}

// Rank orders suggestions by descending composite score. The sort is
// stable: equal scores keep their arrival order, so repeated calls on
// the same input produce the identical order.
func Rank(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return score(suggestions[i]) > score(suggestions[j])
	})
}
