package matcher

import "strings"

// keywordOverlap is the loose check applied when no source scores above
// the threshold. It compares a target label with a source key word by
// word, counting target words that contain or are contained in some key
// word. A label of one word needs one hit; longer labels need two.
func keywordOverlap(targetLabel, key string) bool {
	words := strings.Fields(strings.ToLower(targetLabel))
	keyWords := strings.Fields(strings.ToLower(key))
	if len(words) == 0 || len(keyWords) == 0 {
		return false
	}

	need := min(2, len(words))
	hits := 0
	for _, w := range words {
		for _, k := range keyWords {
			if strings.Contains(k, w) || strings.Contains(w, k) {
				hits++
				break
			}
		}
		if hits >= need {
			return true
		}
	}
	return false
}
