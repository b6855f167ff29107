package matcher

import "github.com/GriffinCanCode/formclip/internal/vocab"

// scorer computes the weighted Dice coefficient of two token multisets.
type scorer struct {
	vocab         *vocab.Vocabulary
	synonymWeight float64
}

// score returns 2*w / (|a| + |b|), where w counts one per shared token and
// synonymWeight per synonym pair. Each token takes part in at most one
// pair, and exact pairs are taken before synonym pairs.
func (s scorer) score(a, b []string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}

	usedA := make([]bool, len(a))
	usedB := make([]bool, len(b))
	var w float64

	for i, ta := range a {
		for j, tb := range b {
			if !usedB[j] && ta == tb {
				usedA[i], usedB[j] = true, true
				w++
				break
			}
		}
	}

	for i, ta := range a {
		if usedA[i] {
			continue
		}
		for j, tb := range b {
			if !usedB[j] && s.vocab.AreSynonyms(ta, tb) {
				usedA[i], usedB[j] = true, true
				w += s.synonymWeight
				break
			}
		}
	}

	return 2 * w / float64(total)
}
