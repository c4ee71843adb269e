package headline

import (
	"strings"
	"unicode/utf8"
)

// Breakdown holds the five sub-scores, each in [0,100].
type Breakdown struct {
	Length     int `json:"length"`
	PowerWords int `json:"power_words"`
	Urgency    int `json:"urgency"`
	Clarity    int `json:"clarity"`
	Curiosity  int `json:"curiosity"`
}

// ScoreResult is the weighted total plus its breakdown.
type ScoreResult struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

const (
	idealMinLength = 40
	idealMaxLength = 70
)

var (
	powerWords = []string{"grátis", "novo", "agora", "revelado", "secreto", "dinheiro", "lucro", "fácil", "rápido"}

	urgencyWords = []string{"hoje", "última chance", "acabando", "restam", "urgente", "imediatamente"}

	curiosityTriggers = []string{"como", "por que", "método", "estratégia", "passo a passo"}
)

// Weights in percent: length, power words, urgency, clarity, curiosity.
const (
	weightLength     = 20
	weightPowerWords = 25
	weightUrgency    = 15
	weightClarity    = 20
	weightCuriosity  = 20
)

// Score computes the conversion score of text. It is deterministic and has
// no side effects.
func Score(text string) ScoreResult {
	lower := strings.ToLower(text)

	b := Breakdown{
		Length:     lengthScore(utf8.RuneCountInString(text)),
		PowerWords: min(100, countMatches(lower, powerWords)*25),
		Urgency:    min(100, countMatches(lower, urgencyWords)*50),
		Clarity:    70,
		Curiosity:  min(100, countMatches(lower, curiosityTriggers)*40),
	}
	if strings.ContainsAny(text, "?!") {
		b.Clarity = 90
	}

	weighted := b.Length*weightLength +
		b.PowerWords*weightPowerWords +
		b.Urgency*weightUrgency +
		b.Clarity*weightClarity +
		b.Curiosity*weightCuriosity

	// Integer half-up rounding of weighted/100; every term is non-negative.
	return ScoreResult{Total: (weighted + 50) / 100, Breakdown: b}
}

func lengthScore(n int) int {
	switch {
	case n > idealMaxLength:
		return max(0, 100-(n-idealMaxLength)*2)
	case n < idealMinLength:
		return max(0, 100-(idealMinLength-n)*3)
	default:
		return 100
	}
}

// countMatches counts lexicon entries present in text, each at most once.
func countMatches(text string, lexicon []string) int {
	n := 0
	for _, term := range lexicon {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}
