package headline

import (
	"fmt"
	"strings"
)

var toneInstructions = map[Style]string{
	StyleBlack: "Agressivo, direto, copy preta",
	StyleWhite: "Curiosidade, suave, copy branca",
}

// BuildPrompt renders the style-conditioned instruction sent to the generator.
func BuildPrompt(req GenerateRequest) string {
	tone, ok := toneInstructions[req.Style]
	if !ok {
		tone = toneInstructions[StyleWhite]
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Gere uma headline de alta conversão para o nicho %s.\n", req.Niche)
	fmt.Fprintf(&sb, "Estilo: %s.\n", tone)
	fmt.Fprintf(&sb, "Briefing: %s.\n", req.Briefing)
	sb.WriteString("Retorne APENAS a headline, sem aspas.")
	return sb.String()
}

// quotePairs maps an opening quote to the rune that closes it.
var quotePairs = map[rune]rune{
	'"': '"',
	'\'': '\'',
	'`': '`',
	'“': '”',
	'‘': '’',
	'«': '»',
}

// StripQuotes trims whitespace and removes quote pairs that wrap the whole
// text. Quotes inside the text, or on one side only, are kept.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	for {
		r := []rune(s)
		if len(r) < 2 {
			return s
		}
		closing, ok := quotePairs[r[0]]
		if !ok || r[len(r)-1] != closing {
			return s
		}
		s = strings.TrimSpace(string(r[1 : len(r)-1]))
	}
}
