package headline

import (
	"strings"
	"testing"
)

func TestBuildPrompt_Style(t *testing.T) {
	black := BuildPrompt(GenerateRequest{Niche: "fitness", Briefing: "curso online", Style: StyleBlack})
	white := BuildPrompt(GenerateRequest{Niche: "fitness", Briefing: "curso online", Style: StyleWhite})

	if !strings.Contains(black, "copy preta") {
		t.Errorf("black prompt missing tone: %s", black)
	}
	if !strings.Contains(white, "copy branca") {
		t.Errorf("white prompt missing tone: %s", white)
	}
	for _, p := range []string{black, white} {
		if !strings.Contains(p, "fitness") || !strings.Contains(p, "curso online") {
			t.Errorf("prompt missing niche or briefing: %s", p)
		}
	}
}

func TestStripQuotes(t *testing.T) {
	tests := []struct{ in, want string }{
		{`"Ganhe mais hoje"`, "Ganhe mais hoje"},
		{"'Ganhe mais hoje'", "Ganhe mais hoje"},
		{"  “Ganhe mais hoje”  \n", "Ganhe mais hoje"},
		{"Ganhe mais hoje", "Ganhe mais hoje"},
		{`""`, ""},
		{"", ""},
		{"«Ganhe mais hoje»", "Ganhe mais hoje"},
		{`"'Ganhe mais hoje'"`, "Ganhe mais hoje"},
		{"Conheça o método 'Lucro Fácil'", "Conheça o método 'Lucro Fácil'"},
		{`"O que é o 'segredo'"`, "O que é o 'segredo'"},
		{"'Agora' é a hora", "'Agora' é a hora"},
		{`"Ganhe mais hoje`, `"Ganhe mais hoje`},
		{`"`, `"`},
	}
	for _, tt := range tests {
		if got := StripQuotes(tt.in); got != tt.want {
			t.Errorf("StripQuotes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
