package analysis

import "testing"

func TestScore(t *testing.T) {
	lex := DefaultLexicon()
	tests := []struct {
		name    string
		text    string
		keyword string
		tier    Tier
		want    float64
	}{
		{
			name:    "context and percentage bonus",
			text:    "Crisis financiera: caída del 8% en el mercado",
			keyword: "crisis",
			tier:    TierCritical,
			want:    1.5,
		},
		{
			name:    "keyword absent",
			text:    "Jornada tranquila en la bolsa",
			keyword: "crisis",
			tier:    TierCritical,
			want:    0,
		},
		{
			name:    "case insensitive match",
			text:    "CRASH EN LA BOLSA",
			keyword: "crash",
			tier:    TierCritical,
			want:    1.2,
		},
		{
			name:    "first magnitude word only",
			text:    "Fuerte suba récord de GGAL",
			keyword: "suba",
			tier:    TierPositive,
			want:    1.43,
		},
		{
			name:    "positive percentage bonus from three",
			text:    "Suba de 4% para CEPU",
			keyword: "suba",
			tier:    TierPositive,
			want:    0.9,
		},
		{
			name:    "high needs five percent",
			text:    "Baja de 4% en ALUA",
			keyword: "baja",
			tier:    TierHigh,
			want:    0.6,
		},
		{
			name:    "medium gets no percentage bonus",
			text:    "Volatilidad alta, 12% de variación",
			keyword: "volatilidad",
			tier:    TierMedium,
			want:    0.7,
		},
		{
			name:    "unknown keyword uses default weight",
			text:    "Temblor en el Merval",
			keyword: "temblor",
			tier:    TierHigh,
			want:    0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lex.Score(tt.text, tt.keyword, tt.tier); got != tt.want {
				t.Errorf("Score(%q, %q, %s) = %.2f, want %.2f", tt.text, tt.keyword, tt.tier, got, tt.want)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	lex := DefaultLexicon()
	text := "Fuerte caída del 7% en GGAL tras alerta roja"
	first := lex.Score(text, "caída", TierHigh)
	for i := 0; i < 10; i++ {
		if got := lex.Score(text, "caída", TierHigh); got != first {
			t.Fatalf("run %d: score %.2f differs from %.2f", i, got, first)
		}
	}
}

func TestScoreContextMonotonic(t *testing.T) {
	text := "baja pronunciada en bonos"
	without := &Lexicon{keywords: map[Tier][]KeywordEntry{TierHigh: {{Keyword: "baja", Weight: 0.6}}}}
	with := &Lexicon{keywords: map[Tier][]KeywordEntry{TierHigh: {{Keyword: "baja", Weight: 0.6, Context: []string{"pronunciada"}}}}}

	base := without.Score(text, "baja", TierHigh)
	boosted := with.Score(text, "baja", TierHigh)
	if boosted <= base {
		t.Errorf("context term did not raise score: %.2f <= %.2f", boosted, base)
	}
}

func TestScoreSingleMagnitudeMultiplier(t *testing.T) {
	lex := &Lexicon{
		keywords: map[Tier][]KeywordEntry{TierPositive: {{Keyword: "rally", Weight: 1.0}}},
		boosters: []Booster{{"histórico", 1.5}, {"fuerte", 1.3}, {"millonario", 1.3}},
	}
	got := lex.Score("rally histórico, fuerte y millonario", "rally", TierPositive)
	if got != 1.5 {
		t.Errorf("score = %.2f, want 1.50 (only the first booster in table order)", got)
	}

	got = lex.Score("rally fuerte y millonario", "rally", TierPositive)
	if got != 1.3 {
		t.Errorf("score = %.2f, want 1.30", got)
	}
}
