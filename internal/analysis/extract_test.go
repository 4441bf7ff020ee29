package analysis

import (
	"reflect"
	"testing"
)

func TestExtractTickers(t *testing.T) {
	lex := DefaultLexicon()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "tracked only", text: "YPF anuncia resultados", want: []string{"YPF"}},
		{name: "tracked wins over untracked", text: "GGAL y BCRA: YPF sube, GGAL cae", want: []string{"GGAL", "YPF"}},
		{name: "fallback drops stopwords", text: "BCRA y EL FMI acuerdan DE nuevo con AL TESORO", want: []string{"BCRA", "FMI"}},
		{name: "fallback capped at three", text: "AAA BBB CCC DDD", want: []string{"AAA", "BBB", "CCC"}},
		{name: "cap applies before dedupe", text: "AAA AAA BBB CCC", want: []string{"AAA", "BBB"}},
		{name: "no uppercase tokens", text: "crisis en la bolsa", want: []string{}},
		{name: "empty", text: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lex.ExtractTickers(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTickers(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractSocialTickers(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Cuidado con $GGAL y $YPF, otra vez $GGAL", []string{"GGAL", "YPF"}},
		{"$NVDA no está en la lista pero cuenta", []string{"NVDA"}},
		{"sin cashtags GGAL", []string{}},
		{"$ggal en minúsculas", []string{}},
	}
	for _, tt := range tests {
		got := ExtractSocialTickers(tt.text)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractSocialTickers(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestExtractPercentages(t *testing.T) {
	got := ExtractPercentages("sube 3.5% y luego 12 % más, 7%")
	want := []float64{3.5, 12, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractPercentages = %v, want %v", got, want)
	}
	if got := ExtractPercentages("sin cifras"); len(got) != 0 {
		t.Errorf("expected no percentages, got %v", got)
	}
}

func TestExtractMoneyAmounts(t *testing.T) {
	text := "Invertirá $ 500 millones y USD 20 M, más 300 millones de pesos"
	want := []string{"$ 500 millones", "USD 20 M", "300 millones de pesos"}
	if got := ExtractMoneyAmounts(text); !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractMoneyAmounts = %v, want %v", got, want)
	}

	if got := ExtractMoneyAmounts("Emisión por U$D 3 B"); !reflect.DeepEqual(got, []string{"U$D 3 B"}) {
		t.Errorf("U$D amount = %v", got)
	}
	if got := ExtractMoneyAmounts("deuda de usd 2 mil millones"); !reflect.DeepEqual(got, []string{"usd 2 mil millones"}) {
		t.Errorf("case-insensitive amount = %v", got)
	}
	if got := ExtractMoneyAmounts("nada que ver"); len(got) != 0 {
		t.Errorf("expected no amounts, got %v", got)
	}
}
