package analysis

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Score rates how strongly text supports keyword in the given tier. It is 0
// when the keyword does not occur in text (case-insensitive).
func (l *Lexicon) Score(text, keyword string, tier Tier) float64 {
	lowered := strings.ToLower(text)
	return l.score(lowered, ExtractPercentages(text), strings.ToLower(keyword), tier)
}

func (l *Lexicon) score(lowered string, percentages []float64, keyword string, tier Tier) float64 {
	if keyword == "" || !strings.Contains(lowered, keyword) {
		return 0
	}

	score := defaultWeight
	entry, ok := l.Entry(tier, keyword)
	if ok {
		score = entry.Weight
	}

	for _, term := range entry.Context {
		if strings.Contains(lowered, term) {
			score += contextBonus
		}
	}

	for _, booster := range l.boosters {
		if strings.Contains(lowered, booster.Word) {
			score *= booster.Multiplier
			break
		}
	}

	if top, ok := maxOf(percentages); ok {
		switch {
		case (tier == TierCritical || tier == TierHigh) && top >= strongPctMin:
			score += strongPctBonus
		case tier == TierPositive && top >= positivePctMin:
			score += positivePctBonus
		}
	}

	return round2(score)
}

func round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
