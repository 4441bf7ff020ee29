package analysis

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Match struct {
	Keyword string
	Tier    Tier
	Score   float64
}

// FindBestMatch scans every tier in TierOrder and returns the highest scoring
// keyword that clears its tier threshold. During market hours thresholds are
// relaxed by 20%. Ties keep the earlier tier and keyword.
func (l *Lexicon) FindBestMatch(text string, marketHours bool) (Match, bool) {
	return l.bestMatch(text, func(tier Tier, score float64) (float64, bool) {
		return score, score >= l.relaxedThreshold(tier, marketHours)
	})
}

// FindBestSocialMatch multiplies every score by the virality multiplier and
// accepts any positive result. Social posts are gated later by priority and
// virality instead of the threshold table.
func (l *Lexicon) FindBestSocialMatch(text string, multiplier float64) (Match, bool) {
	return l.bestMatch(text, func(_ Tier, score float64) (float64, bool) {
		adjusted := round2(score * multiplier)
		return adjusted, adjusted > 0
	})
}

func (l *Lexicon) bestMatch(text string, accept func(Tier, float64) (float64, bool)) (Match, bool) {
	lowered := strings.ToLower(text)
	percentages := ExtractPercentages(text)

	var best Match
	found := false
	for _, tier := range TierOrder {
		for _, entry := range l.keywords[tier] {
			raw := l.score(lowered, percentages, entry.Keyword, tier)
			if raw == 0 {
				continue
			}
			score, ok := accept(tier, raw)
			if !ok {
				continue
			}
			if !found || score > best.Score {
				best = Match{Keyword: entry.Keyword, Tier: tier, Score: score}
				found = true
			}
		}
	}
	return best, found
}

func (l *Lexicon) relaxedThreshold(tier Tier, marketHours bool) float64 {
	threshold := decimal.NewFromFloat(l.Threshold(tier))
	if marketHours {
		threshold = threshold.Mul(decimal.NewFromFloat(marketHoursRelief))
	}
	return threshold.InexactFloat64()
}
