package analysis

import (
	"regexp"
	"strconv"
)

var (
	tickerPattern       = regexp.MustCompile(`\b[A-Z]{2,5}\b`)
	socialTickerPattern = regexp.MustCompile(`\$([A-Z]{2,5})`)
	percentagePattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

	// Declaration order is the output order.
	moneyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$\s*\d+(?:\.\d+)?\s*(?:millones?|mil millones?|billones?)`),
		regexp.MustCompile(`(?i)(?:USD?|U\$D)\s*\d+(?:\.\d+)?\s*(?:millones?|mil millones?|M|B)`),
		regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:millones?|mil millones?)\s*(?:de)?\s*(?:pesos|dólares)`),
	}
)

type Extraction struct {
	Tickers      []string
	Percentages  []float64
	MoneyAmounts []string
}

// MaxPercentage reports the largest percentage and whether any was found.
func (e Extraction) MaxPercentage() (float64, bool) {
	return maxOf(e.Percentages)
}

// ExtractTickers returns tracked tickers found in text. When none of the
// uppercase tokens is tracked it falls back to the first three tokens that
// are not stopwords.
func (l *Lexicon) ExtractTickers(text string) []string {
	tokens := tickerPattern.FindAllString(text, -1)

	known := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if l.IsTracked(token) {
			known = append(known, token)
		}
	}
	if len(known) > 0 {
		return dedupe(known)
	}

	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !l.isStopword(token) {
			filtered = append(filtered, token)
		}
	}
	if len(filtered) > fallbackTickerLimit {
		filtered = filtered[:fallbackTickerLimit]
	}
	return dedupe(filtered)
}

// ExtractSocialTickers returns cashtag symbols ($GGAL) without the dollar sign.
func ExtractSocialTickers(text string) []string {
	matches := socialTickerPattern.FindAllStringSubmatch(text, -1)
	tickers := make([]string, 0, len(matches))
	for _, match := range matches {
		tickers = append(tickers, match[1])
	}
	return dedupe(tickers)
}

func ExtractPercentages(text string) []float64 {
	matches := percentagePattern.FindAllStringSubmatch(text, -1)
	values := make([]float64, 0, len(matches))
	for _, match := range matches {
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		values = append(values, value)
	}
	return values
}

func ExtractMoneyAmounts(text string) []string {
	amounts := make([]string, 0)
	for _, pattern := range moneyPatterns {
		amounts = append(amounts, pattern.FindAllString(text, -1)...)
	}
	return amounts
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func maxOf(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	best := values[0]
	for _, value := range values[1:] {
		if value > best {
			best = value
		}
	}
	return best, true
}
