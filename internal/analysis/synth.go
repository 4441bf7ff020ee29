package analysis

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/NasaVasa/newsalerts/internal/domain"
	"github.com/google/uuid"
)

const (
	highlyViralEngagement = 500
	viralEngagement       = 100
	significantEngagement = 50

	highlyViralMultiplier = 1.5
	viralMultiplier       = 1.2

	articleTimeframe = "1d"
	socialTimeframe  = "1h"

	contentTypeNews  = "news"
	contentTypeTweet = "tweet"
)

type Virality string

const (
	ViralityNone        Virality = "none"
	ViralitySignificant Virality = "significant"
	ViralityViral       Virality = "viral"
	ViralityHighlyViral Virality = "highly_viral"
)

func ClassifyEngagement(engagement int) Virality {
	switch {
	case engagement > highlyViralEngagement:
		return ViralityHighlyViral
	case engagement > viralEngagement:
		return ViralityViral
	case engagement > significantEngagement:
		return ViralitySignificant
	}
	return ViralityNone
}

// Multiplier is the score boost applied to social matches.
func (v Virality) Multiplier() float64 {
	switch v {
	case ViralityHighlyViral:
		return highlyViralMultiplier
	case ViralityViral:
		return viralMultiplier
	}
	return 1.0
}

// IsViral is true for viral and highly viral posts.
func (v Virality) IsViral() bool {
	return v == ViralityViral || v == ViralityHighlyViral
}

type Analyzer struct {
	lexicon *Lexicon
	newID   func() string
}

func NewAnalyzer(lexicon *Lexicon) *Analyzer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Analyzer{lexicon: lexicon, newID: uuid.NewString}
}

func (a *Analyzer) Lexicon() *Lexicon {
	return a.lexicon
}

// ExtractArticle pulls entities from an article. Tickers come from the title
// and fall back to the body when the title has none.
func (a *Analyzer) ExtractArticle(article domain.Article) Extraction {
	text := articleText(article)
	tickers := a.lexicon.ExtractTickers(article.Title)
	if len(tickers) == 0 {
		tickers = a.lexicon.ExtractTickers(article.Content)
	}
	return Extraction{
		Tickers:      tickers,
		Percentages:  ExtractPercentages(text),
		MoneyAmounts: ExtractMoneyAmounts(text),
	}
}

func (a *Analyzer) ExtractPost(post domain.Post) Extraction {
	return Extraction{
		Tickers:      ExtractSocialTickers(post.Text),
		Percentages:  ExtractPercentages(post.Text),
		MoneyAmounts: ExtractMoneyAmounts(post.Text),
	}
}

// AnalyzeArticle returns at most one alert for the article: the one built
// from its best keyword match.
func (a *Analyzer) AnalyzeArticle(article domain.Article, now time.Time, marketHours bool) (*domain.Alert, bool) {
	match, ok := a.lexicon.FindBestMatch(articleText(article), marketHours)
	if !ok {
		return nil, false
	}
	extraction := a.ExtractArticle(article)
	return a.articleAlert(article, match, extraction, now, marketHours), true
}

// AnalyzePost returns at most one alert for a social post. Posts are only
// reported when the escalated priority is high enough and the post either
// names a ticker or is highly viral.
func (a *Analyzer) AnalyzePost(post domain.Post, now time.Time, marketHours bool) (*domain.Alert, bool) {
	engagement := post.Engagement()
	virality := ClassifyEngagement(engagement)

	match, ok := a.lexicon.FindBestSocialMatch(post.Text, virality.Multiplier())
	if !ok {
		return nil, false
	}

	priority := EscalatePriority(match.Tier, virality)
	extraction := a.ExtractPost(post)
	if !shouldEmitSocial(priority, virality, len(extraction.Tickers) > 0) {
		return nil, false
	}
	return a.postAlert(post, match, priority, virality, extraction, now, marketHours), true
}

// EscalatePriority maps a lexicon tier to the alert priority of a social post.
func EscalatePriority(tier Tier, virality Virality) domain.Priority {
	switch tier {
	case TierCritical:
		return domain.PriorityCritical
	case TierHigh:
		if virality == ViralityHighlyViral {
			return domain.PriorityCritical
		}
		return domain.PriorityHigh
	case TierMedium:
		if virality == ViralityHighlyViral {
			return domain.PriorityHigh
		}
		if virality == ViralityViral {
			return domain.PriorityMedium
		}
	}
	return domain.PriorityLow
}

func shouldEmitSocial(priority domain.Priority, virality Virality, hasTickers bool) bool {
	urgent := priority == domain.PriorityCritical || priority == domain.PriorityHigh
	trending := priority == domain.PriorityMedium && virality.IsViral()
	if !urgent && !trending {
		return false
	}
	return hasTickers || virality == ViralityHighlyViral
}

func (a *Analyzer) articleAlert(article domain.Article, match Match, extraction Extraction, now time.Time, marketHours bool) *domain.Alert {
	symbol := primarySymbol(extraction.Tickers)
	keyword := capitalize(match.Keyword)
	maxPct, hasPct := extraction.MaxPercentage()

	alert := a.baseAlert(now)
	alert.SourceID = article.ID
	alert.SourceTitle = article.Title
	alert.Description = fmt.Sprintf("Detected '%s' (score %.2f) in: %s", match.Keyword, match.Score, article.Title)
	alert.Keywords = append([]string{match.Keyword}, extraction.Tickers...)

	var condition string
	var threshold float64
	switch match.Tier {
	case TierCritical:
		alert.Title = fmt.Sprintf("Critical: %s - %s", keyword, symbol)
		alert.Type = domain.AlertTypeNews
		alert.Icon = "warning"
		alert.Priority = domain.PriorityCritical
		condition = "critical_event"
	case TierHigh:
		alert.Title = fmt.Sprintf("Important: %s - %s", keyword, symbol)
		alert.Type = domain.AlertTypePrice
		alert.Icon = highTierIcon(match.Keyword)
		alert.Priority = domain.PriorityHigh
		condition = "change_percent"
		threshold = -3
		if hasPct {
			threshold = -maxPct
		}
	case TierMedium:
		alert.Title = fmt.Sprintf("Market analysis: %s", symbol)
		alert.Type = domain.AlertTypeNews
		alert.Icon = "stats-chart"
		alert.Priority = domain.PriorityMedium
		condition = "market_analysis"
	default:
		alert.Title = fmt.Sprintf("%s - %s", keyword, symbol)
		alert.Type = domain.AlertTypeNews
		alert.Icon = "trending-up"
		alert.Priority = domain.PriorityLow
		condition = "positive_news"
		if hasPct {
			threshold = maxPct
		}
	}

	alert.Config = entityConfig(symbol, condition, threshold, articleTimeframe, match, extraction, marketHours)
	alert.Config["source"] = article.Source
	alert.Config["url"] = article.URL
	alert.Metadata = map[string]any{
		"source":      article.Source,
		"url":         article.URL,
		"category":    article.Category,
		"contentType": contentTypeNews,
		"matchedTier": string(match.Tier),
	}
	return alert
}

func (a *Analyzer) postAlert(post domain.Post, match Match, priority domain.Priority, virality Virality, extraction Extraction, now time.Time, marketHours bool) *domain.Alert {
	symbol := primarySymbol(extraction.Tickers)
	engagement := post.Engagement()
	snippet := truncate(post.Text, 100)

	alert := a.baseAlert(now)
	alert.SourceID = post.ID
	alert.SourceTitle = fmt.Sprintf("@%s: %s", post.Username, truncate(post.Text, 80))
	alert.Priority = priority
	alert.Keywords = append([]string{match.Keyword}, extraction.Tickers...)

	var condition string
	var threshold float64
	switch priority {
	case domain.PriorityCritical:
		alert.Title = fmt.Sprintf("Social alert: %s - %s", capitalize(match.Keyword), symbol)
		alert.Description = fmt.Sprintf("%s post detected '%s': %s", viralityLabel(virality), match.Keyword, snippet)
		alert.Type = domain.AlertTypeNews
		alert.Icon = "warning"
		condition = "social_critical"
	case domain.PriorityHigh:
		alert.Title = fmt.Sprintf("%s - Social media alert", symbol)
		alert.Description = fmt.Sprintf("%s post detected '%s': %s", viralityLabel(virality), match.Keyword, snippet)
		alert.Type = domain.AlertTypeVolume
		alert.Icon = "bar-chart"
		condition = "social_alert"
		threshold = float64(engagement)
	default:
		alert.Title = fmt.Sprintf("%s trending on social media", symbol)
		alert.Description = fmt.Sprintf("Trending post about %s: %s", strings.Join(extraction.Tickers, ", "), snippet)
		alert.Type = domain.AlertTypeVolume
		alert.Icon = "flash"
		condition = "volume_spike"
		threshold = 200
	}

	alert.Config = entityConfig(symbol, condition, threshold, socialTimeframe, match, extraction, marketHours)
	alert.Config["engagement"] = engagement
	alert.Config["username"] = post.Username
	alert.Metadata = map[string]any{
		"author":      post.Author,
		"username":    post.Username,
		"engagement":  engagement,
		"retweets":    post.RetweetCount,
		"likes":       post.LikeCount,
		"replies":     post.ReplyCount,
		"hashtags":    nonNil(post.Hashtags),
		"tickers":     nonNil(extraction.Tickers),
		"viralLevel":  string(virality),
		"contentType": contentTypeTweet,
		"url":         post.URL,
		"matchedTier": string(match.Tier),
	}
	return alert
}

func (a *Analyzer) baseAlert(now time.Time) *domain.Alert {
	triggered := now
	return &domain.Alert{
		ID:            a.newID(),
		Enabled:       true,
		CreatedAt:     now,
		LastTriggered: &triggered,
		TriggerCount:  1,
	}
}

func entityConfig(symbol, condition string, threshold float64, timeframe string, match Match, extraction Extraction, marketHours bool) map[string]any {
	percentages := extraction.Percentages
	if percentages == nil {
		percentages = []float64{}
	}
	return map[string]any{
		"symbol":         symbol,
		"condition":      condition,
		"threshold":      threshold,
		"timeframe":      timeframe,
		"relevanceScore": match.Score,
		"tickers":        nonNil(extraction.Tickers),
		"percentages":    percentages,
		"moneyAmounts":   nonNil(extraction.MoneyAmounts),
		"marketHours":    marketHours,
	}
}

func highTierIcon(keyword string) string {
	switch keyword {
	case "alerta", "riesgo":
		return "warning"
	}
	return "trending-down"
}

func viralityLabel(v Virality) string {
	switch v {
	case ViralityHighlyViral:
		return "Highly viral"
	case ViralityViral:
		return "Viral"
	}
	return "Social"
}

func articleText(article domain.Article) string {
	return strings.TrimSpace(article.Title + " " + article.Content)
}

func primarySymbol(tickers []string) string {
	if len(tickers) > 0 {
		return tickers[0]
	}
	return defaultMarketSymbol
}

func capitalize(value string) string {
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return value
	}
	return string(unicode.ToUpper(r)) + value[size:]
}

func truncate(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit]) + "..."
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
