package analysis

// Tier is a lexicon bucket. It differs from domain.Priority: the positive
// tier is reported as a low priority alert.
type Tier string

const (
	TierCritical Tier = "critical"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierPositive Tier = "positive"
	TierLow      Tier = "low"
)

// TierOrder is the scan order used by the best-match selector.
var TierOrder = []Tier{TierCritical, TierHigh, TierMedium, TierPositive}

type KeywordEntry struct {
	Keyword string
	Weight  float64
	Context []string
}

type Booster struct {
	Word       string
	Multiplier float64
}

type Lexicon struct {
	keywords   map[Tier][]KeywordEntry
	boosters   []Booster
	tickers    map[string]struct{}
	stopwords  map[string]struct{}
	thresholds map[Tier]float64
}

const (
	defaultWeight       = 0.5
	defaultThreshold    = 0.5
	contextBonus        = 0.2
	marketHoursRelief   = 0.8
	strongPctBonus      = 0.3
	strongPctMin        = 5.0
	positivePctBonus    = 0.2
	positivePctMin      = 3.0
	fallbackTickerLimit = 3
	defaultMarketSymbol = "MERVAL"
)

func DefaultLexicon() *Lexicon {
	return &Lexicon{
		keywords: map[Tier][]KeywordEntry{
			TierCritical: {
				{"crisis", 1.0, []string{"financiera", "bancaria", "cambiaria"}},
				{"crash", 1.0, []string{"bolsa", "mercado", "bursátil"}},
				{"colapso", 1.0, []string{"económico", "financiero"}},
				{"quiebra", 1.0, []string{"empresa", "banco"}},
				{"default", 1.0, []string{"deuda", "pago", "bonos"}},
				{"suspensión", 0.9, []string{"cotización", "operaciones", "rueda"}},
				{"pánico", 0.9, []string{"vendedor", "comprador", "mercado"}},
				{"desplome", 1.0, []string{"precio", "acción", "índice"}},
			},
			TierHigh: {
				{"caída", 0.7, []string{"fuerte", "abrupta", "importante"}},
				{"baja", 0.6, []string{"significativa", "pronunciada"}},
				{"descenso", 0.6, []string{"marcado", "importante"}},
				{"pérdida", 0.7, []string{"millonaria", "significativa"}},
				{"riesgo", 0.6, []string{"alto", "elevado", "país"}},
				{"alerta", 0.8, []string{"roja", "máxima"}},
				{"retroceso", 0.6, []string{"importante", "significativo"}},
				{"desvalorización", 0.7, nil},
			},
			TierMedium: {
				{"volátil", 0.5, []string{"mercado", "jornada"}},
				{"volatilidad", 0.5, []string{"alta", "incremento"}},
				{"incertidumbre", 0.5, []string{"mercado", "económica"}},
				{"cambio", 0.4, []string{"regulatorio", "normativa"}},
				{"variación", 0.4, []string{"precio", "cotización"}},
				{"ajuste", 0.5, []string{"tarifario", "precio"}},
				{"corrección", 0.5, []string{"mercado", "técnica"}},
			},
			TierPositive: {
				{"suba", 0.7, []string{"fuerte", "importante", "récord"}},
				{"alza", 0.7, []string{"significativa", "importante"}},
				{"ganancia", 0.8, []string{"récord", "histórica", "millonaria"}},
				{"crecimiento", 0.7, []string{"sostenido", "importante"}},
				{"récord", 0.9, []string{"histórico", "máximo"}},
				{"máximo", 0.8, []string{"histórico", "nuevo"}},
				{"repunte", 0.7, []string{"fuerte", "importante"}},
				{"rally", 0.8, []string{"alcista", "bursátil"}},
				{"recuperación", 0.7, []string{"importante", "significativa"}},
			},
		},
		// First hit wins, keep the order.
		boosters: []Booster{
			{"fuerte", 1.3},
			{"importante", 1.2},
			{"significativo", 1.2},
			{"significativa", 1.2},
			{"histórico", 1.5},
			{"histórica", 1.5},
			{"récord", 1.5},
			{"máximo", 1.4},
			{"mínimo", 1.4},
			{"millonario", 1.3},
			{"millonaria", 1.3},
		},
		tickers: toSet(
			"YPF", "GGAL", "PAMP", "ALUA", "TRAN", "EDN", "LOMA", "TXAR", "COME", "MIRG",
			"ERAR", "CRES", "SUPV", "TGNO4", "TGSU2", "BMA", "CEPU", "VALO", "BYMA", "CGPA2",
		),
		stopwords: toSet("EN", "LA", "EL", "DE", "CON", "POR", "PARA", "SI", "NO", "SE", "AL"),
		thresholds: map[Tier]float64{
			TierCritical: 0.8,
			TierHigh:     0.6,
			TierMedium:   0.5,
			TierPositive: 0.7,
			TierLow:      0.4,
		},
	}
}

// Keywords returns the entries of a tier in declaration order.
func (l *Lexicon) Keywords(tier Tier) []KeywordEntry {
	return l.keywords[tier]
}

func (l *Lexicon) Entry(tier Tier, keyword string) (KeywordEntry, bool) {
	for _, entry := range l.keywords[tier] {
		if entry.Keyword == keyword {
			return entry, true
		}
	}
	return KeywordEntry{}, false
}

func (l *Lexicon) Boosters() []Booster {
	return l.boosters
}

func (l *Lexicon) IsTracked(ticker string) bool {
	_, ok := l.tickers[ticker]
	return ok
}

func (l *Lexicon) isStopword(token string) bool {
	_, ok := l.stopwords[token]
	return ok
}

func (l *Lexicon) Threshold(tier Tier) float64 {
	if threshold, ok := l.thresholds[tier]; ok {
		return threshold
	}
	return defaultThreshold
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
