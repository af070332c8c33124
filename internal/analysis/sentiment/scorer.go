// Package sentiment computes symbol-level sentiment from news rows and a
// keyword tone for headlines that carry no vendor score.
package sentiment

import (
	"math"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// Labels on the vendor's sentiment scale.
const (
	LabelBullish         = "Bullish"
	LabelSomewhatBullish = "Somewhat-Bullish"
	LabelNeutral         = "Neutral"
	LabelSomewhatBearish = "Somewhat-Bearish"
	LabelBearish         = "Bearish"
	LabelNoData          = "No data"
)

// Label maps a score in [-1, 1] to its band:
// x <= -0.35 Bearish, -0.35 < x <= -0.15 Somewhat-Bearish,
// -0.15 < x < 0.15 Neutral, 0.15 <= x < 0.35 Somewhat-Bullish,
// x >= 0.35 Bullish.
func Label(score float64) string {
	switch {
	case score >= 0.35:
		return LabelBullish
	case score >= 0.15:
		return LabelSomewhatBullish
	case score > -0.15:
		return LabelNeutral
	case score > -0.35:
		return LabelSomewhatBearish
	default:
		return LabelBearish
	}
}

// Weighted is the relevance-weighted mean ticker sentiment over the rows
// about symbol: sum(relevance*sentiment) / sum(relevance). Rows missing
// either score are left out entirely. When the relevance sum is zero the
// summary is NoData with a null score.
func Weighted(rows []models.NewsRow, symbol string) models.SentimentSummary {
	symbol = utils.NormalizeSymbol(symbol)
	sum := models.SentimentSummary{Symbol: symbol, Label: LabelNoData}

	weighted := 0.0
	for _, r := range rows {
		if r.Ticker != symbol || !r.RelevanceScore.Valid || !r.SentimentScore.Valid {
			continue
		}
		sum.Rows++
		sum.RelevanceSum += r.RelevanceScore.Float64
		weighted += r.RelevanceScore.Float64 * r.SentimentScore.Float64
	}

	if sum.RelevanceSum == 0 {
		sum.NoData = true
		return sum
	}
	score := weighted / sum.RelevanceSum
	sum.Score = null.FloatFrom(score)
	sum.Label = Label(score)
	return sum
}

// bullish / bearish keyword dictionaries (lowercase).
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "soar": 0.7, "jump": 0.5,
	"upgrade": 0.6, "outperform": 0.6, "beat": 0.5, "beats estimate": 0.6,
	"record high": 0.7, "all-time high": 0.7, "rebound": 0.5, "recovery": 0.5,
	"raises guidance": 0.7, "buyback": 0.4, "strong": 0.4, "growth": 0.3,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "tumble": 0.7, "sink": 0.6,
	"slump": 0.6, "slide": 0.5, "drop": 0.4, "fall": 0.4, "selloff": 0.7,
	"downgrade": 0.6, "underperform": 0.6, "miss": 0.5, "cuts guidance": 0.7,
	"lawsuit": 0.5, "investigation": 0.5, "fraud": 0.8, "recall": 0.5,
	"layoffs": 0.4, "warning": 0.5, "weak": 0.4,
}

// ScoreHeadline returns a keyword tone for text in [-1, 1] and the number
// of keywords that matched. No match scores 0.
func ScoreHeadline(text string) (score float64, matches int) {
	lower := strings.ToLower(text)

	bull, bear := 0.0, 0.0
	for word, weight := range bullishWords {
		if strings.Contains(lower, word) {
			bull += weight
			matches++
		}
	}
	for word, weight := range bearishWords {
		if strings.Contains(lower, word) {
			bear += weight
			matches++
		}
	}
	if matches == 0 {
		return 0, 0
	}
	score = (bull - bear) / (bull + bear)
	return math.Round(score*1000) / 1000, matches
}

// ToneHeadlines sets Tone on each headline that matched at least one
// keyword in its title or summary.
func ToneHeadlines(hs []models.Headline) {
	for i := range hs {
		score, matches := ScoreHeadline(hs[i].Title + " " + hs[i].Summary)
		if matches > 0 {
			hs[i].Tone = null.FloatFrom(score)
		}
	}
}
