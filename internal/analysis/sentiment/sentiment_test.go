package sentiment

import (
	"math"
	"testing"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/pkg/models"
)

func TestWeighted(t *testing.T) {
	rows := []models.NewsRow{
		{Ticker: "XYZ", RelevanceScore: null.FloatFrom(0.5), SentimentScore: null.FloatFrom(0.2)},
		{Ticker: "XYZ", RelevanceScore: null.FloatFrom(0.3), SentimentScore: null.FloatFrom(-0.4)},
		{Ticker: "ABC", RelevanceScore: null.FloatFrom(0.9), SentimentScore: null.FloatFrom(0.9)},
	}
	got := Weighted(rows, "xyz")
	if got.NoData || !got.Score.Valid {
		t.Fatalf("expected a score, got %+v", got)
	}
	if math.Abs(got.Score.Float64-(-0.025)) > 1e-9 {
		t.Errorf("score = %.6f, want -0.025", got.Score.Float64)
	}
	if got.Rows != 2 || math.Abs(got.RelevanceSum-0.8) > 1e-9 {
		t.Errorf("rows = %d, relevance sum = %f", got.Rows, got.RelevanceSum)
	}
	if got.Label != LabelNeutral {
		t.Errorf("label = %s", got.Label)
	}
}

func TestWeightedZeroRelevanceIsNoData(t *testing.T) {
	tests := []struct {
		name string
		rows []models.NewsRow
	}{
		{"no rows", nil},
		{"other ticker only", []models.NewsRow{{Ticker: "ABC", RelevanceScore: null.FloatFrom(0.5), SentimentScore: null.FloatFrom(0.5)}}},
		{"zero relevance", []models.NewsRow{{Ticker: "XYZ", RelevanceScore: null.FloatFrom(0), SentimentScore: null.FloatFrom(0.8)}}},
		{"unscored only", []models.NewsRow{{Ticker: "XYZ", RelevanceScore: null.FloatFrom(0.5)}}},
		{"no relevance", []models.NewsRow{{Ticker: "XYZ", SentimentScore: null.FloatFrom(0.5)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Weighted(tt.rows, "XYZ")
			if !got.NoData || got.Score.Valid || got.Label != LabelNoData {
				t.Errorf("expected no data, got %+v", got)
			}
		})
	}
}

func TestWeightedSkipsUnscoredRows(t *testing.T) {
	rows := []models.NewsRow{
		{Ticker: "AAPL", RelevanceScore: null.FloatFrom(0.5), SentimentScore: null.FloatFrom(0.4)},
		{Ticker: "AAPL", RelevanceScore: null.FloatFrom(0.5)},
		{Ticker: "AAPL", SentimentScore: null.FloatFrom(-0.9)},
	}
	got := Weighted(rows, "AAPL")
	if !got.Score.Valid || math.Abs(got.Score.Float64-0.4) > 1e-9 {
		t.Errorf("score = %v, want 0.4 (unscored rows must not count as zero)", got.Score)
	}
	if got.Rows != 1 || math.Abs(got.RelevanceSum-0.5) > 1e-9 {
		t.Errorf("rows = %d, relevance sum = %f", got.Rows, got.RelevanceSum)
	}
	if got.Label != LabelBullish {
		t.Errorf("label = %s", got.Label)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, LabelBullish},
		{0.35, LabelBullish},
		{0.2, LabelSomewhatBullish},
		{0.15, LabelSomewhatBullish},
		{0, LabelNeutral},
		{-0.15, LabelSomewhatBearish},
		{-0.3, LabelSomewhatBearish},
		{-0.35, LabelBearish},
		{-0.9, LabelBearish},
	}
	for _, tt := range tests {
		if got := Label(tt.score); got != tt.want {
			t.Errorf("Label(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScoreHeadline(t *testing.T) {
	if score, n := ScoreHeadline("XYZ shares plunge after the company cuts guidance"); score >= 0 || n == 0 {
		t.Errorf("bearish headline scored %.3f (%d matches)", score, n)
	}
	if score, n := ScoreHeadline("XYZ stock surges to record high on upgrade"); score <= 0 || n == 0 {
		t.Errorf("bullish headline scored %.3f (%d matches)", score, n)
	}
	if score, n := ScoreHeadline("XYZ names a new chief financial officer"); score != 0 || n != 0 {
		t.Errorf("neutral headline scored %.3f (%d matches)", score, n)
	}
}

func TestToneHeadlines(t *testing.T) {
	hs := []models.Headline{
		{Title: "Why XYZ stock is sinking today"},
		{Title: "XYZ to present at conference"},
	}
	ToneHeadlines(hs)
	if !hs[0].Tone.Valid || hs[0].Tone.Float64 >= 0 {
		t.Errorf("first tone = %v", hs[0].Tone)
	}
	if hs[1].Tone.Valid {
		t.Errorf("second tone should be null, got %v", hs[1].Tone)
	}
}
