package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// TickerSentiment is one per-ticker entry of a news article.
type TickerSentiment struct {
	Ticker         string      `json:"ticker"`
	RelevanceScore null.Float  `json:"relevance_score"`
	SentimentScore null.Float  `json:"sentiment_score"`
	SentimentLabel null.String `json:"sentiment_label"`
}

// NewsArticle is a news item with its per-ticker sentiment entries. The
// article URL is its natural key.
type NewsArticle struct {
	URL                   string            `json:"url"`
	Title                 string            `json:"title"`
	Summary               string            `json:"summary,omitempty"`
	Source                string            `json:"source,omitempty"`
	TimePublished         time.Time         `json:"time_published"`
	Authors               []string          `json:"authors,omitempty"`
	Topics                []string          `json:"topics,omitempty"`
	OverallSentimentScore null.Float        `json:"overall_sentiment_score"`
	OverallSentimentLabel null.String       `json:"overall_sentiment_label"`
	Tickers               []TickerSentiment `json:"tickers"`
}

// NewsRow is one (article, ticker) pair with the article fields repeated.
type NewsRow struct {
	URL                   string      `json:"url"`
	Title                 string      `json:"title"`
	Summary               string      `json:"summary,omitempty"`
	Source                string      `json:"source,omitempty"`
	TimePublished         time.Time   `json:"time_published"`
	OverallSentimentScore null.Float  `json:"overall_sentiment_score"`
	OverallSentimentLabel null.String `json:"overall_sentiment_label"`
	Ticker                string      `json:"ticker"`
	RelevanceScore        null.Float  `json:"relevance_score"`
	SentimentScore        null.Float  `json:"sentiment_score"`
	SentimentLabel        null.String `json:"sentiment_label"`
}

// SentimentSummary is the relevance-weighted sentiment for a symbol.
// Only rows with both a relevance and a sentiment score count. NoData is
// set when their relevance sum is zero; Score is then null.
type SentimentSummary struct {
	Symbol       string     `json:"symbol"`
	Score        null.Float `json:"score"`
	Label        string     `json:"label"`
	Rows         int        `json:"rows"`
	RelevanceSum float64    `json:"relevance_sum"`
	NoData       bool       `json:"no_data"`
}

// NewsReport is the news page for a symbol.
type NewsReport struct {
	Symbol    string           `json:"symbol"`
	Articles  []NewsRow        `json:"articles"`
	Sentiment SentimentSummary `json:"sentiment"`
}

// Headline is a search-feed headline explaining a move.
type Headline struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Source    string     `json:"source,omitempty"`
	Published time.Time  `json:"published"`
	Summary   string     `json:"summary,omitempty"`
	Tone      null.Float `json:"tone"` // keyword tone in [-1, 1], null when nothing matched
}
