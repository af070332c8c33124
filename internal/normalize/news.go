package normalize

import (
	"sort"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// DefaultRelevanceThreshold is the relevance a row must exceed to reach
// the article table.
const DefaultRelevanceThreshold = 0.30

// NewsArticles converts a news-sentiment feed into articles. Articles
// without a URL are skipped.
func NewsArticles(records []provider.Record) []models.NewsArticle {
	articles := make([]models.NewsArticle, 0, len(records))
	for _, rec := range records {
		url := String(rec["url"])
		if !url.Valid {
			continue
		}
		published, _ := Time(rec["time_published"])
		articles = append(articles, models.NewsArticle{
			URL:                   url.String,
			Title:                 CleanText(String(rec["title"]).ValueOrZero()),
			Summary:               CleanText(String(rec["summary"]).ValueOrZero()),
			Source:                String(rec["source"]).ValueOrZero(),
			TimePublished:         published,
			Authors:               stringSlice(rec["authors"]),
			Topics:                topics(rec["topics"]),
			OverallSentimentScore: Float(rec["overall_sentiment_score"]),
			OverallSentimentLabel: String(rec["overall_sentiment_label"]),
			Tickers:               tickerSentiments(rec["ticker_sentiment"]),
		})
	}
	return articles
}

// topics reads [{"topic": name, "relevance_score": ...}] into names.
func topics(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		switch t := e.(type) {
		case map[string]any:
			if s := String(t["topic"]); s.Valid {
				out = append(out, s.String)
			}
		case string:
			out = append(out, t)
		}
	}
	return out
}

func tickerSentiments(v any) []models.TickerSentiment {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]models.TickerSentiment, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		ticker := utils.NormalizeSymbol(String(m["ticker"]).ValueOrZero())
		if ticker == "" {
			continue
		}
		out = append(out, models.TickerSentiment{
			Ticker:         ticker,
			RelevanceScore: Float(m["relevance_score"]),
			SentimentScore: Float(m["ticker_sentiment_score"]),
			SentimentLabel: String(m["ticker_sentiment_label"]),
		})
	}
	return out
}

// ExpandNews produces one row per (article, ticker) pair, repeating the
// article fields. Articles without ticker entries produce no rows.
func ExpandNews(articles []models.NewsArticle) []models.NewsRow {
	var rows []models.NewsRow
	for _, a := range articles {
		for _, ts := range a.Tickers {
			rows = append(rows, models.NewsRow{
				URL:                   a.URL,
				Title:                 a.Title,
				Summary:               a.Summary,
				Source:                a.Source,
				TimePublished:         a.TimePublished,
				OverallSentimentScore: a.OverallSentimentScore,
				OverallSentimentLabel: a.OverallSentimentLabel,
				Ticker:                ts.Ticker,
				RelevanceScore:        ts.RelevanceScore,
				SentimentScore:        ts.SentimentScore,
				SentimentLabel:        ts.SentimentLabel,
			})
		}
	}
	return rows
}

// ForTicker keeps the rows about symbol.
func ForTicker(rows []models.NewsRow, symbol string) []models.NewsRow {
	symbol = utils.NormalizeSymbol(symbol)
	var out []models.NewsRow
	for _, r := range rows {
		if r.Ticker == symbol {
			out = append(out, r)
		}
	}
	return out
}

// FilterRelevant keeps rows whose relevance is known and exceeds threshold,
// ordered by relevance descending. Ties keep the newer article first, then input
// order.
func FilterRelevant(rows []models.NewsRow, threshold float64) []models.NewsRow {
	out := make([]models.NewsRow, 0, len(rows))
	for _, r := range rows {
		if r.RelevanceScore.Valid && r.RelevanceScore.Float64 > threshold {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].RelevanceScore.Float64, out[j].RelevanceScore.Float64
		if ri != rj {
			return ri > rj
		}
		return out[i].TimePublished.After(out[j].TimePublished)
	})
	return out
}

// DedupeByURL keeps the first row per article URL. Run it on rows already
// ordered by FilterRelevant so the kept row is the most relevant one.
func DedupeByURL(rows []models.NewsRow) []models.NewsRow {
	seen := make(map[string]bool, len(rows))
	out := make([]models.NewsRow, 0, len(rows))
	for _, r := range rows {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	return out
}

// Headlines converts search-feed records into headlines, keeping order.
func Headlines(records []provider.Record) []models.Headline {
	out := make([]models.Headline, 0, len(records))
	for _, rec := range records {
		title := String(rec["title"])
		if !title.Valid {
			continue
		}
		h := models.Headline{
			Title:   title.String,
			Link:    String(rec["link"]).ValueOrZero(),
			Source:  String(rec["source"]).ValueOrZero(),
			Summary: CleanText(String(rec["summary"]).ValueOrZero()),
		}
		if t, ok := Time(rec["published"]); ok {
			h.Published = t
		}
		out = append(out, h)
	}
	return out
}
