package pipeline

import (
	"context"
	"strconv"
	"strings"

	"github.com/seenimoa/stockdash/internal/analysis/sentiment"
	"github.com/seenimoa/stockdash/internal/normalize"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// NewsRequest asks for a symbol's news table.
type NewsRequest struct {
	Symbol string
	Limit  int      // 0 uses the configured limit
	Topics []string // nil uses the configured topics
}

// News returns the relevant articles about a symbol, one row per article,
// most relevant first, with the relevance-weighted sentiment of every row
// about the symbol. A vendor with no articles yields an empty report.
func (p *Pipeline) News(ctx context.Context, req NewsRequest) (*models.NewsReport, error) {
	symbol, err := utils.CleanSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	rows, err := p.newsRows(ctx, symbol, req.Limit, req.Topics)
	if err != nil {
		return nil, err
	}
	table := normalize.DedupeByURL(normalize.FilterRelevant(rows, p.cfg.RelevanceThreshold))
	return &models.NewsReport{
		Symbol:    symbol,
		Articles:  table,
		Sentiment: sentiment.Weighted(rows, symbol),
	}, nil
}

// Sentiment returns only the relevance-weighted sentiment for a symbol.
func (p *Pipeline) Sentiment(ctx context.Context, symbol string) (*models.SentimentSummary, error) {
	symbol, err := utils.CleanSymbol(symbol)
	if err != nil {
		return nil, err
	}
	rows, err := p.newsRows(ctx, symbol, 0, nil)
	if err != nil {
		return nil, err
	}
	sum := sentiment.Weighted(rows, symbol)
	return &sum, nil
}

// newsRows fetches the news feed and expands it to the rows about symbol.
func (p *Pipeline) newsRows(ctx context.Context, symbol string, limit int, topics []string) ([]models.NewsRow, error) {
	if limit <= 0 {
		limit = p.cfg.NewsLimit
	}
	if topics == nil {
		topics = p.cfg.NewsTopics
	}
	params := provider.QueryParams{provider.ParamSymbol: symbol}
	if limit > 0 {
		params[provider.ParamLimit] = strconv.Itoa(limit)
	}
	if len(topics) > 0 {
		params[provider.ParamTopics] = strings.Join(topics, ",")
	}
	if p.cfg.NewsSort != "" {
		params[provider.ParamSort] = p.cfg.NewsSort
	}

	records, err := p.fetch(ctx, provider.ModelCompanyNews, params)
	if err != nil {
		if isNoData(err) {
			return nil, nil
		}
		return nil, primary("news", symbol, err)
	}
	return normalize.ForTicker(normalize.ExpandNews(normalize.NewsArticles(records)), symbol), nil
}

// Headlines searches the news feed for why a symbol dropped. Each headline
// carries a keyword tone when any keyword matched.
func (p *Pipeline) Headlines(ctx context.Context, symbol string, limit int) ([]models.Headline, error) {
	symbol, err := utils.CleanSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = p.cfg.HeadlineLimit
	}
	params := provider.QueryParams{provider.ParamSymbol: symbol}
	if limit > 0 {
		params[provider.ParamLimit] = strconv.Itoa(limit)
	}
	records, err := p.fetch(ctx, provider.ModelDropHeadlines, params)
	if err != nil {
		if isNoData(err) {
			return []models.Headline{}, nil
		}
		return nil, primary("headlines", symbol, err)
	}
	hs := normalize.Headlines(records)
	sentiment.ToneHeadlines(hs)
	return hs, nil
}
