package yfinance

// --- Yahoo Finance API response types ---

// yfChartResponse wraps the v8 chart API response.
type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol               string `json:"symbol"`
	Currency             string `json:"currency"`
	ExchangeTimezoneName string `json:"exchangeTimezoneName"`
}

type yfIndicators struct {
	Quote []yfQuoteSeries `json:"quote"`
}

type yfQuoteSeries struct {
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// yfError is the error object both chart and quoteSummary carry.
type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
