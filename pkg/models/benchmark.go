package models

import (
	"encoding/json"

	"github.com/guregu/null/v6"
)

// CompetitorSet is a base symbol and its peers. Peers is ordered and always
// starts with Symbol itself.
type CompetitorSet struct {
	Symbol string   `json:"symbol"`
	Peers  []string `json:"peers"`
}

// Cell is one benchmark value: a nullable number, or text for descriptive
// columns such as sector or recommendationKey.
type Cell struct {
	Num  null.Float
	Text null.String
}

// NumberCell builds a numeric cell.
func NumberCell(v null.Float) Cell { return Cell{Num: v} }

// TextCell builds a text cell.
func TextCell(v null.String) Cell { return Cell{Text: v} }

// IsNull reports whether the cell carries no value.
func (c Cell) IsNull() bool { return !c.Num.Valid && !c.Text.Valid }

// MarshalJSON encodes the cell as a bare number, string or null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch {
	case c.Num.Valid:
		return json.Marshal(c.Num.Float64)
	case c.Text.Valid:
		return json.Marshal(c.Text.String)
	default:
		return []byte("null"), nil
	}
}

// BenchmarkRow is one peer in a benchmark table.
type BenchmarkRow struct {
	Symbol string          `json:"symbol"`
	Name   null.String     `json:"name"`
	Values map[string]Cell `json:"values"`
}

// SkippedPeer records why a peer was left out of a benchmark table.
type SkippedPeer struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// BenchmarkTable compares a base symbol against its competitor set. Rows
// follow the competitor-set order.
type BenchmarkTable struct {
	Symbol  string         `json:"symbol"`
	Columns []string       `json:"columns"`
	Rows    []BenchmarkRow `json:"rows"`
	Skipped []SkippedPeer  `json:"skipped,omitempty"`
}

// Row returns the row for symbol, if present.
func (t *BenchmarkTable) Row(symbol string) (BenchmarkRow, bool) {
	for _, r := range t.Rows {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return BenchmarkRow{}, false
}

// MetricPoint is one long-format observation produced by melting a
// benchmark table, used for grouped bar charts.
type MetricPoint struct {
	Symbol string      `json:"symbol"`
	Name   null.String `json:"name"`
	Metric string      `json:"metric"`
	Value  null.Float  `json:"value"`
}

// PeerStat summarizes one numeric metric across a benchmark table.
type PeerStat struct {
	Metric     string     `json:"metric"`
	Base       null.Float `json:"base"`
	PeerMedian null.Float `json:"peer_median"`
	PeerMean   null.Float `json:"peer_mean"`
	Percentile null.Float `json:"percentile"` // base rank among all rows, 0-100
	Count      int        `json:"count"`
}

// BenchmarkReport is a benchmark table with its per-metric peer summary
// and the long-format points used for charting.
type BenchmarkReport struct {
	Table  BenchmarkTable `json:"table"`
	Stats  []PeerStat     `json:"stats"`
	Points []MetricPoint  `json:"points"`
}
