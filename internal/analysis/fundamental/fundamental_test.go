package fundamental

import (
	"math"
	"testing"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/pkg/models"
)

func row(symbol string, pe any) models.BenchmarkRow {
	values := map[string]models.Cell{"sector": models.TextCell(null.StringFrom("Technology"))}
	if f, ok := pe.(float64); ok {
		values["trailingPE"] = models.NumberCell(null.FloatFrom(f))
	} else {
		values["trailingPE"] = models.NumberCell(null.Float{})
	}
	return models.BenchmarkRow{Symbol: symbol, Values: values}
}

func sampleTable() *models.BenchmarkTable {
	return &models.BenchmarkTable{
		Symbol:  "AAPL",
		Columns: []string{"sector", "trailingPE"},
		Rows: []models.BenchmarkRow{
			row("AAPL", 30.0),
			row("MSFT", 35.0),
			row("GOOG", 25.0),
			row("META", 20.0),
			row("DELL", nil),
		},
	}
}

func TestCompare(t *testing.T) {
	stat := Compare(sampleTable(), "trailingPE")
	if stat.Base.Float64 != 30 || stat.Count != 4 {
		t.Errorf("base/count = %v/%d", stat.Base, stat.Count)
	}
	if stat.PeerMedian.Float64 != 25 {
		t.Errorf("median = %v, want 25", stat.PeerMedian)
	}
	if stat.PeerMean.Float64 != 80.0/3 {
		t.Errorf("mean = %v", stat.PeerMean)
	}
	// 20, 25, 30, 35: AAPL ranks third of four.
	if stat.Percentile.Float64 != 75 {
		t.Errorf("percentile = %v, want 75", stat.Percentile)
	}
}

func TestCompareMissingBase(t *testing.T) {
	table := sampleTable()
	table.Symbol = "DELL"
	stat := Compare(table, "trailingPE")
	if stat.Base.Valid || stat.Percentile.Valid {
		t.Errorf("base without a value should leave base and percentile null: %+v", stat)
	}
	if !stat.PeerMedian.Valid {
		t.Error("peer median should still be computed")
	}
}

func TestCompareAllSkipsTextColumns(t *testing.T) {
	stats := CompareAll(sampleTable())
	if len(stats) != 1 || stats[0].Metric != "trailingPE" {
		t.Errorf("CompareAll = %+v", stats)
	}
}

func TestQuantile(t *testing.T) {
	vals := []float64{35, 20, 30, 25}
	tests := []struct {
		q, want float64
	}{
		{0, 20},
		{0.5, 27.5},
		{1, 35},
		{0.25, 23.75},
		{2, 35},
	}
	for _, tt := range tests {
		if got := Quantile(vals, tt.q); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Quantile(%v) = %v, want %v", tt.q, got, tt.want)
		}
	}
	if !math.IsNaN(Quantile(nil, 0.5)) {
		t.Error("empty input should be NaN")
	}
}

func TestFilterPercentile(t *testing.T) {
	rows := FilterPercentile(sampleTable().Rows, "trailingPE", 50)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Symbol != "AAPL" || rows[1].Symbol != "MSFT" {
		t.Errorf("rows = %s, %s", rows[0].Symbol, rows[1].Symbol)
	}
	if FilterPercentile(sampleTable().Rows, "missing", 50) != nil {
		t.Error("unknown metric should keep nothing")
	}
}
