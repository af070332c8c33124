// Package fundamental compares a symbol's metrics against its competitor
// set.
package fundamental

import (
	"math"
	"sort"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/pkg/models"
)

// Compare summarizes one numeric column of a benchmark table: the base
// symbol's value, the median and mean over the other rows, and the base's
// percentile rank among all rows with a value.
func Compare(table *models.BenchmarkTable, metric string) models.PeerStat {
	stat := models.PeerStat{Metric: metric}
	var all, peers []float64
	for _, row := range table.Rows {
		cell := row.Values[metric]
		if !cell.Num.Valid {
			continue
		}
		v := cell.Num.Float64
		all = append(all, v)
		if row.Symbol == table.Symbol {
			stat.Base = null.FloatFrom(v)
			continue
		}
		peers = append(peers, v)
	}
	stat.Count = len(all)
	if len(peers) > 0 {
		stat.PeerMedian = null.FloatFrom(medianFloat(peers))
		stat.PeerMean = null.FloatFrom(avgFloat(peers))
	}
	if stat.Base.Valid {
		stat.Percentile = null.FloatFrom(percentRank(all, stat.Base.Float64))
	}
	return stat
}

// CompareAll runs Compare for every column that holds a number in at
// least one row, in column order.
func CompareAll(table *models.BenchmarkTable) []models.PeerStat {
	var stats []models.PeerStat
	for _, col := range table.Columns {
		numeric := false
		for _, row := range table.Rows {
			if row.Values[col].Num.Valid {
				numeric = true
				break
			}
		}
		if numeric {
			stats = append(stats, Compare(table, col))
		}
	}
	return stats
}

// FilterPercentile keeps the rows whose metric is at or above the pct-th
// percentile (0-100) of that column. Rows without the metric are dropped.
func FilterPercentile(rows []models.BenchmarkRow, metric string, pct float64) []models.BenchmarkRow {
	var vals []float64
	for _, r := range rows {
		if c := r.Values[metric]; c.Num.Valid {
			vals = append(vals, c.Num.Float64)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	cut := Quantile(vals, pct/100)
	out := make([]models.BenchmarkRow, 0, len(rows))
	for _, r := range rows {
		if c := r.Values[metric]; c.Num.Valid && c.Num.Float64 >= cut {
			out = append(out, r)
		}
	}
	return out
}

// Quantile returns the q-quantile (0-1) of vals with linear interpolation
// between closest ranks. It returns NaN for no values.
func Quantile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q = math.Max(0, math.Min(1, q))
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// percentRank is the average-rank percentile of v among vals, 0-100.
func percentRank(vals []float64, v float64) float64 {
	below, equal := 0, 0
	for _, x := range vals {
		switch {
		case x < v:
			below++
		case x == v:
			equal++
		}
	}
	rank := float64(below) + float64(equal+1)/2
	return rank / float64(len(vals)) * 100
}

func avgFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func medianFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
