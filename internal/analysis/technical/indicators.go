// Package technical computes close-only indicators over a daily price
// window: moving averages, RSI, Bollinger bands and drawdown.
package technical

import (
	"math"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/pkg/models"
)

// Default indicator periods.
const (
	ShortPeriod     = 20
	LongPeriod      = 50
	RSIPeriod       = 14
	BollingerPeriod = 20
	BollingerMult   = 2.0

	overbought = 70
	oversold   = 30
)

// RSI calculates the Relative Strength Index with Wilder's smoothing.
// Returns values 0–100; entries before index period are zero.
func RSI(closes []float64, period int) []float64 {
	if period <= 0 {
		period = RSIPeriod
	}
	n := len(closes)
	if n < period+1 {
		return nil
	}

	rsi := make([]float64, n)
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	rsi[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		rsi[i] = rsiValue(avgGain, avgLoss)
	}

	return rsi
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - (100 / (1 + avgGain/avgLoss))
}

// RSILatest returns only the most recent RSI value.
func RSILatest(closes []float64, period int) (float64, bool) {
	vals := RSI(closes, period)
	if len(vals) == 0 {
		return 0, false
	}
	return vals[len(vals)-1], true
}

// Band is one Bollinger observation.
type Band struct {
	Upper, Middle, Lower float64
}

// BollingerLatest returns the bands over the last period closes.
func BollingerLatest(closes []float64, period int, mult float64) (Band, bool) {
	if period <= 0 {
		period = BollingerPeriod
	}
	if mult <= 0 {
		mult = BollingerMult
	}
	if len(closes) < period {
		return Band{}, false
	}
	window := closes[len(closes)-period:]
	mean := avg(window)
	sd := stddev(window, mean)
	return Band{Upper: mean + mult*sd, Middle: mean, Lower: mean - mult*sd}, true
}

// MaxDrawdown returns the largest peak-to-trough decline as a negative
// percent, or 0 for a series that never falls.
func MaxDrawdown(closes []float64) float64 {
	peak, worst := 0.0, 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			if dd := (c - peak) / peak * 100; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// Summarize computes the trend block for a price window. Indicators that
// need more bars than the window holds are null.
func Summarize(bars []models.PriceBar) *models.Trend {
	if len(bars) == 0 {
		return nil
	}
	closes := Closes(bars)
	first, last := closes[0], closes[len(closes)-1]

	t := &models.Trend{
		Last:        last,
		MaxDrawdown: null.FloatFrom(MaxDrawdown(closes)),
		Signal:      models.SignalNeutral,
	}
	if first != 0 {
		t.PeriodChange = null.FloatFrom((last - first) / first * 100)
	}
	t.SMA20 = optional(SMALatest(closes, ShortPeriod))
	t.SMA50 = optional(SMALatest(closes, LongPeriod))
	t.EMA20 = optional(EMALatest(closes, ShortPeriod))
	t.RSI14 = optional(RSILatest(closes, RSIPeriod))
	if b, ok := BollingerLatest(closes, BollingerPeriod, BollingerMult); ok {
		t.BollingerUpper = null.FloatFrom(b.Upper)
		t.BollingerLower = null.FloatFrom(b.Lower)
	}

	if t.RSI14.Valid {
		switch {
		case t.RSI14.Float64 >= overbought:
			t.Signal = models.SignalOverbought
		case t.RSI14.Float64 <= oversold:
			t.Signal = models.SignalOversold
		}
	}
	return t
}

// Closes extracts the close column.
func Closes(bars []models.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// --- helper functions ---

func optional(v float64, ok bool) null.Float {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

func avg(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64, mean float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)))
}
