package technical

import (
	"math"
	"testing"

	"github.com/seenimoa/stockdash/pkg/models"
)

// makeCloses generates a linear close series.
func makeCloses(n int, base, trend float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base + trend*float64(i)
	}
	return closes
}

func makeBars(closes []float64) []models.PriceBar {
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{Symbol: "XYZ", Close: c}
	}
	return bars
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSMA(t *testing.T) {
	vals := SMA([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{0, 0, 2, 3, 4}
	for i := range want {
		if !approx(vals[i], want[i]) {
			t.Errorf("SMA[%d] = %v, want %v", i, vals[i], want[i])
		}
	}
	if SMA([]float64{1, 2}, 3) != nil {
		t.Error("SMA should return nil for insufficient data")
	}
	if _, ok := SMALatest([]float64{1}, 0); ok {
		t.Error("SMALatest should reject period 0")
	}
}

func TestEMA(t *testing.T) {
	// A flat series has EMA equal to the level.
	v, ok := EMALatest(makeCloses(30, 10, 0), 20)
	if !ok || !approx(v, 10) {
		t.Errorf("EMALatest = %v, %v", v, ok)
	}
	// In an uptrend the EMA lags below the last close.
	up := makeCloses(40, 100, 1)
	v, _ = EMALatest(up, 20)
	if v >= up[len(up)-1] {
		t.Errorf("EMA %v should lag last close %v", v, up[len(up)-1])
	}
}

func TestRSI(t *testing.T) {
	vals := RSI(makeCloses(50, 100, 1.5), 14)
	if len(vals) != 50 {
		t.Fatalf("expected 50 RSI values, got %d", len(vals))
	}
	// Only gains, so RSI saturates.
	if vals[49] != 100 {
		t.Errorf("expected RSI 100 in a pure uptrend, got %.2f", vals[49])
	}

	down, ok := RSILatest(makeCloses(50, 200, -2), 14)
	if !ok || down != 0 {
		t.Errorf("expected RSI 0 in a pure downtrend, got %.2f", down)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if RSI(makeCloses(14, 100, 1), 14) != nil {
		t.Error("RSI should return nil for insufficient data")
	}
}

func TestBollingerLatest(t *testing.T) {
	b, ok := BollingerLatest(makeCloses(25, 50, 0), 20, 2)
	if !ok || !approx(b.Upper, 50) || !approx(b.Lower, 50) {
		t.Errorf("flat bands = %+v", b)
	}
	b, _ = BollingerLatest(makeCloses(25, 50, 1), 0, 0)
	if !(b.Upper > b.Middle && b.Middle > b.Lower) {
		t.Errorf("band order = %+v", b)
	}
	if _, ok := BollingerLatest(makeCloses(5, 50, 1), 20, 2); ok {
		t.Error("bands need a full window")
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"rising", []float64{1, 2, 3}, 0},
		{"one dip", []float64{100, 80, 90}, -20},
		{"deepest wins", []float64{100, 90, 120, 60, 130}, -50},
		{"empty", nil, 0},
	}
	for _, tc := range tests {
		if got := MaxDrawdown(tc.closes); !approx(got, tc.want) {
			t.Errorf("%s: MaxDrawdown = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	if Summarize(nil) != nil {
		t.Error("empty window should have no trend")
	}

	short := Summarize(makeBars([]float64{10, 12, 9}))
	if short.Last != 9 || !approx(short.PeriodChange.Float64, -10) {
		t.Errorf("short trend = %+v", short)
	}
	if short.SMA20.Valid || short.RSI14.Valid || short.BollingerUpper.Valid {
		t.Errorf("short window should leave indicators null: %+v", short)
	}
	if short.Signal != models.SignalNeutral || !approx(short.MaxDrawdown.Float64, -25) {
		t.Errorf("short signal/drawdown = %s / %v", short.Signal, short.MaxDrawdown)
	}

	long := Summarize(makeBars(makeCloses(60, 100, -1)))
	if !long.SMA50.Valid || !long.EMA20.Valid || !long.BollingerLower.Valid {
		t.Errorf("long window indicators = %+v", long)
	}
	if long.Signal != models.SignalOversold {
		t.Errorf("signal = %s, want oversold", long.Signal)
	}

	up := Summarize(makeBars(makeCloses(30, 100, 1)))
	if up.Signal != models.SignalOverbought {
		t.Errorf("signal = %s, want overbought", up.Signal)
	}
}
