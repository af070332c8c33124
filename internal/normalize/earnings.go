package normalize

import (
	"math"
	"sort"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// EarningsOptions selects which earnings rows are kept.
type EarningsOptions struct {
	// ShowNext keeps every row with an estimate, scheduled or reported.
	// Otherwise only reported rows (actual EPS present) are kept.
	ShowNext bool
	// Since drops rows dated before this YYYY-MM-DD date when set.
	Since string
	// Limit caps the reported rows to the most recent N. Scheduled rows
	// are never dropped by it. Zero means no cap.
	Limit int
}

// EarningsEvents converts earnings calendar records into events ordered by
// date ascending.
func EarningsEvents(symbol string, records []provider.Record, opts EarningsOptions) []models.EarningsEvent {
	symbol = utils.NormalizeSymbol(symbol)
	events := make([]models.EarningsEvent, 0, len(records))
	for _, rec := range records {
		ev := earningsEvent(symbol, rec)
		if ev.Date == "" {
			continue
		}
		if opts.ShowNext && !ev.EPSEstimated.Valid {
			continue
		}
		if !opts.ShowNext && !ev.EPSActual.Valid {
			continue
		}
		if opts.Since != "" && ev.Date < opts.Since {
			continue
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })

	if opts.Limit <= 0 {
		return events
	}
	reported := 0
	for _, ev := range events {
		if ev.Reported() {
			reported++
		}
	}
	skip := reported - opts.Limit
	out := events[:0:0]
	for _, ev := range events {
		if ev.Reported() && skip > 0 {
			skip--
			continue
		}
		out = append(out, ev)
	}
	return out
}

func earningsEvent(symbol string, rec provider.Record) models.EarningsEvent {
	if s := symbolOf(rec); s != "" {
		symbol = s
	}
	ev := models.EarningsEvent{
		Symbol:           symbol,
		Date:             Date(rec["date"]),
		Time:             String(rec["time"]).ValueOrZero(),
		EPSEstimated:     Float(first(rec, "epsEstimated", "estimatedEPS")),
		EPSActual:        Float(first(rec, "eps", "reportedEPS", "epsActual")),
		RevenueEstimated: Float(rec["revenueEstimated"]),
		RevenueActual:    Float(first(rec, "revenue", "revenueActual")),
	}
	ev.SurprisePct = Surprise(ev.EPSActual, ev.EPSEstimated)
	return ev
}

// Surprise is (actual-estimated)/|estimated| in percent. It is null when
// either side is missing or the estimate is zero.
func Surprise(actual, estimated null.Float) null.Float {
	if !actual.Valid || !estimated.Valid || estimated.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom((actual.Float64 - estimated.Float64) / math.Abs(estimated.Float64) * 100)
}

// NextEarnings returns the earliest unreported event dated today or later.
func NextEarnings(events []models.EarningsEvent, today string) *models.EarningsEvent {
	var next *models.EarningsEvent
	for i := range events {
		ev := events[i]
		if ev.Reported() || ev.Date < today {
			continue
		}
		if next == nil || ev.Date < next.Date {
			next = &ev
		}
	}
	return next
}
