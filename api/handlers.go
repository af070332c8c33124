package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/stockdash/internal/pipeline"
	"github.com/seenimoa/stockdash/pkg/utils"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]interface{}{
		"status":        "ok",
		"version":       Version,
		"market_status": utils.MarketStatus(),
		"time_et":       utils.NowET().Format("2006-01-02 15:04:05 MST"),
	}, false)
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	dash, err := s.pipe.Dashboard(r.Context(), pipeline.StockRequest{
		Symbol: chi.URLParam(r, "symbol"),
		Range:  r.URL.Query().Get("range"),
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, dash, false)
}

// handlePeers accepts either ?set=overview|metrics|growth or an explicit
// ?columns=a,b,c list.
func (s *Server) handlePeers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	columns := splitList(q.Get("columns"))
	if len(columns) == 0 {
		set, ok := pipeline.ColumnSet(q.Get("set"))
		if !ok {
			writeError(w, http.StatusBadRequest, "set must be overview, metrics or growth")
			return
		}
		columns = set
	}
	report, err := s.pipe.Benchmarks(r.Context(), pipeline.BenchmarkRequest{
		Symbol:  chi.URLParam(r, "symbol"),
		Columns: columns,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, report, len(report.Table.Rows) == 0)
}

func (s *Server) handleDrops(w http.ResponseWriter, r *http.Request) {
	req, err := dropRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	table, err := s.pipe.Drops(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, table, len(table.Rows) == 0)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.pipe.News(r.Context(), pipeline.NewsRequest{
		Symbol: chi.URLParam(r, "symbol"),
		Limit:  limit,
		Topics: splitList(r.URL.Query().Get("topics")),
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, report, len(report.Articles) == 0)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	sum, err := s.pipe.Sentiment(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, sum, sum.NoData)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.pipe.InsiderTrades(r.Context(), chi.URLParam(r, "symbol"), days)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, report, false)
}

func (s *Server) handleHeadlines(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hs, err := s.pipe.Headlines(r.Context(), chi.URLParam(r, "symbol"), limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, hs, len(hs) == 0)
}

// handleProviders lists the registered vendors and which models each
// serves by default.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	defaults := make(map[string]string)
	for model := range s.reg.ModelCoverage() {
		if name, ok := s.reg.DefaultProvider(model); ok {
			defaults[string(model)] = name
		}
	}
	writeData(w, map[string]interface{}{
		"providers": s.reg.List(),
		"defaults":  defaults,
	}, false)
}

// ============================================================
// Query parsing
// ============================================================

func dropRequest(r *http.Request) (pipeline.DropRequest, error) {
	q := r.URL.Query()
	req := pipeline.DropRequest{
		Sector:   q.Get("sector"),
		Industry: q.Get("industry"),
		Type:     q.Get("type"),
	}
	var err error
	if req.Threshold, err = floatParam(r, "threshold"); err != nil {
		return req, err
	}
	if req.MarketCapPercentile, err = floatParam(r, "mcap_pct"); err != nil {
		return req, err
	}
	return req, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &utils.ValidationError{Field: name, Value: raw, Message: "must be a number"}
	}
	return v, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &utils.ValidationError{Field: name, Value: raw, Message: "must be a non-negative integer"}
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
