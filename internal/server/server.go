// Package server exposes the prepared market table and the per-chart series
// as a JSON API for the dashboard front end.
package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"InvestorsDaily/internal/chart"
	"InvestorsDaily/internal/exporter"
	"InvestorsDaily/internal/metrics"
	"InvestorsDaily/internal/model"
	"InvestorsDaily/internal/recorder"
)

// DataProvider supplies the current table.
type DataProvider interface {
	Get(ctx context.Context) (*model.Table, error)
	Reload(ctx context.Context) (*model.Table, error)
}

// Server handles dashboard API requests.
type Server struct {
	data    DataProvider
	history recorder.Recorder
	metrics *metrics.Recorder
	log     zerolog.Logger
}

// New creates a Server. history and m may be nil.
func New(data DataProvider, history recorder.Recorder, m *metrics.Recorder, log zerolog.Logger) *Server {
	if history == nil {
		history = recorder.NewNoopRecorder()
	}
	return &Server{data: data, history: history, metrics: m, log: log}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/years", s.getYears)
		r.Get("/records", s.getRecords)
		r.Get("/loads", s.getLoads)
		r.Get("/export.xlsx", s.exportXLSX)
		r.Post("/reload", s.reload)

		r.Route("/charts", func(r chi.Router) {
			r.Get("/profit-loss", s.withYear(func(t *model.Table, year int) interface{} {
				return chart.ProfitLossCounts(t, year)
			}))
			r.Get("/percent-change", s.withYear(func(t *model.Table, year int) interface{} {
				return chart.PercentChangeSeries(t, year)
			}))
			r.Get("/monthly-volume", s.withYear(func(t *model.Table, year int) interface{} {
				return chart.MonthlyVolume(t, year)
			}))
			r.Get("/price-series", s.getPriceSeries)
		})
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

func (s *Server) table(w http.ResponseWriter, r *http.Request) (*model.Table, bool) {
	t, err := s.data.Get(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return nil, false
	}
	return t, true
}

// yearParam reads the required ?year= query parameter.
func yearParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return 0, errors.New("query parameter year is required")
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("query parameter year must be an integer")
	}
	return year, nil
}

func (s *Server) withYear(fn func(t *model.Table, year int) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := yearParam(r)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
		t, ok := s.table(w, r)
		if !ok {
			return
		}
		if !t.HasYear(year) {
			s.fail(w, r, http.StatusNotFound, errors.New("no data for year "+strconv.Itoa(year)))
			return
		}
		render.JSON(w, r, fn(t, year))
	}
}

func (s *Server) getYears(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, chart.Years(t))
}

func (s *Server) getRecords(w http.ResponseWriter, r *http.Request) {
	var (
		year    int
		hasYear bool
	)
	if r.URL.Query().Get("year") != "" {
		y, err := yearParam(r)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
		year, hasYear = y, true
	}
	ticker := r.URL.Query().Get("ticker")

	t, ok := s.table(w, r)
	if !ok {
		return
	}
	if hasYear && !t.HasYear(year) {
		s.fail(w, r, http.StatusNotFound, errors.New("no data for year "+strconv.Itoa(year)))
		return
	}
	out := make([]model.MarketRecord, 0, len(t.Records))
	for _, rec := range t.Records {
		if hasYear && rec.Year != year {
			continue
		}
		if ticker != "" && rec.Ticker != ticker {
			continue
		}
		out = append(out, rec)
	}
	render.JSON(w, r, out)
}

func (s *Server) getPriceSeries(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	series, err := chart.PriceSeries(t)
	if err != nil {
		s.fail(w, r, http.StatusNotFound, err)
		return
	}
	render.JSON(w, r, series)
}

func (s *Server) getLoads(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(w, r, http.StatusBadRequest, errors.New("query parameter limit must be a positive integer"))
			return
		}
		limit = n
	}
	loads, err := s.history.RecentLoads(limit)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if loads == nil {
		loads = []recorder.LoadRecord{}
	}
	render.JSON(w, r, loads)
}

func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := exporter.WriteXLSX(&buf, t); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="MarketData.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Warn().Err(err).Msg("write export")
	}
}

// LoadSummary describes the table produced by a reload.
type LoadSummary struct {
	Records   int       `json:"records"`
	Tickers   []string  `json:"tickers"`
	Years     []int     `json:"years"`
	Anomalies int       `json:"anomalies"`
	LoadedAt  time.Time `json:"loaded_at"`
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	t, err := s.data.Reload(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	render.JSON(w, r, LoadSummary{
		Records:   len(t.Records),
		Tickers:   t.Tickers,
		Years:     t.Years,
		Anomalies: t.Anomalies,
		LoadedAt:  t.LoadedAt,
	})
}

// observe counts requests by route pattern and status.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.metrics != nil {
			s.metrics.RecordRequest(route, strconv.Itoa(status))
		}
		s.log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
