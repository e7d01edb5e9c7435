package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lannv1101/css-checker/coverage"
	"github.com/lannv1101/css-checker/history"
)

// requestedURL validates the ?url= parameter. Only absolute http(s) URLs
// are analyzable.
func requestedURL(r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		return "", false
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return raw, true
}

// analyze runs one page through the cache-fronted pipeline. The returned
// bool reports a cache hit. A collector failure is a failure — it is never
// converted into an empty zero-usage result.
func (s *Service) analyze(ctx context.Context, pageURL string) (coverage.Result, bool, error) {
	return s.results.Do(ctx, pageURL, func(ctx context.Context) (coverage.Result, error) {
		sheets, err := s.source.Collect(ctx, pageURL)
		if err != nil {
			return coverage.Result{}, err
		}
		res := coverage.Analyze(sheets)

		if s.store != nil {
			if err := s.store.Record(ctx, pageURL, res); err != nil {
				s.logger.Warn("web: history record failed", "url", pageURL, "error", err)
			}
		}
		return res, nil
	})
}

func (s *Service) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	pageURL, ok := requestedURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid url parameter")
		return
	}

	res, cached, err := s.analyze(r.Context(), pageURL)
	if err != nil {
		s.logger.Error("web: analyze failed", "url", pageURL, "error", err)
		writeError(w, http.StatusBadGateway, "coverage collection failed: "+err.Error())
		return
	}

	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("web: history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}
