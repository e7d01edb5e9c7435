package web

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/lannv1101/css-checker/coverage"
)

// handleExport renders an analysis as CSV for spreadsheet consumption: one
// row per unused rule, and a single summary row for files that have none.
func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	pageURL, ok := requestedURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid url parameter")
		return
	}

	res, _, err := s.analyze(r.Context(), pageURL)
	if err != nil {
		s.logger.Error("web: export failed", "url", pageURL, "error", err)
		writeError(w, http.StatusBadGateway, "coverage collection failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="css-coverage.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"stylesheet", "total_bytes", "used_bytes", "unused_selector", "unused_rule_bytes"})
	for _, f := range res.Files {
		writeFileRows(cw, f)
	}
}

func writeFileRows(cw *csv.Writer, f coverage.FileResult) {
	total := strconv.Itoa(f.TotalBytes)
	used := strconv.Itoa(f.UsedBytes)

	if len(f.UnusedRules) == 0 {
		cw.Write([]string{f.URL, total, used, "", ""})
		return
	}
	for _, ru := range f.UnusedRules {
		cw.Write([]string{f.URL, total, used, ru.Selector, strconv.Itoa(ru.Bytes)})
	}
}
