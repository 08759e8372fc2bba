package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/ratewatch/storage/types"
)

var (
	errUnableToFetchRates      = errors.New("unable to fetch rates")
	errUnableToFetchCurrencies = errors.New("unable to fetch currencies")

	errNoSnapshot   = errors.New("no rates scraped yet")
	errRateNotFound = errors.New("rate not found")
)

// Stats returns the call counters and the block log
func (s *Server) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

// Scrapes returns the rate scrape stats
func (s *Server) Scrapes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Scrapes())
}

// LatestRates returns the latest scraped snapshot
func (s *Server) LatestRates(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.storage.LatestSnapshot(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch latest snapshot",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	if snapshot == nil {
		writeError(w, http.StatusNotFound, errNoSnapshot)

		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// RateForPair returns the latest rate for a single pair
func (s *Server) RateForPair(w http.ResponseWriter, r *http.Request) {
	var (
		fromParam = chi.URLParam(r, "from")
		toParam   = chi.URLParam(r, "to")
	)

	// Parse the origin currency
	from, err := parseCurrencySymbol(fromParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the payout currency
	to, err := parseCurrencySymbol(toParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	pair := types.Pair{
		Base:   from,
		Target: to,
	}

	record, err := s.storage.RateFor(r.Context(), pair)
	if err != nil {
		s.logger.Debug(
			"unable to fetch rate",
			"base", from,
			"target", to,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	if record == nil {
		writeError(w, http.StatusNotFound, errRateNotFound)

		return
	}

	resp := &RateResponse{
		Record: record,
		Pair:   pair,
		Quote:  record.Quote(),
	}

	writeJSON(w, http.StatusOK, resp)
}

// Currencies returns every currency present in the latest snapshot
func (s *Server) Currencies(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListCurrencies(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch currencies",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchCurrencies,
		)

		return
	}

	resp := &CurrenciesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseCurrencySymbol(v string) (types.Currency, error) {
	s := strings.ToUpper(strings.TrimSpace(v))
	if len(s) != 3 {
		return "", errors.New("invalid currency (must be 3 letters)")
	}

	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", errors.New("invalid currency (must be A-Z)")
		}
	}

	return types.Currency(s), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
