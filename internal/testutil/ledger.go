// Package testutil provides test utilities for tidy-ledger: an in-memory
// ledger API served over httptest and a fluent taxonomy fixture builder.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/tidy-ledger/internal/ledger"
	"github.com/Veraticus/tidy-ledger/internal/model"
)

// RecordedRequest is a request the fake ledger received.
type RecordedRequest struct {
	Query  url.Values
	Method string
	Path   string
	Body   string
}

type injectedFailure struct {
	method string
	path   string
	status int
}

// LedgerServer is an in-memory implementation of the ledger API contract.
// The transactions endpoint treats `end` as inclusive, like the real API.
type LedgerServer struct {
	*httptest.Server
	categories   map[int]model.Category
	transactions map[int64]model.Transaction
	taxonomy     []ledger.TaxonomyGroup
	requests     []RecordedRequest
	failures     []injectedFailure
	mu           sync.Mutex
}

// NewLedgerServer starts a fake ledger seeded with taxonomy and transactions.
// The server is closed when the test finishes.
func NewLedgerServer(t *testing.T, taxonomy []ledger.TaxonomyGroup, txns ...model.Transaction) *LedgerServer {
	t.Helper()

	s := &LedgerServer{
		categories:   make(map[int]model.Category),
		transactions: make(map[int64]model.Transaction),
		taxonomy:     taxonomy,
	}
	for _, g := range taxonomy {
		for _, c := range g.Categories {
			s.categories[c.CategoryID] = model.Category{ID: c.CategoryID, Name: c.CategoryName, GroupID: g.GroupID}
		}
	}
	for _, txn := range txns {
		s.transactions[txn.ID] = txn
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/taxonomy", s.handleTaxonomy)
	mux.HandleFunc("GET /api/transactions", s.handleList)
	mux.HandleFunc("PATCH /api/transactions/{id}/category", s.handleAssign)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// FailNext makes the next request matching method and path prefix answer with status.
func (s *LedgerServer) FailNext(method, pathPrefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, injectedFailure{method: method, path: pathPrefix, status: status})
}

// Requests returns every request received so far, in order.
func (s *LedgerServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsFor returns the received requests matching method and path prefix.
func (s *LedgerServer) RequestsFor(method, pathPrefix string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			out = append(out, r)
		}
	}
	return out
}

// Transaction returns the current server-side state of a transaction.
func (s *LedgerServer) Transaction(id int64) (model.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[id]
	return txn, ok
}

// Unclassified returns every unclassified transaction of a ledger inside the window,
// as a single unpaged query would.
func (s *LedgerServer) Unclassified(l model.Ledger, w model.MonthWindow) []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Transaction
	for _, txn := range s.transactions {
		if txn.Ledger == l && w.Contains(txn.Date) && txn.IsUnclassified() {
			out = append(out, txn)
		}
	}
	sortDesc(out)
	return out
}

func (s *LedgerServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   string(body),
		})
		status := s.popFailure(r.Method, r.URL.Path)
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *LedgerServer) popFailure(method, path string) int {
	for i, f := range s.failures {
		if f.method == method && strings.HasPrefix(path, f.path) {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			return f.status
		}
	}
	return 0
}

func (s *LedgerServer) handleTaxonomy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.taxonomy)
}

func (s *LedgerServer) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		http.Error(w, "invalid offset", http.StatusBadRequest)
		return
	}
	if q.Get("sort_by") != ledger.SortByDate {
		http.Error(w, "sort_by must be 'date'", http.StatusBadRequest)
		return
	}
	start, _ := time.Parse(model.DateLayout, q.Get("start"))
	end, _ := time.Parse(model.DateLayout, q.Get("end"))

	s.mu.Lock()
	var matched []model.Transaction
	for _, txn := range s.transactions {
		if acct := q.Get("account"); acct != "" && string(txn.Ledger) != acct {
			continue
		}
		if txn.Date.Before(start) || txn.Date.After(end) {
			continue
		}
		matched = append(matched, txn)
	}
	s.mu.Unlock()

	sortDesc(matched)
	if q.Get("sort_dir") == "asc" {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	rows := make([]map[string]any, 0, limit)
	for i := offset; i < len(matched) && len(rows) < limit; i++ {
		txn := matched[i]
		rows = append(rows, map[string]any{
			"id":          txn.ID,
			"account":     string(txn.Ledger),
			"date":        txn.Date.Format(model.DateLayout),
			"amount":      txn.Amount,
			"description": txn.Description,
			"group_id":    txn.GroupID,
			"category_id": txn.CategoryID,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *LedgerServer) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	var body struct {
		CategoryID int `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CategoryID < 1 {
		http.Error(w, "category_id must be >= 1", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Transaction not found"})
		return
	}
	cat, ok := s.categories[body.CategoryID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Category not found"})
		return
	}

	changed := txn.CategoryID != cat.ID
	txn.CategoryID = cat.ID
	txn.GroupID = cat.GroupID
	s.transactions[id] = txn

	status, message := http.StatusOK, "Category assignment unchanged"
	if changed {
		status, message = http.StatusCreated, "Category assigned"
	}
	writeJSON(w, status, map[string]any{
		"ok":      true,
		"message": message,
		"created": changed,
		"data":    map[string]any{"txn_id": id, "category_id": cat.ID},
	})
}

func sortDesc(txns []model.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.After(txns[j].Date)
		}
		return txns[i].ID > txns[j].ID
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
