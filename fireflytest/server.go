// Package fireflytest provides an in-memory Firefly III accounts API for
// tests.
package fireflytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const Token = "test-token"

// Account is the stored form of an account.
type Account struct {
	ID              string `json:"-"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Role            string `json:"account_role,omitempty"`
	CurrencyCode    string `json:"currency_code"`
	CurrentBalance  string `json:"current_balance"`
	IncludeNetWorth bool   `json:"include_net_worth"`
	Active          bool   `json:"active"`
	Notes           string `json:"notes"`
}

// Server fakes /api/v1/accounts and /api/v1/about.
type Server struct {
	*httptest.Server

	PerPage int

	mu       sync.Mutex
	nextID   int
	accounts map[string]Account
	created  []map[string]any
	deleted  []string
	requests []string
}

func NewServer() *Server {
	s := &Server{
		PerPage:  50,
		nextID:   1,
		accounts: make(map[string]Account),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/accounts", s.handleAccounts)
	mux.HandleFunc("/api/v1/accounts/", s.handleAccount)
	mux.HandleFunc("/api/v1/about", s.handleAbout)
	s.Server = httptest.NewServer(s.authorize(mux))
	return s
}

// Add stores an account and returns its ID.
func (s *Server) Add(a Account) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(a)
}

func (s *Server) add(a Account) string {
	a.ID = strconv.Itoa(s.nextID)
	s.nextID++
	if a.CurrentBalance == "" {
		a.CurrentBalance = "0"
	}
	s.accounts[a.ID] = a
	return a.ID
}

// Accounts returns the stored accounts ordered by ID.
func (s *Server) Accounts() []Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted()
}

// Created returns the raw bodies of every create request.
func (s *Server) Created() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.created...)
}

// Deleted returns the IDs of every deleted account in order.
func (s *Server) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// Requests returns "METHOD /path?query" for every request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) sorted() []Account {
	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].ID)
		b, _ := strconv.Atoi(out[j].ID)
		return a < b
	})
	return out
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
		s.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.list(w, r)
	case http.MethodPost:
		s.create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/accounts/")
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"data": resource(a)})
	case http.MethodDelete:
		delete(s.accounts, id)
		s.deleted = append(s.deleted, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sorted()
	if t := r.URL.Query().Get("type"); t != "" && t != "all" {
		var filtered []Account
		for _, a := range all {
			if a.Type == t {
				filtered = append(filtered, a)
			}
		}
		all = filtered
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	totalPages := (len(all) + s.PerPage - 1) / s.PerPage
	if totalPages == 0 {
		totalPages = 1
	}

	data := []any{}
	for i := (page - 1) * s.PerPage; i < len(all) && i < page*s.PerPage; i++ {
		data = append(data, resource(all[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"meta": map[string]any{
			"pagination": map[string]any{
				"total":        len(all),
				"count":        len(data),
				"per_page":     s.PerPage,
				"current_page": page,
				"total_pages":  totalPages,
			},
		},
	})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var a Account
	raw, _ := json.Marshal(body)
	_ = json.Unmarshal(raw, &a)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, body)

	if a.Name == "" || a.Type == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors":  map[string][]string{"name": {"The name field is required."}},
		})
		return
	}
	for _, existing := range s.accounts {
		if existing.Name == a.Name && existing.Type == a.Type {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"message": "The given data was invalid.",
				"errors":  map[string][]string{"name": {"This account name is already in use."}},
			})
			return
		}
	}

	id := s.add(a)
	writeJSON(w, http.StatusOK, map[string]any{"data": resource(s.accounts[id])})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"version":     "6.1.0",
			"api_version": "2.0.14",
			"php_version": "8.3.0",
			"os":          "Linux",
			"driver":      "sqlite",
		},
	})
}

func resource(a Account) map[string]any {
	return map[string]any{
		"type":       "accounts",
		"id":         a.ID,
		"attributes": a,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}
