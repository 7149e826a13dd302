package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/kbukum/bitbucket/config"
)

// Server is a fake Bitbucket Cloud API backed by httptest.
type Server struct {
	*httptest.Server
	mux *http.ServeMux

	mu       sync.Mutex
	requests []*RecordedRequest
}

// RecordedRequest captures one request the server received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

// NewServer starts a fake API server. Callers must Close it.
func NewServer() *Server {
	mux := http.NewServeMux()
	s := &Server{mux: mux}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		mux.ServeHTTP(w, r)
	}))
	return s
}

// Config returns a client configuration pointing at this server, with an
// OAuth token configured and defaults applied.
func (s *Server) Config() *config.Config {
	cfg := &config.Config{
		BaseURL: s.URL,
		Timeout: 5 * time.Second,
		Auth:    config.AuthConfig{OAuthToken: "test-token"},
	}
	cfg.ApplyDefaults()
	cfg.Logging.Level = "error"
	return cfg
}

// HandleJSON registers a handler that responds with the given status and
// JSON payload.
func (s *Server) HandleJSON(pattern string, status int, payload any) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	})
}

// HandleText registers a handler that responds 200 with a text/plain body.
func (s *Server) HandleText(pattern, body string) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, body)
	})
}

// HandleEmpty registers a handler that responds with the given status and
// no body.
func (s *Server) HandleEmpty(pattern string, status int) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

// HandleError registers a handler that responds with the vendor error shape.
func (s *Server) HandleError(pattern string, status int, message string) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"type":"error","error":{"message":%q}}`, message)
	})
}

// Handle registers a raw handler for full control.
func (s *Server) Handle(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}

// Requests returns all requests received so far.
func (s *Server) Requests() []*RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, or nil.
func (s *Server) LastRequest() *RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func (s *Server) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	query := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, &RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  query,
		Header: r.Header.Clone(),
		Body:   body,
	})
}
