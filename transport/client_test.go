package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/bitbucket/config"
	"github.com/kbukum/bitbucket/logger"
)

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{
		BaseURL:         baseURL,
		Timeout:         5 * time.Second,
		MaxResponseSize: "1MB",
	}
	cfg.ApplyDefaults()
	return cfg
}

func testClient(baseURL string) *Client {
	return New(testConfig(baseURL), WithLogger(logger.Nop()))
}

func oauthCreds() *Credentials {
	return &Credentials{Method: AuthOAuth, Token: "tok"}
}

func TestClient_Do_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/repositories/acme" {
			t.Errorf("expected /repositories/acme, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"slug": "widgets"})
	}))
	defer srv.Close()

	body, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{
		Path: "/repositories/acme",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Kind() != BodyJSON {
		t.Errorf("expected json body, got %s", body.Kind())
	}
	var out struct {
		Slug string `json:"slug"`
	}
	if err := body.Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Slug != "widgets" {
		t.Errorf("slug = %q", out.Slug)
	}
}

func TestClient_Do_DefaultMethodAndPathNormalization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected default GET, got %s", r.Method)
		}
		if r.URL.Path != "/workspaces" {
			t.Errorf("missing slash not normalized: %s", r.URL.Path)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	// Path without a leading slash.
	_, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{Path: "workspaces"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_RequestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Values("Authorization"); len(got) != 1 {
			t.Errorf("expected exactly one Authorization header, got %d", len(got))
		}
		if got := r.Header.Get("X-Request-Id"); got == "" {
			t.Error("expected X-Request-Id")
		}
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "bitbucket-go/") {
			t.Errorf("User-Agent = %q", got)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{Path: "/x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_BasicAuthVariants(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	creds := &Credentials{Method: AuthBasicEmail, UserEmail: "a@b.com", APIToken: "api"}
	if _, err := c.Do(context.Background(), creds, Request{Path: "/x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, pass, ok := parseBasic(t, gotAuth)
	if !ok || user != "a@b.com" || pass != "api" {
		t.Errorf("email variant auth = %q (%s:%s)", gotAuth, user, pass)
	}

	creds = &Credentials{Method: AuthBasicAppPassword, Username: "u", AppPassword: "p"}
	if _, err := c.Do(context.Background(), creds, Request{Path: "/x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, pass, ok = parseBasic(t, gotAuth)
	if !ok || user != "u" || pass != "p" {
		t.Errorf("app password variant auth = %q (%s:%s)", gotAuth, user, pass)
	}
}

func parseBasic(t *testing.T, header string) (string, string, bool) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, "http://x", nil)
	req.Header.Set("Authorization", header)
	return req.BasicAuth()
}

func TestClient_Do_JSONBodyRoundTrip(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(201)
	}))
	defer srv.Close()

	sent := map[string]any{
		"name":   "release/1.2",
		"target": map[string]any{"hash": "abc123"},
		"count":  float64(3),
	}
	_, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{
		Method: http.MethodPost,
		Path:   "/refs/branches",
		Body:   sent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(received, &parsed); err != nil {
		t.Fatalf("wire body is not JSON: %v", err)
	}
	if !reflect.DeepEqual(parsed, sent) {
		t.Errorf("round trip mismatch:\nsent: %v\ngot:  %v", sent, parsed)
	}
}

func TestClient_Do_CallerContentTypeOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "message=update&branch=main" {
			t.Errorf("body altered: %q", body)
		}
		w.WriteHeader(201)
	}))
	defer srv.Close()

	// Pre-encoded string bodies pass through unchanged.
	_, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{
		Method:  http.MethodPost,
		Path:    "/src",
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:    "message=update&branch=main",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_StructuredBodyNonJSONContentType(t *testing.T) {
	dispatched := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dispatched = true
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{
		Method:  http.MethodPost,
		Path:    "/src",
		Headers: map[string]string{"Content-Type": "multipart/form-data"},
		Body:    map[string]string{"not": "encodable here"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUnexpected(err) {
		t.Errorf("expected unexpected kind, got %v", err)
	}
	if dispatched {
		t.Error("request must not be dispatched on encoding error")
	}
}

func TestClient_Do_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pagelen"); got != "50" {
			t.Errorf("pagelen = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != `name~"api"` {
			t.Errorf("q = %q", got)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{
		Path:  "/repositories/acme",
		Query: map[string]string{"pagelen": "50", "q": `name~"api"`},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_NilCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be dispatched without credentials")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Do(context.Background(), nil, Request{Path: "/x"})
	if !IsAuthMissing(err) {
		t.Errorf("expected auth_missing, got %v", err)
	}
}

func TestClient_Do_EmptyBodySuccess(t *testing.T) {
	for _, status := range []int{200, 204} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
		}))

		body, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{Path: "/x"})
		srv.Close()
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if !body.IsEmpty() {
			t.Errorf("status %d: expected empty body, got %s", status, body.Kind())
		}
	}
}

func TestClient_Do_TextPlainResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "package main\n")
	}))
	defer srv.Close()

	body, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{Path: "/src/main/main.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Kind() != BodyText {
		t.Fatalf("expected text, got %s", body.Kind())
	}
	if body.Text() != "package main\n" {
		t.Errorf("text = %q", body.Text())
	}
}

func TestClient_Do_VendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(404)
		io.WriteString(w, `{"type":"error","error":{"message":"Repository not found","detail":"x"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{Path: "/repositories/acme/gone"})
	if !IsNotFound(err) {
		t.Fatalf("expected 404, got %v", err)
	}
	e, _ := AsError(err)
	if e.Message != "Repository not found. Detail: x" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestClient_Do_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Do(context.Background(), oauthCreds(), Request{Path: "/x"})
	if !IsAuthInvalid(err) {
		t.Errorf("expected auth_invalid, got %v", err)
	}
}

func TestClient_Do_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	// Repeated calls: the timer must be released after each one.
	for i := 0; i < 3; i++ {
		_, err := c.Do(context.Background(), oauthCreds(), Request{
			Path:    "/slow",
			Timeout: 50 * time.Millisecond,
		})
		if !IsTimeout(err) {
			t.Fatalf("call %d: expected timeout, got %v", i, err)
		}
		e, _ := AsError(err)
		if e.StatusCode != 408 {
			t.Errorf("call %d: status = %d", i, e.StatusCode)
		}
		if !strings.Contains(e.Message, "50ms") {
			t.Errorf("call %d: message should state the timeout, got %q", i, e.Message)
		}
	}
}

func TestClient_Do_DefaultTimeoutFromConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	c := New(cfg, WithLogger(logger.Nop()))

	_, err := c.Do(context.Background(), oauthCreds(), Request{Path: "/slow"})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestClient_Do_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClient(url).Do(context.Background(), oauthCreds(), Request{Path: "/x"})
	if !IsAPIError(err, 500) {
		t.Fatalf("expected api/500, got %v", err)
	}
	e, _ := AsError(err)
	if !strings.Contains(e.Message, "network error") {
		t.Errorf("message = %q", e.Message)
	}
	if e.Unwrap() == nil {
		t.Error("expected the network cause to be preserved")
	}
}

func TestClient_Do_OversizedDeclaredLength(t *testing.T) {
	payload := strings.Repeat("x", 2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		io.WriteString(w, payload)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxResponseSize = "1KB"
	c := New(cfg, WithLogger(logger.Nop()))

	_, err := c.Do(context.Background(), oauthCreds(), Request{Path: "/big"})
	if !IsAPIError(err, 413) {
		t.Fatalf("expected api/413, got %v", err)
	}
}

func TestClient_Do_OversizedUndeclaredLength(t *testing.T) {
	payload := strings.Repeat("x", 2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing forces chunked encoding, so no Content-Length is declared.
		w.WriteHeader(200)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		io.WriteString(w, payload)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxResponseSize = "1KB"
	c := New(cfg, WithLogger(logger.Nop()))

	_, err := c.Do(context.Background(), oauthCreds(), Request{Path: "/big"})
	if !IsAPIError(err, 413) {
		t.Fatalf("expected api/413, got %v", err)
	}
}

func TestClient_Do_Concurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := c.Do(context.Background(), oauthCreds(), Request{Path: "/x"})
			done <- err
		}()
	}
	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent call failed: %v", err)
		}
	}
}
