package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestActorMiddlewareUsesHeaderOrDefault(t *testing.T) {
	var got string
	h := ActorMiddleware(false, "Demo User")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetActor(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Demo User" {
		t.Errorf("Expected default actor, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorHeader, "  Ada ")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Ada" {
		t.Errorf("Expected header actor, got %q", got)
	}
}

func TestActorMiddlewareRequiresToken(t *testing.T) {
	h := ActorMiddleware(true, "Demo User")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler must not run without a token")
	}))

	for _, header := range []string{"", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Authorization %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestErrorBodyIsJSON(t *testing.T) {
	message := "Invalid token: bad \a byte \x01 in \"kid\" é"
	rec := httptest.NewRecorder()
	respondWithError(rec, http.StatusUnauthorized, message)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Body %q is not JSON: %v", rec.Body.String(), err)
	}
	if body["error"] != message {
		t.Errorf("Expected %q, got %q", message, body["error"])
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Unexpected Content-Type %q", ct)
	}
}

func TestBearerTokenFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stream?token=abc", nil)
	token, ok := bearerToken(req)
	if !ok || token != "abc" {
		t.Errorf("Expected query token, got %q %v", token, ok)
	}
}

func TestBasicAuthMiddleware(t *testing.T) {
	h := BasicAuthMiddleware("prom", "secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		user, pass string
		want       int
	}{
		{"prom", "secret", http.StatusOK},
		{"prom", "wrong", http.StatusUnauthorized},
		{"", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if tt.user != "" {
			req.SetBasicAuth(tt.user, tt.pass)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s/%s: expected %d, got %d", tt.user, tt.pass, tt.want, rec.Code)
		}
	}

	closed := BasicAuthMiddleware("", "")(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("", "")
	rec := httptest.NewRecorder()
	closed.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected metrics closed without credentials, got %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected burst of 2 then 429, got %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Other clients must have their own bucket, got %d", rec.Code)
	}

	if n := rl.evict(-time.Second); n != 2 {
		t.Errorf("Expected 2 visitors evicted, got %d", n)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := clientIP(req); ip != "203.0.113.7" {
		t.Errorf("Unexpected client ip %q", ip)
	}
}

func TestRequestIDAndRouteLabel(t *testing.T) {
	var label string
	r := mux.NewRouter()
	r.Use(RequestID, MonitorMiddleware)
	r.HandleFunc("/api/v1/vcards/{id}", func(w http.ResponseWriter, req *http.Request) {
		label = routeLabel(req)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vcards/vcard-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if label != "/api/v1/vcards/{id}" {
		t.Errorf("Expected route template label, got %q", label)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}
}

func TestLoggingRecoversPanics(t *testing.T) {
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}
