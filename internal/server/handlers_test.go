package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/xonecas/parley/internal/remote"
)

func setupRouterTest(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub, _ := setupHubTest(t)
	srv := httptest.NewServer(NewRouter(zerolog.Nop(), hub))
	t.Cleanup(srv.Close)
	return srv, hub
}

func doRequest(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestJoinEndpoint(t *testing.T) {
	srv, hub := setupRouterTest(t)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/join?name=alice", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var result remote.JoinResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.LastID != 1 {
		t.Errorf("lastId = %d, want 1", result.LastID)
	}
	if users := hub.Users(); len(users) != 1 || users[0] != "alice" {
		t.Errorf("roster = %v", users)
	}
}

func TestNameRequired(t *testing.T) {
	srv, _ := setupRouterTest(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/join"},
		{http.MethodGet, "/join?name=%20%20"},
		{http.MethodPost, "/leave"},
	}

	for _, tt := range tests {
		resp, _ := doRequest(t, tt.method, srv.URL+tt.path, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s %s status = %d, want 400", tt.method, tt.path, resp.StatusCode)
		}
	}
}

func TestMessagesEndpoint(t *testing.T) {
	srv, hub := setupRouterTest(t)
	hub.Join("alice")
	hub.Send("alice", "hello")

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/messages?lastId=1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var msgs []remote.Message
	if err := json.Unmarshal(body, &msgs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != 2 || msgs[0].Name != "alice" || msgs[0].Content != "hello" {
		t.Errorf("messages = %+v", msgs)
	}
	if msgs[0].Time.IsZero() {
		t.Error("expected a server timestamp")
	}

	// Caught up returns an empty array, not null
	_, body = doRequest(t, http.MethodGet, srv.URL+"/messages?lastId=2", "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("caught-up body = %s, want []", body)
	}

	// Malformed cursor is treated as zero
	_, body = doRequest(t, http.MethodGet, srv.URL+"/messages?lastId=abc", "")
	msgs = nil
	json.Unmarshal(body, &msgs)
	if len(msgs) != 2 {
		t.Errorf("malformed cursor returned %d messages, want 2", len(msgs))
	}
}

func TestSendEndpoint(t *testing.T) {
	srv, hub := setupRouterTest(t)

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/send", `{"name":"bob","content":"hi"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	msgs := hub.Since(0)
	if len(msgs) != 1 || msgs[0].Name != "bob" || msgs[0].Content != "hi" {
		t.Errorf("messages = %+v", msgs)
	}
	// Sending refreshes roster activity
	if users := hub.Users(); len(users) != 1 || users[0] != "bob" {
		t.Errorf("roster = %v", users)
	}
}

func TestSendRejectsBadBodies(t *testing.T) {
	srv, hub := setupRouterTest(t)

	tests := []struct {
		name string
		body string
	}{
		{"not_json", `hello`},
		{"missing_name", `{"content":"hi"}`},
		{"blank_content", `{"name":"bob","content":"   "}`},
		{"too_long", `{"name":"bob","content":"` + strings.Repeat("x", 5000) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doRequest(t, http.MethodPost, srv.URL+"/send", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	if n := len(hub.Since(0)); n != 0 {
		t.Errorf("rejected sends appended %d messages", n)
	}
}

func TestUsersEndpointEmpty(t *testing.T) {
	srv, _ := setupRouterTest(t)

	_, body := doRequest(t, http.MethodGet, srv.URL+"/users", "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := setupRouterTest(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/send", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight error: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, hub := setupRouterTest(t)
	hub.Join("alice")

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "healthy" || health.LastID != 1 || health.Users != 1 {
		t.Errorf("health = %+v", health)
	}

	resp, body = doRequest(t, http.MethodGet, srv.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "parley_http_requests_total") {
		t.Error("expected request counter in metrics output")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  alice  ", "alice"},
		{"bo\x00b", "bob"},
		{strings.Repeat("é", 70), strings.Repeat("é", 64)},
	}

	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
