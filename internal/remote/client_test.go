package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 2*time.Second, nil)
}

func TestJoin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/join" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "Alice Smith" {
			t.Errorf("expected name=Alice Smith, got %q", got)
		}
		w.Write([]byte(`{"lastId":5}`))
	})

	res, err := c.Join(context.Background(), "Alice Smith")
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if res.LastID != 5 {
		t.Errorf("expected lastId=5, got %d", res.LastID)
	}
}

func TestMessagesSendsCursor(t *testing.T) {
	ts := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("lastId"); got != "5" {
			t.Errorf("expected lastId=5, got %q", got)
		}
		json.NewEncoder(w).Encode([]Message{{ID: 6, Name: "Bob", Content: "hi", Time: ts}})
	})

	msgs, err := c.Messages(context.Background(), 5)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].ID != 6 || msgs[0].Name != "Bob" || msgs[0].Content != "hi" || !msgs[0].Time.Equal(ts) {
		t.Errorf("unexpected message %+v", msgs[0])
	}
}

func TestMessagesNullBodyIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null\n"))
	})

	msgs, err := c.Messages(context.Background(), 0)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", msgs)
	}
}

func TestUsers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`["Alice","Bob"]`))
	})

	users, err := c.Users(context.Background())
	if err != nil {
		t.Fatalf("Users() error: %v", err)
	}
	if len(users) != 2 || users[0] != "Alice" || users[1] != "Bob" {
		t.Errorf("unexpected users %v", users)
	}
}

func TestSendPostsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/send" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		var body sendRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Name != "Alice" || body.Content != "hello" {
			t.Errorf("unexpected body %+v", body)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := c.Send(context.Background(), "Alice", "hello"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
}

func TestLeaveUsesPost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/leave" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "Alice" {
			t.Errorf("expected name=Alice, got %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.Leave(context.Background(), "Alice"); err != nil {
		t.Fatalf("Leave() error: %v", err)
	}
}

func TestTransportErrors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "non_2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "malformed_body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":`))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong_shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"not":"an array"}`))
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			_, err := c.Messages(context.Background(), 0)
			if err == nil {
				t.Fatal("expected error")
			}
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected TransportError, got %T", err)
			}
			if te.Op != OpMessages {
				t.Errorf("expected op=%s, got %s", OpMessages, te.Op)
			}
			if te.Status != tt.wantStatus {
				t.Errorf("expected status=%d, got %d", tt.wantStatus, te.Status)
			}
		})
	}
}

func TestNetworkErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	_, err := c.Join(context.Background(), "Alice")
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var te *TransportError
	errors.As(err, &te)
	if te.Status != 0 {
		t.Errorf("expected status=0 for network error, got %d", te.Status)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	c.limiter = NewLimiter(0.001, 1)

	// First call consumes the only token
	if _, err := c.Users(context.Background()); err != nil {
		t.Fatalf("Users() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Users(ctx); !IsTransport(err) {
		t.Errorf("expected transport error from limiter wait, got %v", err)
	}
}

func TestNewLimiterDisabled(t *testing.T) {
	if l := NewLimiter(0, 5); l != nil {
		t.Error("expected nil limiter for zero rate")
	}
	if l := NewLimiter(2, 0); l == nil || l.Burst() != 1 {
		t.Error("expected burst clamped to 1")
	}
}
