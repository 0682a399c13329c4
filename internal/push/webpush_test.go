package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNotifyPostsPayloadToEndpoint(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sub := fmt.Sprintf(`{"endpoint":%q}`, srv.URL)
	c := NewClient()
	if err := c.Notify(context.Background(), sub, "New message", "hello", "/requests/x"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got.Title != "New message" || got.Body != "hello" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestNotifyReportsGoneSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	sub := fmt.Sprintf(`{"endpoint":%q}`, srv.URL)
	if err := NewClient().Notify(context.Background(), sub, "t", "b", "/"); err == nil {
		t.Fatalf("expected error for gone subscription")
	}
}

func TestNotifyRejectsBadSubscription(t *testing.T) {
	c := NewClient()
	if err := c.Notify(context.Background(), "not-json", "t", "b", "/"); err == nil {
		t.Fatalf("expected error for invalid subscription")
	}
	if err := c.Notify(context.Background(), "{}", "t", "b", "/"); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
}
