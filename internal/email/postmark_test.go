package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSend(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "chores@example.com", WithAPIURL(server.URL))

	err := client.Send("alice@example.com", "Chore reminder", "text body", "<p>html body</p>")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q, want %q", received.To, "alice@example.com")
	}
	if received.From != "chores@example.com" {
		t.Errorf("From = %q, want %q", received.From, "chores@example.com")
	}
	if received.Subject != "Chore reminder" {
		t.Errorf("Subject = %q, want %q", received.Subject, "Chore reminder")
	}
}

func TestSendNotConfigured(t *testing.T) {
	client := NewClient("", "chores@example.com")

	if err := client.Send("alice@example.com", "s", "t", "h"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "chores@example.com", WithAPIURL(server.URL))

	if err := client.Send("alice@example.com", "s", "t", "h"); err == nil {
		t.Fatal("expected error for API failure")
	}
	// 4xx must not be retried
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 attempt for client error, got %d", n)
	}
}

func TestSendRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "chores@example.com", WithAPIURL(server.URL))

	if err := client.Send("alice@example.com", "s", "t", "h"); err != nil {
		t.Fatalf("expected retries to succeed, got %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}
