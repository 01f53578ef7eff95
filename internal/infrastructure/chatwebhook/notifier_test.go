package chatwebhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPublishDigestPostsTextMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request: %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		var msg textMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if msg.MsgType != "text" || msg.Content.Text != "3 new items" {
			t.Errorf("unexpected message: %+v", msg)
		}
		_, _ = w.Write([]byte(`{"code":0,"msg":"success"}`))
	}))
	defer server.Close()

	n := NewNotifier(server.URL, server.Client())
	if err := n.PublishDigest(context.Background(), "3 new items"); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":19021,"msg":"sign match fail"}`))
	}))
	defer rejecting.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	if err := NewNotifier(rejecting.URL, rejecting.Client()).PublishDigest(context.Background(), "digest"); err == nil {
		t.Fatalf("expected error for non-zero code")
	}
	if err := NewNotifier(failing.URL, failing.Client()).PublishDigest(context.Background(), "digest"); err == nil {
		t.Fatalf("expected error for bad status")
	}
	if err := NewNotifier("", nil).PublishDigest(context.Background(), "digest"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}

func TestPublishDigestSkipsEmpty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("empty digest must not be sent")
	}))
	defer server.Close()

	if err := NewNotifier(server.URL, server.Client()).PublishDigest(context.Background(), "  "); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
}
