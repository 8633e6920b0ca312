package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func captureServer(t *testing.T, status int) (*httptest.Server, *PushRequest) {
	t.Helper()
	captured := &PushRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, captured)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestPushEvent(t *testing.T) {
	srv, captured := captureServer(t, http.StatusNoContent)

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := PushEvent(context.Background(), srv.URL, ts, `{"hello":"world"}`, map[string]string{
		"event_type": "login",
		"user_id":    "user 1",
	})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(captured.Streams) != 1 {
		t.Fatalf("streams = %d", len(captured.Streams))
	}
	s := captured.Streams[0]
	if s.Stream["job"] != "workforce-console" {
		t.Fatalf("job label = %q", s.Stream["job"])
	}
	if s.Stream["user_id"] != "user_1" {
		t.Fatalf("user_id label should be sanitized, got %q", s.Stream["user_id"])
	}
	if len(s.Values) != 1 || s.Values[0][1] != `{"hello":"world"}` {
		t.Fatalf("values = %+v", s.Values)
	}
}

func TestPushEventJSONExtractsLabels(t *testing.T) {
	srv, captured := captureServer(t, http.StatusNoContent)

	raw := []byte(`{"id":"e1","userId":"u1","eventType":"task.update","source":"api","createdAt":"2025-03-01T12:00:00Z"}`)
	if err := PushEventJSON(context.Background(), srv.URL, raw); err != nil {
		t.Fatalf("push: %v", err)
	}
	s := captured.Streams[0]
	if s.Stream["event_type"] != "task.update" || s.Stream["user_id"] != "u1" || s.Stream["source"] != "api" {
		t.Fatalf("labels = %+v", s.Stream)
	}
	if s.Values[0][0] != "1740830400000000000" {
		t.Fatalf("timestamp ns = %s", s.Values[0][0])
	}
}

func TestPushEventJSONUnparseable(t *testing.T) {
	srv, captured := captureServer(t, http.StatusNoContent)
	if err := PushEventJSON(context.Background(), srv.URL, []byte("not json")); err != nil {
		t.Fatalf("push: %v", err)
	}
	if captured.Streams[0].Values[0][1] != "not json" {
		t.Fatal("raw line should be pushed as-is")
	}
}

func TestPushEventErrors(t *testing.T) {
	if err := PushEvent(context.Background(), "", time.Now(), "line", nil); err == nil {
		t.Fatal("empty base URL should error")
	}
	srv, _ := captureServer(t, http.StatusInternalServerError)
	if err := PushEvent(context.Background(), srv.URL, time.Now(), "line", nil); err == nil {
		t.Fatal("non-2xx should error")
	}
}
