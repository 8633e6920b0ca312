package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/assist"
	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
	"github.com/OmarHalima/workforce-console/internal/visibility"
)

type stubAssist struct {
	available bool
	answer    string
	err       error
}

func (s *stubAssist) Available() bool { return s.available }

func (s *stubAssist) Chat(ctx context.Context, actor visibility.Actor, message string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubAssist) EnhanceTask(ctx context.Context, title, description string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func assistRouter(svc AssistService, actorID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	identity := func(c *gin.Context) {
		if actorID != "" {
			ctx := httpctx.WithIdentity(c.Request.Context(), actorID, role, "sess-1")
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
	g := r.Group("/api/v1", identity)
	NewHandler(svc, zap.NewNop()).Register(g)
	return r
}

func post(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	svc := &stubAssist{available: true, answer: "work on Alpha"}
	r := assistRouter(svc, "u1", "employee")

	w := post(r, "/api/v1/assist/chat", map[string]string{"message": "what next?"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["answer"] != "work on Alpha" {
		t.Fatalf("body = %v", body)
	}

	if w := post(r, "/api/v1/assist/chat", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing message: status = %d", w.Code)
	}
}

func TestEnhanceTaskEndpoint(t *testing.T) {
	svc := &stubAssist{available: true, answer: "a fuller description"}
	r := assistRouter(svc, "u1", "employee")

	w := post(r, "/api/v1/assist/enhance-task", map[string]string{"title": "Fix login"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["description"] != "a fuller description" {
		t.Fatalf("body = %v", body)
	}
}

func TestAssistUnavailable(t *testing.T) {
	svc := &stubAssist{err: assist.ErrUnavailable}
	r := assistRouter(svc, "u1", "employee")

	if w := post(r, "/api/v1/assist/chat", map[string]string{"message": "hi"}); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAssistTransientFailure(t *testing.T) {
	svc := &stubAssist{available: true, err: errors.New("model timeout")}
	r := assistRouter(svc, "u1", "employee")

	if w := post(r, "/api/v1/assist/chat", map[string]string{"message": "hi"}); w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAssistRequiresAuth(t *testing.T) {
	svc := &stubAssist{available: true}
	r := assistRouter(svc, "", "")

	if w := post(r, "/api/v1/assist/chat", map[string]string{"message": "hi"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}
