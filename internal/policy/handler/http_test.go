package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/policy/domain"
	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
)

type memPolicyRepo struct {
	mu       sync.Mutex
	policies map[string]*domain.ActionPolicy
}

func newMemPolicyRepo() *memPolicyRepo {
	return &memPolicyRepo{policies: map[string]*domain.ActionPolicy{}}
}

func (r *memPolicyRepo) GetByName(ctx context.Context, name string) (*domain.ActionPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.policies[name]; ok {
		p2 := *p
		return &p2, nil
	}
	return nil, nil
}

func (r *memPolicyRepo) Upsert(ctx context.Context, p *domain.ActionPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Name] = p
	return nil
}

func policyRouter(repo *memPolicyRepo, actorID, role string) *gin.Engine {
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
	NewHandler(repo, zap.NewNop()).Register(g)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetWorkspacePolicyDefault(t *testing.T) {
	r := policyRouter(newMemPolicyRepo(), "admin1", "admin")

	w := do(r, http.MethodGet, "/api/v1/policies/workspace", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["default"] != true {
		t.Fatalf("default = %v", body["default"])
	}
	if rego, _ := body["rego"].(string); !strings.Contains(rego, "workforce.actions") {
		t.Fatalf("rego = %q", rego)
	}
}

func TestPutWorkspacePolicy(t *testing.T) {
	repo := newMemPolicyRepo()
	r := policyRouter(repo, "admin1", "admin")

	valid := "package workforce.actions\n\ndefault allow = false\n"
	w := do(r, http.MethodPut, "/api/v1/policies/workspace", map[string]string{"rego": valid})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	stored, _ := repo.GetByName(context.Background(), domain.WorkspacePolicyName)
	if stored == nil || stored.UpdatedBy != "admin1" {
		t.Fatalf("stored = %+v", stored)
	}

	// Stored source is returned on subsequent reads.
	w = do(r, http.MethodGet, "/api/v1/policies/workspace", nil)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["default"] == true {
		t.Fatal("stored policy reported as default")
	}

	// Broken Rego is rejected before storage.
	w = do(r, http.MethodPut, "/api/v1/policies/workspace", map[string]string{"rego": "this is not rego"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("broken rego: status = %d", w.Code)
	}
}

func TestWorkspacePolicyAdminOnly(t *testing.T) {
	repo := newMemPolicyRepo()

	if w := do(policyRouter(repo, "pm1", "project_manager"), http.MethodGet, "/api/v1/policies/workspace", nil); w.Code != http.StatusForbidden {
		t.Fatalf("manager get: status = %d", w.Code)
	}
	if w := do(policyRouter(repo, "", ""), http.MethodGet, "/api/v1/policies/workspace", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous get: status = %d", w.Code)
	}
}
