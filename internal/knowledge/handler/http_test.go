package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/knowledge/domain"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
)

type memArticleRepo struct {
	mu       sync.Mutex
	articles []*domain.Article
}

func (r *memArticleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.articles {
		if a.ID == id {
			a2 := *a
			return &a2, nil
		}
	}
	return nil, nil
}

func (r *memArticleRepo) List(ctx context.Context) ([]*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Article{}, r.articles...), nil
}

func (r *memArticleRepo) ListByCategory(ctx context.Context, category string) ([]*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Article{}
	for _, a := range r.articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memArticleRepo) Create(ctx context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles = append(r.articles, a)
	return nil
}

func (r *memArticleRepo) Update(ctx context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.articles {
		if existing.ID == a.ID {
			r.articles[i] = a
		}
	}
	return nil
}

func (r *memArticleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.articles[:0]
	for _, a := range r.articles {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	r.articles = kept
	return nil
}

func seedArticles() *memArticleRepo {
	return &memArticleRepo{articles: []*domain.Article{
		{ID: "a1", Title: "Onboarding", Category: "hr", AuthorID: "u1", Status: domain.ArticleStatusPublished},
		{ID: "a2", Title: "Draft notes", Category: "eng", AuthorID: "u1", Status: domain.ArticleStatusDraft},
		{ID: "a3", Title: "Other draft", Category: "eng", AuthorID: "u2", Status: domain.ArticleStatusDraft},
	}}
}

func kbRouter(articles *memArticleRepo, actorID, role string) *gin.Engine {
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
	NewHandler(articles, engine.NewOPAEvaluator(nil, zap.NewNop()), nil, zap.NewNop()).Register(g)
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

func listIDs(w *httptest.ResponseRecorder) []string {
	var list []map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	out := []string{}
	for _, item := range list {
		out = append(out, item["id"].(string))
	}
	return out
}

func TestListArticlesVisibility(t *testing.T) {
	articles := seedArticles()

	// u1 sees published plus their own draft.
	ids := listIDs(do(kbRouter(articles, "u1", "employee"), http.MethodGet, "/api/v1/knowledge", nil))
	if len(ids) != 2 || ids[0] != "a1" || ids[1] != "a2" {
		t.Fatalf("u1 sees %v", ids)
	}

	// Managers see every draft.
	ids = listIDs(do(kbRouter(articles, "pm1", "project_manager"), http.MethodGet, "/api/v1/knowledge", nil))
	if len(ids) != 3 {
		t.Fatalf("manager sees %v", ids)
	}

	// Category filter still applies visibility.
	ids = listIDs(do(kbRouter(articles, "u1", "employee"), http.MethodGet, "/api/v1/knowledge?category=eng", nil))
	if len(ids) != 1 || ids[0] != "a2" {
		t.Fatalf("u1 eng sees %v", ids)
	}
}

func TestGetArticleHidesForeignDrafts(t *testing.T) {
	r := kbRouter(seedArticles(), "u1", "employee")

	if w := do(r, http.MethodGet, "/api/v1/knowledge/a1", nil); w.Code != http.StatusOK {
		t.Fatalf("published: status = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/knowledge/a2", nil); w.Code != http.StatusOK {
		t.Fatalf("own draft: status = %d", w.Code)
	}
	// a3 is someone else's draft: hidden, indistinguishable from absent.
	if w := do(r, http.MethodGet, "/api/v1/knowledge/a3", nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign draft: status = %d", w.Code)
	}
}

func TestCreateArticleDefaultsToDraft(t *testing.T) {
	articles := seedArticles()
	r := kbRouter(articles, "u2", "employee")

	w := do(r, http.MethodPost, "/api/v1/knowledge", map[string]string{"title": "New", "category": "eng"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var created map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created["status"] != "draft" || created["authorId"] != "u2" {
		t.Fatalf("created = %v", created)
	}
}

func TestUpdateArticleAuthorOnly(t *testing.T) {
	articles := seedArticles()

	// The author publishes their draft.
	w := do(kbRouter(articles, "u1", "employee"), http.MethodPut, "/api/v1/knowledge/a2",
		map[string]string{"status": "published"})
	if w.Code != http.StatusOK {
		t.Fatalf("author publish: status = %d, body = %s", w.Code, w.Body.String())
	}
	a, _ := articles.GetByID(context.Background(), "a2")
	if a.Status != domain.ArticleStatusPublished {
		t.Fatalf("status = %q", a.Status)
	}

	// A manager who is not the author may see it but not edit it.
	w = do(kbRouter(articles, "pm1", "project_manager"), http.MethodPut, "/api/v1/knowledge/a3",
		map[string]string{"title": "Hijack"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("manager edit: status = %d", w.Code)
	}

	// Admins may edit anything.
	w = do(kbRouter(articles, "admin1", "admin"), http.MethodPut, "/api/v1/knowledge/a3",
		map[string]string{"title": "Moderated"})
	if w.Code != http.StatusOK {
		t.Fatalf("admin edit: status = %d", w.Code)
	}
}

func TestDeleteArticle(t *testing.T) {
	articles := seedArticles()

	w := do(kbRouter(articles, "u2", "employee"), http.MethodDelete, "/api/v1/knowledge/a1", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-author delete: status = %d", w.Code)
	}

	w = do(kbRouter(articles, "u1", "employee"), http.MethodDelete, "/api/v1/knowledge/a1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("author delete: status = %d", w.Code)
	}
	if a, _ := articles.GetByID(context.Background(), "a1"); a != nil {
		t.Fatal("article still present after delete")
	}
}
