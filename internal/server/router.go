// Package server assembles the console's HTTP API: the gin engine, the
// middleware chain, and every feature handler under /api/v1.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/activity"
	assisthandler "github.com/OmarHalima/workforce-console/internal/assist/handler"
	"github.com/OmarHalima/workforce-console/internal/audit"
	audithandler "github.com/OmarHalima/workforce-console/internal/audit/handler"
	auditrepo "github.com/OmarHalima/workforce-console/internal/audit/repository"
	identityhandler "github.com/OmarHalima/workforce-console/internal/identity/handler"
	knowledgehandler "github.com/OmarHalima/workforce-console/internal/knowledge/handler"
	knowledgerepo "github.com/OmarHalima/workforce-console/internal/knowledge/repository"
	membershiprepo "github.com/OmarHalima/workforce-console/internal/membership/repository"
	phasehandler "github.com/OmarHalima/workforce-console/internal/phase/handler"
	phaserepo "github.com/OmarHalima/workforce-console/internal/phase/repository"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	policyhandler "github.com/OmarHalima/workforce-console/internal/policy/handler"
	policyrepo "github.com/OmarHalima/workforce-console/internal/policy/repository"
	projecthandler "github.com/OmarHalima/workforce-console/internal/project/handler"
	projectrepo "github.com/OmarHalima/workforce-console/internal/project/repository"
	"github.com/OmarHalima/workforce-console/internal/security"
	"github.com/OmarHalima/workforce-console/internal/server/middleware"
	taskhandler "github.com/OmarHalima/workforce-console/internal/task/handler"
	taskrepo "github.com/OmarHalima/workforce-console/internal/task/repository"
	userhandler "github.com/OmarHalima/workforce-console/internal/user/handler"
	userrepo "github.com/OmarHalima/workforce-console/internal/user/repository"
	visibilityhandler "github.com/OmarHalima/workforce-console/internal/visibility/handler"
)

// Deps is everything the router needs. DB and Events may be nil (health
// reports degraded, activity emits become no-ops).
type Deps struct {
	Log     *zap.Logger
	DB      *sql.DB
	Tokens  *security.TokenProvider
	Policy  engine.Evaluator
	Auditor audit.AuditLogger
	Events  activity.EventEmitter

	AuthService   identityhandler.AuthService
	AssistService assisthandler.AssistService

	Users       userrepo.Repository
	Projects    projectrepo.Repository
	Memberships membershiprepo.Repository
	Tasks       taskrepo.Repository
	Phases      phaserepo.Repository
	Articles    knowledgerepo.Repository
	Policies    policyrepo.Repository
	AuditLogs   auditrepo.Repository
}

// NewRouter builds the gin engine with the full middleware chain and all
// routes mounted.
func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.WithClientIP())
	r.Use(middleware.Observe(log))

	r.GET("/health", healthHandler(d))

	// Public auth routes.
	public := r.Group("/api/v1")
	identityhandler.NewHandler(d.AuthService, d.Tokens, d.Auditor, d.Events, log).Register(public)

	// Authenticated console routes.
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(d.Tokens))
	api.Use(middleware.AuditMutations(d.Auditor))

	visibilityhandler.NewHandler(d.Users, d.Projects).Register(api)
	userhandler.NewHandler(d.Users, d.Projects).Register(api)
	projecthandler.NewHandler(d.Projects, d.Memberships, d.Users, d.Policy, d.Events, log).Register(api)
	taskhandler.NewHandler(d.Tasks, d.Projects, d.Policy, d.Events, log).Register(api)
	phasehandler.NewHandler(d.Phases, d.Projects, d.Policy, log).Register(api)
	knowledgehandler.NewHandler(d.Articles, d.Policy, d.Events, log).Register(api)
	policyhandler.NewHandler(d.Policies, log).Register(api)
	audithandler.NewHandler(d.AuditLogs).Register(api)
	assisthandler.NewHandler(d.AssistService, log).Register(api)

	return r
}

// healthHandler pings the database and checks that the policy engine can
// evaluate its default policy.
func healthHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{}

		if d.DB != nil {
			if err := d.DB.PingContext(ctx); err != nil {
				checks["database"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				checks["database"] = "ok"
			}
		} else {
			checks["database"] = "not configured"
			status = http.StatusServiceUnavailable
		}

		if d.Policy != nil {
			if err := d.Policy.HealthCheck(ctx); err != nil {
				checks["policy"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				checks["policy"] = "ok"
			}
		}

		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}
