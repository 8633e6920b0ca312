// seed inserts development sample data for local testing.
// Idempotent: exits early when the dev admin (admin@example.com) exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/OmarHalima/workforce-console/internal/config"
	"github.com/OmarHalima/workforce-console/internal/db"
	identitydomain "github.com/OmarHalima/workforce-console/internal/identity/domain"
	identityrepo "github.com/OmarHalima/workforce-console/internal/identity/repository"
	knowledgedomain "github.com/OmarHalima/workforce-console/internal/knowledge/domain"
	knowledgerepo "github.com/OmarHalima/workforce-console/internal/knowledge/repository"
	membershipdomain "github.com/OmarHalima/workforce-console/internal/membership/domain"
	membershiprepo "github.com/OmarHalima/workforce-console/internal/membership/repository"
	phasedomain "github.com/OmarHalima/workforce-console/internal/phase/domain"
	phaserepo "github.com/OmarHalima/workforce-console/internal/phase/repository"
	policydomain "github.com/OmarHalima/workforce-console/internal/policy/domain"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	policyrepo "github.com/OmarHalima/workforce-console/internal/policy/repository"
	projectdomain "github.com/OmarHalima/workforce-console/internal/project/domain"
	projectrepo "github.com/OmarHalima/workforce-console/internal/project/repository"
	"github.com/OmarHalima/workforce-console/internal/security"
	taskdomain "github.com/OmarHalima/workforce-console/internal/task/domain"
	taskrepo "github.com/OmarHalima/workforce-console/internal/task/repository"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
	userrepo "github.com/OmarHalima/workforce-console/internal/user/repository"
)

const devPassword = "Dev-Passw0rd-2026!"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
		os.Exit(1)
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)
	identities := identityrepo.NewPostgresRepository(database)
	projects := projectrepo.NewPostgresRepository(database)
	memberships := membershiprepo.NewPostgresRepository(database)
	tasks := taskrepo.NewPostgresRepository(database)
	phases := phaserepo.NewPostgresRepository(database)
	articles := knowledgerepo.NewPostgresRepository(database)
	policies := policyrepo.NewPostgresRepository(database)

	existing, err := users.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		log.Fatalf("check admin: %v", err)
	}
	if existing != nil {
		log.Println("seed: dev data already present, nothing to do")
		return
	}

	now := time.Now().UTC()
	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	mkUser := func(email, name string, role userdomain.Role, department, position string) *userdomain.User {
		u := &userdomain.User{
			ID:         uuid.New().String(),
			Email:      email,
			Name:       name,
			Role:       role,
			Status:     userdomain.UserStatusActive,
			Department: department,
			Position:   position,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create user %s: %v", email, err)
		}
		err := identities.Create(ctx, &identitydomain.Identity{
			ID:           uuid.New().String(),
			UserID:       u.ID,
			Provider:     identitydomain.IdentityProviderLocal,
			ProviderID:   email,
			PasswordHash: hash,
			CreatedAt:    now,
		})
		if err != nil {
			log.Fatalf("create identity %s: %v", email, err)
		}
		return u
	}

	admin := mkUser("admin@example.com", "Ada Admin", userdomain.RoleAdmin, "Operations", "Administrator")
	pm := mkUser("pm@example.com", "Pat Manager", userdomain.RoleProjectManager, "Engineering", "Project Manager")
	emp1 := mkUser("emp1@example.com", "Erin Employee", userdomain.RoleEmployee, "Engineering", "Developer")
	emp2 := mkUser("emp2@example.com", "Evan Employee", userdomain.RoleEmployee, "Design", "Designer")

	start := now.AddDate(0, 0, -14)
	end := now.AddDate(0, 1, 0)
	project := &projectdomain.Project{
		ID:          uuid.New().String(),
		Name:        "Console Revamp",
		Description: "Rebuild the internal workforce console.",
		OwnerID:     pm.ID,
		ManagerID:   pm.ID,
		Status:      projectdomain.ProjectStatusActive,
		StartDate:   &start,
		EndDate:     &end,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := projects.Create(ctx, project); err != nil {
		log.Fatalf("create project: %v", err)
	}
	for _, member := range []*userdomain.User{emp1, emp2} {
		err := memberships.Create(ctx, &membershipdomain.ProjectMembership{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			UserID:    member.ID,
			Role:      membershipdomain.RoleMember,
			CreatedAt: now,
		})
		if err != nil {
			log.Fatalf("create membership: %v", err)
		}
	}

	for i, name := range []string{"Discovery", "Build", "Rollout"} {
		err := phases.Create(ctx, &phasedomain.ProjectPhase{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			Name:      name,
			Sequence:  i + 1,
			Status:    phasedomain.PhaseStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			log.Fatalf("create phase %s: %v", name, err)
		}
	}

	due := now.AddDate(0, 0, 7)
	seedTasks := []*taskdomain.Task{
		{Title: "Audit current console endpoints", AssigneeID: emp1.ID, Status: taskdomain.TaskStatusInProgress, Priority: taskdomain.TaskPriorityHigh, DueDate: &due},
		{Title: "Draft new navigation", AssigneeID: emp2.ID, Status: taskdomain.TaskStatusTodo, Priority: taskdomain.TaskPriorityMedium},
		{Title: "Set up staging environment", Status: taskdomain.TaskStatusTodo, Priority: taskdomain.TaskPriorityLow},
	}
	for _, t := range seedTasks {
		t.ID = uuid.New().String()
		t.ProjectID = project.ID
		t.CreatedBy = pm.ID
		t.CreatedAt = now
		t.UpdatedAt = now
		if err := tasks.Create(ctx, t); err != nil {
			log.Fatalf("create task %s: %v", t.Title, err)
		}
	}

	err = articles.Create(ctx, &knowledgedomain.Article{
		ID:        uuid.New().String(),
		Title:     "Onboarding checklist",
		Content:   "Accounts, access, and first-week expectations.",
		Category:  "hr",
		AuthorID:  admin.ID,
		Status:    knowledgedomain.ArticleStatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		log.Fatalf("create article: %v", err)
	}

	err = policies.Upsert(ctx, &policydomain.ActionPolicy{
		ID:        uuid.New().String(),
		Name:      policydomain.WorkspacePolicyName,
		Rego:      engine.DefaultRego(),
		UpdatedBy: admin.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		log.Fatalf("seed workspace policy: %v", err)
	}

	log.Printf("seed: created admin/pm/employee users (password %q), project %q with phases and tasks", devPassword, project.Name)
}
