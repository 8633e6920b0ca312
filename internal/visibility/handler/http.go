// Package handler exposes the workspace visibility view over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	membershipdomain "github.com/OmarHalima/workforce-console/internal/membership/domain"
	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
	projectdomain "github.com/OmarHalima/workforce-console/internal/project/domain"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
	"github.com/OmarHalima/workforce-console/internal/visibility"
)

// UserLister is the minimal user repository needed by the workspace handler.
type UserLister interface {
	List(ctx context.Context) ([]*userdomain.User, error)
}

// ProjectLister is the minimal project repository needed by the workspace handler.
type ProjectLister interface {
	List(ctx context.Context) ([]*projectdomain.Project, error)
}

// Handler serves GET /workspace: the role-scoped view of users and projects.
type Handler struct {
	users    UserLister
	projects ProjectLister
}

// NewHandler returns a workspace handler over the given repositories.
func NewHandler(users UserLister, projects ProjectLister) *Handler {
	return &Handler{users: users, projects: projects}
}

// Register mounts the workspace route on the authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/workspace", h.GetWorkspace)
}

// User is the wire shape of a user in workspace responses.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

// Member is the wire shape of a project membership.
type Member struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Project is the wire shape of a project in workspace responses.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	OwnerID     string   `json:"ownerId"`
	ManagerID   string   `json:"managerId,omitempty"`
	Status      string   `json:"status"`
	StartDate   *string  `json:"startDate,omitempty"`
	EndDate     *string  `json:"endDate,omitempty"`
	Members     []Member `json:"members"`
}

// WorkspaceResponse is the GET /workspace body.
type WorkspaceResponse struct {
	Users      []User    `json:"users"`
	OtherUsers []User    `json:"otherUsers"`
	Projects   []Project `json:"projects"`
	CanManage  bool      `json:"canManage"`
}

// GetWorkspace resolves and returns the caller's visibility view.
func (h *Handler) GetWorkspace(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	allUsers, err := h.users.List(ctx)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load users")
		return
	}
	allProjects, err := h.projects.List(ctx)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load projects")
		return
	}
	res := visibility.Resolve(visibility.Actor{ID: userID, Role: role}, allUsers, allProjects)
	c.JSON(http.StatusOK, WorkspaceResponse{
		Users:      usersToWire(res.VisibleUsers),
		OtherUsers: usersToWire(res.OtherUsers),
		Projects:   projectsToWire(res.VisibleProjects),
		CanManage:  res.CanManage,
	})
}

func usersToWire(users []*userdomain.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, UserToWire(u))
	}
	return out
}

// UserToWire maps a domain user to its wire shape. Shared with the user handler.
func UserToWire(u *userdomain.User) User {
	return User{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		Status:     string(u.Status),
		Department: u.Department,
		Position:   u.Position,
	}
}

func projectsToWire(projects []*projectdomain.Project) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectToWire(p))
	}
	return out
}

// ProjectToWire maps a domain project to its wire shape. Shared with the
// project handler.
func ProjectToWire(p *projectdomain.Project) Project {
	return Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		ManagerID:   p.ManagerID,
		Status:      string(p.Status),
		StartDate:   dateToWire(p.StartDate),
		EndDate:     dateToWire(p.EndDate),
		Members:     membersToWire(p.Members),
	}
}

func membersToWire(members []membershipdomain.ProjectMembership) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		out = append(out, Member{UserID: m.UserID, Role: string(m.Role)})
	}
	return out
}

func dateToWire(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
