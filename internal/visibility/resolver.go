// Package visibility computes which users and projects an actor may see, and
// whether role-specific management actions are enabled for them. Resolve is a
// pure function over an already-fetched snapshot: it never mutates its inputs,
// performs no I/O, and is safe to call concurrently.
package visibility

import (
	projectdomain "github.com/OmarHalima/workforce-console/internal/project/domain"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
)

// Actor is the authenticated caller whose visibility is being resolved.
// A zero ID means the session is not resolved yet; Resolve then returns
// empty sets so the UI can render its loading state.
type Actor struct {
	ID   string
	Role userdomain.Role
}

// Resolution is the derived, read-only visibility view for one actor.
// Slices are always non-nil and preserve the input ordering; callers apply
// their own sorting on top.
type Resolution struct {
	// VisibleUsers are the users the actor may see: everyone for admins,
	// teammates across the visible projects (plus the actor) otherwise.
	VisibleUsers []*userdomain.User
	// OtherUsers is populated only for project managers: users outside the
	// actor's teams who are not admins. Admins never appear here.
	OtherUsers []*userdomain.User
	// VisibleProjects are the projects the actor may see.
	VisibleProjects []*projectdomain.Project
	// CanManage enables mutation affordances (new/edit/delete) in the UI.
	// Admins manage everything; project managers manage their own projects
	// and non-admin users; employees are read-only.
	CanManage bool
}

// Resolve computes the visibility view for actor over the given snapshot.
// allUsers and allProjects may be nil; memberships inside projects are
// expected to be non-nil but a nil slice is tolerated.
func Resolve(actor Actor, allUsers []*userdomain.User, allProjects []*projectdomain.Project) Resolution {
	res := Resolution{
		VisibleUsers:    []*userdomain.User{},
		OtherUsers:      []*userdomain.User{},
		VisibleProjects: []*projectdomain.Project{},
	}
	if actor.ID == "" {
		return res
	}

	switch actor.Role {
	case userdomain.RoleAdmin:
		res.VisibleUsers = append(res.VisibleUsers, allUsers...)
		res.VisibleProjects = append(res.VisibleProjects, allProjects...)
		res.CanManage = true
		return res

	case userdomain.RoleProjectManager:
		team := map[string]struct{}{}
		for _, p := range allProjects {
			if !p.AssociatedWith(actor.ID) {
				continue
			}
			res.VisibleProjects = append(res.VisibleProjects, p)
			collectAssociated(team, p)
		}
		// The actor is always part of their own visible set, even with no
		// projects yet.
		team[actor.ID] = struct{}{}
		for _, u := range allUsers {
			if _, ok := team[u.ID]; ok {
				res.VisibleUsers = append(res.VisibleUsers, u)
				continue
			}
			if u.Role != userdomain.RoleAdmin {
				res.OtherUsers = append(res.OtherUsers, u)
			}
		}
		res.CanManage = true
		return res

	case userdomain.RoleEmployee:
		team := map[string]struct{}{}
		for _, p := range allProjects {
			if !p.AssociatedWith(actor.ID) {
				continue
			}
			res.VisibleProjects = append(res.VisibleProjects, p)
			collectAssociated(team, p)
		}
		for _, u := range allUsers {
			if _, ok := team[u.ID]; ok {
				res.VisibleUsers = append(res.VisibleUsers, u)
			}
		}
		return res

	default:
		// Unknown role: treat like an unresolved session rather than leaking
		// anything.
		return res
	}
}

// collectAssociated adds the project's owner, manager, and member user ids to
// the set. Deduplication falls out of the set: a user counted via ownership
// and membership appears once.
func collectAssociated(set map[string]struct{}, p *projectdomain.Project) {
	if p.OwnerID != "" {
		set[p.OwnerID] = struct{}{}
	}
	if p.ManagerID != "" {
		set[p.ManagerID] = struct{}{}
	}
	for _, m := range p.Members {
		set[m.UserID] = struct{}{}
	}
}
