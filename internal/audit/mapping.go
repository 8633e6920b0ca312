package audit

import "strings"

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// ParseRoute returns action and resource for an HTTP method and route
// template (e.g. PUT /api/v1/projects/:id -> update/project). Resource is the
// first path segment after the API prefix, singularized; membership routes are
// audited on resource "member".
func ParseRoute(method, route string) ActionResource {
	path := strings.TrimPrefix(route, "/api/v1")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	segments := strings.Split(path, "/")
	resource := singularize(segments[0])
	// Nested membership routes: /projects/:id/members[...]
	if len(segments) >= 3 && segments[2] == "members" {
		resource = "member"
	}
	return ActionResource{Action: methodToAction(method, segments), Resource: resource}
}

func singularize(s string) string {
	s = strings.ToLower(s)
	switch s {
	case "policies":
		return "policy"
	}
	return strings.TrimSuffix(s, "s")
}

func methodToAction(method string, segments []string) string {
	hasID := strings.Contains(segments[len(segments)-1], ":") || len(segments) > 1
	switch method {
	case "GET":
		if hasID {
			return "get"
		}
		return "list"
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
