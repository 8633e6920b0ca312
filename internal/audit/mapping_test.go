package audit

import "testing"

func TestParseRoute(t *testing.T) {
	cases := []struct {
		method, route    string
		action, resource string
	}{
		{"GET", "/api/v1/users", "list", "user"},
		{"GET", "/api/v1/users/:id", "get", "user"},
		{"POST", "/api/v1/projects", "create", "project"},
		{"PUT", "/api/v1/projects/:id", "update", "project"},
		{"DELETE", "/api/v1/tasks/:id", "delete", "task"},
		{"POST", "/api/v1/projects/:id/members", "create", "member"},
		{"DELETE", "/api/v1/projects/:id/members/:userId", "delete", "member"},
		{"GET", "/api/v1/policies/workspace", "get", "policy"},
		{"PUT", "/api/v1/policies/workspace", "update", "policy"},
		{"POST", "/api/v1/auth/login", "create", "auth"},
	}
	for _, tc := range cases {
		got := ParseRoute(tc.method, tc.route)
		if got.Action != tc.action || got.Resource != tc.resource {
			t.Errorf("ParseRoute(%s %s) = %+v, want %s/%s", tc.method, tc.route, got, tc.action, tc.resource)
		}
	}
}

func TestParseRouteUnknown(t *testing.T) {
	got := ParseRoute("GET", "/api/v1")
	if got.Action != "unknown" || got.Resource != "unknown" {
		t.Fatalf("got %+v", got)
	}
}
