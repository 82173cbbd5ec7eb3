package audit

import (
	"net/http"
	"testing"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		route        string
		wantAction   string
		wantResource string
	}{
		{"create workspace", http.MethodPost, "/v1/workspaces", "create", "workspace"},
		{"get workspace", http.MethodGet, "/v1/workspaces/{id}", "get", "workspace"},
		{"delete workspace", http.MethodDelete, "/v1/workspaces/{id}", "delete", "workspace"},
		{"list members", http.MethodGet, "/v1/workspaces/{id}/members", "get", "member"},
		{"invite member", http.MethodPost, "/v1/workspaces/{id}/members", "member_invited", "member"},
		{"respond to invite", http.MethodPost, "/v1/workspaces/{id}/members/respond", "invite_answered", "member"},
		{"modify role", http.MethodPut, "/v1/workspaces/{id}/members/{user}/role", "role_changed", "member"},
		{"abdicate", http.MethodPost, "/v1/workspaces/{id}/owner", "ownership_transferred", "member"},
		{"remove member", http.MethodDelete, "/v1/workspaces/{id}/members/{user}", "member_removed", "member"},
		{"list own workspaces", http.MethodGet, "/v1/users/me/workspaces", "get", "workspace"},
		{"unknown route", http.MethodGet, "/", "get", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRoute(tt.method, tt.route)
			if got.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", got.Action, tt.wantAction)
			}
			if got.Resource != tt.wantResource {
				t.Errorf("resource = %q, want %q", got.Resource, tt.wantResource)
			}
		})
	}
}
