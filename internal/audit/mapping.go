package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Membership route templates: audited as member_invited, invite_answered,
// role_changed, ownership_transferred, member_removed on resource "member".
const (
	routeInviteMember  = "/v1/workspaces/{id}/members"
	routeRespondInvite = "/v1/workspaces/{id}/members/respond"
	routeModifyRole    = "/v1/workspaces/{id}/members/{user}/role"
	routeAbdicate      = "/v1/workspaces/{id}/owner"
	routeRemoveMember  = "/v1/workspaces/{id}/members/{user}"
)

// ParseRoute returns action and resource for an HTTP method and mux route
// template (e.g. GET /v1/workspaces/{id}). Action is a verb derived from the
// method; resource is the last static path segment, singularized.
func ParseRoute(method, routeTemplate string) ActionResource {
	switch method + " " + routeTemplate {
	case http.MethodPost + " " + routeInviteMember:
		return ActionResource{Action: "member_invited", Resource: "member"}
	case http.MethodPost + " " + routeRespondInvite:
		return ActionResource{Action: "invite_answered", Resource: "member"}
	case http.MethodPut + " " + routeModifyRole:
		return ActionResource{Action: "role_changed", Resource: "member"}
	case http.MethodPost + " " + routeAbdicate:
		return ActionResource{Action: "ownership_transferred", Resource: "member"}
	case http.MethodDelete + " " + routeRemoveMember:
		return ActionResource{Action: "member_removed", Resource: "member"}
	}
	return ActionResource{Action: methodToAction(method), Resource: routeResource(routeTemplate)}
}

func routeResource(routeTemplate string) string {
	// /v1/workspaces/{id}/members -> member
	segments := strings.Split(strings.Trim(routeTemplate, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s == "" || strings.HasPrefix(s, "{") || s == "v1" {
			continue
		}
		return strings.TrimSuffix(s, "s")
	}
	return "unknown"
}

func methodToAction(method string) string {
	switch method {
	case http.MethodGet:
		return "get"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
