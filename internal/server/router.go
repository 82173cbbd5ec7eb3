package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"workspace-console/backend/internal/audit"
	"workspace-console/backend/internal/server/middleware"
)

// NewRouter wires the API routes with identity and audit middleware. The
// health endpoint is registered outside the identity check so probes do not
// need caller headers.
func NewRouter(h *Handler, auditLogger audit.AuditLogger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(middleware.Identity)
	api.Use(middleware.Audit(auditLogger))

	api.HandleFunc("/workspaces", h.createWorkspace).Methods(http.MethodPost)
	api.HandleFunc("/workspaces/{id}", h.getWorkspace).Methods(http.MethodGet)
	api.HandleFunc("/workspaces/{id}", h.deleteWorkspace).Methods(http.MethodDelete)
	api.HandleFunc("/workspaces/{id}/members", h.listMembers).Methods(http.MethodGet)
	api.HandleFunc("/workspaces/{id}/members", h.inviteMember).Methods(http.MethodPost)
	api.HandleFunc("/workspaces/{id}/members/respond", h.respondToInvite).Methods(http.MethodPost)
	api.HandleFunc("/workspaces/{id}/members/{user}/role", h.modifyRole).Methods(http.MethodPut)
	api.HandleFunc("/workspaces/{id}/members/{user}", h.removeMember).Methods(http.MethodDelete)
	api.HandleFunc("/workspaces/{id}/owner", h.abdicate).Methods(http.MethodPost)
	api.HandleFunc("/users/me/workspaces", h.listOwnWorkspaces).Methods(http.MethodGet)

	return otelhttp.NewHandler(r, "workspace-console.http")
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
