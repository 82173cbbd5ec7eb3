package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"workspace-console/backend/internal/audit"
)

// Audit returns middleware that records an audit log entry after each
// mutating request from an authenticated caller. Writes are best-effort; a
// failed audit write never fails the request.
func Audit(logger audit.AuditLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if logger == nil || !mutating(r.Method) {
				return
			}
			userID, _ := GetUserID(r.Context())
			if userID == "" {
				return
			}
			template := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if t, err := route.GetPathTemplate(); err == nil {
					template = t
				}
			}
			ar := audit.ParseRoute(r.Method, template)
			workspaceID := mux.Vars(r)["id"]
			logger.LogEvent(r.Context(), workspaceID, userID, ar.Action, ar.Resource, "")
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
