package clustersync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workspace-console/backend/internal/membership/domain"
)

func TestSync_PutDesiredRole(t *testing.T) {
	var gotMethod, gotPath, gotRole string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		var body struct {
			Role string `json:"role"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotRole = body.Role
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	role := domain.RoleManager
	if err := c.Sync(context.Background(), "ws-1", "u-1", &role); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if gotPath != "/v1/workspaces/ws-1/bindings/u-1" {
		t.Errorf("path = %s", gotPath)
	}
	if gotRole != "MANAGER" {
		t.Errorf("role = %q, want MANAGER", gotRole)
	}
}

func TestSync_DeleteBinding(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.Sync(context.Background(), "ws-1", "u-1", nil); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", gotMethod)
	}
}

func TestSync_DeleteMissingBindingConverges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.Sync(context.Background(), "ws-1", "u-1", nil); err != nil {
		t.Errorf("removing an absent binding should converge, got %v", err)
	}
}

func TestSync_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "etcd unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	role := domain.RoleOwner
	err := c.Sync(context.Background(), "ws-1", "u-1", &role)
	var transient *TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("Sync = %v, want TransientError", err)
	}
}

func TestSync_ClientErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "role not allowed", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	role := domain.RoleDeveloper
	err := c.Sync(context.Background(), "ws-1", "u-1", &role)
	var permanent *PermanentError
	if !errors.As(err, &permanent) {
		t.Fatalf("Sync = %v, want PermanentError", err)
	}
}

func TestSync_ConnectionFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, time.Second)
	role := domain.RoleDeveloper
	err := c.Sync(context.Background(), "ws-1", "u-1", &role)
	var transient *TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("Sync = %v, want TransientError", err)
	}
}
