// Package server exposes the membership operations over HTTP. Success
// responses use a {code, data} envelope; failures use {error: {code,
// message}} with the status derived from the error taxonomy.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"workspace-console/backend/internal/apperr"
	memberdomain "workspace-console/backend/internal/membership/domain"
	"workspace-console/backend/internal/server/middleware"
	"workspace-console/backend/internal/workspace/domain"
)

// MembershipService is the operation surface the handlers call.
type MembershipService interface {
	CreateWorkspace(ctx context.Context, creator, displayName string, isPrivate bool) (*domain.Workspace, error)
	DeleteWorkspace(ctx context.Context, actor, workspaceID string) error
	GetWorkspace(ctx context.Context, actor, workspaceID string) (*domain.Workspace, error)
	ListMembers(ctx context.Context, actor, workspaceID string) ([]*memberdomain.Membership, error)
	ListWorkspacesForUser(ctx context.Context, userID string) ([]*memberdomain.Membership, error)
	InviteMember(ctx context.Context, actor, workspaceID, target string, role memberdomain.Role) error
	RespondToInvite(ctx context.Context, target, workspaceID string, accept bool) error
	ModifyRole(ctx context.Context, actor, workspaceID, target string, newRole memberdomain.Role) error
	Abdicate(ctx context.Context, owner, workspaceID, target string) error
	RemoveMember(ctx context.Context, actor, workspaceID, target string) error
}

// Handler serves the workspace membership API.
type Handler struct {
	svc MembershipService
}

// NewHandler returns a Handler over the given service.
func NewHandler(svc MembershipService) *Handler {
	return &Handler{svc: svc}
}

type workspaceDTO struct {
	UID         string    `json:"uid"`
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	CreatedBy   string    `json:"createdBy"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatedAt   time.Time `json:"createdAt"`
}

type membershipDTO struct {
	WorkspaceID string    `json:"workspaceId"`
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	JoinedAt    time.Time `json:"joinedAt"`
}

func toWorkspaceDTO(w *domain.Workspace) workspaceDTO {
	return workspaceDTO{
		UID:         w.UID,
		ID:          w.ID,
		DisplayName: w.DisplayName,
		CreatedBy:   w.CreatedBy,
		IsPrivate:   w.IsPrivate,
		CreatedAt:   w.CreatedAt,
	}
}

func toMembershipDTOs(list []*memberdomain.Membership) []membershipDTO {
	out := make([]membershipDTO, 0, len(list))
	for _, m := range list {
		out = append(out, membershipDTO{
			WorkspaceID: m.WorkspaceID,
			UserID:      m.UserID,
			Role:        string(m.Role),
			Status:      string(m.Status),
			JoinedAt:    m.JoinedAt,
		})
	}
	return out
}

func (h *Handler) createWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	var req struct {
		DisplayName string `json:"displayName"`
		IsPrivate   bool   `json:"isPrivate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	ws, err := h.svc.CreateWorkspace(r.Context(), userID, req.DisplayName, req.IsPrivate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, toWorkspaceDTO(ws))
}

func (h *Handler) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	if err := h.svc.DeleteWorkspace(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, nil)
}

func (h *Handler) getWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	ws, err := h.svc.GetWorkspace(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, toWorkspaceDTO(ws))
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	list, err := h.svc.ListMembers(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, toMembershipDTOs(list))
}

func (h *Handler) listOwnWorkspaces(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	list, err := h.svc.ListWorkspacesForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, toMembershipDTOs(list))
}

func (h *Handler) inviteMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	var req struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	err := h.svc.InviteMember(r.Context(), userID, mux.Vars(r)["id"], req.UserID, memberdomain.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, nil)
}

func (h *Handler) respondToInvite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if err := h.svc.RespondToInvite(r.Context(), userID, mux.Vars(r)["id"], req.Accept); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, nil)
}

func (h *Handler) modifyRole(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	vars := mux.Vars(r)
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	err := h.svc.ModifyRole(r.Context(), userID, vars["id"], vars["user"], memberdomain.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, nil)
}

func (h *Handler) abdicate(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if err := h.svc.Abdicate(r.Context(), userID, mux.Vars(r)["id"], req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, nil)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	vars := mux.Vars(r)
	if err := h.svc.RemoveMember(r.Context(), userID, vars["id"], vars["user"]); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, nil)
}

type dataEnvelope struct {
	Code int `json:"code"`
	Data any `json:"data,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dataEnvelope{Code: http.StatusOK, Data: data}); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.Code(err)
	msg := err.Error()
	// Internal failure detail stays in logs, not in responses.
	if code == "INTERNAL" {
		msg = "internal error"
		log.Printf("server: internal error: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{Code: code, Message: msg}}); encErr != nil {
		log.Printf("server: encode error response: %v", encErr)
	}
}
