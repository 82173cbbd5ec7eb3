package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Workspace is a team/tenant boundary under which members and resources are
// organized.
type Workspace struct {
	// UID is the immutable storage key.
	UID string
	// ID is the URL-safe identifier derived from the display name at creation.
	ID          string
	DisplayName string
	// CreatedBy is the creating user; duplicate-name checks are scoped to it.
	CreatedBy string
	// IsPrivate marks a personal workspace with no ownership operations.
	IsPrivate bool
	CreatedAt time.Time
}

var idSanitize = regexp.MustCompile(`[^a-z0-9-]+`)

// SlugFromDisplayName derives the workspace ID from a display name:
// lowercased, spaces collapsed to dashes, other characters dropped.
func SlugFromDisplayName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = idSanitize.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}

// Validate validates the workspace for persistence.
func (w *Workspace) Validate() error {
	if w.UID == "" {
		return errors.New("uid is required")
	}
	if strings.TrimSpace(w.DisplayName) == "" {
		return errors.New("display name is required")
	}
	if w.ID == "" {
		return errors.New("id is required")
	}
	if w.CreatedBy == "" {
		return errors.New("creator is required")
	}
	return nil
}
