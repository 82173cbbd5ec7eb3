package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := NotFound("workspace ws-1")
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound should match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("NotFound should not match ErrConflict")
	}
}

func TestIs_WrappedTransient(t *testing.T) {
	cause := errors.New("connection reset")
	err := TransientStore("ledger reserve", cause)
	if !errors.Is(err, ErrTransientStore) {
		t.Error("TransientStore should match ErrTransientStore")
	}
	if !errors.Is(err, cause) {
		t.Error("TransientStore should unwrap to its cause")
	}
}

func TestInconsistentState_RetainsBothErrors(t *testing.T) {
	cause := errors.New("sync rejected")
	compErr := errors.New("release failed")
	err := InconsistentState("remove member", cause, compErr)
	if !errors.Is(err, ErrInconsistentState) {
		t.Error("should match ErrInconsistentState")
	}
	if !errors.Is(err, cause) {
		t.Error("should retain the original step error")
	}
	if !errors.Is(err, compErr) {
		t.Error("should retain the compensation error")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad id"), http.StatusBadRequest},
		{Forbidden("owner required"), http.StatusForbidden},
		{Conflict("already a member"), http.StatusConflict},
		{NotFound("membership"), http.StatusNotFound},
		{TransientStore("reserve", errors.New("io")), http.StatusInternalServerError},
		{InconsistentState("abdicate", errors.New("a"), errors.New("b")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestCode_DoesNotLeakInternalKinds(t *testing.T) {
	if got := Code(InconsistentState("abdicate", errors.New("a"), errors.New("b"))); got != "INTERNAL" {
		t.Errorf("Code(inconsistent) = %q, want INTERNAL", got)
	}
	if got := Code(TransientStore("reserve", errors.New("io"))); got != "INTERNAL" {
		t.Errorf("Code(transient) = %q, want INTERNAL", got)
	}
	if got := Code(Conflict("self target")); got != "CONFLICT" {
		t.Errorf("Code(conflict) = %q, want CONFLICT", got)
	}
}
