package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"petlink/internal/notify"
	"petlink/pkg/domain"
	"petlink/pkg/store"
)

func TestSaveProfileOmitsBlankPassword(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "alice", domain.RoleOwner)
	ctx := context.Background()

	edit := h.app.ProfileDraft()
	edit.Username = "alice2"
	edit.Password = "   "
	if _, err := h.app.SaveProfile(ctx, edit); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	h.market.mu.Lock()
	_, sentPassword := h.market.lastProfilePatch["password"]
	h.market.mu.Unlock()
	if sentPassword {
		t.Fatalf("blank password must not be sent")
	}
	if h.app.Session().Username != "alice2" {
		t.Fatalf("session username not updated")
	}
	if v, _ := storedValue(t, h.kv, store.KeyUsername); v != "alice2" {
		t.Fatalf("persisted username = %q", v)
	}
	if h.toasts.last().Message != "Profile updated successfully" {
		t.Fatalf("unexpected toast %+v", h.toasts.last())
	}

	edit.Password = "new-secret-1"
	edit.Role = domain.RolePetsitter
	if _, err := h.app.SaveProfile(ctx, edit); err != nil {
		t.Fatalf("save profile with password: %v", err)
	}
	h.market.mu.Lock()
	pw := h.market.lastProfilePatch["password"]
	h.market.mu.Unlock()
	if pw != "new-secret-1" {
		t.Fatalf("password not sent, got %v", pw)
	}
	if h.app.Session().Role != domain.RolePetsitter {
		t.Fatalf("role not updated")
	}
}

func TestSaveProfileValidation(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "alice", domain.RoleOwner)

	_, err := h.app.SaveProfile(context.Background(), ProfileEdit{Username: "al", Email: "bad", Role: domain.RoleOwner, Password: "short"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || len(vErr.Fields) != 3 {
		t.Fatalf("expected three field errors, got %v", err)
	}
	if h.market.callCount("PATCH /users/") != 0 {
		t.Fatalf("invalid profile must not be sent")
	}
}

func TestDeleteProfileStatusMapping(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "alice", domain.RoleOwner)
	ctx := context.Background()

	if err := h.app.DeleteProfile(ctx, ""); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
	if h.market.callCount("DELETE /users/") != 0 {
		t.Fatalf("missing password must not be sent")
	}

	if err := h.app.DeleteProfile(ctx, "wrong-password"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
	if h.toasts.last().Message != "Incorrect password" {
		t.Fatalf("unexpected toast %+v", h.toasts.last())
	}
	if !h.app.Session().Active() {
		t.Fatalf("session must survive a refused deletion")
	}

	h.market.mu.Lock()
	h.market.deleteUserStatus = http.StatusNotFound
	h.market.mu.Unlock()
	if err := h.app.DeleteProfile(ctx, "secret123"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if h.toasts.last().Message != "User not found" {
		t.Fatalf("unexpected toast %+v", h.toasts.last())
	}

	h.market.mu.Lock()
	h.market.deleteUserStatus = http.StatusInternalServerError
	h.market.mu.Unlock()
	err := h.app.DeleteProfile(ctx, "secret123")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected RequestError 500, got %v", err)
	}
	if h.toasts.last().Severity != notify.Error {
		t.Fatalf("expected error toast")
	}

	h.market.mu.Lock()
	h.market.deleteUserStatus = 0
	h.market.mu.Unlock()
	if err := h.app.DeleteProfile(ctx, "secret123"); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	if h.app.Session().Active() || h.kv.Len() != 0 {
		t.Fatalf("deletion must log out")
	}
	if h.toasts.last().Message != "Profile deleted successfully" {
		t.Fatalf("unexpected toast %+v", h.toasts.last())
	}
}
