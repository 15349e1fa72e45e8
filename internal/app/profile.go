package app

import (
	"context"
	"net/http"
	"strings"

	"petlink/internal/apiclient"
	"petlink/internal/util"
	"petlink/pkg/domain"
	"petlink/pkg/store"
	"petlink/pkg/validate"
)

// ProfileEdit is the profile form. A blank Password keeps the current one.
type ProfileEdit struct {
	Username string
	Email    string
	Role     domain.UserRole
	Password string
}

// ProfileDraft prefills the profile form from the session.
func (a *App) ProfileDraft() ProfileEdit {
	sess := a.Session()
	return ProfileEdit{Username: sess.Username, Email: sess.Email, Role: sess.Role}
}

// SaveProfile updates the logged-in user's profile.
func (a *App) SaveProfile(ctx context.Context, edit ProfileEdit) (domain.User, error) {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return domain.User{}, err
	}
	if err := validate.Profile(edit.Username, edit.Email, edit.Role, edit.Password); err != nil {
		return domain.User{}, a.reportValidation(err)
	}

	update := apiclient.UserUpdate{Username: edit.Username, Email: edit.Email, Role: edit.Role}
	if strings.TrimSpace(edit.Password) != "" {
		pw := edit.Password
		update.Password = &pw
	}

	user, err := a.api.UpdateUser(ctx, sess.Token, sess.UserID, update)
	if err != nil {
		return domain.User{}, a.reportRequest("Profile update error", newRequestError("update profile", "Failed to update profile", err))
	}

	a.mu.Lock()
	current := a.stillCurrentLocked(sess.Token)
	if current {
		a.session.Username = user.Username
		a.session.Email = user.Email
		if user.Role.Valid() {
			a.session.Role = user.Role
		}
	}
	a.mu.Unlock()

	if current {
		if err := a.kv.Set(ctx, store.KeyUsername, user.Username); err != nil {
			util.LoggerFromContext(ctx).Error("persist username failed", "error", err)
		}
	}
	a.toasts.Success("Profile updated successfully")
	return user, nil
}

// DeleteProfile deletes the account after password confirmation by the
// server, then logs out.
func (a *App) DeleteProfile(ctx context.Context, password string) error {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return err
	}
	if password == "" {
		a.toasts.Warning("Please enter your password to confirm deletion")
		return ErrPasswordRequired
	}

	if err := a.api.DeleteUser(ctx, sess.Token, sess.UserID, password); err != nil {
		re := newRequestError("delete profile", "Failed to delete profile", err)
		switch re.Status {
		case http.StatusForbidden:
			re.Err = ErrIncorrectPassword
			a.toasts.Error("Incorrect password")
		case http.StatusNotFound:
			re.Err = ErrUserNotFound
			a.toasts.Error("User not found")
		default:
			a.toasts.Error("Error deleting profile: " + re.UserMessage())
		}
		return re
	}

	util.LoggerFromContext(ctx).Info("profile deleted", "user_id", sess.UserID)
	a.endSession(ctx)
	a.toasts.Success("Profile deleted successfully")
	return nil
}
