package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"petlink/internal/util"
	"petlink/pkg/claims"
	"petlink/pkg/domain"
	"petlink/pkg/store"
	"petlink/pkg/validate"
)

// Login exchanges credentials for an access token and starts a session.
// Any previous session is ended first, so a failed login leaves none.
func (a *App) Login(ctx context.Context, username, password string) error {
	ctx = util.WithRequestID(ctx)
	logger := util.LoggerFromContext(ctx)

	if a.Session().Active() {
		a.endSession(ctx)
	}

	token, err := a.api.Login(ctx, username, password)
	if err != nil {
		if statusOf(err) != 0 {
			re := newRequestError("login", "Invalid credentials", err)
			a.toasts.Error("Login failed: " + re.UserMessage())
			return &AuthError{Reason: "credentials rejected", Err: re}
		}
		return a.reportRequest("Login failed", newRequestError("login", "Login request failed", err))
	}
	if strings.TrimSpace(token) == "" {
		a.toasts.Error("Login failed: no access token received")
		return &AuthError{Reason: "response missing access_token"}
	}

	cs, err := claims.DecodeClaims(token)
	if err != nil {
		a.toasts.Error("Cannot get user ID from token")
		return &AuthError{Reason: "cannot get user id from token", Err: err}
	}

	sess := Session{
		Token:     token,
		UserID:    cs.UserID,
		Username:  username,
		Role:      domain.RoleOwner,
		ExpiresAt: cs.ExpiresAt,
	}
	a.persistSession(ctx, sess)

	a.mu.Lock()
	a.session = sess
	a.mu.Unlock()

	logger.Info("logged in", "user_id", sess.UserID)
	a.toasts.Success("Logged in as " + username)
	a.startSession(ctx)
	return nil
}

func (a *App) persistSession(ctx context.Context, sess Session) {
	logger := util.LoggerFromContext(ctx)
	values := map[string]string{
		store.KeyToken:    sess.Token,
		store.KeyUserID:   strconv.FormatInt(sess.UserID, 10),
		store.KeyUsername: sess.Username,
	}
	for _, key := range store.SessionKeys {
		if err := a.kv.Set(ctx, key, values[key]); err != nil {
			logger.Error("persist session failed", "key", key, "error", err)
		}
	}
}

// Register creates an account. Nothing is sent when the form is invalid.
func (a *App) Register(ctx context.Context, username, email, password string, role domain.UserRole) error {
	ctx = util.WithRequestID(ctx)
	if err := validate.Registration(username, email, password, role); err != nil {
		return a.reportValidation(err)
	}
	if _, err := a.api.Register(ctx, username, email, password, role); err != nil {
		re := newRequestError("register", "Registration failed", err)
		a.toasts.Error("Registration error: " + re.UserMessage())
		return &RegistrationError{Err: re}
	}
	util.LoggerFromContext(ctx).Info("registered", "username", username, "role", string(role))
	a.toasts.Success("Registration successful! You can now log in.")
	return nil
}

// RegisterAndLogin registers and then logs in with the same credentials.
func (a *App) RegisterAndLogin(ctx context.Context, username, email, password string, role domain.UserRole) error {
	if err := a.Register(ctx, username, email, password, role); err != nil {
		return err
	}
	return a.Login(ctx, username, password)
}

// Logout ends the session. It always succeeds; storage failures are logged.
func (a *App) Logout(ctx context.Context) {
	ctx = util.WithRequestID(ctx)
	a.endSession(ctx)
	util.LoggerFromContext(ctx).Info("logged out")
}

func (a *App) endSession(ctx context.Context) {
	logger := util.LoggerFromContext(ctx)
	if err := a.kv.Delete(ctx, store.SessionKeys...); err != nil {
		logger.Error("clear stored session failed", "error", err)
	}
	a.mu.Lock()
	a.session = Session{}
	a.mu.Unlock()
	if err := a.dispatch(ctx, EventSessionEnded); err != nil {
		logger.Error("session end effects failed", "error", err)
	}
}

// RehydrateProfile loads email and role for the current session. An
// unauthorized response is returned as SilentError without a toast.
func (a *App) RehydrateProfile(ctx context.Context) error {
	ctx = util.WithRequestID(ctx)
	sess := a.Session()
	if !sess.Active() {
		return nil
	}

	user, err := a.api.GetUser(ctx, sess.Token, sess.UserID)
	if err != nil {
		if statusOf(err) == http.StatusUnauthorized {
			util.LoggerFromContext(ctx).Debug("profile rehydration unauthorized", "user_id", sess.UserID)
			return &SilentError{Err: err}
		}
		return a.reportRequest("Could not load profile", newRequestError("rehydrate profile", "Failed to load profile", err))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.stillCurrentLocked(sess.Token) {
		return nil
	}
	if user.Email != "" {
		a.session.Email = user.Email
	}
	if user.Role.Valid() {
		a.session.Role = user.Role
	}
	return nil
}

// IsSilent reports whether err was intentionally kept from the user.
func IsSilent(err error) bool {
	var silent *SilentError
	return errors.As(err, &silent)
}
