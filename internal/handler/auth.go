package handler

import (
	"context"
	"database/sql"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bucket-api/internal/config"
	"github.com/iliyamo/bucket-api/internal/middleware"
	"github.com/iliyamo/bucket-api/internal/model"
	"github.com/iliyamo/bucket-api/internal/queue"
	"github.com/iliyamo/bucket-api/internal/repository"
	"github.com/iliyamo/bucket-api/internal/token"
	"github.com/iliyamo/bucket-api/internal/utils"
)

var emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, email, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
}

// BlacklistStore records and checks revoked tokens.
type BlacklistStore interface {
	Blacklist(ctx context.Context, rawToken string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, rawToken string) (bool, error)
}

// AuthHandler bundles dependencies for the auth endpoints. Publish is
// optional; when set, registration and logout emit activity events.
type AuthHandler struct {
	Cfg       config.Config
	Users     UserStore
	Blacklist BlacklistStore
	Publish   func(ctx context.Context, ev queue.UserActivityEvent) error
}

func NewAuthHandler(cfg config.Config, users UserStore, blacklist BlacklistStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Blacklist: blacklist}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register: create the user and hand back a
// token right away so the client is signed in without a second call.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "failed",
			"Missing or wrong email format or password is less than four characters")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRe.MatchString(req.Email) || len(req.Password) <= 4 {
		return respond(c, http.StatusBadRequest, "failed",
			"Missing or wrong email format or password is less than four characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return respond(c, http.StatusAccepted, "failed",
				"Failed, User already exists, Please sign In")
		}
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}

	authToken, err := token.Issue(h.Cfg.JWTSecret, uid, h.Cfg.TokenTTL())
	if err != nil {
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}

	h.publish(queue.UserActivityEvent{
		Event:  queue.EventUserRegistered,
		UserID: uid,
		Email:  req.Email,
	})
	return respondAuth(c, http.StatusCreated, "success", "Successfully registered", authToken)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusUnauthorized, "failed",
			"Missing or wrong email format or password is less than four characters")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRe.MatchString(req.Email) || len(req.Password) <= 4 {
		return respond(c, http.StatusUnauthorized, "failed",
			"Missing or wrong email format or password is less than four characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusUnauthorized, "failed",
				"User does not exist or password is incorrect")
		}
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respond(c, http.StatusUnauthorized, "failed",
			"User does not exist or password is incorrect")
	}

	authToken, err := token.Issue(h.Cfg.JWTSecret, u.ID, h.Cfg.TokenTTL())
	if err != nil {
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	return respondAuth(c, http.StatusOK, "success", "Successfully logged In", authToken)
}

// Logout handles POST /auth/logout. The route is not behind the guard
// because its header-failure responses differ from the guard's: a missing or
// unusable Authorization header is a 403 here, while token-level failures
// reuse the guard's messages. A successfully parsed token is written to the
// blacklist; presenting an already-blacklisted token reports exactly that.
func (h *AuthHandler) Logout(c echo.Context) error {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return respond(c, http.StatusForbidden, "failed", "Provide an authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return respond(c, http.StatusForbidden, "failed", "Provide a valid auth token")
	}
	raw := parts[1]

	claims, err := token.Parse(h.Cfg.JWTSecret, raw)
	if err == token.ErrExpired {
		return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenExpired)
	}
	if err != nil {
		return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenInvalid)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	revoked, err := h.Blacklist.IsBlacklisted(ctx, raw)
	if err != nil {
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	if revoked {
		return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenBlacklisted)
	}

	if err := h.Blacklist.Blacklist(ctx, raw, claims.ExpiresAt); err != nil {
		// Two logouts racing: the duplicate insert loses and reports the
		// token as already blacklisted, same as the pre-check above.
		if err == repository.ErrAlreadyBlacklisted {
			return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenBlacklisted)
		}
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}

	h.publish(queue.UserActivityEvent{
		Event:  queue.EventUserLoggedOut,
		UserID: claims.UserID,
	})
	return respond(c, http.StatusOK, "success", "Successfully logged out")
}

type resetPasswordReq struct {
	OldPassword          string `json:"oldPassword"`
	NewPassword          string `json:"newPassword"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

// ResetPassword handles POST /auth/reset/password (protected).
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenInvalid)
	}
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "failed", "Missing required attributes")
	}
	if req.OldPassword == "" || req.NewPassword == "" || req.PasswordConfirmation == "" {
		return respond(c, http.StatusBadRequest, "failed", "Missing required attributes")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.OldPassword) {
		return respond(c, http.StatusUnauthorized, "failed", "Incorrect password")
	}
	if req.NewPassword != req.PasswordConfirmation {
		return respond(c, http.StatusBadRequest, "failed", "New Passwords do not match")
	}
	if len(req.NewPassword) <= 4 {
		return respond(c, http.StatusBadRequest, "failed",
			"New password should be greater than four characters long")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	return respond(c, http.StatusOK, "success", "Password reset successfully")
}

// publish fires an activity event without blocking the request.
func (h *AuthHandler) publish(ev queue.UserActivityEvent) {
	if h.Publish == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	go func() { _ = h.Publish(context.Background(), ev) }()
}
