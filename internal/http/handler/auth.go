package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"docviewer/internal/http/middleware"
	"docviewer/internal/session"
	"docviewer/internal/sharepoint"
)

// Authenticator verifies document-site credentials. *sharepoint.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (sharepoint.Token, error)
	CurrentUser(ctx context.Context, token string) (sharepoint.User, error)
}

type authRequest struct {
	Action      string `json:"action"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	AccessToken string `json:"access_token"`
}

type authResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message,omitempty"`
	User         *session.User `json:"user,omitempty"`
	SessionToken string        `json:"sessionToken,omitempty"`
	ExpiresAt    *time.Time    `json:"expiresAt,omitempty"`
}

// SharePointStatus returns the user of the caller's session.
//
// @Summary Current document-site user
// @Tags auth
// @Produce json
// @Success 200 {object} authResponse
// @Failure 401 {object} errorPayload
// @Router /api/sharepoint-auth [get]
func SharePointStatus(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessions.Resolve(middleware.SessionToken(c))
		if err != nil {
			return writeError(c, fiber.StatusUnauthorized, "NOT_AUTHENTICATED", "User not authenticated")
		}
		return c.JSON(authResponse{Success: true, User: &s.User})
	}
}

// SharePointAuth handles the login, login_with_token and logout actions.
//
// @Summary Sign in to or out of the document site
// @Tags auth
// @Accept json
// @Produce json
// @Param body body authRequest true "Action and credentials"
// @Success 200 {object} authResponse
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Router /api/sharepoint-auth [post]
func SharePointAuth(auth Authenticator, sessions *session.Manager, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sharepoint_auth")

	return func(c *fiber.Ctx) error {
		var req authRequest
		raw, err := decodeBody(c.Body(), authBody, &req)
		if err != nil {
			if errors.Is(err, errInvalidJSON) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
			}
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", authRejection(stringField(raw, "action")))
		}

		ctx := c.UserContext()
		switch req.Action {
		case "logout":
			if token := middleware.SessionToken(c); token != "" {
				_ = sessions.Revoke(token)
			}
			c.ClearCookie(middleware.SessionCookie)
			return c.JSON(authResponse{Success: true, Message: "Logged out successfully"})

		case "login":
			tok, err := auth.Login(ctx, req.Username, req.Password)
			if err != nil {
				return authFailure(c, logger, "login", err)
			}
			return startSession(c, auth, sessions, logger, tok.AccessToken)

		default: // login_with_token
			return startSession(c, auth, sessions, logger, req.AccessToken)
		}
	}
}

// startSession verifies accessToken against the site and opens a session for its user.
func startSession(c *fiber.Ctx, auth Authenticator, sessions *session.Manager, logger *slog.Logger, accessToken string) error {
	u, err := auth.CurrentUser(c.UserContext(), accessToken)
	if err != nil {
		return authFailure(c, logger, "current_user", err)
	}
	user := session.User{ID: u.ID, Title: u.Title, Email: u.Email, LoginName: u.LoginName}

	s, token, err := sessions.Create(accessToken, user)
	if err != nil {
		logger.ErrorContext(c.UserContext(), "create session failed", "error", err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(authResponse{
		Success:      true,
		Message:      "Authentication successful",
		User:         &s.User,
		SessionToken: token,
		ExpiresAt:    &s.ExpiresAt,
	})
}

func authFailure(c *fiber.Ctx, logger *slog.Logger, op string, err error) error {
	if errors.Is(err, sharepoint.ErrUnauthorized) {
		logger.InfoContext(c.UserContext(), "document-site sign-in rejected", "op", op, "error", err)
		return writeError(c, fiber.StatusUnauthorized, "AUTHENTICATION_FAILED", "Authentication failed")
	}
	logger.ErrorContext(c.UserContext(), "document-site sign-in failed", "op", op, "error", err)
	return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "Document site unavailable")
}

// authRejection names what is missing from a body that failed validation.
func authRejection(action string) string {
	switch action {
	case "login":
		return "Username and password are required"
	case "login_with_token":
		return "Access token is required"
	}
	return "Invalid action. Use: login, login_with_token, or logout"
}
