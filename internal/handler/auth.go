package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nkorzh/identity-service/internal/google"
	"github.com/nkorzh/identity-service/internal/repository"
	"github.com/nkorzh/identity-service/internal/service"
	"github.com/nkorzh/identity-service/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.  Verifier is nil
// when GOOGLE_CLIENT_ID is unset; the google endpoint then trusts the posted
// name/email, which is only acceptable behind a trusted upstream.
type AuthHandler struct {
	Auth     *service.AuthService
	Verifier *google.Verifier
}

func NewAuthHandler(auth *service.AuthService, verifier *google.Verifier) *AuthHandler {
	return &AuthHandler{Auth: auth, Verifier: verifier}
}

// Per-request budget for everything a handler does downstream (store,
// hasher, signer, mail transport).
const requestTimeout = 5 * time.Second

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type googleReq struct {
	IDToken string `json:"id_token"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// SignUp: create a password account. No session token by default.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.Auth.SignUp(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return writeAuthError(c, err)
	}
	resp := echo.Map{"message": "account created"}
	if sess != nil {
		resp["session"] = sess
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login: verify password, return session token and safe user projection.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// GoogleSignIn: upsert an identity already vouched for by Google.  With a
// configured verifier the id_token is checked against Google and its claims
// override whatever the client posted.
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	var req googleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	name, email := req.Name, req.Email
	if h.Verifier != nil {
		if strings.TrimSpace(req.IDToken) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_token required"})
		}
		var err error
		name, email, err = h.Verifier.Verify(ctx, req.IDToken)
		if err != nil {
			if errors.Is(err, google.ErrInvalidAssertion) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid google token"})
			}
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not verify google token"})
		}
	}

	sess, err := h.Auth.GoogleSignIn(ctx, name, email)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// ForgotPassword: issue a reset token and email the reset link.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.RequestPasswordReset(ctx, req.Email); err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset email sent"})
}

// ResetPassword: consume a reset token and set the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.CompletePasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Me: simple protected endpoint echoing the session claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"email":   c.Get("email"),
	})
}

// writeAuthError translates the service error taxonomy into HTTP responses.
// Messages come from the sentinels themselves, which are written to be safe
// for clients; anything unanticipated becomes a generic 500.
func writeAuthError(c echo.Context, err error) error {
	var vErr *utils.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": vErr.Error()})
	case errors.Is(err, service.ErrDuplicateAccount):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrFederatedAccountOnly):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotification):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": service.ErrNotification.Error()})
	case errors.Is(err, repository.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable, retry later"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
