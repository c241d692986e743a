package handler

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arekbor/helpdesk/internal/auth"
	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/middleware"
	"github.com/arekbor/helpdesk/internal/model"
	"github.com/arekbor/helpdesk/internal/oauth"
)

const handlerTimeout = 5 * time.Second

// AuthHandler exposes registration, login and the related credential flows.
type AuthHandler struct {
	Auth   *auth.Service
	Google *oauth.GoogleClient
	// StateSecret signs the short-lived OAuth state parameter.
	StateSecret string
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return httpx.BadRequest("email, password, first_name and last_name are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return httpx.BadRequest("email must be a valid email address")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	user, err := h.Auth.Register(ctx, auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, httpx.Data([]model.User{user}))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return httpx.BadRequest("email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	token, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, token.Raw, token.Exp)
	return c.JSON(http.StatusOK, map[string]string{"message": "User successfully logged in"})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	raw, ok := middleware.SessionToken(c)
	if !ok {
		return httpx.BadRequest("Invalid session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	if err := h.Auth.Logout(ctx, raw); err != nil {
		return err
	}
	middleware.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "User successfully logged out"})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("invalid request body")
	}
	if req.Email == "" || req.OTP == "" {
		return httpx.BadRequest("email and otp are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	if err := h.Auth.VerifyOTP(ctx, req.Email, req.OTP); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Otp verified"})
}

type resetPasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return httpx.Unauthorized("unauthorized")
	}
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return httpx.BadRequest("oldPassword and newPassword are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	if err := h.Auth.ResetPassword(ctx, user.UUID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password successfully updated"})
}

// GoogleLogin redirects the browser to the provider consent screen with a
// signed state parameter.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	state, err := auth.NewState(h.StateSecret)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, h.Google.AuthURL(state))
}

// GoogleCallback exchanges the provider code, provisions the local user when
// needed and opens a session.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if err := auth.VerifyState(h.StateSecret, c.QueryParam("state")); err != nil {
		return httpx.Unauthorized("invalid oauth state")
	}
	code := c.QueryParam("code")
	if code == "" {
		return httpx.BadRequest("code is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	info, err := h.Google.Exchange(ctx, code)
	if err != nil {
		return httpx.Internal("Failed to fetch user info from Google")
	}

	token, err := h.Auth.LoginWithGoogle(ctx, auth.GoogleProfile{
		Email:      info.Email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	})
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, token.Raw, token.Exp)
	return c.JSON(http.StatusOK, map[string]string{"message": "User successfully logged in"})
}
