package handler

import (
	"context"  // provides context with cancellation for service calls
	"errors"   // sentinel comparison for the error taxonomy
	"net/http" // HTTP status codes and cookie primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for service calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/bazario/auth-service/internal/config"     // app configuration
	"github.com/bazario/auth-service/internal/middleware" // identity accessors
	"github.com/bazario/auth-service/internal/service"    // credential orchestration
)

// Cookie names under which the token pair travels back to browsers.
const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// AuthHandler bundles dependencies for the auth endpoints.  It owns
// nothing itself: cookies and response envelopes are produced here, every
// decision is delegated to the credential service.
type AuthHandler struct {
	Cfg   config.Config
	Creds *service.CredentialService
}

func NewAuthHandler(cfg config.Config, creds *service.CredentialService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Creds: creds}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type registerReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Password  string `json:"password"`
	Gender    string `json:"gender"`
	Category  string `json:"category"`
	Role      string `json:"role"` // CUSTOMER | VENDOR
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type loginData struct {
	UserID       uint64 `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// envelope is the uniform response body: statuscode mirrors the HTTP
// status, data is present on success only.
type envelope struct {
	StatusCode int    `json:"statuscode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, envelope{StatusCode: code, Message: message, Data: data})
}

// Login: run the credential pipeline and hand the token pair back as both
// cookies and body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid body", nil)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return respond(c, http.StatusBadRequest, "Email and password required", nil)
	}
	device := c.Request().Header.Get("device-token")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Creds.Login(ctx, req.Email, req.Password, device)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return respond(c, http.StatusNotFound, "User not found", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			return respond(c, http.StatusUnauthorized, "Invalid credentials", nil)
		default:
			// ErrRoleMissing and store failures alike: details stay
			// server-side.
			c.Logger().Errorf("login failed for %s: %v", req.Email, err)
			return respond(c, http.StatusInternalServerError, "Internal server error", nil)
		}
	}

	h.setTokenCookie(c, accessCookie, res.AccessToken, time.Duration(h.Cfg.AccessTTLMin)*time.Minute)
	h.setTokenCookie(c, refreshCookie, res.RefreshToken, time.Duration(h.Cfg.RefreshTTLDays)*24*time.Hour)

	return respond(c, http.StatusOK, "Login successful", loginData{
		UserID:       res.UserID,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

// Register: create the identity record and its role.  The surrounding
// onboarding flow (verification mail, profile setup) lives outside this
// service; this endpoint covers the identity insert the core owns.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid body", nil)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Mobile = strings.TrimSpace(req.Mobile)
	if req.Email == "" || req.Mobile == "" || req.Password == "" {
		return respond(c, http.StatusBadRequest, "Email, mobile and password required", nil)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Creds.Register(ctx, service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Mobile:    req.Mobile,
		Password:  req.Password,
		Gender:    req.Gender,
		Category:  req.Category,
		Role:      strings.ToUpper(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			return respond(c, http.StatusConflict, "Account already exists", nil)
		}
		c.Logger().Errorf("register failed for %s: %v", req.Email, err)
		return respond(c, http.StatusInternalServerError, "Internal server error", nil)
	}

	return respond(c, http.StatusCreated, "Registration successful", echo.Map{"userId": uid})
}

// Refresh: exchange a live refresh token for a new access token.  The
// token may arrive in the body or as the refresh cookie; the refresh
// token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		if ck, err := c.Cookie(refreshCookie); err == nil {
			token = ck.Value
		}
	}
	if token == "" {
		return respond(c, http.StatusUnauthorized, "No token provided", nil)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, access, err := h.Creds.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return respond(c, http.StatusUnauthorized, "Invalid token", nil)
		}
		c.Logger().Errorf("refresh failed: %v", err)
		return respond(c, http.StatusInternalServerError, "Internal server error", nil)
	}

	h.setTokenCookie(c, accessCookie, access, time.Duration(h.Cfg.AccessTTLMin)*time.Minute)

	return respond(c, http.StatusOK, "Token refreshed", echo.Map{
		"userId":      userID,
		"accessToken": access,
	})
}

// Logout: revoke the caller's session(s) and clear both cookies.  Runs
// behind JWTAuth, so an identity is always present.  With a refresh token
// (cookie or body) only that session dies; without one, all of them.
// Revoking rows that are already gone still answers 200.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid := middleware.UserID(c)

	var req refreshReq
	_ = c.Bind(&req)
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		if ck, err := c.Cookie(refreshCookie); err == nil {
			token = ck.Value
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Creds.Logout(ctx, uid, token); err != nil {
		c.Logger().Errorf("logout failed for user %d: %v", uid, err)
		return respond(c, http.StatusInternalServerError, "Internal server error", nil)
	}

	h.clearTokenCookie(c, accessCookie)
	h.clearTokenCookie(c, refreshCookie)

	return respond(c, http.StatusOK, "Logout successful", nil)
}

// Me: simple protected endpoint echoing the verified identity.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := middleware.Identity(c)
	if !ok {
		return respond(c, http.StatusUnauthorized, "No token provided", nil)
	}
	return respond(c, http.StatusOK, "OK", echo.Map{
		"userId": claims.UserID,
		"role":   claims.Role,
		"jti":    claims.JTI,
	})
}

// setTokenCookie issues an httpOnly, SameSite=Strict cookie carrying a
// token; Secure is set outside of dev so browsers only send it over TLS
// in production.
func (h *AuthHandler) setTokenCookie(c echo.Context, name, value string, maxAge time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteStrictMode,
	})
}

// clearTokenCookie expires a cookie immediately.
func (h *AuthHandler) clearTokenCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteStrictMode,
	})
}
