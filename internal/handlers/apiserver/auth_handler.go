package apiserver

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"social-go/internal/config"
	"social-go/internal/models"
	"social-go/internal/services"
)

// AuthHandler 封装了认证相关的 HTTP 处理器方法。
type AuthHandler struct {
	authService services.AuthService
	userService services.UserService
	cookieName  string
	secure      bool
	log         *logrus.Logger
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(authService services.AuthService, userService services.UserService, cfg config.Config, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cookieName:  cfg.Auth.CookieName,
		secure:      cfg.IsProduction(),
		log:         log,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Token   string       `json:"token,omitempty"`
}

// UserResponse wraps the current user.
type UserResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authService.Register(r.Context(), req)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	h.setSessionCookie(w, session.Token, session.ExpiresAt)
	writeJSONResponse(w, http.StatusCreated, AuthResponse{Success: true, User: session.User, Token: session.Token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	h.setSessionCookie(w, session.Token, session.ExpiresAt)
	writeJSONResponse(w, http.StatusOK, AuthResponse{Success: true, User: session.User, Token: session.Token})
}

// Logout revokes the current token and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := h.authService.Logout(r.Context(), caller); err != nil {
		respondError(w, h.log, r, err)
		return
	}
	h.clearSessionCookie(w)
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Logout successful"})
}

// Onboarding handles PUT /api/auth/onboarding.
func (h *AuthHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req services.OnboardingInput
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Onboard(r.Context(), caller.UserID, req)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(r.Context(), caller.UserID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, UserResponse{Success: true, User: user})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secure,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secure,
	})
}
