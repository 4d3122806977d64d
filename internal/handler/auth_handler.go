package handler

import (
	"errors"
	"net/http"
	"time"

	"driver_dashboard/internal/logger"
	"driver_dashboard/internal/middleware"
	"driver_dashboard/internal/service"
	"driver_dashboard/internal/session"

	"github.com/gin-gonic/gin"
)

const invalidLoginMessage = "Ungültiger Benutzername oder Passwort"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	service  service.AuthService
	sessions session.Store
	cookie   CookieConfig
	log      logger.ILogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, sessions session.Store, cookie CookieConfig, log logger.ILogger) *AuthHandler {
	return &AuthHandler{service: s, sessions: sessions, cookie: cookie, log: log}
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.GetIdentity(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"error": nil})
}

// LoginForm handles the HTML form post and starts a cookie session.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "login.tmpl", gin.H{"error": invalidLoginMessage})
		return
	}

	identity, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.HTML(http.StatusUnauthorized, "login.tmpl", gin.H{"error": invalidLoginMessage, "username": req.Username})
			return
		}
		h.log.Error("error during login", logger.Error(err))
		c.HTML(http.StatusInternalServerError, "login.tmpl", gin.H{"error": "Anmeldung fehlgeschlagen", "username": req.Username})
		return
	}

	sess, err := h.sessions.Create(*identity)
	if err != nil {
		h.log.Error("failed to create session", logger.Error(err))
		c.HTML(http.StatusInternalServerError, "login.tmpl", gin.H{"error": "Anmeldung fehlgeschlagen", "username": req.Username})
		return
	}

	h.setSessionCookie(c, sess.Token)
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.endSession(c)
	c.Redirect(http.StatusFound, "/login")
}

// APILogin authenticates a JSON client and returns a bearer token.
func (h *AuthHandler) APILogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	identity, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidCredentials.Error()})
			return
		}
		h.log.Error("error during api login", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	token, err := h.service.IssueToken(*identity)
	if err != nil {
		h.log.Error("failed to issue token", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    identity,
		"token":   token,
	})
}

// APILogout ends the cookie session, if any. Bearer tokens stay valid until they expire.
func (h *AuthHandler) APILogout(c *gin.Context) {
	h.endSession(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) endSession(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		h.sessions.Delete(token)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

// RegisterAuthRoutes registers the login pages and the JSON auth endpoints
func (h *AuthHandler) RegisterAuthRoutes(r gin.IRouter, api *gin.RouterGroup) {
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.LoginForm)
	r.GET("/logout", h.Logout)

	api.POST("/login", h.APILogin)
	api.POST("/logout", h.APILogout)
}
