// Package controllers handles admin authentication and token issuance.
// File: controllers/auth_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"inohax-registration/logger"
	"inohax-registration/middleware"
	"inohax-registration/services"
	"inohax-registration/store"
)

// AuthController issues signed admin tokens and cookie sessions.
type AuthController struct {
	Admins store.AdminStore
	Conn   services.Connector

	TokenSecret        string
	BreakGlassUser     string
	BreakGlassPassword string
}

// NewAuthController wires the login handler.
func NewAuthController(admins store.AdminStore, conn services.Connector, tokenSecret, breakGlassUser, breakGlassPassword string) *AuthController {
	return &AuthController{
		Admins:             admins,
		Conn:               conn,
		TokenSecret:        tokenSecret,
		BreakGlassUser:     breakGlassUser,
		BreakGlassPassword: breakGlassPassword,
	}
}

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PerformAdminLogin handles POST /api/admin/login. On success the response
// carries a signed x-auth-token value and a cookie session is established for
// dashboard use. Every failure is a plain 401; the reason stays in the logs.
func (ac *AuthController) PerformAdminLogin(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Username and password are required",
		})
		return
	}

	ctx := c.Request.Context()
	ac.Conn.Connect(ctx)

	if err := ac.Admins.EnsureInitialAdmin(ctx); err != nil {
		logger.Warn.Printf("[PerformAdminLogin] could not ensure bootstrap admin: %v", err)
	}

	username := payload.Username
	admin, err := ac.Admins.FindByUsernameOrID(ctx, username)
	switch {
	case err == nil:
		if !admin.ValidatePassword(payload.Password) {
			logger.Warn.Printf("[PerformAdminLogin] invalid password for %s", username)
			ac.unauthorized(c)
			return
		}
		username = admin.Username
		if touchErr := ac.Admins.TouchLastLogin(ctx, admin.ID); touchErr != nil {
			logger.Warn.Printf("[PerformAdminLogin] could not update lastLogin for %s: %v", username, touchErr)
		}
	case err == store.ErrNotFound:
		logger.Warn.Printf("[PerformAdminLogin] no admin found for %q", username)
		ac.unauthorized(c)
		return
	default:
		// Store unreachable: only the break-glass identity may log in.
		if ac.BreakGlassUser == "" || username != ac.BreakGlassUser || payload.Password != ac.BreakGlassPassword {
			logger.Error.Printf("[PerformAdminLogin] store error during login: %v", err)
			ac.unauthorized(c)
			return
		}
		logger.Warn.Printf("[PerformAdminLogin] store unreachable, break-glass login for %s", username)
	}

	token := middleware.SignToken(username, ac.TokenSecret, time.Now())

	session := sessions.Default(c)
	session.Set(middleware.SessionAdminKey, username)
	if err := session.Save(); err != nil {
		logger.Warn.Printf("[PerformAdminLogin] failed to save session for %s: %v", username, err)
	}

	logger.Info.Printf("[PerformAdminLogin] admin login successful for %s", username)
	response := gin.H{
		"success": true,
		"token":   token,
	}
	if admin != nil {
		response["admin"] = admin
	}
	c.JSON(http.StatusOK, response)
}

func (ac *AuthController) unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "Invalid username or password",
	})
}
