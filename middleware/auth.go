// Package middleware provides request filters and security checks for the
// application.
// File: middleware/auth.go
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"inohax-registration/logger"
	"inohax-registration/models"
	"inohax-registration/services"
	"inohax-registration/store"
)

// Session and context keys used by the auth gate.
const (
	SessionAdminKey = "adminUser"
	ContextAdminKey = "adminUser"
)

// AuthConfig carries the collaborators and secrets of the admin auth gate.
type AuthConfig struct {
	Admins store.AdminStore
	Conn   services.Connector

	// TokenSecret signs the x-auth-token value. Tokens from other secrets
	// are rejected outright.
	TokenSecret string

	// Break-glass identity, consulted only when the admin store is
	// unreachable. Disabled when either field is empty.
	BreakGlassUser     string
	BreakGlassPassword string
}

// ---------------- token signing ----------------

// SignToken produces an "username:timestamp:signature" token where the
// signature is an HMAC-SHA256 over "username:timestamp".
func SignToken(username, secret string, at time.Time) string {
	payload := fmt.Sprintf("%s:%d", username, at.Unix())
	return payload + ":" + signPayload(payload, secret)
}

// VerifyToken checks a three-part token's signature and returns the embedded
// username on success.
func VerifyToken(token, secret string) (string, bool) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return "", false
	}
	payload := parts[0] + ":" + parts[1]
	expected := signPayload(payload, secret)
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return "", false
	}
	return parts[0], true
}

func signPayload(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// ---------------- admin auth gate ----------------

// AdminAuth authenticates every request independently. Accepted credentials,
// in order:
//  1. a cookie session issued at login,
//  2. a signed x-auth-token header,
//  3. an Authorization: Basic header validated against the admin store.
//
// When the store is unreachable the operator-supplied break-glass pair is the
// only way in. Anything else gets 401.
func AdminAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg.Conn.Connect(c.Request.Context())

		// 1. cookie session from a previous login. The stored username is
		// still checked against the store so a deleted admin does not ride
		// a live cookie until it expires.
		session := sessions.Default(c)
		if username, ok := session.Get(SessionAdminKey).(string); ok && username != "" {
			if cfg.authenticateStoredUser(c, username) {
				logger.Debug.Printf("[AdminAuth] session auth for %s", username)
				c.Set(ContextAdminKey, username)
				c.Next()
				return
			}
			session.Delete(SessionAdminKey)
			if err := session.Save(); err != nil {
				logger.Warn.Printf("[AdminAuth] could not clear stale session: %v", err)
			}
		}

		// 2. signed token header
		if token := c.GetHeader("x-auth-token"); token != "" {
			if username, ok := VerifyToken(token, cfg.TokenSecret); ok {
				if cfg.authenticateStoredUser(c, username) {
					c.Set(ContextAdminKey, username)
					c.Next()
					return
				}
			} else {
				logger.Warn.Println("[AdminAuth] rejected token with invalid signature")
			}
		}

		// 3. Basic auth
		if username, ok := cfg.authenticateBasic(c); ok {
			c.Set(ContextAdminKey, username)
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		c.Abort()
	}
}

// authenticateStoredUser confirms a username carried by an already-trusted
// credential (signed token or cookie session) against the store, touching
// lastLogin on success.
func (cfg AuthConfig) authenticateStoredUser(c *gin.Context, username string) bool {
	ctx := c.Request.Context()
	if err := cfg.Admins.EnsureInitialAdmin(ctx); err != nil {
		logger.Warn.Printf("[AdminAuth] could not ensure bootstrap admin: %v", err)
	}

	admin, err := cfg.Admins.FindByUsernameOrID(ctx, username)
	if err == store.ErrNotFound {
		logger.Warn.Printf("[AdminAuth] credential names %q but no such admin exists", username)
		return false
	}
	if err != nil {
		// Store unreachable: the credential already checked out, but only
		// the break-glass identity may proceed without a lookup.
		if cfg.breakGlassConfigured() && username == cfg.BreakGlassUser {
			logger.Warn.Printf("[AdminAuth] store unreachable, break-glass auth for %s", username)
			return true
		}
		logger.Error.Printf("[AdminAuth] store error during auth: %v", err)
		return false
	}

	cfg.touchLastLogin(ctx, admin)
	logger.Info.Printf("[AdminAuth] auth successful for %s (id %s)", admin.Username, admin.AdminID)
	return true
}

// authenticateBasic validates an Authorization: Basic header against the
// store, falling back to the break-glass pair when the store is unreachable.
func (cfg AuthConfig) authenticateBasic(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Basic ") {
		return "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		logger.Warn.Println("[AdminAuth] malformed Basic auth header")
		return "", false
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", false
	}

	ctx := c.Request.Context()
	if err := cfg.Admins.EnsureInitialAdmin(ctx); err != nil {
		logger.Warn.Printf("[AdminAuth] could not ensure bootstrap admin: %v", err)
	}

	admin, err := cfg.Admins.FindByUsernameOrID(ctx, username)
	if err == store.ErrNotFound {
		logger.Warn.Printf("[AdminAuth] no admin found for username/adminId %q", username)
		return "", false
	}
	if err != nil {
		if cfg.checkBreakGlass(username, password) {
			logger.Warn.Printf("[AdminAuth] store unreachable, break-glass basic auth for %s", username)
			return username, true
		}
		logger.Error.Printf("[AdminAuth] basic auth store error: %v", err)
		return "", false
	}

	if !admin.ValidatePassword(password) {
		logger.Warn.Printf("[AdminAuth] invalid password for admin %s (id %s)", admin.Username, admin.AdminID)
		return "", false
	}

	cfg.touchLastLogin(ctx, admin)
	logger.Info.Printf("[AdminAuth] basic auth successful for %s (id %s)", admin.Username, admin.AdminID)
	return admin.Username, true
}

func (cfg AuthConfig) breakGlassConfigured() bool {
	return cfg.BreakGlassUser != "" && cfg.BreakGlassPassword != ""
}

func (cfg AuthConfig) checkBreakGlass(username, password string) bool {
	if !cfg.breakGlassConfigured() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.BreakGlassUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.BreakGlassPassword)) == 1
	return userOK && passOK
}

func (cfg AuthConfig) touchLastLogin(ctx context.Context, admin *models.AdminUser) {
	if err := cfg.Admins.TouchLastLogin(ctx, admin.ID); err != nil {
		logger.Warn.Printf("[AdminAuth] could not update lastLogin for %s: %v", admin.Username, err)
	}
}
