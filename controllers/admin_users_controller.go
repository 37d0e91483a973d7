// File: controllers/admin_users_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inohax-registration/logger"
	"inohax-registration/store"
)

// ---------------- Admin Users Controller ----------------

// AdminUsersController provides CRUD over admin accounts for authenticated
// admins.
type AdminUsersController struct {
	Admins store.AdminStore
}

// NewAdminUsersController initializes a new instance of AdminUsersController.
func NewAdminUsersController(admins store.AdminStore) *AdminUsersController {
	return &AdminUsersController{Admins: admins}
}

type adminUserPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// List handles GET /api/admin/users. Password material never leaves the
// store thanks to the model's json tags.
func (uc *AdminUsersController) List(c *gin.Context) {
	ctx := c.Request.Context()
	if err := uc.Admins.EnsureInitialAdmin(ctx); err != nil {
		logger.Warn.Printf("[List] could not ensure bootstrap admin: %v", err)
	}

	admins, err := uc.Admins.List(ctx)
	if err != nil {
		logger.Error.Printf("[List] error fetching admin users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch admin users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "admins": admins})
}

// Create handles POST /api/admin/users.
func (uc *AdminUsersController) Create(c *gin.Context) {
	var payload adminUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Username == "" || payload.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Username and password are required",
		})
		return
	}

	admin, err := uc.Admins.Create(c.Request.Context(), payload.Username, payload.Password)
	switch err {
	case nil:
		c.JSON(http.StatusCreated, gin.H{"success": true, "admin": admin})
	case store.ErrUsernameTaken:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Username already exists",
		})
	default:
		logger.Error.Printf("[Create] error creating admin user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create admin user",
		})
	}
}

// Update handles PUT /api/admin/users. Username is always updated; the
// password only when supplied.
func (uc *AdminUsersController) Update(c *gin.Context) {
	var payload adminUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.ID == "" || payload.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "ID and username are required",
		})
		return
	}

	admin, err := uc.Admins.Update(c.Request.Context(), payload.ID, payload.Username, payload.Password)
	switch err {
	case nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "admin": admin})
	case store.ErrNotFound, store.ErrInvalidID:
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Admin user not found",
		})
	case store.ErrUsernameTaken:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Username already exists",
		})
	default:
		logger.Error.Printf("[Update] error updating admin user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to update admin user",
		})
	}
}

// Delete handles DELETE /api/admin/users?id=<id>. Deleting the last remaining
// admin is refused.
func (uc *AdminUsersController) Delete(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Admin ID is required",
		})
		return
	}

	err := uc.Admins.Delete(c.Request.Context(), id)
	switch err {
	case nil:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Admin user deleted successfully",
		})
	case store.ErrLastAdmin:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Cannot delete the last admin user",
		})
	case store.ErrNotFound, store.ErrInvalidID:
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Admin user not found",
		})
	default:
		logger.Error.Printf("[Delete] error deleting admin user %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to delete admin user",
		})
	}
}
