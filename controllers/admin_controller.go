// File: controllers/admin_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inohax-registration/logger"
	"inohax-registration/store"
)

// ---------------- Admin Controller ----------------

// AdminController exposes the registration browser for authenticated admins.
type AdminController struct {
	Registrations store.RegistrationStore
}

// NewAdminController initializes a new instance of AdminController.
func NewAdminController(registrations store.RegistrationStore) *AdminController {
	return &AdminController{Registrations: registrations}
}

// ListRegistrations handles GET /api/admin/registrations and returns every
// registration, newest first. Pagination is left to the dashboard client.
func (ac *AdminController) ListRegistrations(c *gin.Context) {
	registrations, err := ac.Registrations.List(c.Request.Context())
	if err != nil {
		logger.Error.Printf("[ListRegistrations] error fetching registrations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch registrations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"registrations": registrations,
	})
}

// DeleteRegistration handles DELETE /api/admin/registrations?id=<id>.
func (ac *AdminController) DeleteRegistration(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Registration ID is required",
		})
		return
	}

	err := ac.Registrations.Delete(c.Request.Context(), id)
	switch err {
	case nil:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Registration deleted successfully",
		})
	case store.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Registration not found",
		})
	case store.ErrInvalidID:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid registration ID",
		})
	default:
		logger.Error.Printf("[DeleteRegistration] error deleting registration %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to delete registration",
		})
	}
}
