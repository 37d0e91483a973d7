// Package controllers provides the HTTP handlers for the registration
// service.
// File: controllers/registration_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"inohax-registration/logger"
	"inohax-registration/models"
	"inohax-registration/services"
)

// RegistrationController handles public registration submissions.
type RegistrationController struct {
	Service        *services.RegistrationService
	ApplicationURL string
}

// NewRegistrationController wires the intake handlers.
func NewRegistrationController(service *services.RegistrationService, applicationURL string) *RegistrationController {
	return &RegistrationController{
		Service:        service,
		ApplicationURL: applicationURL,
	}
}

// Register handles POST /api/registration.
// Responses: 201 with the accepted record, 400 for validation problems, 403
// when the window is closed or registrations are disabled.
func (rc *RegistrationController) Register(c *gin.Context) {
	rc.handleSubmission(c, false, "Registration successful! A confirmation email is on its way.")
}

// TestRegister handles POST /api/test-registration. Identical validation, but
// the record lands in the isolated test collection and no email is sent.
func (rc *RegistrationController) TestRegister(c *gin.Context) {
	rc.handleSubmission(c, true, "Test registration processed successfully. No emails were sent.")
}

func (rc *RegistrationController) handleSubmission(c *gin.Context, test bool, successMessage string) {
	var req models.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn.Printf("[handleSubmission] rejected malformed payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   bindingErrorMessage(err),
		})
		return
	}

	reg, saved, err := rc.Service.Submit(c.Request.Context(), &req, test)
	if err != nil {
		status, code := submissionErrorResponse(err)
		c.JSON(status, gin.H{
			"success": false,
			"error":   code,
			"message": err.Error(),
		})
		return
	}

	if !saved {
		logger.Warn.Printf("[handleSubmission] registration for team %q accepted without durable save", reg.TeamName)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"registration": reg,
		"message":      successMessage,
	})
}

// ConfirmationQRCode handles GET /api/registration/qrcode. It returns a PNG
// QR code linking to the confirmation page for the given team.
func (rc *RegistrationController) ConfirmationQRCode(c *gin.Context) {
	size := 256
	if v := c.Query("size"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 1024 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid size parameter"})
			return
		}
		size = parsed
	}

	png, err := services.GenerateConfirmationQR(rc.ApplicationURL, c.Query("teamName"), c.Query("teamLeaderName"), size, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ---------------- error mapping ----------------

func submissionErrorResponse(err error) (int, string) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrRegistrationsStopped):
		return http.StatusForbidden, "REGISTRATIONS_STOPPED"
	case errors.Is(err, services.ErrWindowClosed):
		return http.StatusForbidden, "REGISTRATION_PERIOD_ENDED"
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// bindingErrorMessage turns a gin binding failure into a message naming the
// first offending field.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := jsonFieldName(verrs[0].Field())
		if verrs[0].Tag() == "email" {
			return fmt.Sprintf("Please enter a valid email address for %s", field)
		}
		return fmt.Sprintf("Missing required field: %s", field)
	}
	return "Invalid request body"
}

// jsonFieldName lower-cases the first rune of a struct field name so error
// messages match the JSON payload keys.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	runes := []rune(field)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
