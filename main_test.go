// main_test.go
package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inohax-registration/config"
	"inohax-registration/store"
)

type noopNotifier struct{}

func (noopNotifier) SendConfirmation(toEmail, leaderName, teamName string) {}

func newAppRouter(connected bool) (*gin.Engine, *store.FakeRegistrationStore, *store.FakeAdminStore) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		TokenSecret:    "main-test-secret",
		SessionSecret:  "main-test-session",
		ApplicationURL: "http://localhost:8080",
	}
	regs := store.NewFakeRegistrationStore()
	admins := store.NewFakeAdminStore()
	router := setupRouter(cfg, &store.FakeConnector{ConnectedVal: connected}, regs, admins, noopNotifier{})
	return router, regs, admins
}

// TestHealthEndpoint verifies the health check is wired and public.
func TestHealthEndpoint(t *testing.T) {
	router, _, _ := newAppRouter(true)

	req, _ := http.NewRequest("GET", "/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "ok")
}

// TestAdminRoutesRequireAuth verifies every admin route sits behind the gate.
func TestAdminRoutesRequireAuth(t *testing.T) {
	router, _, _ := newAppRouter(true)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/admin/registrations"},
		{"DELETE", "/api/admin/registrations?id=x"},
		{"GET", "/api/admin/users"},
		{"POST", "/api/admin/users"},
		{"PUT", "/api/admin/users"},
		{"DELETE", "/api/admin/users?id=x"},
		{"GET", "/api/admin/feed"},
	} {
		req, _ := http.NewRequest(route.method, route.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equalf(t, http.StatusUnauthorized, resp.Code, "%s %s should be gated", route.method, route.path)
	}
}

// TestRegistrationRoundTrip submits a registration through the public API and
// reads it back through the authenticated admin API.
func TestRegistrationRoundTrip(t *testing.T) {
	router, regs, _ := newAppRouter(true)

	payload, _ := json.Marshal(map[string]interface{}{
		"teamName":          "Full Stack Crew",
		"teamLeaderName":    "Priya",
		"teamLeaderPhone":   "9876543210",
		"teamLeaderEmail":   "priya@example.com",
		"inovactSocialLink": "https://api.inovact.in/v1/post?id=42",
	})
	req, _ := http.NewRequest("POST", "/api/registration", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Len(t, regs.Registrations, 1)

	// Bootstrap admin is seeded on first authenticated request.
	req, _ = http.NewRequest("GET", "/api/admin/registrations", nil)
	req.SetBasicAuth("Sarang", "Inohax!2.0")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	list := body["registrations"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "Full Stack Crew", list[0].(map[string]interface{})["teamName"])
}

// TestLoginEndpointWired verifies the login route issues tokens from the
// configured secret.
func TestLoginEndpointWired(t *testing.T) {
	router, _, _ := newAppRouter(true)

	payload, _ := json.Marshal(map[string]string{
		"username": "Sarang",
		"password": "Inohax!2.0",
	})
	req, _ := http.NewRequest("POST", "/api/admin/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotEmpty(t, body["token"])
}
