// file: controllers/admin_users_controller_test.go
package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inohax-registration/store"
)

func setupUsersRouter(admins store.AdminStore) *gin.Engine {
	uc := NewAdminUsersController(admins)
	router := newTestRouter()
	router.GET("/api/admin/users", uc.List)
	router.POST("/api/admin/users", uc.Create)
	router.PUT("/api/admin/users", uc.Update)
	router.DELETE("/api/admin/users", uc.Delete)
	return router
}

// Test: listing with an empty store seeds and returns the bootstrap admin,
// without any password material in the response.
func TestAdminUsersList_SeedsBootstrap(t *testing.T) {
	admins := store.NewFakeAdminStore()
	router := setupUsersRouter(admins)

	w := performJSON(t, router, "GET", "/api/admin/users", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	list := body["admins"].([]interface{})
	require.Len(t, list, 1)

	boot := list[0].(map[string]interface{})
	assert.Equal(t, "Sarang", boot["username"])
	assert.Equal(t, "01", boot["adminId"])
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.NotContains(t, w.Body.String(), "passwordSalt")
}

// Test: creating an admin assigns the next sequential id.
func TestAdminUsersCreate(t *testing.T) {
	admins := store.NewFakeAdminStore()
	require.NoError(t, admins.EnsureInitialAdmin(context.Background()))
	router := setupUsersRouter(admins)

	w := performJSON(t, router, "POST", "/api/admin/users", map[string]string{
		"username": "newbie",
		"password": "pw123",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	admin := decodeBody(t, w)["admin"].(map[string]interface{})
	assert.Equal(t, "newbie", admin["username"])
	assert.Equal(t, "02", admin["adminId"])
}

// Test: missing fields and duplicate usernames are 400s.
func TestAdminUsersCreate_Invalid(t *testing.T) {
	admins := store.NewFakeAdminStore()
	_, err := admins.Create(context.Background(), "taken", "pw")
	require.NoError(t, err)
	router := setupUsersRouter(admins)

	w := performJSON(t, router, "POST", "/api/admin/users", map[string]string{"username": "nopass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, router, "POST", "/api/admin/users", map[string]string{
		"username": "taken",
		"password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already exists", decodeBody(t, w)["error"])
}

// Test: update renames an admin and optionally rotates the password.
func TestAdminUsersUpdate(t *testing.T) {
	admins := store.NewFakeAdminStore()
	created, err := admins.Create(context.Background(), "old-name", "old-pw")
	require.NoError(t, err)
	router := setupUsersRouter(admins)

	w := performJSON(t, router, "PUT", "/api/admin/users", map[string]string{
		"id":       created.ID.Hex(),
		"username": "new-name",
		"password": "new-pw",
	})

	require.Equal(t, http.StatusOK, w.Code)

	updated, err := admins.FindByUsernameOrID(context.Background(), "new-name")
	require.NoError(t, err)
	assert.True(t, updated.ValidatePassword("new-pw"))
	assert.False(t, updated.ValidatePassword("old-pw"))
}

// Test: updating an unknown admin is a 404.
func TestAdminUsersUpdate_NotFound(t *testing.T) {
	admins := store.NewFakeAdminStore()
	_, err := admins.Create(context.Background(), "someone", "pw")
	require.NoError(t, err)
	router := setupUsersRouter(admins)

	w := performJSON(t, router, "PUT", "/api/admin/users", map[string]string{
		"id":       "64b000000000000000000000",
		"username": "ghost",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Test: with exactly one admin, deletion is refused and the admin survives;
// with two admins, deleting one succeeds and exactly one remains.
func TestAdminUsersDelete_LastAdminGuard(t *testing.T) {
	admins := store.NewFakeAdminStore()
	only, err := admins.Create(context.Background(), "only", "pw")
	require.NoError(t, err)
	router := setupUsersRouter(admins)

	w := performJSON(t, router, "DELETE", "/api/admin/users?id="+only.ID.Hex(), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete the last admin user", decodeBody(t, w)["error"])

	count, err := admins.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	second, err := admins.Create(context.Background(), "second", "pw")
	require.NoError(t, err)

	w = performJSON(t, router, "DELETE", "/api/admin/users?id="+second.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	count, err = admins.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// Test: deleting without an id or with an unknown id fails cleanly.
func TestAdminUsersDelete_BadRequests(t *testing.T) {
	admins := store.NewFakeAdminStore()
	for _, name := range []string{"a", "b"} {
		_, err := admins.Create(context.Background(), name, "pw")
		require.NoError(t, err)
	}
	router := setupUsersRouter(admins)

	w := performJSON(t, router, "DELETE", "/api/admin/users", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, router, "DELETE", "/api/admin/users?id=64b000000000000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
