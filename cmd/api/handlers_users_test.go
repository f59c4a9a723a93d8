package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"artdb/proj/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	t.Run("get own profile", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		user := store.addUser("reader", "reader@example.com", models.RoleUser, "")
		token := tokenFor(t, app, store, user)

		recorder := doRequest(t, app, http.MethodGet, "/api/v1/users/me", token, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		profile, ok := resp.Data["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "reader", profile["username"])
	})
	t.Run("anonymous gets 401", func(t *testing.T) {
		app, _, _ := NewTestApplication(t)
		recorder := doRequest(t, app, http.MethodGet, "/api/v1/users/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
	t.Run("profile update cannot change role", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		user := store.addUser("reader", "reader@example.com", models.RoleUser, "")
		token := tokenFor(t, app, store, user)

		recorder := doRequest(t, app, http.MethodPatch, "/api/v1/users/me", token,
			`{"bio": "updated", "role": "admin"}`)
		// Unknown fields are rejected outright, the role stays put.
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, models.RoleUser, store.users[user.ID].Role)
	})
	t.Run("profile update changes bio", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		user := store.addUser("reader", "reader@example.com", models.RoleUser, "")
		token := tokenFor(t, app, store, user)

		recorder := doRequest(t, app, http.MethodPatch, "/api/v1/users/me", token, `{"bio": "updated"}`)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "updated", store.users[user.ID].Bio)
	})
}

func TestManageUsers(t *testing.T) {
	t.Run("admin creates a moderator", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		token := adminToken(t, app, store)

		recorder := doRequest(t, app, http.MethodPost, "/api/v1/users/", token,
			`{"username": "mod", "email": "mod@example.com", "role": "moderator"}`)
		require.Equal(t, http.StatusCreated, recorder.Code)

		user, err := app.services.Users.GetByUsername(context.Background(), "mod")
		require.NoError(t, err)
		assert.Equal(t, models.RoleModerator, user.Role)
	})
	t.Run("moderator cannot manage accounts", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		moderator := store.addUser("mod", "mod@example.com", models.RoleModerator, "")
		token := tokenFor(t, app, store, moderator)

		recorder := doRequest(t, app, http.MethodGet, "/api/v1/users/", token, "")
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
	t.Run("admin promotes a user", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		user := store.addUser("reader", "reader@example.com", models.RoleUser, "")
		token := adminToken(t, app, store)

		recorder := doRequest(t, app, http.MethodPatch, "/api/v1/users/reader", token,
			`{"role": "moderator"}`)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, models.RoleModerator, store.users[user.ID].Role)
	})
	t.Run("invalid role rejected", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		store.addUser("reader", "reader@example.com", models.RoleUser, "")
		token := adminToken(t, app, store)

		recorder := doRequest(t, app, http.MethodPatch, "/api/v1/users/reader", token,
			`{"role": "superuser"}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
	t.Run("admin deletes a user", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		store.addUser("reader", "reader@example.com", models.RoleUser, "")
		token := adminToken(t, app, store)

		recorder := doRequest(t, app, http.MethodDelete, "/api/v1/users/reader", token, "")
		assert.Equal(t, http.StatusNoContent, recorder.Code)

		recorder = doRequest(t, app, http.MethodGet, "/api/v1/users/reader", token, "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
