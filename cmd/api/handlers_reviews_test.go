package main

import (
	"fmt"
	"net/http"
	"testing"

	"artdb/proj/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReview(t *testing.T) {
	t.Run("authenticated user posts a review", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		title := store.addTitle("Solaris", 1972)
		user := store.addUser("reader", "reader@example.com", models.RoleUser, "")
		token := tokenFor(t, app, store, user)

		path := fmt.Sprintf("/api/v1/titles/%d/reviews/", title.ID)
		recorder := doRequest(t, app, http.MethodPost, path, token, `{"text": "great", "score": 9}`)
		assert.Equal(t, http.StatusCreated, recorder.Code)
	})
	t.Run("anonymous gets 401", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		title := store.addTitle("Solaris", 1972)

		path := fmt.Sprintf("/api/v1/titles/%d/reviews/", title.ID)
		recorder := doRequest(t, app, http.MethodPost, path, "", `{"text": "great", "score": 9}`)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
	t.Run("second review for same title rejected", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		title := store.addTitle("Solaris", 1972)
		user := store.addUser("reader", "reader@example.com", models.RoleUser, "")
		store.addReview(title.ID, user, "first take", 7)
		token := tokenFor(t, app, store, user)

		path := fmt.Sprintf("/api/v1/titles/%d/reviews/", title.ID)
		recorder := doRequest(t, app, http.MethodPost, path, token, `{"text": "second take", "score": 3}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
	t.Run("score out of range", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		title := store.addTitle("Solaris", 1972)
		user := store.addUser("reader", "reader@example.com", models.RoleUser, "")
		token := tokenFor(t, app, store, user)

		path := fmt.Sprintf("/api/v1/titles/%d/reviews/", title.ID)
		recorder := doRequest(t, app, http.MethodPost, path, token, `{"text": "meh", "score": 11}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
	t.Run("unknown title", func(t *testing.T) {
		app, store, _ := NewTestApplication(t)
		user := store.addUser("reader", "reader@example.com", models.RoleUser, "")
		token := tokenFor(t, app, store, user)

		recorder := doRequest(t, app, http.MethodPost, "/api/v1/titles/999/reviews/", token, `{"text": "great", "score": 9}`)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestDeleteReview(t *testing.T) {
	setup := func(t *testing.T) (*Application, *fakeStore, *models.Title, *models.Review) {
		app, store, _ := NewTestApplication(t)
		title := store.addTitle("Solaris", 1972)
		author := store.addUser("author", "author@example.com", models.RoleUser, "")
		review := store.addReview(title.ID, author, "great", 9)
		return app, store, title, review
	}

	t.Run("author deletes own review", func(t *testing.T) {
		app, store, title, review := setup(t)
		author := store.users[review.AuthorID]
		token := tokenFor(t, app, store, author)

		path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d", title.ID, review.ID)
		recorder := doRequest(t, app, http.MethodDelete, path, token, "")
		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
	t.Run("moderator deletes foreign review", func(t *testing.T) {
		app, store, title, review := setup(t)
		moderator := store.addUser("mod", "mod@example.com", models.RoleModerator, "")
		token := tokenFor(t, app, store, moderator)

		path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d", title.ID, review.ID)
		recorder := doRequest(t, app, http.MethodDelete, path, token, "")
		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
	t.Run("plain user cannot delete foreign review", func(t *testing.T) {
		app, store, title, review := setup(t)
		other := store.addUser("other", "other@example.com", models.RoleUser, "")
		token := tokenFor(t, app, store, other)

		path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d", title.ID, review.ID)
		recorder := doRequest(t, app, http.MethodDelete, path, token, "")
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		_, ok := store.reviews[review.ID]
		assert.True(t, ok)
	})
}

func TestUpdateReview(t *testing.T) {
	app, store, _ := NewTestApplication(t)
	title := store.addTitle("Solaris", 1972)
	author := store.addUser("author", "author@example.com", models.RoleUser, "")
	review := store.addReview(title.ID, author, "great", 9)
	token := tokenFor(t, app, store, author)

	path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d", title.ID, review.ID)
	recorder := doRequest(t, app, http.MethodPatch, path, token, `{"score": 5}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int32(5), store.reviews[review.ID].Score)
	assert.Equal(t, "great", store.reviews[review.ID].Text)
}

func TestComments(t *testing.T) {
	app, store, _ := NewTestApplication(t)
	title := store.addTitle("Solaris", 1972)
	author := store.addUser("author", "author@example.com", models.RoleUser, "")
	review := store.addReview(title.ID, author, "great", 9)
	commenter := store.addUser("commenter", "commenter@example.com", models.RoleUser, "")
	token := tokenFor(t, app, store, commenter)

	base := fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/", title.ID, review.ID)

	recorder := doRequest(t, app, http.MethodPost, base, token, `{"text": "agreed"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doRequest(t, app, http.MethodGet, base, "", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	t.Run("comment under mismatched review", func(t *testing.T) {
		otherTitle := store.addTitle("Stalker", 1979)
		path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/", otherTitle.ID, review.ID)
		recorder := doRequest(t, app, http.MethodPost, path, token, `{"text": "lost"}`)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
