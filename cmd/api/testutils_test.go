package main

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"artdb/proj/internal/api/tasks"
	"artdb/proj/internal/config"
	"artdb/proj/internal/domain/filters"
	"artdb/proj/internal/domain/models"
	"artdb/proj/internal/lib/validator"
	"artdb/proj/internal/services"
	"artdb/proj/internal/services/auth"
	"artdb/proj/internal/services/catalog"
	"artdb/proj/internal/services/reviews"
	"artdb/proj/internal/services/users"
	"artdb/proj/internal/storage"
	storagemodels "artdb/proj/internal/storage/postgres/models"

	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory stand-in for the postgres models, shared by all
// fake storages so tests can seed related rows in one place.
type fakeStore struct {
	categories []models.Category
	genres     []models.Genre
	titles     map[int64]*models.Title
	reviews    map[int64]*models.Review
	comments   map[int64]*models.Comment
	users      map[int64]*models.User
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		titles:   map[int64]*models.Title{},
		reviews:  map[int64]*models.Review{},
		comments: map[int64]*models.Comment{},
		users:    map[int64]*models.User{},
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addUser(username, email, role, codeHash string) *models.User {
	u := &models.User{
		ID:                   s.id(),
		Username:             username,
		Email:                email,
		Role:                 role,
		ConfirmationCodeHash: codeHash,
		CreatedAt:            time.Now(),
	}
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) addTitle(name string, year int32) *models.Title {
	t := &models.Title{ID: s.id(), Name: name, Year: year}
	s.titles[t.ID] = t
	return t
}

func (s *fakeStore) addReview(titleID int64, author *models.User, text string, score int32) *models.Review {
	rv := &models.Review{
		ID:       s.id(),
		TitleID:  titleID,
		AuthorID: author.ID,
		Author:   author.Username,
		Text:     text,
		Score:    score,
		PubDate:  time.Now(),
	}
	s.reviews[rv.ID] = rv
	return rv
}

type fakeCategories struct{ s *fakeStore }

func (f fakeCategories) List(_ context.Context, name string, _ filters.Filters) ([]models.Category, int, error) {
	out := make([]models.Category, 0, len(f.s.categories))
	for _, c := range f.s.categories {
		if name == "" || c.Name == name {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f fakeCategories) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	for i := range f.s.categories {
		if f.s.categories[i].Slug == slug {
			return &f.s.categories[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f fakeCategories) Insert(_ context.Context, name, slug string) (*models.Category, error) {
	if _, err := f.GetBySlug(context.Background(), slug); err == nil {
		return nil, storage.ErrConflict
	}
	c := models.Category{ID: f.s.id(), Name: name, Slug: slug}
	f.s.categories = append(f.s.categories, c)
	return &c, nil
}

func (f fakeCategories) DeleteBySlug(_ context.Context, slug string) error {
	for i := range f.s.categories {
		if f.s.categories[i].Slug == slug {
			f.s.categories = append(f.s.categories[:i], f.s.categories[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type fakeGenres struct{ s *fakeStore }

func (f fakeGenres) List(_ context.Context, name string, _ filters.Filters) ([]models.Genre, int, error) {
	out := make([]models.Genre, 0, len(f.s.genres))
	for _, g := range f.s.genres {
		if name == "" || g.Name == name {
			out = append(out, g)
		}
	}
	return out, len(out), nil
}

func (f fakeGenres) GetBySlugs(_ context.Context, slugs []string) ([]models.Genre, error) {
	var out []models.Genre
	for _, g := range f.s.genres {
		for _, slug := range slugs {
			if g.Slug == slug {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func (f fakeGenres) Insert(_ context.Context, name, slug string) (*models.Genre, error) {
	for _, g := range f.s.genres {
		if g.Slug == slug {
			return nil, storage.ErrConflict
		}
	}
	g := models.Genre{ID: f.s.id(), Name: name, Slug: slug}
	f.s.genres = append(f.s.genres, g)
	return &g, nil
}

func (f fakeGenres) DeleteBySlug(_ context.Context, slug string) error {
	for i := range f.s.genres {
		if f.s.genres[i].Slug == slug {
			f.s.genres = append(f.s.genres[:i], f.s.genres[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type fakeTitles struct{ s *fakeStore }

func (f fakeTitles) Get(_ context.Context, id int64) (*models.Title, error) {
	t, ok := f.s.titles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f fakeTitles) List(_ context.Context, _ storagemodels.TitleFilter, _ filters.Filters) ([]models.Title, int, error) {
	out := make([]models.Title, 0, len(f.s.titles))
	for _, t := range f.s.titles {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (f fakeTitles) Insert(_ context.Context, name string, year int32, description *string, _ *int64, _ []int64) (*models.Title, error) {
	t := f.s.addTitle(name, year)
	t.Description = description
	cp := *t
	return &cp, nil
}

func (f fakeTitles) Update(_ context.Context, params storagemodels.UpdateTitleParams) (*models.Title, error) {
	t, ok := f.s.titles[params.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if params.Name != nil {
		t.Name = *params.Name
	}
	if params.Year != nil {
		t.Year = *params.Year
	}
	if params.Description != nil {
		t.Description = params.Description
	}
	cp := *t
	return &cp, nil
}

func (f fakeTitles) Delete(_ context.Context, id int64) error {
	if _, ok := f.s.titles[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.s.titles, id)
	return nil
}

type fakeReviews struct{ s *fakeStore }

func (f fakeReviews) ListForTitle(_ context.Context, titleID int64, _ filters.Filters) ([]models.Review, int, error) {
	var out []models.Review
	for _, rv := range f.s.reviews {
		if rv.TitleID == titleID {
			out = append(out, *rv)
		}
	}
	return out, len(out), nil
}

func (f fakeReviews) Get(_ context.Context, titleID, reviewID int64) (*models.Review, error) {
	rv, ok := f.s.reviews[reviewID]
	if !ok || rv.TitleID != titleID {
		return nil, storage.ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (f fakeReviews) ExistsForAuthor(_ context.Context, titleID, authorID int64) (bool, error) {
	for _, rv := range f.s.reviews {
		if rv.TitleID == titleID && rv.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeReviews) Insert(_ context.Context, titleID, authorID int64, text string, score int32) (*models.Review, error) {
	for _, rv := range f.s.reviews {
		if rv.TitleID == titleID && rv.AuthorID == authorID {
			return nil, storage.ErrConflict
		}
	}
	author := f.s.users[authorID]
	rv := f.s.addReview(titleID, author, text, score)
	cp := *rv
	return &cp, nil
}

func (f fakeReviews) Update(_ context.Context, review *models.Review) (*models.Review, error) {
	rv, ok := f.s.reviews[review.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	rv.Text = review.Text
	rv.Score = review.Score
	cp := *rv
	return &cp, nil
}

func (f fakeReviews) Delete(_ context.Context, titleID, reviewID int64) error {
	rv, ok := f.s.reviews[reviewID]
	if !ok || rv.TitleID != titleID {
		return storage.ErrNotFound
	}
	delete(f.s.reviews, reviewID)
	return nil
}

type fakeComments struct{ s *fakeStore }

func (f fakeComments) ListForReview(_ context.Context, reviewID int64, _ filters.Filters) ([]models.Comment, int, error) {
	var out []models.Comment
	for _, c := range f.s.comments {
		if c.ReviewID == reviewID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (f fakeComments) Get(_ context.Context, reviewID, commentID int64) (*models.Comment, error) {
	c, ok := f.s.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeComments) Insert(_ context.Context, reviewID, authorID int64, text string) (*models.Comment, error) {
	author := f.s.users[authorID]
	c := &models.Comment{
		ID:       f.s.id(),
		ReviewID: reviewID,
		AuthorID: authorID,
		Author:   author.Username,
		Text:     text,
		PubDate:  time.Now(),
	}
	f.s.comments[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f fakeComments) Update(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	c, ok := f.s.comments[comment.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c.Text = comment.Text
	cp := *c
	return &cp, nil
}

func (f fakeComments) Delete(_ context.Context, reviewID, commentID int64) error {
	c, ok := f.s.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return storage.ErrNotFound
	}
	delete(f.s.comments, commentID)
	return nil
}

type fakeUsers struct{ s *fakeStore }

func (f fakeUsers) List(_ context.Context, username string, _ filters.Filters) ([]models.User, int, error) {
	var out []models.User
	for _, u := range f.s.users {
		if username == "" || u.Username == username {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (f fakeUsers) Get(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f fakeUsers) Insert(_ context.Context, username, email, bio, role, confirmationCodeHash string) (*models.User, error) {
	for _, u := range f.s.users {
		if u.Username == username || u.Email == email {
			return nil, storage.ErrConflict
		}
	}
	u := f.s.addUser(username, email, role, confirmationCodeHash)
	u.Bio = bio
	cp := *u
	return &cp, nil
}

func (f fakeUsers) Update(_ context.Context, user *models.User) (*models.User, error) {
	u, ok := f.s.users[user.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for _, other := range f.s.users {
		if other.ID != user.ID && other.Email == user.Email {
			return nil, storage.ErrConflict
		}
	}
	u.Email = user.Email
	u.Bio = user.Bio
	u.Role = user.Role
	cp := *u
	return &cp, nil
}

func (f fakeUsers) SetConfirmationCode(_ context.Context, userID int64, confirmationCodeHash string) error {
	u, ok := f.s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.ConfirmationCodeHash = confirmationCodeHash
	return nil
}

func (f fakeUsers) DeleteByUsername(_ context.Context, username string) error {
	for id, u := range f.s.users {
		if u.Username == username {
			delete(f.s.users, id)
			return nil
		}
	}
	return storage.ErrNotFound
}

// fakeMailer records outgoing mail instead of talking SMTP.
type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) Send(recipient string, _ string, _ any) error {
	m.sent = append(m.sent, recipient)
	return nil
}

// staticCodes always hands out the same confirmation code.
type staticCodes struct{ code string }

func (c staticCodes) NewCode() string { return c.code }

// syncExecutor runs background tasks inline so tests see their effects
// immediately.
type syncExecutor struct{}

func (syncExecutor) Add(task func()) { task() }

const testConfirmationCode = "2b1b4f40-9b3c-4a53-9f6a-6a1d9e3c0f7a"

func NewTestApplication(t *testing.T) (*Application, *fakeStore, *fakeMailer) {
	t.Helper()
	store := newFakeStore()
	mailer := &fakeMailer{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		AppSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
	titles := fakeTitles{store}
	usersStorage := fakeUsers{store}
	svc := &services.Services{
		Catalog: catalog.New(log, fakeCategories{store}, fakeGenres{store}, titles),
		Reviews: reviews.New(log, fakeReviews{store}, fakeComments{store}, titles),
		Users:   users.New(log, usersStorage),
		Auth: auth.New(
			log,
			usersStorage,
			mailer,
			staticCodes{testConfirmationCode},
			syncExecutor{},
			cfg.AppSecret,
			cfg.TokenTTL,
		),
	}
	app := &Application{
		cfg:       cfg,
		log:       log,
		validator: validator.New(),
		services:  svc,
		bgTasks:   tasks.New(log, 1, 10),
		Http:      &Http{log: log, cfg: cfg},
	}
	return app, store, mailer
}

// tokenFor seeds the stored confirmation code and exchanges it for a real
// signed token, so requests go through the same path production clients use.
func tokenFor(t *testing.T, app *Application, store *fakeStore, user *models.User) string {
	t.Helper()
	store.users[user.ID].ConfirmationCodeHash = auth.HashCode(testConfirmationCode)
	token, err := app.services.Auth.ExchangeToken(context.Background(), user.Username, testConfirmationCode)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *Application, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	app.routes().ServeHTTP(recorder, request)
	return recorder
}
