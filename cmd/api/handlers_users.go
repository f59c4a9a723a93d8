package main

import (
	"errors"
	"net/http"

	"artdb/proj/internal/domain/filters"
	"artdb/proj/internal/domain/models"
	libvalidator "artdb/proj/internal/lib/validator"
	"artdb/proj/internal/permissions"
	"artdb/proj/internal/services/users"

	"github.com/go-chi/chi/v5"
)

func (app *Application) usersErrToResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, users.ErrUserExists):
		app.Http.ValidationFailed(w, r, map[string]string{"username": err.Error()})
	default:
		app.Http.ServerError(w, r, err, "")
	}
}

func (app *Application) getProfile(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceOwnProfile, true) {
		return
	}
	app.Http.Ok(w, r, envelop{"user": app.contextUser(r)}, "")
}

func (app *Application) updateProfile(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceOwnProfile, true) {
		return
	}
	var input struct {
		Email *string `json:"email" validate:"omitempty,email,max=254"`
		Bio   *string `json:"bio"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	user, err := app.services.Users.UpdateProfile(r.Context(), app.contextUser(r), users.UpdateUserParams{
		Email: input.Email,
		Bio:   input.Bio,
	})
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			app.Http.ValidationFailed(w, r, map[string]string{"email": err.Error()})
			return
		}
		app.usersErrToResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) listUsers(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceAccounts, false) {
		return
	}
	f, ok := app.extractFilters(w, r, "username", "id", "username", "email", "role")
	if !ok {
		return
	}
	userList, totalRecords, err := app.services.Users.List(r.Context(), r.URL.Query().Get("username"), f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"users":    userList,
		"metadata": filters.NewMetadata(f, totalRecords),
	}, "")
}

func (app *Application) createUser(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceAccounts, false) {
		return
	}
	var input struct {
		Username string `json:"username" validate:"required,max=150,username,notme"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Bio      string `json:"bio"`
		Role     string `json:"role" validate:"omitempty,oneof=user moderator admin"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}
	user, err := app.services.Users.Create(r.Context(), input.Username, input.Email, input.Bio, input.Role)
	if err != nil {
		app.usersErrToResponse(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"user": user}, "")
}

func (app *Application) getUser(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceAccounts, false) {
		return
	}
	user, err := app.services.Users.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		app.usersErrToResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) updateUser(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceAccounts, false) {
		return
	}
	var input struct {
		Email *string `json:"email" validate:"omitempty,email,max=254"`
		Bio   *string `json:"bio"`
		Role  *string `json:"role" validate:"omitempty,oneof=user moderator admin"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	user, err := app.services.Users.Update(r.Context(), chi.URLParam(r, "username"), users.UpdateUserParams{
		Email: input.Email,
		Bio:   input.Bio,
		Role:  input.Role,
	})
	if err != nil {
		app.usersErrToResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) deleteUser(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceAccounts, false) {
		return
	}
	if err := app.services.Users.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		app.usersErrToResponse(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}
