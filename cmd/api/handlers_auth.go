package main

import (
	"errors"
	"net/http"

	libvalidator "artdb/proj/internal/lib/validator"
	"artdb/proj/internal/services/auth"
)

func (app *Application) signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,max=150,username,notme"`
		Email    string `json:"email" validate:"required,email,max=254"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	if err := app.services.Auth.Signup(r.Context(), input.Username, input.Email); err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			app.Http.ValidationFailed(w, r, map[string]string{"username": err.Error()})
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"username": input.Username,
		"email":    input.Email,
	}, "Confirmation code sent")
}

func (app *Application) exchangeToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username         string `json:"username" validate:"required"`
		ConfirmationCode string `json:"confirmation_code" validate:"required"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	token, err := app.services.Auth.ExchangeToken(r.Context(), input.Username, input.ConfirmationCode)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			app.Http.NotFound(w, r, err.Error())
		case errors.Is(err, auth.ErrInvalidConfirmationCode):
			app.Http.BadRequest(w, r, err.Error())
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"token": token}, "")
}
