package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"artdb/proj/internal/domain/filters"
	"artdb/proj/internal/domain/models"
	"artdb/proj/internal/permissions"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

func (app *Application) extractIDParam(w http.ResponseWriter, r *http.Request, param string) (id int64, extracted bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		app.Http.NotFound(w, r, "Invalid identifier in URL")
		return 0, false
	}
	return id, true
}

func (app *Application) decodeQuery(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		app.Http.BadRequest(w, r, "Invalid query parameters")
		return false
	}
	return true
}

func (app *Application) extractFilters(w http.ResponseWriter, r *http.Request, defaultSort string, safelist ...string) (filters.Filters, bool) {
	var f filters.Filters
	if !app.decodeQuery(w, r, &f) {
		return f, false
	}
	f.SortSafelist = safelist
	f.Normalize(defaultSort)
	if !f.Valid() {
		app.Http.BadRequest(w, r, "Unknown sort field: "+f.Sort)
		return f, false
	}
	return f, true
}

func (app *Application) contextUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(CtxKeyUser).(*models.User)
	return user
}

// authorize runs the pure permission check and writes the 401/403 itself.
// Returns true when the handler may proceed.
func (app *Application) authorize(w http.ResponseWriter, r *http.Request, resource permissions.Resource, isOwner bool) bool {
	if err := permissions.Decide(app.contextUser(r), r.Method, resource, isOwner); err != nil {
		if errors.Is(err, permissions.ErrNotAuthenticated) {
			app.Http.Unauthorized(w, r, "Authentication required")
		} else {
			app.Http.Forbidden(w, r, "Insufficient permissions")
		}
		return false
	}
	return true
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	src := http.MaxBytesReader(w, r.Body, int64(maxBytes))
	defer io.Copy(io.Discard, src)
	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return handleJsonErr(err)
	}
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func handleJsonErr(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")

	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}
