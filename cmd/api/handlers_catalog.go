package main

import (
	"errors"
	"net/http"

	"artdb/proj/internal/domain/filters"
	libvalidator "artdb/proj/internal/lib/validator"
	"artdb/proj/internal/permissions"
	"artdb/proj/internal/services/catalog"
	storagemodels "artdb/proj/internal/storage/postgres/models"

	"github.com/go-chi/chi/v5"
)

func (app *Application) listCategories(w http.ResponseWriter, r *http.Request) {
	f, ok := app.extractFilters(w, r, "name", "name", "slug")
	if !ok {
		return
	}
	categories, totalRecords, err := app.services.Catalog.ListCategories(r.Context(), r.URL.Query().Get("name"), f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"categories": categories,
		"metadata":   filters.NewMetadata(f, totalRecords),
	}, "")
}

func (app *Application) createCategory(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceCatalog, false) {
		return
	}
	var input struct {
		Name string `json:"name" validate:"required,max=256"`
		Slug string `json:"slug" validate:"required,max=50,slug"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	category, err := app.services.Catalog.CreateCategory(r.Context(), input.Name, input.Slug)
	if err != nil {
		if errors.Is(err, catalog.ErrSlugTaken) {
			app.Http.ValidationFailed(w, r, map[string]string{"slug": err.Error()})
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Created(w, r, envelop{"category": category}, "")
}

func (app *Application) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceCatalog, false) {
		return
	}
	err := app.services.Catalog.DeleteCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) listGenres(w http.ResponseWriter, r *http.Request) {
	f, ok := app.extractFilters(w, r, "name", "name", "slug")
	if !ok {
		return
	}
	genres, totalRecords, err := app.services.Catalog.ListGenres(r.Context(), r.URL.Query().Get("name"), f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"genres":   genres,
		"metadata": filters.NewMetadata(f, totalRecords),
	}, "")
}

func (app *Application) createGenre(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceCatalog, false) {
		return
	}
	var input struct {
		Name string `json:"name" validate:"required,max=256"`
		Slug string `json:"slug" validate:"required,max=50,slug"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	genre, err := app.services.Catalog.CreateGenre(r.Context(), input.Name, input.Slug)
	if err != nil {
		if errors.Is(err, catalog.ErrSlugTaken) {
			app.Http.ValidationFailed(w, r, map[string]string{"slug": err.Error()})
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Created(w, r, envelop{"genre": genre}, "")
}

func (app *Application) deleteGenre(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceCatalog, false) {
		return
	}
	err := app.services.Catalog.DeleteGenre(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrGenreNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) listTitles(w http.ResponseWriter, r *http.Request) {
	f, ok := app.extractFilters(w, r, "-year", "id", "name", "year", "rating")
	if !ok {
		return
	}
	var filter storagemodels.TitleFilter
	if !app.decodeQuery(w, r, &filter) {
		return
	}
	titles, totalRecords, err := app.services.Catalog.ListTitles(r.Context(), filter, f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"titles":   titles,
		"metadata": filters.NewMetadata(f, totalRecords),
	}, "")
}

func (app *Application) getTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	title, err := app.services.Catalog.GetTitle(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrTitleNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"title": title}, "")
}

func (app *Application) createTitle(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceCatalog, false) {
		return
	}
	var input struct {
		Name        string   `json:"name" validate:"required"`
		Year        int32    `json:"year" validate:"required,titleyear"`
		Description *string  `json:"description"`
		Category    *string  `json:"category" validate:"omitempty,slug"`
		Genre       []string `json:"genre" validate:"omitempty,dive,slug"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	title, err := app.services.Catalog.CreateTitle(r.Context(), input.Name, input.Year, input.Description, input.Category, input.Genre)
	if err != nil {
		if catalogUnknownSlug(err) {
			app.Http.ValidationFailed(w, r, map[string]string{"slug": err.Error()})
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Created(w, r, envelop{"title": title}, "")
}

func (app *Application) updateTitle(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceCatalog, false) {
		return
	}
	id, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	var input struct {
		Name        *string  `json:"name" validate:"omitempty,min=1"`
		Year        *int32   `json:"year" validate:"omitempty,titleyear"`
		Description *string  `json:"description"`
		Category    *string  `json:"category" validate:"omitempty,slug"`
		Genre       []string `json:"genre" validate:"omitempty,dive,slug"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	title, err := app.services.Catalog.UpdateTitle(r.Context(), id, input.Name, input.Year, input.Description, input.Category, input.Genre)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrTitleNotFound):
			app.Http.NotFound(w, r, err.Error())
		case catalogUnknownSlug(err):
			app.Http.ValidationFailed(w, r, map[string]string{"slug": err.Error()})
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"title": title}, "")
}

func (app *Application) deleteTitle(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceCatalog, false) {
		return
	}
	id, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	if err := app.services.Catalog.DeleteTitle(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrTitleNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r, "")
}

func catalogUnknownSlug(err error) bool {
	return errors.Is(err, catalog.ErrUnknownCategory) || errors.Is(err, catalog.ErrUnknownGenre)
}
