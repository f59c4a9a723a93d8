package main

import (
	"errors"
	"net/http"

	"artdb/proj/internal/domain/filters"
	libvalidator "artdb/proj/internal/lib/validator"
	"artdb/proj/internal/permissions"
	"artdb/proj/internal/services/reviews"
)

func (app *Application) reviewsErrToResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reviews.ErrTitleNotFound),
		errors.Is(err, reviews.ErrReviewNotFound),
		errors.Is(err, reviews.ErrCommentNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, reviews.ErrAlreadyReviewed):
		app.Http.BadRequest(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}

func (app *Application) listReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	f, ok := app.extractFilters(w, r, "pub_date", "id", "score", "pub_date")
	if !ok {
		return
	}
	reviewList, totalRecords, err := app.services.Reviews.List(r.Context(), titleID, f)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{
		"reviews":  reviewList,
		"metadata": filters.NewMetadata(f, totalRecords),
	}, "")
}

func (app *Application) getReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	review, err := app.services.Reviews.Get(r.Context(), titleID, reviewID)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": review}, "")
}

func (app *Application) createReview(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceUserContent, false) {
		return
	}
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	var input struct {
		Text  string `json:"text" validate:"required"`
		Score int32  `json:"score" validate:"required,gte=1,lte=10"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	review, err := app.services.Reviews.Create(r.Context(), titleID, app.contextUser(r), input.Text, input.Score)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"review": review}, "")
}

func (app *Application) updateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	review, err := app.services.Reviews.Get(r.Context(), titleID, reviewID)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	isOwner := review.AuthorID == app.contextUser(r).ID
	if !app.authorize(w, r, permissions.ResourceUserContent, isOwner) {
		return
	}
	var input struct {
		Text  *string `json:"text" validate:"omitempty,min=1"`
		Score *int32  `json:"score" validate:"omitempty,gte=1,lte=10"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	updated, err := app.services.Reviews.Update(r.Context(), titleID, reviewID, input.Text, input.Score)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": updated}, "")
}

func (app *Application) deleteReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	review, err := app.services.Reviews.Get(r.Context(), titleID, reviewID)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	isOwner := review.AuthorID == app.contextUser(r).ID
	if !app.authorize(w, r, permissions.ResourceUserContent, isOwner) {
		return
	}
	if err := app.services.Reviews.Delete(r.Context(), titleID, reviewID); err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) listComments(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	f, ok := app.extractFilters(w, r, "pub_date", "id", "pub_date")
	if !ok {
		return
	}
	comments, totalRecords, err := app.services.Reviews.ListComments(r.Context(), titleID, reviewID, f)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{
		"comments": comments,
		"metadata": filters.NewMetadata(f, totalRecords),
	}, "")
}

func (app *Application) getComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := app.extractIDParam(w, r, "commentID")
	if !ok {
		return
	}
	comment, err := app.services.Reviews.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"comment": comment}, "")
}

func (app *Application) createComment(w http.ResponseWriter, r *http.Request) {
	if !app.authorize(w, r, permissions.ResourceUserContent, false) {
		return
	}
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	var input struct {
		Text string `json:"text" validate:"required"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	comment, err := app.services.Reviews.CreateComment(r.Context(), titleID, reviewID, app.contextUser(r), input.Text)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"comment": comment}, "")
}

func (app *Application) updateComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := app.extractIDParam(w, r, "commentID")
	if !ok {
		return
	}
	comment, err := app.services.Reviews.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	isOwner := comment.AuthorID == app.contextUser(r).ID
	if !app.authorize(w, r, permissions.ResourceUserContent, isOwner) {
		return
	}
	var input struct {
		Text string `json:"text" validate:"required"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := libvalidator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.ValidationFailed(w, r, errs)
		return
	}
	updated, err := app.services.Reviews.UpdateComment(r.Context(), titleID, reviewID, commentID, input.Text)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"comment": updated}, "")
}

func (app *Application) deleteComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := app.extractIDParam(w, r, "commentID")
	if !ok {
		return
	}
	comment, err := app.services.Reviews.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	isOwner := comment.AuthorID == app.contextUser(r).ID
	if !app.authorize(w, r, permissions.ResourceUserContent, isOwner) {
		return
	}
	if err := app.services.Reviews.DeleteComment(r.Context(), titleID, reviewID, commentID); err != nil {
		app.reviewsErrToResponse(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}
