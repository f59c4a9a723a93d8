package catalog

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrSlugTaken        = errors.New("that slug is already in use")
	ErrUnknownCategory  = errors.New("unknown category slug")
	ErrUnknownGenre     = errors.New("unknown genre slug")
)
