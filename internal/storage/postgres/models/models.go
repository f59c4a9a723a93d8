package models

import "artdb/proj/internal/storage/postgres"

type Models struct {
	Categories *CategoryModel
	Genres     *GenreModel
	Titles     *TitleModel
	Reviews    *ReviewModel
	Comments   *CommentModel
	Users      *UserModel
}

func New(db postgres.Querier) *Models {
	return &Models{
		Categories: &CategoryModel{db},
		Genres:     &GenreModel{db},
		Titles:     &TitleModel{db},
		Reviews:    &ReviewModel{db},
		Comments:   &CommentModel{db},
		Users:      &UserModel{db},
	}
}
