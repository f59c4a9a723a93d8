package models

import (
	"context"
	"errors"

	"artdb/proj/internal/domain/filters"
	"artdb/proj/internal/domain/models"
	"artdb/proj/internal/storage"
	"artdb/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type CommentModel struct {
	DB postgres.Querier
}

const commentColumns = "c.id, c.review_id, c.author_id, u.username AS author, c.text, c.pub_date"

func (m *CommentModel) ListForReview(ctx context.Context, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER(), `+commentColumns+` FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.review_id = $1
		ORDER BY c.`+f.SortColumn()+` `+f.SortDirection()+`, c.id ASC
		LIMIT $2 OFFSET $3`,
		reviewID, f.Limit(), f.Offset(),
	)
	type row struct {
		Count int
		models.Comment
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	comments := make([]models.Comment, 0, len(outputRows))
	totalRecords := 0
	for _, r := range outputRows {
		totalRecords = r.Count
		comments = append(comments, r.Comment)
	}
	return comments, totalRecords, nil
}

func (m *CommentModel) Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+commentColumns+` FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1 AND c.review_id = $2`,
		commentID, reviewID,
	)
	comment, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Comment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (m *CommentModel) Insert(ctx context.Context, reviewID, authorID int64, text string) (*models.Comment, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO comments (review_id, author_id, text) VALUES ($1, $2, $3)
		RETURNING id, review_id, author_id,
			(SELECT username FROM users WHERE id = $2) AS author,
			text, pub_date`,
		reviewID, authorID, text,
	)
	comment, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Comment])
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrFkViolationCode {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (m *CommentModel) Update(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE comments c SET text = $1
		FROM users u
		WHERE c.id = $2 AND u.id = c.author_id
		RETURNING `+commentColumns,
		comment.Text, comment.ID,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Comment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (m *CommentModel) Delete(ctx context.Context, reviewID, commentID int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM comments WHERE id = $1 AND review_id = $2", commentID, reviewID)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
