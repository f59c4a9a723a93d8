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

type ReviewModel struct {
	DB postgres.Querier
}

const reviewColumns = "r.id, r.title_id, r.author_id, u.username AS author, r.text, r.score, r.pub_date"

func (m *ReviewModel) ListForTitle(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER(), `+reviewColumns+` FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.title_id = $1
		ORDER BY r.`+f.SortColumn()+` `+f.SortDirection()+`, r.id ASC
		LIMIT $2 OFFSET $3`,
		titleID, f.Limit(), f.Offset(),
	)
	type row struct {
		Count int
		models.Review
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	reviews := make([]models.Review, 0, len(outputRows))
	totalRecords := 0
	for _, r := range outputRows {
		totalRecords = r.Count
		reviews = append(reviews, r.Review)
	}
	return reviews, totalRecords, nil
}

// Get looks a review up by id scoped to its title, so that
// /titles/{x}/reviews/{y} cannot address a review of another title.
func (m *ReviewModel) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+reviewColumns+` FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.id = $1 AND r.title_id = $2`,
		reviewID, titleID,
	)
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (m *ReviewModel) ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(
		ctx,
		"SELECT EXISTS (SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)",
		titleID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Insert relies on the (author_id, title_id) unique constraint: a racing
// duplicate that slips past the pre-check comes back as ErrConflict.
func (m *ReviewModel) Insert(ctx context.Context, titleID, authorID int64, text string, score int32) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO reviews (title_id, author_id, text, score) VALUES ($1, $2, $3, $4)
		RETURNING id, title_id, author_id,
			(SELECT username FROM users WHERE id = $2) AS author,
			text, score, pub_date`,
		titleID, authorID, text, score,
	)
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) {
			switch pgxErr.Code {
			case postgres.ErrConflictCode:
				return nil, storage.ErrConflict
			case postgres.ErrFkViolationCode:
				return nil, storage.ErrNotFound
			}
		}
		return nil, err
	}
	return &review, nil
}

func (m *ReviewModel) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE reviews r SET text = $1, score = $2
		FROM users u
		WHERE r.id = $3 AND u.id = r.author_id
		RETURNING `+reviewColumns,
		review.Text, review.Score, review.ID,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (m *ReviewModel) Delete(ctx context.Context, titleID, reviewID int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM reviews WHERE id = $1 AND title_id = $2", reviewID, titleID)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
