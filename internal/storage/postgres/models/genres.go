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

type GenreModel struct {
	DB postgres.Querier
}

func (m *GenreModel) List(ctx context.Context, name string, f filters.Filters) ([]models.Genre, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER(), id, name, slug FROM genres
		WHERE (name = $1 OR $1 = '')
		ORDER BY `+f.SortColumn()+` `+f.SortDirection()+`, id ASC
		LIMIT $2 OFFSET $3`,
		name, f.Limit(), f.Offset(),
	)
	type row struct {
		Count int
		models.Genre
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	genres := make([]models.Genre, 0, len(outputRows))
	totalRecords := 0
	for _, r := range outputRows {
		totalRecords = r.Count
		genres = append(genres, r.Genre)
	}
	return genres, totalRecords, nil
}

// GetBySlugs resolves slug references for title create/update. The caller
// is responsible for noticing missing slugs in the shorter result.
func (m *GenreModel) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	rows, _ := m.DB.Query(ctx, "SELECT id, name, slug FROM genres WHERE slug = ANY($1) ORDER BY name ASC", slugs)
	genres, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Genre])
	if err != nil {
		return nil, err
	}
	return genres, nil
}

func (m *GenreModel) Insert(ctx context.Context, name, slug string) (*models.Genre, error) {
	rows, _ := m.DB.Query(
		ctx,
		"INSERT INTO genres (name, slug) VALUES ($1, $2) RETURNING id, name, slug",
		name, slug,
	)
	genre, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Genre])
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrConflictCode {
			return nil, storage.ErrConflict
		}
		return nil, err
	}
	return &genre, nil
}

func (m *GenreModel) DeleteBySlug(ctx context.Context, slug string) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM genres WHERE slug = $1", slug)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
