package models

import (
	"context"
	"errors"

	"artdb/proj/internal/domain/filters"
	"artdb/proj/internal/domain/models"
	"artdb/proj/internal/storage"
	"artdb/proj/internal/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type TitleModel struct {
	DB postgres.Querier
}

// TitleFilter narrows the titles listing. Zero values mean "no filter".
type TitleFilter struct {
	Name     string `schema:"name"`
	Category string `schema:"category"`
	Genre    string `schema:"genre"`
	Year     int32  `schema:"year"`
}

var titleSortColumns = map[string]string{
	"id":     "t.id",
	"name":   "t.name",
	"year":   "t.year",
	"rating": "rating",
}

type titleRow struct {
	ID           int64
	Name         string
	Year         int32
	Description  *string
	CategoryID   *int64
	CategoryName *string
	CategorySlug *string
	Rating       *float64
}

func (r titleRow) toDomain() models.Title {
	title := models.Title{
		ID:          r.ID,
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Rating:      r.Rating,
		Genres:      []models.Genre{},
	}
	if r.CategoryID != nil {
		title.Category = &models.Category{ID: *r.CategoryID, Name: *r.CategoryName, Slug: *r.CategorySlug}
	}
	return title
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// selectTitles builds the read query. The rating is derived on every read
// as the mean review score, it is never stored.
func selectTitles(extraColumns ...string) squirrel.SelectBuilder {
	columns := append(extraColumns,
		"t.id", "t.name", "t.year", "t.description",
		"c.id AS category_id", "c.name AS category_name", "c.slug AS category_slug",
		"avg(r.score)::float8 AS rating",
	)
	return builder().
		Select(columns...).
		From("titles t").
		LeftJoin("categories c ON c.id = t.category_id").
		LeftJoin("reviews r ON r.title_id = t.id").
		GroupBy("t.id", "c.id")
}

func (m *TitleModel) Get(ctx context.Context, id int64) (*models.Title, error) {
	query, args, err := selectTitles().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, _ := m.DB.Query(ctx, query, args...)
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[titleRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	title := row.toDomain()
	if err := m.attachGenres(ctx, []*models.Title{&title}); err != nil {
		return nil, err
	}
	return &title, nil
}

func (m *TitleModel) List(ctx context.Context, filter TitleFilter, f filters.Filters) ([]models.Title, int, error) {
	q := selectTitles("count(*) OVER() AS count")
	if filter.Name != "" {
		q = q.Where("t.name ILIKE '%' || ? || '%'", filter.Name)
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"c.slug": filter.Category})
	}
	if filter.Genre != "" {
		q = q.Where(
			`EXISTS (
				SELECT 1 FROM title_genres tg
				JOIN genres g ON g.id = tg.genre_id
				WHERE tg.title_id = t.id AND g.slug = ?
			)`,
			filter.Genre,
		)
	}
	if filter.Year != 0 {
		q = q.Where(squirrel.Eq{"t.year": filter.Year})
	}
	q = q.
		OrderBy(titleSortColumns[f.SortColumn()]+" "+f.SortDirection(), "t.id ASC").
		Limit(uint64(f.Limit())).
		Offset(uint64(f.Offset()))
	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, _ := m.DB.Query(ctx, query, args...)
	type row struct {
		Count int
		titleRow
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	titles := make([]models.Title, 0, len(outputRows))
	totalRecords := 0
	for _, r := range outputRows {
		totalRecords = r.Count
		titles = append(titles, r.titleRow.toDomain())
	}
	refs := make([]*models.Title, len(titles))
	for i := range titles {
		refs[i] = &titles[i]
	}
	if err := m.attachGenres(ctx, refs); err != nil {
		return nil, 0, err
	}
	return titles, totalRecords, nil
}

func (m *TitleModel) attachGenres(ctx context.Context, titles []*models.Title) error {
	if len(titles) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(titles))
	byID := make(map[int64]*models.Title, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}
	rows, _ := m.DB.Query(
		ctx,
		`SELECT tg.title_id, g.id, g.name, g.slug FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id = ANY($1)
		ORDER BY g.name ASC`,
		ids,
	)
	type row struct {
		TitleID int64
		models.Genre
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return err
	}
	for _, r := range outputRows {
		title := byID[r.TitleID]
		title.Genres = append(title.Genres, r.Genre)
	}
	return nil
}

func (m *TitleModel) Insert(ctx context.Context, name string, year int32, description *string, categoryID *int64, genreIDs []int64) (*models.Title, error) {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	var id int64
	err = tx.QueryRow(
		ctx,
		"INSERT INTO titles (name, year, description, category_id) VALUES ($1, $2, $3, $4) RETURNING id",
		name, year, description, categoryID,
	).Scan(&id)
	if err != nil {
		return nil, mapTitleWriteErr(err)
	}
	for _, genreID := range genreIDs {
		if _, err := tx.Exec(ctx, "INSERT INTO title_genres (title_id, genre_id) VALUES ($1, $2)", id, genreID); err != nil {
			return nil, mapTitleWriteErr(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m.Get(ctx, id)
}

// UpdateTitleParams carries a partial update. Nil pointers leave the
// column untouched, SetCategory/SetGenres distinguish "clear" from "keep".
type UpdateTitleParams struct {
	ID          int64
	Name        *string
	Year        *int32
	Description *string
	CategoryID  *int64
	SetCategory bool
	GenreIDs    []int64
	SetGenres   bool
}

func (m *TitleModel) Update(ctx context.Context, params UpdateTitleParams) (*models.Title, error) {
	q := builder().Update("titles").Where(squirrel.Eq{"id": params.ID})
	hasColumns := false
	if params.Name != nil {
		q = q.Set("name", *params.Name)
		hasColumns = true
	}
	if params.Year != nil {
		q = q.Set("year", *params.Year)
		hasColumns = true
	}
	if params.Description != nil {
		q = q.Set("description", *params.Description)
		hasColumns = true
	}
	if params.SetCategory {
		q = q.Set("category_id", params.CategoryID)
		hasColumns = true
	}
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if hasColumns {
		query, args, err := q.ToSql()
		if err != nil {
			return nil, err
		}
		status, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return nil, mapTitleWriteErr(err)
		}
		if status.RowsAffected() == 0 {
			return nil, storage.ErrNotFound
		}
	}
	if params.SetGenres {
		if _, err := tx.Exec(ctx, "DELETE FROM title_genres WHERE title_id = $1", params.ID); err != nil {
			return nil, err
		}
		for _, genreID := range params.GenreIDs {
			if _, err := tx.Exec(ctx, "INSERT INTO title_genres (title_id, genre_id) VALUES ($1, $2)", params.ID, genreID); err != nil {
				return nil, mapTitleWriteErr(err)
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m.Get(ctx, params.ID)
}

func (m *TitleModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM titles WHERE id = $1", id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func mapTitleWriteErr(err error) error {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		switch pgxErr.Code {
		case postgres.ErrConflictCode:
			return storage.ErrConflict
		case postgres.ErrFkViolationCode:
			return storage.ErrNotFound
		}
	}
	return err
}
