package catalog

import (
	"context"
	"errors"
	"log/slog"

	"artdb/proj/internal/domain/filters"
	"artdb/proj/internal/domain/models"
	"artdb/proj/internal/storage"
	storagemodels "artdb/proj/internal/storage/postgres/models"
)

type CategoriesStorage interface {
	List(ctx context.Context, name string, f filters.Filters) ([]models.Category, int, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Insert(ctx context.Context, name, slug string) (*models.Category, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type GenresStorage interface {
	List(ctx context.Context, name string, f filters.Filters) ([]models.Genre, int, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Insert(ctx context.Context, name, slug string) (*models.Genre, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type TitlesStorage interface {
	Get(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, filter storagemodels.TitleFilter, f filters.Filters) ([]models.Title, int, error)
	Insert(ctx context.Context, name string, year int32, description *string, categoryID *int64, genreIDs []int64) (*models.Title, error)
	Update(ctx context.Context, params storagemodels.UpdateTitleParams) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type CatalogService struct {
	log        *slog.Logger
	categories CategoriesStorage
	genres     GenresStorage
	titles     TitlesStorage
}

func New(log *slog.Logger, categories CategoriesStorage, genres GenresStorage, titles TitlesStorage) *CatalogService {
	return &CatalogService{
		log:        log,
		categories: categories,
		genres:     genres,
		titles:     titles,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context, name string, f filters.Filters) ([]models.Category, int, error) {
	const op = "catalog.CatalogService.ListCategories"
	categories, totalRecords, err := s.categories.List(ctx, name, f)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return categories, totalRecords, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	const op = "catalog.CatalogService.CreateCategory"
	log := s.log.With("op", op, "slug", slug)
	category, err := s.categories.Insert(ctx, name, slug)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("category slug already taken")
			return nil, ErrSlugTaken
		}
		log.Error(err.Error())
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	const op = "catalog.CatalogService.DeleteCategory"
	log := s.log.With("op", op, "slug", slug)
	if err := s.categories.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("category not found")
			return ErrCategoryNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

func (s *CatalogService) ListGenres(ctx context.Context, name string, f filters.Filters) ([]models.Genre, int, error) {
	const op = "catalog.CatalogService.ListGenres"
	genres, totalRecords, err := s.genres.List(ctx, name, f)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return genres, totalRecords, nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, name, slug string) (*models.Genre, error) {
	const op = "catalog.CatalogService.CreateGenre"
	log := s.log.With("op", op, "slug", slug)
	genre, err := s.genres.Insert(ctx, name, slug)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("genre slug already taken")
			return nil, ErrSlugTaken
		}
		log.Error(err.Error())
		return nil, err
	}
	return genre, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	const op = "catalog.CatalogService.DeleteGenre"
	log := s.log.With("op", op, "slug", slug)
	if err := s.genres.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("genre not found")
			return ErrGenreNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

func (s *CatalogService) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	const op = "catalog.CatalogService.GetTitle"
	log := s.log.With("op", op, "id", id)
	title, err := s.titles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return title, nil
}

func (s *CatalogService) ListTitles(ctx context.Context, filter storagemodels.TitleFilter, f filters.Filters) ([]models.Title, int, error) {
	const op = "catalog.CatalogService.ListTitles"
	titles, totalRecords, err := s.titles.List(ctx, filter, f)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return titles, totalRecords, nil
}

func (s *CatalogService) CreateTitle(ctx context.Context, name string, year int32, description *string, categorySlug *string, genreSlugs []string) (*models.Title, error) {
	const op = "catalog.CatalogService.CreateTitle"
	log := s.log.With("op", op, "name", name, "year", year)
	categoryID, genreIDs, err := s.resolveSlugs(ctx, categorySlug, genreSlugs)
	if err != nil {
		return nil, err
	}
	title, err := s.titles.Insert(ctx, name, year, description, categoryID, genreIDs)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return title, nil
}

func (s *CatalogService) UpdateTitle(ctx context.Context, id int64, name *string, year *int32, description *string, categorySlug *string, genreSlugs []string) (*models.Title, error) {
	const op = "catalog.CatalogService.UpdateTitle"
	log := s.log.With("op", op, "id", id)
	params := storagemodels.UpdateTitleParams{
		ID:          id,
		Name:        name,
		Year:        year,
		Description: description,
	}
	if categorySlug != nil {
		categoryID, _, err := s.resolveSlugs(ctx, categorySlug, nil)
		if err != nil {
			return nil, err
		}
		params.CategoryID = categoryID
		params.SetCategory = true
	}
	if genreSlugs != nil {
		_, genreIDs, err := s.resolveSlugs(ctx, nil, genreSlugs)
		if err != nil {
			return nil, err
		}
		params.GenreIDs = genreIDs
		params.SetGenres = true
	}
	title, err := s.titles.Update(ctx, params)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return title, nil
}

func (s *CatalogService) DeleteTitle(ctx context.Context, id int64) error {
	const op = "catalog.CatalogService.DeleteTitle"
	log := s.log.With("op", op, "id", id)
	if err := s.titles.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return ErrTitleNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

// resolveSlugs maps category and genre slug references to ids.
// An unknown slug is a client error, not a server one.
func (s *CatalogService) resolveSlugs(ctx context.Context, categorySlug *string, genreSlugs []string) (*int64, []int64, error) {
	var categoryID *int64
	if categorySlug != nil {
		category, err := s.categories.GetBySlug(ctx, *categorySlug)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, nil, ErrUnknownCategory
			}
			return nil, nil, err
		}
		categoryID = &category.ID
	}
	// Repeated slugs collapse to one: the storage query returns distinct
	// rows, so comparing against the raw input would misreport duplicates
	// as unknown.
	uniqueSlugs := make([]string, 0, len(genreSlugs))
	seen := make(map[string]struct{}, len(genreSlugs))
	for _, slug := range genreSlugs {
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		uniqueSlugs = append(uniqueSlugs, slug)
	}
	genreIDs := make([]int64, 0, len(uniqueSlugs))
	if len(uniqueSlugs) > 0 {
		genres, err := s.genres.GetBySlugs(ctx, uniqueSlugs)
		if err != nil {
			return nil, nil, err
		}
		if len(genres) != len(uniqueSlugs) {
			return nil, nil, ErrUnknownGenre
		}
		for _, genre := range genres {
			genreIDs = append(genreIDs, genre.ID)
		}
	}
	return categoryID, genreIDs, nil
}
