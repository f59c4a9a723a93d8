package reviews

import (
	"context"
	"errors"
	"log/slog"

	"artdb/proj/internal/domain/filters"
	"artdb/proj/internal/domain/models"
	"artdb/proj/internal/storage"
)

type ReviewsStorage interface {
	ListForTitle(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error)
	Insert(ctx context.Context, titleID, authorID int64, text string, score int32) (*models.Review, error)
	Update(ctx context.Context, review *models.Review) (*models.Review, error)
	Delete(ctx context.Context, titleID, reviewID int64) error
}

type CommentsStorage interface {
	ListForReview(ctx context.Context, reviewID int64, f filters.Filters) ([]models.Comment, int, error)
	Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	Insert(ctx context.Context, reviewID, authorID int64, text string) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, reviewID, commentID int64) error
}

type TitlesProvider interface {
	Get(ctx context.Context, id int64) (*models.Title, error)
}

type ReviewService struct {
	log      *slog.Logger
	reviews  ReviewsStorage
	comments CommentsStorage
	titles   TitlesProvider
}

func New(log *slog.Logger, reviews ReviewsStorage, comments CommentsStorage, titles TitlesProvider) *ReviewService {
	return &ReviewService{
		log:      log,
		reviews:  reviews,
		comments: comments,
		titles:   titles,
	}
}

func (s *ReviewService) requireTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titles.Get(ctx, titleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *ReviewService) List(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	const op = "reviews.ReviewService.List"
	log := s.log.With("op", op, "title_id", titleID)
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	reviews, totalRecords, err := s.reviews.ListForTitle(ctx, titleID, f)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	return reviews, totalRecords, nil
}

func (s *ReviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	const op = "reviews.ReviewService.Get"
	log := s.log.With("op", op, "title_id", titleID, "review_id", reviewID)
	review, err := s.reviews.Get(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return nil, ErrReviewNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return review, nil
}

// Create enforces the one-review-per-(author, title) rule twice: a
// pre-check for a friendly error and the unique constraint for the racing
// insert that slips past it. Both surface as ErrAlreadyReviewed.
func (s *ReviewService) Create(ctx context.Context, titleID int64, author *models.User, text string, score int32) (*models.Review, error) {
	const op = "reviews.ReviewService.Create"
	log := s.log.With("op", op, "title_id", titleID, "author_id", author.ID)
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	exists, err := s.reviews.ExistsForAuthor(ctx, titleID, author.ID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if exists {
		log.Info("duplicate review rejected by pre-check")
		return nil, ErrAlreadyReviewed
	}
	review, err := s.reviews.Insert(ctx, titleID, author.ID, text, score)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("duplicate review rejected by constraint")
			return nil, ErrAlreadyReviewed
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, titleID, reviewID int64, text *string, score *int32) (*models.Review, error) {
	const op = "reviews.ReviewService.Update"
	log := s.log.With("op", op, "title_id", titleID, "review_id", reviewID)
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if text != nil {
		review.Text = *text
	}
	if score != nil {
		review.Score = *score
	}
	updated, err := s.reviews.Update(ctx, review)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, titleID, reviewID int64) error {
	const op = "reviews.ReviewService.Delete"
	log := s.log.With("op", op, "title_id", titleID, "review_id", reviewID)
	if err := s.reviews.Delete(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return ErrReviewNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	const op = "reviews.ReviewService.ListComments"
	log := s.log.With("op", op, "title_id", titleID, "review_id", reviewID)
	if _, err := s.Get(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	comments, totalRecords, err := s.comments.ListForReview(ctx, reviewID, f)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	return comments, totalRecords, nil
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	const op = "reviews.ReviewService.GetComment"
	log := s.log.With("op", op, "review_id", reviewID, "comment_id", commentID)
	if _, err := s.Get(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.Get(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("comment not found")
			return nil, ErrCommentNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) CreateComment(ctx context.Context, titleID, reviewID int64, author *models.User, text string) (*models.Comment, error) {
	const op = "reviews.ReviewService.CreateComment"
	log := s.log.With("op", op, "review_id", reviewID, "author_id", author.ID)
	if _, err := s.Get(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.Insert(ctx, reviewID, author.ID, text)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) UpdateComment(ctx context.Context, titleID, reviewID, commentID int64, text string) (*models.Comment, error) {
	const op = "reviews.ReviewService.UpdateComment"
	log := s.log.With("op", op, "review_id", reviewID, "comment_id", commentID)
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	comment.Text = text
	updated, err := s.comments.Update(ctx, comment)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, titleID, reviewID, commentID int64) error {
	const op = "reviews.ReviewService.DeleteComment"
	log := s.log.With("op", op, "review_id", reviewID, "comment_id", commentID)
	if _, err := s.Get(ctx, titleID, reviewID); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, reviewID, commentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("comment not found")
			return ErrCommentNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
