package users

import (
	"context"
	"errors"
	"log/slog"

	"artdb/proj/internal/domain/filters"
	"artdb/proj/internal/domain/models"
	"artdb/proj/internal/storage"
)

type UsersStorage interface {
	List(ctx context.Context, username string, f filters.Filters) ([]models.User, int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Insert(ctx context.Context, username, email, bio, role, confirmationCodeHash string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	DeleteByUsername(ctx context.Context, username string) error
}

type UserService struct {
	log     *slog.Logger
	storage UsersStorage
}

func New(log *slog.Logger, storage UsersStorage) *UserService {
	return &UserService{
		log:     log,
		storage: storage,
	}
}

// UpdateUserParams is a partial account update, nil means unchanged.
type UpdateUserParams struct {
	Email *string
	Bio   *string
	Role  *string
}

func (s *UserService) List(ctx context.Context, username string, f filters.Filters) ([]models.User, int, error) {
	const op = "users.UserService.List"
	users, totalRecords, err := s.storage.List(ctx, username, f)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return users, totalRecords, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "users.UserService.GetByUsername"
	log := s.log.With("op", op, "username", username)
	user, err := s.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return user, nil
}

// Create is the admin path: unlike sign-up it may assign any role and
// issues no confirmation code.
func (s *UserService) Create(ctx context.Context, username, email, bio, role string) (*models.User, error) {
	const op = "users.UserService.Create"
	log := s.log.With("op", op, "username", username)
	user, err := s.storage.Insert(ctx, username, email, bio, role, "")
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("username or email already taken")
			return nil, ErrUserExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, username string, params UpdateUserParams) (*models.User, error) {
	const op = "users.UserService.Update"
	log := s.log.With("op", op, "username", username)
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	applyUpdate(user, params)
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("email already taken")
			return nil, ErrUserExists
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

// UpdateProfile is the self-service path, the role field is read-only here
// no matter what the caller sent.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, params UpdateUserParams) (*models.User, error) {
	const op = "users.UserService.UpdateProfile"
	log := s.log.With("op", op, "username", user.Username)
	params.Role = nil
	applyUpdate(user, params)
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("email already taken")
			return nil, ErrUserExists
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	const op = "users.UserService.Delete"
	log := s.log.With("op", op, "username", username)
	if err := s.storage.DeleteByUsername(ctx, username); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return ErrUserNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

func applyUpdate(user *models.User, params UpdateUserParams) {
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Bio != nil {
		user.Bio = *params.Bio
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
}
