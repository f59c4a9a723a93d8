package services

import (
	"log/slog"

	"artdb/proj/internal/config"
	"artdb/proj/internal/mails"
	"artdb/proj/internal/services/auth"
	"artdb/proj/internal/services/catalog"
	"artdb/proj/internal/services/reviews"
	"artdb/proj/internal/services/users"
	"artdb/proj/internal/storage/postgres"
	storagemodels "artdb/proj/internal/storage/postgres/models"
)

type Services struct {
	Catalog *catalog.CatalogService
	Reviews *reviews.ReviewService
	Users   *users.UserService
	Auth    *auth.AuthService
}

func New(log *slog.Logger, cfg *config.Config, db postgres.Querier, taskExecutor auth.TaskExecutor) *Services {
	m := storagemodels.New(db)
	mailer := mails.New(
		cfg.SMTPServer.Host,
		cfg.SMTPServer.Port,
		cfg.SMTPServer.Timeout,
		cfg.SMTPServer.Username,
		cfg.SMTPServer.Password,
		cfg.SMTPServer.Sender,
		cfg.SMTPServer.RetriesCount,
	)
	return &Services{
		Catalog: catalog.New(log, m.Categories, m.Genres, m.Titles),
		Reviews: reviews.New(log, m.Reviews, m.Comments, m.Titles),
		Users:   users.New(log, m.Users),
		Auth: auth.New(
			log,
			m.Users,
			mailer,
			auth.UUIDCodeGenerator{},
			taskExecutor,
			cfg.AppSecret,
			cfg.TokenTTL,
		),
	}
}
