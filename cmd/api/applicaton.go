package main

import (
	"log/slog"

	"artdb/proj/internal/api/tasks"
	"artdb/proj/internal/config"
	"artdb/proj/internal/lib/validator"
	"artdb/proj/internal/services"
	"artdb/proj/internal/storage/postgres"

	govalidator "github.com/go-playground/validator/v10"
)

type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	Http      *Http
	services  *services.Services
	validator *govalidator.Validate
	bgTasks   *tasks.BackgroundTasks
}

func NewApplication(cfg *config.Config, log *slog.Logger, db postgres.Querier) *Application {
	bgTasks := tasks.New(log, cfg.BgTasks.MaxWorkers, cfg.BgTasks.MaxQueueSize)
	app := &Application{
		cfg:       cfg,
		log:       log,
		validator: validator.New(),
		services:  services.New(log, cfg, db, bgTasks),
		bgTasks:   bgTasks,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
	return app
}
