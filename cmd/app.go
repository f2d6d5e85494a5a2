package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Gorstka/Yatube/internal/cache"
	"github.com/Gorstka/Yatube/internal/config"
	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/media"
	"github.com/Gorstka/Yatube/internal/repository"
	"github.com/Gorstka/Yatube/pkg/database"
	pkglog "github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/storage"
)

// app holds what every command needs: config, logger and the database.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *gorm.DB
	repos  repository.Repositories
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		repos:  repository.NewGormRepositories(db),
	}, nil
}

func (a *app) migrate() error {
	if err := database.AutoMigrate(a.db, domain.Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	a.logger.Info().Msg("database migration completed")
	return nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		a.logger.Warn().Err(err).Msg("error closing database")
	}
}

// ctx returns a background context carrying the app logger.
func (a *app) ctx() context.Context {
	return pkglog.WithLogger(context.Background(), a.logger)
}

func (a *app) images(ctx context.Context) (*media.Processor, error) {
	store, err := storage.New(ctx, a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return media.NewProcessor(store, media.Config{
		ThumbnailWidth:  a.cfg.Media.ThumbnailWidth,
		ThumbnailHeight: a.cfg.Media.ThumbnailHeight,
		MaxBytes:        int64(a.cfg.Media.MaxUploadMB) << 20,
		URLExpiry:       a.cfg.Media.URLExpiry,
	}), nil
}

func (a *app) pageCache() (cache.PageCache, error) {
	switch a.cfg.Cache.Driver {
	case "", "memory":
		return cache.NewMemoryPageCache(), nil
	case "redis":
		return cache.NewRedisPageCache(a.cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", a.cfg.Cache.Driver)
	}
}
