// Package app wires configuration into the services shared by the API
// server and the admin CLI.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-api/internal/core/cache"
	"storefront-api/internal/core/config"
	"storefront-api/internal/core/database"
	"storefront-api/internal/core/keycloak"
	"storefront-api/internal/core/mailer"
	"storefront-api/internal/repo"
	"storefront-api/internal/service"
)

type App struct {
	DB         *gorm.DB
	Cache      *cache.Cache
	Mail       *mailer.Dispatcher
	Users      *service.UserService
	Categories *service.CategoryService
	Products   *service.ProductService
	Partners   *service.PartnerService

	closers []func()
}

// OpenDB connects and, when enabled, migrates the schema.
func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.OptsFromConfig(cfg.DB), l)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	return db, nil
}

func New(cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := OpenDB(cfg, l)
	if err != nil {
		return nil, err
	}
	return build(cfg, l, db)
}

// build owns db from here on: any failure releases it together with
// everything opened before the failure.
func build(cfg *config.Config, l *zap.Logger, db *gorm.DB) (*App, error) {
	a := &App{DB: db}

	// 缓存：配置了 redis 就用 redis，否则进程内
	if cfg.Redis.Addr != "" {
		rs := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rs.Ping(context.Background()); err != nil {
			l.Warn("redis unreachable, reads fall through to db", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		a.Cache = cache.New(rs)
		a.closers = append(a.closers, func() { _ = rs.Close() })
	} else {
		a.Cache = cache.New(cache.NewMemory(cfg.Cache.TTL()))
	}

	sender, err := mailer.New(cfg.Mail, l)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Mail = mailer.NewDispatcher(sender, cfg.Mail.Timeout(), l)
	a.closers = append(a.closers, a.Mail.Wait)

	idp := keycloak.New(cfg.Keycloak, l, &http.Client{Timeout: cfg.Keycloak.Timeout()})

	users := repo.NewUserRepo(db)
	categories := repo.NewCategoryRepo(db)
	ttl := cfg.Cache.TTL()
	a.Users = service.NewUserService(users, idp, a.Mail, cfg.Mail, l)
	a.Categories = service.NewCategoryService(categories, a.Cache, ttl, l)
	a.Products = service.NewProductService(repo.NewProductRepo(db), a.Cache, ttl, l)
	a.Partners = service.NewPartnerService(repo.NewPartnerRepo(db), categories, l)
	return a, nil
}

// Close drains pending mail and releases connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
