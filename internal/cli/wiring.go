package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"skillnest/internal/app"
	"skillnest/internal/config"
	"skillnest/internal/infra/memory"
	"skillnest/internal/infra/postgres"
	infraredis "skillnest/internal/infra/redis"
	"skillnest/internal/logger"
)

// deps is the wired service plus the handles that must be closed on exit.
type deps struct {
	service *app.Service
	repo    app.Repository
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDeps picks Postgres or memory storage and Redis or in-process
// caching/locking from cfg.
func buildDeps(ctx context.Context, cfg config.Config, log *logger.Logger) (*deps, error) {
	d := &deps{}

	var (
		repo   app.Repository
		loader app.CourseReader
	)
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return nil, err
		}
		db := postgres.OpenDB(cfg.Postgres.URL)
		d.closers = append(d.closers, func() { _ = db.Close() })

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.closers = append(d.closers, pool.Close)

		repo = postgres.NewStore(db)
		loader = postgres.NewCourseLoader(pool)
		log.Info("using postgres storage")
	} else {
		store := memory.NewStore()
		repo, loader = store, store
		log.Info("using in-memory storage")
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 5*time.Minute)
	var (
		courses app.CourseReader
		locker  app.Locker
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			d.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		d.closers = append(d.closers, func() { _ = client.Close() })

		courses = infraredis.NewCourseCache(client, loader, config.TTLDuration(cfg.Redis.TTL, catalogTTL))
		locker = infraredis.NewLocker(client, config.TTLDuration(cfg.Redis.LockTTL, 10*time.Second))
		log.Info("using redis cache and locker", "addr", cfg.Redis.Addr)
	} else {
		courses = memory.NewCourseCache(loader, catalogTTL)
		locker = memory.NewLocker()
	}

	d.repo = repo
	d.service = app.NewService(repo, courses, locker, log)
	return d, nil
}
