// Package bootstrap opens the database, the optional Redis lock backend and
// the campaign service from a loaded config. Shared by the binaries in cmd/.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/config"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/distlock"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/logger"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/repository/postgres"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

// Deps holds the long-lived handles a binary needs.
type Deps struct {
	DB      *sql.DB
	Redis   *redis.Client // nil when Redis is not configured or unreachable
	Locks   *distlock.Factory
	Service *campaign.Service
}

// ConfigureLogger applies the logging section of cfg to the default logger.
func ConfigureLogger(cfg *config.Config) {
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactPII)
}

// Open connects to Postgres and, if configured, Redis. A Redis outage is
// not fatal: campaign locks fall back to Postgres advisory locks.
func Open(ctx context.Context, cfg *config.Config) (*Deps, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &Deps{DB: db, Redis: openRedis(ctx, cfg.Redis.URL)}
	d.Locks = distlock.NewFactory(d.Redis, db, cfg.Assignment.LockTTL())
	d.Service = campaign.NewService(postgres.NewStore(db), d.Locks, campaign.Options{
		TxTimeout:       cfg.Assignment.TxTimeout(),
		LockWait:        cfg.Assignment.LockWait(),
		LockRetry:       cfg.Assignment.LockRetry(),
		SkipLedgerCheck: cfg.Assignment.SkipLedgerCheck,
	})
	logger.Info("campaign service ready", "lock_backend", d.Locks.Backend())
	return d, nil
}

func openRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		return nil
	}
	var client *redis.Client
	opts, err := redis.ParseURL(url)
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: url})
	} else {
		client = redis.NewClient(opts)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, falling back to postgres advisory locks", "error", err)
		client.Close()
		return nil
	}
	return client
}

// Close releases every handle.
func (d *Deps) Close() {
	if d.Redis != nil {
		d.Redis.Close()
	}
	d.DB.Close()
}
