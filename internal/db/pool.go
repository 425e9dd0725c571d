package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxConnectElapsed = 30 * time.Second

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	connect := func() error {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			log.Printf("database connection failed, retrying: %v", err)
			return err
		}
		if pingErr := pool.Ping(ctx); pingErr != nil {
			pool.Close()
			log.Printf("database ping failed, retrying: %v", pingErr)
			return pingErr
		}
		return nil
	}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Second),
		backoff.WithMaxInterval(5*time.Second),
		backoff.WithMaxElapsedTime(maxConnectElapsed),
	)
	if err := backoff.Retry(connect, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("database connection failed after %s: %w", maxConnectElapsed, err)
	}

	log.Println("database connected")
	return pool, nil
}
