package storage

import (
	"context"
	"fmt"
	"log"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
}

// Pinger is implemented by backends with a remote connection to health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Driver {
	case DriverMemory:
		log.Println("Storage: using in-memory backend, data is lost on restart")
		return NewMemoryStorage(), nil
	case DriverSQLite, "":
		log.Printf("Storage: using sqlite file %s", opts.SQLitePath)
		return NewSQLiteStorage(ctx, opts.SQLitePath)
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		log.Println("Storage: using postgres backend")
		return NewPostgresStorage(ctx, opts.DatabaseURL)
	case DriverRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the redis driver")
		}
		log.Println("Storage: using redis backend")
		return NewRedisStorage(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
