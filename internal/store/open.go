package store

import (
	"context"
	"fmt"

	"github.com/theirongolddev/mobius/internal/budget"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
	Redis         RedisOptions
}

// Open returns the repository for opts.Backend.
func Open(ctx context.Context, opts Options) (budget.Repository, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		return OpenSQLite(opts.SQLitePath)
	case BackendMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case BackendRedis:
		return OpenRedis(ctx, opts.Redis)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
