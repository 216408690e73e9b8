package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"gallery/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// supabasePoolerPort is the port of Supabase's transaction-mode PgBouncer.
const supabasePoolerPort = 6543

// RepositoryConfig is shared by the gallery repositories.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames are the environment-prefixed gallery tables.
type TableNames struct {
	Folders  string
	Artworks string
}

// NewTableNames prefixes the gallery tables, e.g. "dev_" gives dev_folders.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders:  prefix + "folders",
		Artworks: prefix + "artworks",
	}
}

// CreateConnectionPool opens and pings a pgx pool.
//
// Behind the Supabase pooler (port 6543) prepared statements do not survive
// between transactions, so the pool switches to QueryExecModeCacheDescribe.
// That mode still uses the extended protocol, which TEXT[] path parameters
// need. A default_query_exec_mode in the URL takes precedence.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	conn := config.ConnConfig
	if conn.Port == supabasePoolerPort && conn.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		conn.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("pooler detected, using cache_describe exec mode", "port", conn.Port)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there
// is none.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
