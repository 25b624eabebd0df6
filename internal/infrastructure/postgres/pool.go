package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

// slowQueryThreshold consultas más lentas se registran en warn.
const slowQueryThreshold = 200 * time.Millisecond

// NewPool crea un pool de conexiones PostgreSQL usando la configuración de la app.
func NewPool(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = 25
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.Tracer = &queryTracer{log: log, slow: slowQueryThreshold}

	// Codec NUMERIC -> shopspring/decimal para el precio de productos.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

// queryTracer implementa pgx.QueryTracer: registra en debug cada consulta y en warn las lentas o fallidas.
type queryTracer struct {
	log  zerolog.Logger
	slow time.Duration
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, at: time.Now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := time.Since(start.at)
	switch {
	case data.Err != nil:
		t.log.Warn().Err(data.Err).Dur("elapsed", elapsed).Str("sql", compactSQL(start.sql)).Msg("consulta fallida")
	case elapsed >= t.slow:
		t.log.Warn().Dur("elapsed", elapsed).Str("sql", compactSQL(start.sql)).Msg("consulta lenta")
	default:
		t.log.Debug().Dur("elapsed", elapsed).Int64("rows", data.CommandTag.RowsAffected()).Msg("consulta")
	}
}
