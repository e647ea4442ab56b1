package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/asquebay/taco-price-compare/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New создает и возвращает новый пул соединений с PostgreSQL
func New(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	const op = "repository.postgres.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse pgx config: %w", op, err)
	}

	// настройка пула соединений
	poolConfig.MaxConns = 10
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create connection pool: %w", op, err)
	}

	// проверяем, что соединение установлено
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return dbpool, nil
}

// DSN собирает строку подключения из конфигурации
func DSN(cfg config.Postgres) string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)
}

// schema описывает обе таблицы кэша
// tb_locations хранится бессрочно, menu_cache устаревает по updated_at
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tb_locations (
		store_id   VARCHAR(7) PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL DEFAULT '',
		latitude   DOUBLE PRECISION NOT NULL,
		longitude  DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tb_locations_lat_lon_idx ON tb_locations (latitude, longitude)`,
	`CREATE TABLE IF NOT EXISTS menu_cache (
		store_id   VARCHAR(7) PRIMARY KEY,
		json       JSONB NOT NULL DEFAULT '[]',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema создаёт таблицы кэша, если их ещё нет
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	const op = "repository.postgres.postgres.EnsureSchema"

	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: failed to apply schema: %w", op, err)
		}
	}

	return nil
}
