package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/asquebay/taco-price-compare/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrLocationNotFound = errors.New("store location not found")

const locationsTable = "tb_locations"

var locationColumns = []string{"store_id", "name", "address", "latitude", "longitude"}

// LocationRepository инкапсулирует работу с кэшем ресторанов в БД
type LocationRepository struct {
	db *pgxpool.Pool
	sq squirrel.StatementBuilderType
}

// NewLocationRepository создает новый экземпляр репозитория
func NewLocationRepository(db *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{
		db: db,
		// использую плейсхолдеры в стиле PostgreSQL ($1, $2, $3,...)
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// selectByBoundingBoxSQL строит запрос выборки ресторанов внутри прямоугольника
func (r *LocationRepository) selectByBoundingBoxSQL(box model.BoundingBox) (string, []any, error) {
	return r.sq.Select(locationColumns...).
		From(locationsTable).
		Where(squirrel.And{
			squirrel.GtOrEq{"latitude": box.MinLat},
			squirrel.LtOrEq{"latitude": box.MaxLat},
			squirrel.GtOrEq{"longitude": box.MinLon},
			squirrel.LtOrEq{"longitude": box.MaxLon},
		}).
		ToSql()
}

// SelectByBoundingBox возвращает все закэшированные рестораны внутри прямоугольника
func (r *LocationRepository) SelectByBoundingBox(ctx context.Context, box model.BoundingBox) ([]model.StoreLocation, error) {
	const op = "repository.postgres.location.SelectByBoundingBox"

	sql, args, err := r.selectByBoundingBoxSQL(box)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query locations: %w", op, err)
	}
	defer rows.Close()

	stores := []model.StoreLocation{}
	for rows.Next() {
		var s model.StoreLocation
		if err := rows.Scan(&s.StoreID, &s.Name, &s.Address, &s.Latitude, &s.Longitude); err != nil {
			return nil, fmt.Errorf("%s: failed to scan location row: %w", op, err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to iterate location rows: %w", op, err)
	}

	return stores, nil
}

// GetLocation извлекает один ресторан по его идентификатору
func (r *LocationRepository) GetLocation(ctx context.Context, storeID string) (model.StoreLocation, error) {
	const op = "repository.postgres.location.GetLocation"

	sql, args, err := r.sq.Select(locationColumns...).
		From(locationsTable).
		Where(squirrel.Eq{"store_id": storeID}).
		ToSql()
	if err != nil {
		return model.StoreLocation{}, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var s model.StoreLocation
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.StoreID, &s.Name, &s.Address, &s.Latitude, &s.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.StoreLocation{}, fmt.Errorf("%s: %w", op, ErrLocationNotFound)
		}
		return model.StoreLocation{}, fmt.Errorf("%s: failed to query location: %w", op, err)
	}

	return s, nil
}

// upsertLocationSQL строит идемпотентную вставку по store_id
func (r *LocationRepository) upsertLocationSQL(s model.StoreLocation) (string, []any, error) {
	return r.sq.Insert(locationsTable).
		Columns(locationColumns...).
		Values(s.StoreID, s.Name, s.Address, s.Latitude, s.Longitude).
		Suffix("ON CONFLICT (store_id) DO UPDATE SET " +
			"name = EXCLUDED.name, address = EXCLUDED.address, " +
			"latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude").
		ToSql()
}

// UpsertLocation сохраняет ресторан, при повторной записи побеждает последняя
func (r *LocationRepository) UpsertLocation(ctx context.Context, s model.StoreLocation) error {
	const op = "repository.postgres.location.UpsertLocation"

	sql, args, err := r.upsertLocationSQL(s)
	if err != nil {
		return fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: failed to upsert location %s: %w", op, s.StoreID, err)
	}

	return nil
}
