package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asquebay/taco-price-compare/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMenuNotFound = errors.New("menu snapshot not found")

const menuTable = "menu_cache"

// MenuRepository хранит снимки меню в таблице menu_cache
// позиции лежат в колонке json (jsonb), pgx сам сериализует срез
type MenuRepository struct {
	db *pgxpool.Pool
	sq squirrel.StatementBuilderType
}

// NewMenuRepository создает новый экземпляр репозитория
func NewMenuRepository(db *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetMenu извлекает снимок меню ресторана независимо от его возраста
// свежесть проверяет вызывающий код
func (r *MenuRepository) GetMenu(ctx context.Context, storeID string) (model.MenuSnapshot, error) {
	const op = "repository.postgres.menu.GetMenu"

	sql, args, err := r.sq.Select("store_id", "json", "updated_at").
		From(menuTable).
		Where(squirrel.Eq{"store_id": storeID}).
		ToSql()
	if err != nil {
		return model.MenuSnapshot{}, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var snap model.MenuSnapshot
	err = r.db.QueryRow(ctx, sql, args...).Scan(&snap.StoreID, &snap.Items, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MenuSnapshot{}, fmt.Errorf("%s: %w", op, ErrMenuNotFound)
		}
		return model.MenuSnapshot{}, fmt.Errorf("%s: failed to query menu: %w", op, err)
	}
	if snap.Items == nil {
		snap.Items = []model.MenuItem{}
	}

	return snap, nil
}

// GetMenusUpdatedSince возвращает снимки, обновлённые не раньше since
// используется для прогрева локального кэша при старте
func (r *MenuRepository) GetMenusUpdatedSince(ctx context.Context, since time.Time) ([]model.MenuSnapshot, error) {
	const op = "repository.postgres.menu.GetMenusUpdatedSince"

	sql, args, err := r.sq.Select("store_id", "json", "updated_at").
		From(menuTable).
		Where(squirrel.GtOrEq{"updated_at": since}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query menus: %w", op, err)
	}
	defer rows.Close()

	snapshots := []model.MenuSnapshot{}
	for rows.Next() {
		var snap model.MenuSnapshot
		if err := rows.Scan(&snap.StoreID, &snap.Items, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: failed to scan menu row: %w", op, err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to iterate menu rows: %w", op, err)
	}

	return snapshots, nil
}

// upsertMenuSQL строит идемпотентную вставку снимка по store_id
func (r *MenuRepository) upsertMenuSQL(snap model.MenuSnapshot) (string, []any, error) {
	items := snap.Items
	if items == nil {
		// пустое меню пишем как [], а не null
		items = []model.MenuItem{}
	}

	return r.sq.Insert(menuTable).
		Columns("store_id", "json", "updated_at").
		Values(snap.StoreID, items, snap.UpdatedAt).
		Suffix("ON CONFLICT (store_id) DO UPDATE SET json = EXCLUDED.json, updated_at = EXCLUDED.updated_at").
		ToSql()
}

// UpsertMenu сохраняет снимок меню, перезаписывая предыдущий
func (r *MenuRepository) UpsertMenu(ctx context.Context, snap model.MenuSnapshot) error {
	const op = "repository.postgres.menu.UpsertMenu"

	sql, args, err := r.upsertMenuSQL(snap)
	if err != nil {
		return fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: failed to upsert menu for store %s: %w", op, snap.StoreID, err)
	}

	return nil
}
