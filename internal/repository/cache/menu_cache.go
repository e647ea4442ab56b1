package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/asquebay/taco-price-compare/internal/model"
	"github.com/asquebay/taco-price-compare/internal/repository/postgres"
)

// DefaultTTL — окно свежести снимка меню
const DefaultTTL = 15 * time.Minute

// SnapshotStore — постоянное хранилище снимков меню (таблица menu_cache)
type SnapshotStore interface {
	GetMenu(ctx context.Context, storeID string) (model.MenuSnapshot, error)
	UpsertMenu(ctx context.Context, snap model.MenuSnapshot) error
	GetMenusUpdatedSince(ctx context.Context, since time.Time) ([]model.MenuSnapshot, error)
}

// MenuCache — кэш меню с ограниченным сроком жизни
// первый уровень — потокобезопасный in-memory sync.Map, второй — БД
// оба уровня подчиняются одному правилу свежести по updated_at
type MenuCache struct {
	// ключ — string (StoreID), значение — model.MenuSnapshot
	local sync.Map
	store SnapshotStore
	ttl   time.Duration
	now   func() time.Time
	log   *slog.Logger
}

// Option настраивает MenuCache
type Option func(*MenuCache)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(c *MenuCache) { c.now = now }
}

// WithTTL задаёт окно свежести
func WithTTL(ttl time.Duration) Option {
	return func(c *MenuCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewMenuCache создаёт новый экземпляр кэша
func NewMenuCache(store SnapshotStore, log *slog.Logger, opts ...Option) *MenuCache {
	c := &MenuCache{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
		log:   log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get возвращает свежий снимок меню ресторана
// возвращает снимок и true, если он найден и не старше ttl, иначе — пустую структуру и false
func (c *MenuCache) Get(ctx context.Context, storeID string) (model.MenuSnapshot, bool) {
	const op = "repository.cache.MenuCache.Get"
	now := c.now()

	// 1. Локальный уровень
	if value, ok := c.local.Load(storeID); ok {
		if snap, ok := value.(model.MenuSnapshot); ok && snap.FreshAt(now, c.ttl) {
			return snap, true
		}
	}

	// 2. Постоянное хранилище
	snap, err := c.store.GetMenu(ctx, storeID)
	if err != nil {
		if !errors.Is(err, postgres.ErrMenuNotFound) {
			c.log.Warn("failed to read menu cache",
				slog.String("op", op),
				slog.String("store_id", storeID),
				slog.String("error", err.Error()),
			)
		}
		return model.MenuSnapshot{}, false
	}
	if !snap.FreshAt(now, c.ttl) {
		return model.MenuSnapshot{}, false
	}

	c.local.Store(storeID, snap)
	return snap, true
}

// Put сохраняет меню ресторана с текущим временем
// ошибка записи в БД возвращается, но локальный уровень уже обновлён
func (c *MenuCache) Put(ctx context.Context, storeID string, items []model.MenuItem) error {
	const op = "repository.cache.MenuCache.Put"

	if items == nil {
		items = []model.MenuItem{}
	}
	snap := model.MenuSnapshot{
		StoreID:   storeID,
		Items:     items,
		UpdatedAt: c.now().UTC(),
	}
	c.local.Store(storeID, snap)

	if err := c.store.UpsertMenu(ctx, snap); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Restore загружает в локальный уровень все ещё свежие снимки из БД
// используется для первоначального заполнения кэша при старте сервиса
func (c *MenuCache) Restore(ctx context.Context) (int, error) {
	const op = "repository.cache.MenuCache.Restore"

	snapshots, err := c.store.GetMenusUpdatedSince(ctx, c.now().Add(-c.ttl))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, snap := range snapshots {
		c.local.Store(snap.StoreID, snap)
	}
	return len(snapshots), nil
}
