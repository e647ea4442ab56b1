package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/asquebay/taco-price-compare/internal/model"
)

// menuSource — один уровень цепочки источников меню
type menuSource struct {
	name  string
	fetch func(ctx context.Context, storeID string) ([]model.MenuItem, error)
}

// MenuFetcher получает меню ресторана: кэш, затем API сети, затем разбор страницы
type MenuFetcher struct {
	cache   MenuCache
	sources []menuSource
	log     *slog.Logger

	// незавершённые фоновые записи в кэш
	pending sync.WaitGroup
}

// NewMenuFetcher создаёт новый экземпляр
// порядок источников: сначала API, потом страница категории
func NewMenuFetcher(cache MenuCache, upstream MenuUpstream, log *slog.Logger) *MenuFetcher {
	return &MenuFetcher{
		cache: cache,
		sources: []menuSource{
			{name: "api", fetch: upstream.FetchMenu},
			{name: "scrape", fetch: upstream.ScrapeMenu},
		},
		log: log,
	}
}

// MenuFor возвращает меню ресторана
// ошибок не возвращает: если ни один источник ничего не дал, результат — пустой срез
func (f *MenuFetcher) MenuFor(ctx context.Context, storeID string) []model.MenuItem {
	const op = "service.MenuFetcher.MenuFor"
	log := f.log.With(slog.String("op", op), slog.String("store_id", storeID))

	// 1. Свежий снимок из кэша отдаём как есть
	if snap, ok := f.cache.Get(ctx, storeID); ok {
		log.Debug("menu served from cache", slog.Int("items", len(snap.Items)))
		return snap.Items
	}

	// 2. Перебираем источники до первого непустого результата
	items := []model.MenuItem{}
	for _, src := range f.sources {
		got, err := src.fetch(ctx, storeID)
		if err != nil {
			log.Warn("menu source failed", slog.String("source", src.name), slog.String("error", err.Error()))
			continue
		}
		if len(got) == 0 {
			log.Debug("menu source returned no items", slog.String("source", src.name))
			continue
		}

		items = got
		log.Info("menu fetched", slog.String("source", src.name), slog.Int("items", len(items)))
		break
	}

	if len(items) == 0 {
		// источники упали из-за отмены запроса, а не потому что меню нет:
		// пустой результат не должен затирать прежний снимок
		if err := ctx.Err(); err != nil {
			log.Info("request cancelled, menu not cached", slog.String("error", err.Error()))
			return items
		}
		log.Warn("no menu available for store")
	}

	// 3. Пишем в кэш в фоне, ответ не ждёт записи
	f.persist(ctx, storeID, items)

	return items
}

// persist сохраняет меню в кэш в отдельной горутине
// ошибка записи только логируется
func (f *MenuFetcher) persist(ctx context.Context, storeID string, items []model.MenuItem) {
	// запись не должна обрываться вместе с запросом клиента
	ctx = context.WithoutCancel(ctx)

	f.pending.Add(1)
	go func() {
		defer f.pending.Done()

		if err := f.cache.Put(ctx, storeID, items); err != nil {
			f.log.Error("failed to cache menu",
				slog.String("op", "service.MenuFetcher.persist"),
				slog.String("store_id", storeID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait дожидается завершения всех фоновых записей в кэш
func (f *MenuFetcher) Wait() {
	f.pending.Wait()
}
