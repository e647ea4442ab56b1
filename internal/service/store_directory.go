package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/asquebay/taco-price-compare/internal/client/overpass"
	"github.com/asquebay/taco-price-compare/internal/lib/geo"
	"github.com/asquebay/taco-price-compare/internal/model"
	"github.com/asquebay/taco-price-compare/internal/repository/postgres"
)

// StoreDirectory ищет рестораны сети: сначала в кэше БД, потом через Overpass
type StoreDirectory struct {
	repo        LocationRepository
	poi         POIFinder
	resolver    StoreIDResolver
	chainName   string
	concurrency int
	log         *slog.Logger
}

// NewStoreDirectory создаёт новый экземпляр
// concurrency ограничивает число одновременных загрузок страниц ресторанов
func NewStoreDirectory(
	repo LocationRepository,
	poi POIFinder,
	resolver StoreIDResolver,
	chainName string,
	concurrency int,
	log *slog.Logger,
) *StoreDirectory {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &StoreDirectory{
		repo:        repo,
		poi:         poi,
		resolver:    resolver,
		chainName:   chainName,
		concurrency: concurrency,
		log:         log,
	}
}

// FindStores возвращает рестораны вокруг center
// если кэш вернул хотя бы один ресторан, живой поиск не выполняется,
// даже если в кэше есть не все рестораны района
func (d *StoreDirectory) FindStores(ctx context.Context, center model.Point, radiusMiles float64) []model.StoreLocation {
	const op = "service.StoreDirectory.FindStores"
	log := d.log.With(slog.String("op", op))

	// 1. Кэш в БД
	box := geo.BoundingBox(center, radiusMiles)
	cached, err := d.repo.SelectByBoundingBox(ctx, box)
	if err != nil {
		log.Warn("failed to read cached locations, falling back to live lookup", slog.String("error", err.Error()))
	} else if len(cached) > 0 {
		log.Debug("locations served from cache", slog.Int("stores", len(cached)))
		return cached
	}

	// 2. Живой поиск
	return d.discover(ctx, center, radiusMiles)
}

// discover запрашивает Overpass и определяет идентификаторы найденных ресторанов
func (d *StoreDirectory) discover(ctx context.Context, center model.Point, radiusMiles float64) []model.StoreLocation {
	const op = "service.StoreDirectory.discover"
	log := d.log.With(slog.String("op", op))

	elements, err := d.poi.FindFastFood(ctx, d.chainName, center, geo.MilesToKm(radiusMiles))
	if err != nil {
		log.Warn("live store lookup failed", slog.String("error", err.Error()))
		return []model.StoreLocation{}
	}
	log.Info("live store lookup finished", slog.Int("points", len(elements)))

	// каждый слот заполняет своя горутина, поэтому порядок точек сохраняется
	found := make([]*model.StoreLocation, len(elements))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, el := range elements {
		website := el.Tag("website", "")
		if website == "" {
			continue
		}
		g.Go(func() error {
			if store, ok := d.resolve(ctx, el, website); ok {
				found[i] = &store
			}
			// ошибка по одной точке не должна останавливать остальные
			return nil
		})
	}
	_ = g.Wait()

	stores := []model.StoreLocation{}
	seen := make(map[string]bool, len(found))
	for _, s := range found {
		if s == nil || seen[s.StoreID] {
			continue
		}
		seen[s.StoreID] = true
		stores = append(stores, *s)
	}

	// в кэш пишем только после схлопывания дублей, чтобы БД и ответ совпадали
	for _, store := range stores {
		if err := d.repo.UpsertLocation(ctx, store); err != nil {
			// не фатально, ресторан всё равно попадёт в ответ
			log.Error("failed to cache store location",
				slog.String("store_id", store.StoreID),
				slog.String("error", err.Error()),
			)
		}
	}

	log.Info("stores discovered", slog.Int("stores", len(stores)))
	return stores
}

// resolve строит StoreLocation для точки интереса
func (d *StoreDirectory) resolve(ctx context.Context, el overpass.Element, website string) (model.StoreLocation, bool) {
	const op = "service.StoreDirectory.resolve"
	log := d.log.With(slog.String("op", op), slog.String("website", website))

	storeID, err := d.resolver.ResolveStoreID(ctx, website)
	if err != nil {
		log.Debug("store id not resolved, skipping point", slog.String("error", err.Error()))
		return model.StoreLocation{}, false
	}

	store := model.StoreLocation{
		StoreID:   storeID,
		Name:      el.Tag("name", d.chainName),
		Address:   strings.TrimSpace(el.Tag("addr:housenumber", "") + " " + el.Tag("addr:street", "")),
		Latitude:  el.Lat,
		Longitude: el.Lon,
	}
	if err := store.Validate(); err != nil {
		log.Warn("discovered store is invalid, skipping", slog.String("error", err.Error()))
		return model.StoreLocation{}, false
	}

	return store, true
}

// Known сообщает, есть ли ресторан с таким идентификатором в кэше БД
func (d *StoreDirectory) Known(ctx context.Context, storeID string) (bool, error) {
	const op = "service.StoreDirectory.Known"

	if _, err := d.repo.GetLocation(ctx, storeID); err != nil {
		if errors.Is(err, postgres.ErrLocationNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}
