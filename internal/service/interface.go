package service

import (
	"context"

	"github.com/asquebay/taco-price-compare/internal/client/overpass"
	"github.com/asquebay/taco-price-compare/internal/model"
)

// LocationRepository определяет контракт для кэша ресторанов в БД
type LocationRepository interface {
	SelectByBoundingBox(ctx context.Context, box model.BoundingBox) ([]model.StoreLocation, error)
	GetLocation(ctx context.Context, storeID string) (model.StoreLocation, error)
	UpsertLocation(ctx context.Context, store model.StoreLocation) error
}

// MenuCache определяет контракт для кэша меню с окном свежести
type MenuCache interface {
	Get(ctx context.Context, storeID string) (model.MenuSnapshot, bool)
	Put(ctx context.Context, storeID string, items []model.MenuItem) error
}

// MenuUpstream определяет внешние источники меню: API сети и страницу категории
type MenuUpstream interface {
	FetchMenu(ctx context.Context, storeID string) ([]model.MenuItem, error)
	ScrapeMenu(ctx context.Context, storeID string) ([]model.MenuItem, error)
}

// POIFinder ищет заведения сети вокруг точки (Overpass)
type POIFinder interface {
	FindFastFood(ctx context.Context, name string, center model.Point, radiusKm float64) ([]overpass.Element, error)
}

// StoreIDResolver извлекает идентификатор ресторана со страницы его сайта
type StoreIDResolver interface {
	ResolveStoreID(ctx context.Context, pageURL string) (string, error)
}

// StoreFinder возвращает рестораны вокруг точки
type StoreFinder interface {
	FindStores(ctx context.Context, center model.Point, radiusMiles float64) []model.StoreLocation
}

// MenuProvider возвращает меню ресторана (возможно пустое, но никогда не ошибку)
type MenuProvider interface {
	MenuFor(ctx context.Context, storeID string) []model.MenuItem
}
