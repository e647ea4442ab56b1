package service

import (
	"context"
	"sync"
	"time"

	"github.com/asquebay/taco-price-compare/internal/client/overpass"
	"github.com/asquebay/taco-price-compare/internal/model"
	"github.com/asquebay/taco-price-compare/internal/repository/postgres"
)

// Fake-реализации зависимостей с полями-функциями
// незаданная функция вызывает панику: тест попал в неожиданную ветку

type fakeMenuCache struct {
	mu      sync.Mutex
	getFn   func(ctx context.Context, storeID string) (model.MenuSnapshot, bool)
	putFn   func(ctx context.Context, storeID string, items []model.MenuItem) error
	puts    map[string][]model.MenuItem
	putHits int
}

func (f *fakeMenuCache) Get(ctx context.Context, storeID string) (model.MenuSnapshot, bool) {
	return f.getFn(ctx, storeID)
}

func (f *fakeMenuCache) Put(ctx context.Context, storeID string, items []model.MenuItem) error {
	f.mu.Lock()
	if f.puts == nil {
		f.puts = make(map[string][]model.MenuItem)
	}
	f.puts[storeID] = items
	f.putHits++
	f.mu.Unlock()

	if f.putFn == nil {
		return nil
	}
	return f.putFn(ctx, storeID, items)
}

type fakeUpstream struct {
	mu          sync.Mutex
	fetchFn     func(ctx context.Context, storeID string) ([]model.MenuItem, error)
	scrapeFn    func(ctx context.Context, storeID string) ([]model.MenuItem, error)
	fetchCalls  int
	scrapeCalls int
}

func (f *fakeUpstream) FetchMenu(ctx context.Context, storeID string) ([]model.MenuItem, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	return f.fetchFn(ctx, storeID)
}

func (f *fakeUpstream) ScrapeMenu(ctx context.Context, storeID string) ([]model.MenuItem, error) {
	f.mu.Lock()
	f.scrapeCalls++
	f.mu.Unlock()
	return f.scrapeFn(ctx, storeID)
}

type fakeLocationRepo struct {
	mu       sync.Mutex
	selectFn func(ctx context.Context, box model.BoundingBox) ([]model.StoreLocation, error)
	upsertFn func(ctx context.Context, store model.StoreLocation) error
	getFn    func(ctx context.Context, storeID string) (model.StoreLocation, error)
	upserted []model.StoreLocation
}

func (f *fakeLocationRepo) GetLocation(ctx context.Context, storeID string) (model.StoreLocation, error) {
	return f.getFn(ctx, storeID)
}

func (f *fakeLocationRepo) SelectByBoundingBox(ctx context.Context, box model.BoundingBox) ([]model.StoreLocation, error) {
	return f.selectFn(ctx, box)
}

func (f *fakeLocationRepo) UpsertLocation(ctx context.Context, store model.StoreLocation) error {
	f.mu.Lock()
	f.upserted = append(f.upserted, store)
	f.mu.Unlock()
	if f.upsertFn == nil {
		return nil
	}
	return f.upsertFn(ctx, store)
}

type fakePOIFinder struct {
	findFn func(ctx context.Context, name string, center model.Point, radiusKm float64) ([]overpass.Element, error)
	calls  int
}

func (f *fakePOIFinder) FindFastFood(ctx context.Context, name string, center model.Point, radiusKm float64) ([]overpass.Element, error) {
	f.calls++
	return f.findFn(ctx, name, center, radiusKm)
}

type fakeResolver struct {
	resolveFn func(ctx context.Context, pageURL string) (string, error)
}

func (f *fakeResolver) ResolveStoreID(ctx context.Context, pageURL string) (string, error) {
	return f.resolveFn(ctx, pageURL)
}

// memorySnapshots — постоянное хранилище снимков в памяти для настоящего cache.MenuCache
type memorySnapshots struct {
	mu        sync.Mutex
	snapshots map[string]model.MenuSnapshot
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{snapshots: make(map[string]model.MenuSnapshot)}
}

func (m *memorySnapshots) GetMenu(ctx context.Context, storeID string) (model.MenuSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[storeID]
	if !ok {
		return model.MenuSnapshot{}, postgres.ErrMenuNotFound
	}
	return snap, nil
}

func (m *memorySnapshots) UpsertMenu(ctx context.Context, snap model.MenuSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.StoreID] = snap
	return nil
}

func (m *memorySnapshots) GetMenusUpdatedSince(ctx context.Context, since time.Time) ([]model.MenuSnapshot, error) {
	return nil, nil
}

func (m *memorySnapshots) get(storeID string) (model.MenuSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[storeID]
	return snap, ok
}
