package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asquebay/taco-price-compare/internal/client/overpass"
	"github.com/asquebay/taco-price-compare/internal/lib/logger"
	"github.com/asquebay/taco-price-compare/internal/model"
	"github.com/asquebay/taco-price-compare/internal/repository/postgres"
)

var austin = model.Point{Latitude: 30.0, Longitude: -97.0}

func newDirectory(repo *fakeLocationRepo, poi *fakePOIFinder, resolver *fakeResolver) *StoreDirectory {
	return NewStoreDirectory(repo, poi, resolver, "Taco Bell", 2, logger.Discard())
}

func TestFindStores_CacheHitSkipsLiveLookup(t *testing.T) {
	cached := []model.StoreLocation{
		{StoreID: "031234", Name: "Taco Bell", Latitude: 30.01, Longitude: -97.01},
	}
	var gotBox model.BoundingBox
	repo := &fakeLocationRepo{
		selectFn: func(ctx context.Context, box model.BoundingBox) ([]model.StoreLocation, error) {
			gotBox = box
			return cached, nil
		},
	}
	poi := &fakePOIFinder{
		findFn: func(ctx context.Context, name string, center model.Point, radiusKm float64) ([]overpass.Element, error) {
			t.Fatal("live lookup must not be invoked when cache has rows")
			return nil, nil
		},
	}
	d := newDirectory(repo, poi, &fakeResolver{})

	stores := d.FindStores(context.Background(), austin, 10)

	assert.Equal(t, cached, stores)
	assert.Zero(t, poi.calls)
	assert.InDelta(t, 30-10.0/69, gotBox.MinLat, 1e-9)
	assert.InDelta(t, 30+10.0/69, gotBox.MaxLat, 1e-9)
	assert.Less(t, gotBox.MinLon, -97.0-10.0/69)
}

func TestFindStores_LiveLookupResolvesAndCaches(t *testing.T) {
	repo := &fakeLocationRepo{
		selectFn: func(ctx context.Context, box model.BoundingBox) ([]model.StoreLocation, error) {
			return []model.StoreLocation{}, nil
		},
	}
	var gotRadiusKm float64
	poi := &fakePOIFinder{
		findFn: func(ctx context.Context, name string, center model.Point, radiusKm float64) ([]overpass.Element, error) {
			assert.Equal(t, "Taco Bell", name)
			gotRadiusKm = radiusKm
			return []overpass.Element{
				{ID: 1, Lat: 30.01, Lon: -97.01, Tags: map[string]string{
					"name": "Taco Bell Cantina", "website": "https://locations.example/a",
					"addr:housenumber": "12", "addr:street": "Main St",
				}},
				{ID: 2, Lat: 30.02, Lon: -97.02, Tags: map[string]string{"name": "No Website"}},
				{ID: 3, Lat: 30.03, Lon: -97.03, Tags: map[string]string{"website": "https://locations.example/broken"}},
				{ID: 4, Lat: 30.04, Lon: -97.04, Tags: map[string]string{"website": "https://locations.example/d", "addr:street": "Oak Ave"}},
				{ID: 5, Lat: 30.05, Lon: -97.05, Tags: map[string]string{"website": "https://locations.example/nomatch"}},
			}, nil
		},
	}
	resolver := &fakeResolver{
		resolveFn: func(ctx context.Context, pageURL string) (string, error) {
			switch {
			case strings.HasSuffix(pageURL, "/a"):
				return "031234", nil
			case strings.HasSuffix(pageURL, "/d"):
				return "045678", nil
			case strings.HasSuffix(pageURL, "/broken"):
				return "", errors.New("connection refused")
			default:
				return "", errors.New("store id not found on page")
			}
		},
	}
	d := newDirectory(repo, poi, resolver)

	stores := d.FindStores(context.Background(), austin, 10)

	require.Equal(t, []model.StoreLocation{
		{StoreID: "031234", Name: "Taco Bell Cantina", Address: "12 Main St", Latitude: 30.01, Longitude: -97.01},
		{StoreID: "045678", Name: "Taco Bell", Address: "Oak Ave", Latitude: 30.04, Longitude: -97.04},
	}, stores)
	assert.InDelta(t, 16.0934, gotRadiusKm, 1e-9)
	assert.ElementsMatch(t, stores, repo.upserted)
}

func TestFindStores_UpsertFailureIsNotFatal(t *testing.T) {
	repo := &fakeLocationRepo{
		selectFn: func(ctx context.Context, box model.BoundingBox) ([]model.StoreLocation, error) {
			return nil, errors.New("relation tb_locations does not exist")
		},
		upsertFn: func(ctx context.Context, store model.StoreLocation) error {
			return errors.New("read-only transaction")
		},
	}
	poi := &fakePOIFinder{
		findFn: func(ctx context.Context, name string, center model.Point, radiusKm float64) ([]overpass.Element, error) {
			return []overpass.Element{
				{Lat: 30.01, Lon: -97.01, Tags: map[string]string{"website": "https://locations.example/a"}},
			}, nil
		},
	}
	resolver := &fakeResolver{
		resolveFn: func(ctx context.Context, pageURL string) (string, error) { return "031234", nil },
	}
	d := newDirectory(repo, poi, resolver)

	stores := d.FindStores(context.Background(), austin, 10)

	require.Len(t, stores, 1)
	assert.Equal(t, "031234", stores[0].StoreID)
	assert.Equal(t, 1, poi.calls)
}

func TestFindStores_LiveLookupFailureYieldsEmpty(t *testing.T) {
	repo := &fakeLocationRepo{
		selectFn: func(ctx context.Context, box model.BoundingBox) ([]model.StoreLocation, error) {
			return nil, nil
		},
	}
	poi := &fakePOIFinder{
		findFn: func(ctx context.Context, name string, center model.Point, radiusKm float64) ([]overpass.Element, error) {
			return nil, errors.New("429 too many requests")
		},
	}
	d := newDirectory(repo, poi, &fakeResolver{})

	stores := d.FindStores(context.Background(), austin, 10)

	require.NotNil(t, stores)
	assert.Empty(t, stores)
}

func TestFindStores_DuplicateStoreIDsCollapsed(t *testing.T) {
	repo := &fakeLocationRepo{
		selectFn: func(ctx context.Context, box model.BoundingBox) ([]model.StoreLocation, error) {
			return nil, nil
		},
	}
	poi := &fakePOIFinder{
		findFn: func(ctx context.Context, name string, center model.Point, radiusKm float64) ([]overpass.Element, error) {
			return []overpass.Element{
				{Lat: 30.01, Lon: -97.01, Tags: map[string]string{"website": "https://locations.example/a"}},
				{Lat: 30.011, Lon: -97.011, Tags: map[string]string{"website": "https://locations.example/a?utm=osm"}},
			}, nil
		},
	}
	resolver := &fakeResolver{
		resolveFn: func(ctx context.Context, pageURL string) (string, error) { return "031234", nil },
	}
	d := newDirectory(repo, poi, resolver)

	stores := d.FindStores(context.Background(), austin, 10)

	require.Len(t, stores, 1)
	assert.Equal(t, 30.01, stores[0].Latitude)
	// в БД попадает та же точка, что и в ответ
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, stores[0], repo.upserted[0])
}

func TestKnown(t *testing.T) {
	repo := &fakeLocationRepo{
		getFn: func(ctx context.Context, storeID string) (model.StoreLocation, error) {
			switch storeID {
			case "031234":
				return model.StoreLocation{StoreID: storeID}, nil
			case "099999":
				return model.StoreLocation{}, fmt.Errorf("op: %w", postgres.ErrLocationNotFound)
			default:
				return model.StoreLocation{}, errors.New("connection refused")
			}
		},
	}
	d := newDirectory(repo, &fakePOIFinder{}, &fakeResolver{})

	known, err := d.Known(context.Background(), "031234")
	require.NoError(t, err)
	assert.True(t, known)

	known, err = d.Known(context.Background(), "099999")
	require.NoError(t, err)
	assert.False(t, known)

	_, err = d.Known(context.Background(), "055555")
	assert.Error(t, err)
}
