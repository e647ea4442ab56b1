package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asquebay/taco-price-compare/internal/model"
)

func TestDistanceMiles_SamePoint(t *testing.T) {
	points := []model.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 30.2672, Longitude: -97.7431},
		{Latitude: -33.8688, Longitude: 151.2093},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, DistanceMiles(p, p))
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	a := model.Point{Latitude: 30.0, Longitude: -97.0}
	b := model.Point{Latitude: 30.5, Longitude: -97.8}

	assert.InDelta(t, DistanceMiles(a, b), DistanceMiles(b, a), 1e-9)
}

func TestDistanceMiles_OneMileAlongMeridian(t *testing.T) {
	// одна миля по меридиану — это 1/3959 радиана
	deg := 1 / EarthRadiusMiles * 180 / 3.141592653589793
	a := model.Point{Latitude: 0, Longitude: 0}
	b := model.Point{Latitude: deg, Longitude: 0}

	assert.InDelta(t, 1.0, DistanceMiles(a, b), 0.01)
}

func TestDistanceMiles_KnownCities(t *testing.T) {
	austin := model.Point{Latitude: 30.2672, Longitude: -97.7431}
	dallas := model.Point{Latitude: 32.7767, Longitude: -96.7970}

	// около 182 миль по прямой
	assert.InDelta(t, 182, DistanceMiles(austin, dallas), 2)
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox(model.Point{Latitude: 0, Longitude: 10}, 69)
	assert.InDelta(t, -1, box.MinLat, 1e-9)
	assert.InDelta(t, 1, box.MaxLat, 1e-9)
	assert.InDelta(t, 9, box.MinLon, 1e-9)
	assert.InDelta(t, 11, box.MaxLon, 1e-9)

	// на 60° широты градус долготы вдвое короче
	box = BoundingBox(model.Point{Latitude: 60, Longitude: 0}, 69)
	assert.InDelta(t, 2, box.MaxLon, 1e-9)
	assert.InDelta(t, -2, box.MinLon, 1e-9)
}

func TestMilesToKm(t *testing.T) {
	assert.InDelta(t, 16.0934, MilesToKm(10), 1e-9)
}
