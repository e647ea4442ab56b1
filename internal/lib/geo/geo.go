// Package geo содержит расчёты расстояний и границ поиска на сфере
package geo

import (
	"math"

	"github.com/asquebay/taco-price-compare/internal/model"
)

const (
	// EarthRadiusMiles — средний радиус Земли в милях
	EarthRadiusMiles = 3959.0
	// MilesPerDegreeLat — приблизительная длина градуса широты в милях
	MilesPerDegreeLat = 69.0
	// KmPerMile — коэффициент перевода миль в километры
	KmPerMile = 1.60934
)

func toRadians(d float64) float64 {
	return d * math.Pi / 180
}

// DistanceMiles считает расстояние по большому кругу между двумя точками (формула гаверсинусов)
func DistanceMiles(a, b model.Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h))
}

// BoundingBox строит прямоугольник вокруг center с полуразмером radiusMiles
// градус долготы сужается к полюсам, поэтому делим на cos(широты)
func BoundingBox(center model.Point, radiusMiles float64) model.BoundingBox {
	latDelta := radiusMiles / MilesPerDegreeLat
	lonDelta := radiusMiles / (MilesPerDegreeLat * math.Cos(toRadians(center.Latitude)))

	return model.BoundingBox{
		MinLat: center.Latitude - latDelta,
		MaxLat: center.Latitude + latDelta,
		MinLon: center.Longitude - lonDelta,
		MaxLon: center.Longitude + lonDelta,
	}
}

// MilesToKm переводит мили в километры
func MilesToKm(miles float64) float64 {
	return miles * KmPerMile
}
