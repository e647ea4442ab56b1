package model

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Point — географическая точка в десятичных градусах
type Point struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// BoundingBox — прямоугольник в градусах для выборки ресторанов из кэша
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// StoreLocation — ресторан сети, найденный при поиске
// идентификатор присваивается сетью и служит ключом в tb_locations
type StoreLocation struct {
	StoreID   string  `json:"store_id" validate:"required,alphanum,min=6,max=7"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Point возвращает координаты ресторана
func (s StoreLocation) Point() Point {
	return Point{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Validate проверяет корректность структуры StoreLocation на основе тегов validate
func (s *StoreLocation) Validate() error {
	return validate.Struct(s)
}

// StoreWithDistance — ресторан вместе с расстоянием до точки запроса в милях
type StoreWithDistance struct {
	StoreLocation
	Distance float64 `json:"dist"`
}
