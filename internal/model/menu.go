package model

import "time"

// MenuItem — одна позиция меню с ценой в валюте сети
type MenuItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// MenuSnapshot — меню конкретного ресторана на момент UpdatedAt
type MenuSnapshot struct {
	StoreID   string     `json:"store_id"`
	Items     []MenuItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FreshAt сообщает, действителен ли снимок в момент now при заданном ttl
func (s MenuSnapshot) FreshAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.UpdatedAt) < ttl
}

// RankedItem — позиция меню с ценами по каждому ресторану запроса
// nil в Prices означает, что в этом ресторане позиции нет
type RankedItem struct {
	Name   string     `json:"name"`
	Prices []*float64 `json:"prices"`
	Spread float64    `json:"spread"`
}
