package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/asquebay/taco-price-compare/internal/model"
)

// Rank сводит меню нескольких ресторанов и сортирует позиции по разбросу цен
// menus[i] — меню i-го ресторана, порядок слотов в Prices совпадает с порядком menus
// позиции, которые встречаются меньше чем в двух ресторанах, отбрасываются
// при равном разбросе сохраняется порядок первого появления позиции
func Rank(menus [][]model.MenuItem, limit int) []model.RankedItem {
	prices := make(map[string][]*float64)
	order := []string{}

	// 1. Раскладываем цены по слотам ресторанов
	for i, menu := range menus {
		for _, item := range menu {
			slots, ok := prices[item.Name]
			if !ok {
				slots = make([]*float64, len(menus))
				prices[item.Name] = slots
				order = append(order, item.Name)
			}
			price := item.Price
			slots[i] = &price
		}
	}

	// 2. Считаем разброс по присутствующим ценам
	ranked := make([]model.RankedItem, 0, len(order))
	for _, name := range order {
		slots := prices[name]

		var lo, hi float64
		present := 0
		for _, p := range slots {
			if p == nil {
				continue
			}
			if present == 0 || *p < lo {
				lo = *p
			}
			if present == 0 || *p > hi {
				hi = *p
			}
			present++
		}
		if present < 2 {
			continue
		}

		ranked = append(ranked, model.RankedItem{
			Name:   name,
			Prices: slots,
			Spread: spread(lo, hi),
		})
	}

	// 3. Сортируем по убыванию разброса и обрезаем
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Spread > ranked[b].Spread
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// spread считает hi - lo в десятичной арифметике, чтобы 2.49 - 1.99 давало ровно 0.5
func spread(lo, hi float64) float64 {
	return decimal.NewFromFloat(hi).Sub(decimal.NewFromFloat(lo)).InexactFloat64()
}
