package tacobell

import (
	"encoding/json"

	"github.com/asquebay/taco-price-compare/internal/model"
)

// rawProduct — продукт в том виде, в каком его отдаёт сеть
// указатели позволяют отличить отсутствующее поле от нулевого значения
type rawProduct struct {
	Name  string    `json:"name"`
	Price *rawPrice `json:"price"`
}

type rawPrice struct {
	Value *float64 `json:"value"`
}

// apiMenu — ответ products/menu/{store}
type apiMenu struct {
	MenuProductCategories []json.RawMessage `json:"menuProductCategories"`
}

type apiCategory struct {
	MenuProducts []json.RawMessage `json:"menuProducts"`
	Products     []json.RawMessage `json:"products"`
}

// nextData — полезная нагрузка <script id="__NEXT_DATA__"> со страницы категории
type nextData struct {
	Props struct {
		PageProps struct {
			ProductCategories []json.RawMessage `json:"productCategories"`
		} `json:"pageProps"`
	} `json:"props"`
}

type pageCategory struct {
	Products []json.RawMessage `json:"products"`
}

// parseProduct превращает сырой JSON в позицию меню
// false означает невалидный продукт: нет имени, нет числовой цены или мусор вместо объекта
func parseProduct(raw json.RawMessage) (model.MenuItem, bool) {
	var p rawProduct
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.MenuItem{}, false
	}
	if p.Name == "" || p.Price == nil || p.Price.Value == nil || *p.Price.Value < 0 {
		return model.MenuItem{}, false
	}
	return model.MenuItem{Name: p.Name, Price: *p.Price.Value}, true
}

// appendProducts добавляет к items все валидные продукты из raws
func appendProducts(items []model.MenuItem, raws []json.RawMessage) []model.MenuItem {
	for _, raw := range raws {
		if item, ok := parseProduct(raw); ok {
			items = append(items, item)
		}
	}
	return items
}

// parseAPIMenu разбирает ответ API меню
// битые категории пропускаются, ошибка только если сам документ не JSON нужной формы
func parseAPIMenu(body []byte) ([]model.MenuItem, error) {
	var menu apiMenu
	if err := json.Unmarshal(body, &menu); err != nil {
		return nil, err
	}

	items := []model.MenuItem{}
	for _, rawCat := range menu.MenuProductCategories {
		var cat apiCategory
		if err := json.Unmarshal(rawCat, &cat); err != nil {
			continue
		}
		items = appendProducts(items, cat.MenuProducts)
		items = appendProducts(items, cat.Products)
	}
	return items, nil
}

// parseNextData разбирает JSON из __NEXT_DATA__
func parseNextData(payload []byte) ([]model.MenuItem, error) {
	var next nextData
	if err := json.Unmarshal(payload, &next); err != nil {
		return nil, err
	}

	items := []model.MenuItem{}
	for _, rawCat := range next.Props.PageProps.ProductCategories {
		var cat pageCategory
		if err := json.Unmarshal(rawCat, &cat); err != nil {
			continue
		}
		items = appendProducts(items, cat.Products)
	}
	return items, nil
}
