// Package overpass — клиент к Overpass API (OpenStreetMap) для поиска точек интереса
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/asquebay/taco-price-compare/internal/model"
)

// Element — точка интереса из ответа Overpass
type Element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Tag возвращает значение тега или def, если тега нет или он пустой
func (e Element) Tag(key, def string) string {
	if v := e.Tags[key]; v != "" {
		return v
	}
	return def
}

type response struct {
	Elements []Element `json:"elements"`
}

// Getter загружает тело ответа по url (реализуется web.Fetcher)
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client выполняет запросы к интерпретатору Overpass
type Client struct {
	web      Getter
	endpoint string
}

// New создаёт клиента; endpoint — адрес интерпретатора, например https://overpass-api.de/api/interpreter
func New(web Getter, endpoint string) *Client {
	return &Client{web: web, endpoint: endpoint}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FastFoodQuery строит запрос на заведения fast_food с заданным именем в радиусе radiusKm
func FastFoodQuery(name string, center model.Point, radiusKm float64) string {
	name = strings.ReplaceAll(name, `"`, `\"`)
	return fmt.Sprintf(`[out:json];node["amenity"="fast_food"]["name"="%s"](around:%s,%s,%s);out;`,
		name,
		formatFloat(radiusKm*1000),
		formatFloat(center.Latitude),
		formatFloat(center.Longitude),
	)
}

// FindFastFood ищет заведения сети вокруг center
func (c *Client) FindFastFood(ctx context.Context, name string, center model.Point, radiusKm float64) ([]Element, error) {
	const op = "client.overpass.Client.FindFastFood"

	query := FastFoodQuery(name, center, radiusKm)
	body, err := c.web.Get(ctx, c.endpoint+"?data="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: failed to parse response: %w", op, err)
	}
	return resp.Elements, nil
}
