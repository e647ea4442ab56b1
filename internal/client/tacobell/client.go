// Package tacobell — клиент к сайту и API сети: меню ресторана и идентификатор ресторана по его странице
package tacobell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/asquebay/taco-price-compare/internal/model"
)

var (
	ErrStoreIDNotFound = errors.New("store id not found on page")
	ErrNoNextData      = errors.New("__NEXT_DATA__ payload not found")
)

var (
	// JSON-LD страницы ресторана: "menu":"https://www.tacobell.com/food?store=031234"
	jsonLDMenuRe = regexp.MustCompile(`"menu":"https?://www\.tacobell\.com/food\?store=([A-Za-z0-9]{6,7})`)
	// значение data-code у div#Core
	dataCodeRe = regexp.MustCompile(`^([A-Za-z0-9]{6,7})`)
)

// Getter загружает тело ответа по url (реализуется web.Fetcher)
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client обращается к API и страницам сети
type Client struct {
	web     Getter
	baseURL string
}

// New создаёт клиента; baseURL — корень сайта сети без завершающего слэша
func New(web Getter, baseURL string) *Client {
	return &Client{
		web:     web,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchMenu получает меню ресторана через структурированное API сети
func (c *Client) FetchMenu(ctx context.Context, storeID string) ([]model.MenuItem, error) {
	const op = "client.tacobell.Client.FetchMenu"

	endpoint := fmt.Sprintf("%s/tacobellwebservices/v2/tacobell/products/menu/%s", c.baseURL, url.PathEscape(storeID))
	body, err := c.web.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := parseAPIMenu(body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse menu: %w", op, err)
	}
	return items, nil
}

// ScrapeMenu получает меню со страницы категории «tacos», вытаскивая JSON из <script id="__NEXT_DATA__">
func (c *Client) ScrapeMenu(ctx context.Context, storeID string) ([]model.MenuItem, error) {
	const op = "client.tacobell.Client.ScrapeMenu"

	page := fmt.Sprintf("%s/food/tacos?store=%s", c.baseURL, url.QueryEscape(storeID))
	body, err := c.web.Get(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse html: %w", op, err)
	}

	payload := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if payload == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoNextData)
	}

	items, err := parseNextData([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse next data: %w", op, err)
	}
	return items, nil
}

// ResolveStoreID загружает страницу ресторана и извлекает из неё идентификатор
func (c *Client) ResolveStoreID(ctx context.Context, pageURL string) (string, error) {
	const op = "client.tacobell.Client.ResolveStoreID"

	body, err := c.web.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := ExtractStoreID(body)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, pageURL, err)
	}
	return id, nil
}

// ExtractStoreID ищет идентификатор ресторана в HTML:
// сначала ссылку на меню в JSON-LD, затем атрибут data-code у div#Core
func ExtractStoreID(html []byte) (string, error) {
	if m := jsonLDMenuRe.FindSubmatch(html); m != nil {
		return string(m[1]), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", err
	}
	code, ok := doc.Find("div#Core").First().Attr("data-code")
	if !ok {
		return "", ErrStoreIDNotFound
	}
	if m := dataCodeRe.FindStringSubmatch(code); m != nil {
		return m[1], nil
	}

	return "", ErrStoreIDNotFound
}
