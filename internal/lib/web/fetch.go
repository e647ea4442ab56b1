// Package web — общий HTTP-загрузчик для внешних источников
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize ограничивает размер читаемого ответа (страницы сети бывают тяжёлыми)
const maxBodySize = 8 << 20

// Fetcher выполняет GET-запросы с единым User-Agent
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher создаёт загрузчик; если client == nil, создаётся клиент с таймаутом timeout
func NewFetcher(client *http.Client, userAgent string, timeout time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// Get загружает тело ответа по url
// статус вне диапазона 2xx считается ошибкой
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	const op = "lib.web.Fetcher.Get"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: unexpected status %d from %s", op, resp.StatusCode, url)
	}

	return body, nil
}
