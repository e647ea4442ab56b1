package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/asquebay/taco-price-compare/internal/model"
	"github.com/asquebay/taco-price-compare/internal/service"
)

// Comparer определяет интерфейс для сервиса сравнения цен
// Это позволяет хэндлеру не зависеть от конкретной реализации сервиса
type Comparer interface {
	Compare(ctx context.Context, q model.CompareQuery) (model.CompareResult, error)
}

// Defaults — значения параметров запроса по умолчанию
type Defaults struct {
	RadiusMiles float64
	Stores      int
	Rows        int
}

// Handler обрабатывает HTTP-запросы
type Handler struct {
	service  Comparer
	defaults Defaults
	log      *slog.Logger
	mux      *http.ServeMux
}

// NewHandler создает новый экземпляр Handler
func NewHandler(service Comparer, defaults Defaults, log *slog.Logger) *Handler {
	h := &Handler{
		service:  service,
		defaults: defaults,
		log:      log,
		mux:      http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes регистрирует все эндпоинты
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /compare", h.compare)
	h.mux.HandleFunc("GET /health", h.health)
}

func (h *Handler) compare(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	log := h.log.With(slog.String("request_id", requestID))

	q, err := h.parseQuery(r.URL.Query())
	if err != nil {
		log.Info("rejected compare request", slog.String("error", err.Error()))
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Compare(r.Context(), q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuery) {
			log.Info("rejected compare request", slog.String("error", err.Error()))
			h.respondError(w, http.StatusBadRequest, "invalid query parameters")
			return
		}
		log.Error("internal server error", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseQuery читает параметры запроса; lat и lon обязательны и должны быть числами
func (h *Handler) parseQuery(values url.Values) (model.CompareQuery, error) {
	lat, latErr := parseFloat(values.Get("lat"))
	lon, lonErr := parseFloat(values.Get("lon"))
	if latErr != nil || lonErr != nil {
		return model.CompareQuery{}, errors.New("lat & lon required")
	}

	q := model.CompareQuery{
		Center:      model.Point{Latitude: lat, Longitude: lon},
		RadiusMiles: h.defaults.RadiusMiles,
		Stores:      h.defaults.Stores,
		Rows:        h.defaults.Rows,
	}

	if raw := values.Get("radius_mi"); raw != "" {
		radius, err := parseFloat(raw)
		if err != nil {
			return model.CompareQuery{}, fmt.Errorf("radius_mi must be a number")
		}
		q.RadiusMiles = radius
	}
	if raw := values.Get("stores"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.CompareQuery{}, fmt.Errorf("stores must be an integer")
		}
		q.Stores = n
	}
	if raw := values.Get("rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.CompareQuery{}, fmt.Errorf("rows must be an integer")
		}
		q.Rows = n
	}

	return q, nil
}

// parseFloat разбирает конечное число; NaN и бесконечности считаются ошибкой
func parseFloat(raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return f, nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
