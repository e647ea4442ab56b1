package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/asquebay/taco-price-compare/internal/lib/geo"
	"github.com/asquebay/taco-price-compare/internal/model"
)

var ErrInvalidQuery = errors.New("invalid compare query")

// CompareService инкапсулирует бизнес-логику сравнения цен
type CompareService struct {
	stores StoreFinder
	menus  MenuProvider
	log    *slog.Logger
}

// NewCompareService создаёт новый экземпляр сервиса сравнения
// он принимает интерфейсы, а не конкретные типы, для гибкости и тестируемости
func NewCompareService(stores StoreFinder, menus MenuProvider, log *slog.Logger) *CompareService {
	return &CompareService{
		stores: stores,
		menus:  menus,
		log:    log,
	}
}

// Compare находит ближайшие рестораны, собирает их меню и ранжирует позиции по разбросу цен
// ошибка возвращается только для невалидного запроса
func (s *CompareService) Compare(ctx context.Context, q model.CompareQuery) (model.CompareResult, error) {
	const op = "service.CompareService.Compare"
	log := s.log.With(slog.String("op", op))

	if err := q.Validate(); err != nil {
		return model.CompareResult{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidQuery, err)
	}

	// 1. Рестораны в радиусе, ближайшие первыми
	nearby := s.nearest(ctx, q)
	if len(nearby) == 0 {
		log.Info("no stores found", slog.Float64("lat", q.Center.Latitude), slog.Float64("lon", q.Center.Longitude))
		return model.CompareResult{Stores: []model.StoreWithDistance{}, Items: []model.RankedItem{}}, nil
	}

	// 2. Меню всех выбранных ресторанов параллельно, ждём все
	menus := make([][]model.MenuItem, len(nearby))
	var g errgroup.Group
	for i, store := range nearby {
		g.Go(func() error {
			menus[i] = s.menus.MenuFor(ctx, store.StoreID)
			return nil
		})
	}
	_ = g.Wait()

	// 3. Ранжирование
	items := Rank(menus, q.Rows)

	log.Info("compare finished", slog.Int("stores", len(nearby)), slog.Int("items", len(items)))
	return model.CompareResult{Stores: nearby, Items: items}, nil
}

// nearest отбирает q.Stores ближайших ресторанов в пределах радиуса
func (s *CompareService) nearest(ctx context.Context, q model.CompareQuery) []model.StoreWithDistance {
	all := s.stores.FindStores(ctx, q.Center, q.RadiusMiles)

	nearby := make([]model.StoreWithDistance, 0, len(all))
	for _, store := range all {
		dist := geo.DistanceMiles(q.Center, store.Point())
		// прямоугольник из кэша шире круга, лишнее отсекаем здесь
		if dist > q.RadiusMiles {
			continue
		}
		nearby = append(nearby, model.StoreWithDistance{StoreLocation: store, Distance: dist})
	}

	sort.SliceStable(nearby, func(a, b int) bool {
		return nearby[a].Distance < nearby[b].Distance
	})
	if len(nearby) > q.Stores {
		nearby = nearby[:q.Stores]
	}

	return nearby
}
