package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/asquebay/taco-price-compare/internal/client/overpass"
	"github.com/asquebay/taco-price-compare/internal/client/tacobell"
	"github.com/asquebay/taco-price-compare/internal/config"
	"github.com/asquebay/taco-price-compare/internal/lib/logger"
	"github.com/asquebay/taco-price-compare/internal/lib/web"
	"github.com/asquebay/taco-price-compare/internal/repository/cache"
	"github.com/asquebay/taco-price-compare/internal/repository/postgres"
	"github.com/asquebay/taco-price-compare/internal/service"
	httptransport "github.com/asquebay/taco-price-compare/internal/transport/http"
	"github.com/asquebay/taco-price-compare/internal/transport/kafka"
)

func main() {
	// 1. Инициализация конфигурации
	// .env необязателен, переменные окружения могут прийти и снаружи
	_ = godotenv.Load()
	cfg := config.MustLoad(config.Path())

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting taco-price-compare", slog.String("log_level", cfg.Logger.Level))

	// 3. Инициализация репозиториев (БД)
	initCtx := context.Background()
	dbpool, err := postgres.New(initCtx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbpool.Close()
	log.Info("successfully connected to postgres")

	if err := postgres.EnsureSchema(initCtx, dbpool); err != nil {
		log.Error("failed to prepare schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	locationRepo := postgres.NewLocationRepository(dbpool)
	menuRepo := postgres.NewMenuRepository(dbpool)

	// 4. Инициализация кэша меню и восстановление свежих снимков из БД
	menuCache := cache.NewMenuCache(menuRepo, log, cache.WithTTL(cfg.Compare.MenuTTL))
	restored, err := menuCache.Restore(initCtx)
	if err != nil {
		// не фатальная ошибка, сервис может работать и с пустым кэшем
		log.Error("failed to restore menu cache", slog.String("error", err.Error()))
	} else {
		log.Info("menu cache restored", slog.Int("menus", restored))
	}

	// 5. Клиенты внешних источников
	fetcher := web.NewFetcher(nil, cfg.Upstream.UserAgent, cfg.Upstream.Timeout)
	tacoClient := tacobell.New(fetcher, cfg.Upstream.MenuBaseURL)
	overpassClient := overpass.New(fetcher, cfg.Upstream.OverpassURL)

	// 6. Инициализация сервисного слоя
	menuFetcher := service.NewMenuFetcher(menuCache, tacoClient, log)
	storeDirectory := service.NewStoreDirectory(
		locationRepo,
		overpassClient,
		tacoClient,
		cfg.Upstream.ChainName,
		cfg.Upstream.ResolveConcurrency,
		log,
	)
	compareSvc := service.NewCompareService(storeDirectory, menuFetcher, log)

	// 7. Kafka-консьюмер прогрева кэша, если брокеры заданы
	ctx, cancel := context.WithCancel(context.Background())
	var consumer *kafka.Consumer
	if len(cfg.Kafka.Brokers) > 0 {
		consumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, menuFetcher, storeDirectory, log)
		go consumer.Run(ctx)
	} else {
		log.Info("kafka brokers not configured, warm-up consumer disabled")
	}

	// 8. Инициализация и запуск HTTP-сервера
	handler := httptransport.NewHandler(compareSvc, httptransport.Defaults{
		RadiusMiles: cfg.Compare.DefaultRadiusMiles,
		Stores:      cfg.Compare.DefaultStores,
		Rows:        cfg.Compare.DefaultRows,
	}, log)
	httpServer := httptransport.NewServer(cfg.HTTPServer.Port, handler, cfg.HTTPServer.Timeout)
	log.Info("starting http server", slog.String("addr", httpServer.Addr()))

	go func() {
		if err := httpServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down application")
	cancel() // сигнал для консьюмера на завершение

	// создаем контекст с таймаутом для шатдауна сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	if consumer != nil {
		// Run может ещё прогревать меню; ждём его, иначе запись в кэш обгонит Wait
		select {
		case <-consumer.Done():
		case <-shutdownCtx.Done():
			log.Error("kafka consumer did not stop in time")
		}
		if err := consumer.Close(); err != nil {
			log.Error("error closing kafka consumer", slog.String("error", err.Error()))
		}
	}

	// дожидаемся фоновых записей меню в кэш, пока пул БД ещё открыт
	menuFetcher.Wait()

	log.Info("application stopped")
}
