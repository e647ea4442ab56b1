package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"

	"github.com/asquebay/taco-price-compare/internal/model"
)

var validate = validator.New()

// WarmupRequest — сообщение с просьбой заранее подтянуть меню ресторана в кэш
type WarmupRequest struct {
	StoreID string `json:"store_id" validate:"required,alphanum,min=6,max=7"`
}

// MenuWarmer — это интерфейс, который абстрагирует консьюмер
// от конкретной реализации сервисного слоя
type MenuWarmer interface {
	MenuFor(ctx context.Context, storeID string) []model.MenuItem
}

// StoreChecker проверяет, что ресторан уже есть в справочнике
type StoreChecker interface {
	Known(ctx context.Context, storeID string) (bool, error)
}

// MessageReader — часть kafka.Reader, нужная консьюмеру
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает запросы на прогрев кэша меню из Kafka
type Consumer struct {
	reader  MessageReader
	service MenuWarmer
	stores  StoreChecker
	log     *slog.Logger

	// закрывается, когда Run вернул управление
	done chan struct{}
}

// NewConsumer создает новый экземпляр консьюмера
// stores может быть nil, тогда идентификатор проверяется только валидатором
func NewConsumer(brokers []string, topic, groupID string, service MenuWarmer, stores StoreChecker, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})

	return newConsumer(reader, service, stores, log)
}

func newConsumer(reader MessageReader, service MenuWarmer, stores StoreChecker, log *slog.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		service: service,
		stores:  stores,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Done закрывается после выхода из Run
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

// Run запускает цикл чтения сообщений из Kafka
// эта функция блокирующая, поэтому она запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	defer close(c.done)

	log := c.log.With(slog.String("component", "kafka_consumer"))
	log.Info("Kafka consumer started")

	for {
		// проверка на отмену контекста
		select {
		case <-ctx.Done():
			log.Info("Context cancelled, stopping consumer.")
			return
		default:
			// FetchMessage блокирует до тех пор, пока не придет новое сообщение или не возникнет ошибка
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				// если контекст был отменен во время ожидания, это нормальное завершение
				if errors.Is(err, context.Canceled) {
					return
				}
				// если ридер был закрыт, тоже выходим
				if errors.Is(err, io.EOF) {
					log.Info("Kafka reader closed")
					return
				}
				log.Error("failed to fetch message", slog.String("error", err.Error()))
				continue // пробуем снова
			}

			log.Debug("received message", slog.String("topic", msg.Topic), slog.Int("partition", msg.Partition), slog.Int64("offset", msg.Offset))

			c.handleMessage(ctx, msg)

			// прогрев — операция best effort, поэтому offset фиксируем всегда
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				log.Error("failed to commit message", slog.String("error", err.Error()))
			}
		}
	}
}

// handleMessage парсит одно сообщение и прогревает кэш меню
// невалидные сообщения пропускаются: перечитывать их бессмысленно
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) {
	var req WarmupRequest

	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.log.Warn("failed to unmarshal message, skipping", slog.String("error", err.Error()))
		return
	}

	if err := validate.Struct(req); err != nil {
		c.log.Warn("message validation failed, skipping",
			slog.String("error", err.Error()),
			slog.String("store_id", req.StoreID),
		)
		return
	}

	if c.stores != nil {
		known, err := c.stores.Known(ctx, req.StoreID)
		switch {
		case err != nil:
			// справочник недоступен, прогреваем без проверки
			c.log.Warn("failed to check store, warming anyway",
				slog.String("store_id", req.StoreID),
				slog.String("error", err.Error()),
			)
		case !known:
			c.log.Warn("unknown store, skipping", slog.String("store_id", req.StoreID))
			return
		}
	}

	items := c.service.MenuFor(ctx, req.StoreID)
	c.log.Info("menu warmed up", slog.String("store_id", req.StoreID), slog.Int("items", len(items)))
}

// gracefull shutdown консьюмера
func (c *Consumer) Close() error {
	c.log.Info("Closing kafka consumer")
	return c.reader.Close()
}
