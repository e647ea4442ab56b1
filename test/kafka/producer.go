// этот код не зависит от приложения,
// и нужен только для ручной проверки прогрева кэша меню через кафку
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/segmentio/kafka-go"
)

func main() {
	// конфигурация из config.yaml
	brokerAddress := "localhost:9092"
	topic := "menu-warmup"

	storeID := "031234"
	if len(os.Args) > 1 {
		storeID = os.Args[1]
	}

	// JSON-сообщение
	message := fmt.Sprintf(`{"store_id": %q}`, storeID)

	// настройки писателя (producer-а)
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokerAddress),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	log.Println("Sending warm-up request to Kafka...")
	err := writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(storeID),
			Value: []byte(message),
		},
	)
	if err != nil {
		log.Fatalf("Failed to write message: %v", err)
	}
	fmt.Println("Message sent successfully!")
}
