package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/asquebay/taco-price-compare/internal/lib/logger"
	"github.com/asquebay/taco-price-compare/internal/model"
)

// queueReader отдаёт заранее заданные сообщения, затем io.EOF
type queueReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	errs      []error
	committed []kafka.Message
	closed    bool
}

func (r *queueReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.messages) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *queueReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *queueReader) Close() error {
	r.closed = true
	return nil
}

type recordingWarmer struct {
	warmed []string
}

func (w *recordingWarmer) MenuFor(ctx context.Context, storeID string) []model.MenuItem {
	w.warmed = append(w.warmed, storeID)
	return []model.MenuItem{{Name: "Crunchy Taco", Price: 1.99}}
}

func TestConsumer_WarmsValidMessagesAndSkipsInvalid(t *testing.T) {
	reader := &queueReader{
		errs: []error{errors.New("broker not available")},
		messages: []kafka.Message{
			{Value: []byte(`{"store_id":"031234"}`)},
			{Value: []byte(`not json`)},
			{Value: []byte(`{"store_id":"12"}`)},
			{Value: []byte(`{"store_id":"A1B2C3D"}`)},
		},
	}
	warmer := &recordingWarmer{}
	c := newConsumer(reader, warmer, nil, logger.Discard())

	c.Run(context.Background())

	assert.Equal(t, []string{"031234", "A1B2C3D"}, warmer.warmed)
	assert.Len(t, reader.committed, 4)
}

func TestConsumer_StopsOnCancelledContext(t *testing.T) {
	reader := &queueReader{messages: []kafka.Message{{Value: []byte(`{"store_id":"031234"}`)}}}
	warmer := &recordingWarmer{}
	c := newConsumer(reader, warmer, nil, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Run(ctx)

	assert.Empty(t, warmer.warmed)
	select {
	case <-c.Done():
	default:
		t.Fatal("Done must be closed after Run returns")
	}
	assert.NoError(t, c.Close())
	assert.True(t, reader.closed)
}

type mapStores struct {
	known map[string]bool
	err   error
}

func (s mapStores) Known(ctx context.Context, storeID string) (bool, error) {
	return s.known[storeID], s.err
}

func TestConsumer_SkipsUnknownStores(t *testing.T) {
	reader := &queueReader{messages: []kafka.Message{
		{Value: []byte(`{"store_id":"031234"}`)},
		{Value: []byte(`{"store_id":"099999"}`)},
	}}
	warmer := &recordingWarmer{}
	c := newConsumer(reader, warmer, mapStores{known: map[string]bool{"031234": true}}, logger.Discard())

	c.Run(context.Background())

	assert.Equal(t, []string{"031234"}, warmer.warmed)
	assert.Len(t, reader.committed, 2)
}

func TestConsumer_WarmsWhenStoreCheckFails(t *testing.T) {
	reader := &queueReader{messages: []kafka.Message{{Value: []byte(`{"store_id":"031234"}`)}}}
	warmer := &recordingWarmer{}
	c := newConsumer(reader, warmer, mapStores{err: errors.New("connection refused")}, logger.Discard())

	c.Run(context.Background())

	assert.Equal(t, []string{"031234"}, warmer.warmed)
}
