package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

type fakeConsumer struct {
	ch chan amqp.Delivery
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.ch, nil
}

type ackRecorder struct {
	mu     sync.Mutex
	acks   int
	nacks  int
	requeu bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeu = a.requeu || requeue
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error { return nil }

func (a *ackRecorder) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acks, a.nacks
}

type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) Process(ctx context.Context, p InboundMessagePayload) error {
	return m.Called(ctx, p).Error(0)
}

type fakeDeclarer struct {
	exchanges []string
	queues    map[string]amqp.Table
	binds     []string
}

func (f *fakeDeclarer) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	f.exchanges = append(f.exchanges, name)
	return nil
}

func (f *fakeDeclarer) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	if f.queues == nil {
		f.queues = map[string]amqp.Table{}
	}
	f.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (f *fakeDeclarer) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	f.binds = append(f.binds, exchange+"->"+name)
	return nil
}

// TestSetupTopologyDeadLetters - fila principal rejeita para a DLX
func TestSetupTopologyDeadLetters(t *testing.T) {
	d := &fakeDeclarer{}
	require.NoError(t, setupTopology(d))

	assert.ElementsMatch(t, []string{DLXName, ExchangeName}, d.exchanges)
	assert.Equal(t, DLXName, d.queues[QueueName]["x-dead-letter-exchange"])
	assert.Nil(t, d.queues[DLQName])
	assert.Contains(t, d.binds, ExchangeName+"->"+QueueName)
	assert.Contains(t, d.binds, DLXName+"->"+DLQName)
}

// TestPublishInbound - mensagem persistente na exchange de entrada
func TestPublishInbound(t *testing.T) {
	pub := &fakePublisher{}
	payload := InboundMessagePayload{ClinicID: "bemquerer", Phone: "5511999999999", Text: "oi", MessageID: "m1"}

	require.NoError(t, NewProducer(pub).PublishInbound(context.Background(), payload))

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "m1", pub.msg.MessageId)

	var got InboundMessagePayload
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, "5511999999999", got.Phone)
}

func TestPublishInboundError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	err := NewProducer(pub).PublishInbound(context.Background(), InboundMessagePayload{})
	assert.ErrorContains(t, err, "channel closed")
}

// TestWorkerAcksAndNacks - sucesso dá ack, falha e JSON inválido vão para a DLQ
func TestWorkerAcksAndNacks(t *testing.T) {
	defer goleak.VerifyNone(t)

	deliveries := make(chan amqp.Delivery, 3)
	ack := &ackRecorder{}

	ok, _ := json.Marshal(InboundMessagePayload{Phone: "1", Text: "oi"})
	bad, _ := json.Marshal(InboundMessagePayload{Phone: "2", Text: "erro"})
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: ok}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: bad}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("{")}
	close(deliveries)

	h := new(MockHandler)
	h.On("Process", mock.Anything, mock.MatchedBy(func(p InboundMessagePayload) bool { return p.Phone == "1" })).Return(nil)
	h.On("Process", mock.Anything, mock.MatchedBy(func(p InboundMessagePayload) bool { return p.Phone == "2" })).Return(errors.New("llm down"))

	w := NewWorker(&fakeConsumer{ch: deliveries}, h, zap.NewNop())
	require.NoError(t, w.Start(context.Background(), QueueName))

	acks, nacks := ack.counts()
	assert.Equal(t, 1, acks)
	assert.Equal(t, 2, nacks)
	assert.False(t, ack.requeu)
	h.AssertNumberOfCalls(t, "Process", 2)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(&fakeConsumer{ch: make(chan amqp.Delivery)}, new(MockHandler), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, QueueName) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker não parou")
	}
}
