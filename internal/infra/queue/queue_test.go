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
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/quizlead-crm/internal/entity"
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

type fakeAck struct {
	acked, nacked, requeue bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}

type handlerFunc func(ctx context.Context, e entity.LeadEvent) error

func (h handlerFunc) HandleLeadEvent(ctx context.Context, e entity.LeadEvent) error { return h(ctx, e) }

func sampleEvent() entity.LeadEvent {
	return entity.LeadEvent{
		Type:           entity.EventLeadCreated,
		LeadID:         "lead-1",
		QuizID:         "quiz-1",
		AssignedUserID: "user-1",
		OccurredAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestProducer_PublishLeadEvent(t *testing.T) {
	pub := &fakePublisher{}
	err := NewProducer(pub).PublishLeadEvent(context.Background(), sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "application/json", pub.msg.ContentType)

	var got entity.LeadEvent
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, sampleEvent(), got)
}

func TestProducer_WrapsBrokerError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	err := NewProducer(pub).PublishLeadEvent(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "channel closed")
}

func TestWorker_AcksHandledEvent(t *testing.T) {
	var got entity.LeadEvent
	var outcomes []string
	w := NewWorker(nil, handlerFunc(func(_ context.Context, e entity.LeadEvent) error {
		got = e
		return nil
	}), nil)
	w.OnProcessed = func(o string) { outcomes = append(outcomes, o) }

	body, _ := json.Marshal(sampleEvent())
	ack := &fakeAck{}
	w.handle(context.Background(), body, ack)

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, "lead-1", got.LeadID)
	assert.Equal(t, []string{"ok"}, outcomes)
}

func TestWorker_RejectsWithoutRequeue(t *testing.T) {
	w := NewWorker(nil, handlerFunc(func(context.Context, entity.LeadEvent) error {
		return errors.New("smtp down")
	}), nil)

	body, _ := json.Marshal(sampleEvent())
	failing := &fakeAck{}
	w.handle(context.Background(), body, failing)
	assert.True(t, failing.nacked)
	assert.False(t, failing.requeue)

	broken := &fakeAck{}
	w.handle(context.Background(), []byte("{"), broken)
	assert.True(t, broken.nacked)
	assert.False(t, broken.acked)
}

func TestInlinePublisher_RunsHandler(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	var got string
	p := NewInlinePublisher(handlerFunc(func(_ context.Context, e entity.LeadEvent) error {
		defer wg.Done()
		got = e.LeadID
		return nil
	}), nil)

	require.NoError(t, p.PublishLeadEvent(context.Background(), sampleEvent()))
	wg.Wait()
	assert.Equal(t, "lead-1", got)
}

type recordingTopology struct {
	exchanges []string
	queues    map[string]amqp.Table
	bindings  [][3]string
}

func (r *recordingTopology) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	r.exchanges = append(r.exchanges, name)
	return nil
}

func (r *recordingTopology) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	if r.queues == nil {
		r.queues = map[string]amqp.Table{}
	}
	r.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (r *recordingTopology) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	r.bindings = append(r.bindings, [3]string{name, key, exchange})
	return nil
}

func TestSetupTopology_DeadLetters(t *testing.T) {
	top := &recordingTopology{}
	require.NoError(t, setupTopology(top))

	assert.ElementsMatch(t, []string{DLXName, ExchangeName}, top.exchanges)
	assert.Equal(t, DLXName, top.queues[QueueName]["x-dead-letter-exchange"])
	assert.Contains(t, top.bindings, [3]string{QueueName, RoutingKey, ExchangeName})
	assert.Contains(t, top.bindings, [3]string{DLQName, RoutingKey, DLXName})
}
