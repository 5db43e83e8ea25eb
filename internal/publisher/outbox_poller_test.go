package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coderarham/storefront/internal/orders"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	Events       []*orders.OutboxEvent
	FetchErr     error
	MarkErr      error
	ProcessedIDs []int64
}

func (m *MockRepository) GetUnprocessedEvents(_ context.Context, _ int) ([]*orders.OutboxEvent, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Events, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.ProcessedIDs = append(m.ProcessedIDs, id)
	return nil
}

type MockWriter struct {
	Written  []kafka.Message
	WriteErr error
}

func (m *MockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Written = append(m.Written, msgs...)
	return nil
}

func (m *MockWriter) Close() error { return nil }

func testEvent(id int64) *orders.OutboxEvent {
	return &orders.OutboxEvent{
		ID:          id,
		AggregateID: "order-uuid-1",
		EventType:   "order.completed",
		Payload:     []byte(`{"user_id":"user-1","total_amount":117.99}`),
		CreatedAt:   time.Now(),
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	repo := &MockRepository{Events: []*orders.OutboxEvent{testEvent(1), testEvent(2)}}
	writer := &MockWriter{}
	poller := &OutboxPoller{tick: time.Second, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, writer.Written, 2)
	assert.Equal(t, []byte("order-uuid-1"), writer.Written[0].Key)
	assert.Equal(t, []byte(`{"user_id":"user-1","total_amount":117.99}`), writer.Written[0].Value)
	require.Len(t, writer.Written[0].Headers, 1)
	assert.Equal(t, "event_type", writer.Written[0].Headers[0].Key)
	assert.Equal(t, []byte("order.completed"), writer.Written[0].Headers[0].Value)

	assert.Equal(t, []int64{1, 2}, repo.ProcessedIDs)
}

func TestProcessUnpublishedEvents_PublishFailureLeavesEventUnprocessed(t *testing.T) {
	repo := &MockRepository{Events: []*orders.OutboxEvent{testEvent(1)}}
	writer := &MockWriter{WriteErr: errors.New("broker unreachable")}
	poller := &OutboxPoller{tick: time.Second, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	assert.Empty(t, repo.ProcessedIDs)
}

func TestProcessUnpublishedEvents_FetchFailure(t *testing.T) {
	repo := &MockRepository{FetchErr: errors.New("pg down")}
	writer := &MockWriter{}
	poller := &OutboxPoller{tick: time.Second, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	assert.Empty(t, writer.Written)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := &MockRepository{}
	writer := &MockWriter{}
	poller := &OutboxPoller{tick: 10 * time.Millisecond, repo: repo, writer: writer}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
