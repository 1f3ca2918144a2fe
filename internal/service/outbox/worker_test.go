package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/memory"
)

type stubPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	events   []domain.OutboxMessage
}

func (s *stubPublisher) Publish(event domain.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("broker unavailable")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubPublisher) published() []domain.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.OutboxMessage, len(s.events))
	copy(result, s.events)
	return result
}

func enqueue(t *testing.T, repo domain.OutboxRepository, eventType string) domain.OutboxMessage {
	t.Helper()

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     eventType,
		Payload:       []byte(`{"order_id":"order-1"}`),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return msg
}

func TestWorker_ProcessOncePublishesPending(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}
	enqueue(t, repo, "order.created")
	enqueue(t, repo, "order.status_changed")

	worker := NewWorker(repo, publisher, WithRetryBaseDelay(0))
	worker.ProcessOnce(context.Background())

	if got := len(publisher.published()); got != 2 {
		t.Fatalf("expected 2 published events, got %d", got)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(pending))
	}
}

func TestWorker_RetriesTransientFailures(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failures: 2}
	enqueue(t, repo, "order.created")

	worker := NewWorker(repo, publisher, WithMaxAttempts(3), WithRetryBaseDelay(time.Millisecond))
	worker.ProcessOnce(context.Background())

	if got := len(publisher.published()); got != 1 {
		t.Fatalf("expected event published after retries, got %d", got)
	}
	if publisher.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", publisher.calls)
	}
}

func TestWorker_MarksFailedAfterExhaustedRetries(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failures: 10}
	enqueue(t, repo, "order.created")

	worker := NewWorker(repo, publisher, WithMaxAttempts(2), WithRetryBaseDelay(0))
	worker.ProcessOnce(context.Background())

	if got := len(publisher.published()); got != 0 {
		t.Fatalf("expected no published events, got %d", got)
	}

	// Запись помечена failed и не возвращается в pending.
	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending records, got %d", len(pending))
	}
}

func TestWorker_RunStopsOnContextCancel(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}

	worker := NewWorker(repo, publisher, WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}
