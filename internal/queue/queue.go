package queue

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/studiovx/outreach-backend/internal/repository"
)

// TopicSendEvents carries outreach send events from the API to whoever
// records them (in-process subscriber or the RabbitMQ worker).
const TopicSendEvents = "outreach_sends"

// SendEvent is the payload published when the operator marks a script
// message as sent for a site.
type SendEvent struct {
	SiteID    string    `json:"site_id"`
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process pub/sub queue with retry
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	log      *zap.Logger
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(log *zap.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
		log:      log,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			q.log.Debug("job processed", zap.Any("payload", job.Payload))
			return // ACK
		}

		job.RetryCount++
		q.log.Warn("job failed",
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err))

		if job.RetryCount > job.MaxRetries {
			q.log.Error("job permanently failed",
				zap.Any("payload", job.Payload),
				zap.Error(err))
			return // No requeue
		}

		// Backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartSendEventSubscriber records send events against the site's
// assignment as the API publishes them.
func StartSendEventSubscriber(q Queue, assignmentRepo repository.AssignmentRepositoryInterface, log *zap.Logger) {
	err := q.Subscribe(TopicSendEvents, func(payload any) error {
		event, ok := payload.(SendEvent)
		if !ok {
			log.Warn("invalid payload type, expected SendEvent")
			return nil // no retry
		}

		log.Info("recording send event",
			zap.String("site_id", event.SiteID),
			zap.String("message_id", event.MessageID))

		if err := assignmentRepo.MarkSent(event.SiteID, event.MessageID, event.SentAt); err != nil {
			log.Warn("failed to record send event", zap.Error(err))
			return err // triggers retry in queue
		}
		return nil
	})

	if err != nil {
		log.Error("failed to start subscriber", zap.String("topic", TopicSendEvents), zap.Error(err))
	}
}
