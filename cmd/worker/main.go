package main

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/studiovx/outreach-backend/internal/config"
	"github.com/studiovx/outreach-backend/internal/db"
	"github.com/studiovx/outreach-backend/internal/logger"
	"github.com/studiovx/outreach-backend/internal/queue"
	"github.com/studiovx/outreach-backend/internal/repository"
)

// markSentRepo is the slice of AssignmentRepository the worker needs.
type markSentRepo interface {
	MarkSent(siteID, messageID string, at time.Time) error
}

func main() {
	cfg, err := config.NewLoadedConfig()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	conn, err := db.Open(cfg.DSN())
	if err != nil {
		log.Fatal("failed to connect to DB", zap.Error(err))
	}

	assignmentRepo := &repository.AssignmentRepository{DB: conn}

	// Connect to RabbitMQ
	mq, err := amqp.Dial(cfg.AmqpURL)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mq.Close()

	ch, err := mq.Channel()
	if err != nil {
		log.Fatal("failed to open a channel", zap.Error(err))
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue.TopicSendEvents, // name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		log.Fatal("failed to declare queue", zap.Error(err))
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("failed to register consumer", zap.Error(err))
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var event queue.SendEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				log.Warn("invalid job", zap.Error(err))
				d.Ack(false)
				continue
			}

			err := processEvent(event, assignmentRepo)
			if err != nil {
				log.Warn("failed to record send event", zap.Error(err))
				// Retry logic: requeue up to 3 times
				var retryCount int
				switch v := d.Headers["x-retry-count"].(type) {
				case int:
					retryCount = v
				case int32:
					retryCount = int(v)
				case int64:
					retryCount = int(v)
				}
				if retryCount < 3 {
					d.Nack(false, true) // requeue
					continue
				}
			}

			d.Ack(false)
		}
	}()

	log.Info("Worker running, waiting for send events...")
	<-forever
}

// processEvent records one send event against the site's assignment. Events
// with no timestamp get the processing time; re-delivered events are
// idempotent because MarkSent keeps the first recorded timestamp.
func processEvent(event queue.SendEvent, repo markSentRepo) error {
	at := event.SentAt
	if at.IsZero() {
		at = time.Now()
	}
	return repo.MarkSent(event.SiteID, event.MessageID, at)
}
