package services

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
)

// DispatchQueueName is the durable queue carrying campaign dispatch jobs
const DispatchQueueName = "campaign_dispatch"

type RabbitMQService struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	stopChan chan bool
}

func NewRabbitMQService() (*RabbitMQService, error) {
	// Get RabbitMQ connection details from environment
	host := getEnv("RABBITMQ_HOST", "localhost")
	port := getEnv("RABBITMQ_PORT", "5672")
	user := getEnv("RABBITMQ_USER", "guest")
	pass := getEnv("RABBITMQ_PASS", "guest")

	// Build connection URL (guest user automatically uses / vhost)
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	// Connect to RabbitMQ
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	// Create channel
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		DispatchQueueName, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	service := &RabbitMQService{
		conn:     conn,
		channel:  channel,
		stopChan: make(chan bool),
	}

	logrus.Info("RabbitMQ service initialized successfully")
	return service, nil
}

// PublishDispatchJob publishes a campaign dispatch job
func (s *RabbitMQService) PublishDispatchJob(job models.DispatchJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch job: %w", err)
	}

	err = s.channel.Publish(
		"",                // exchange
		DispatchQueueName, // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish dispatch job: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"job_id":      job.JobID,
		"campaign_id": job.CampaignID,
	}).Info("Dispatch job published")
	return nil
}

// StartDispatchConsumer consumes dispatch jobs with manual acks. A job that
// fails on first delivery is requeued once; dispatch itself is idempotent,
// so redelivery never double-sends.
func (s *RabbitMQService) StartDispatchConsumer(handle func(job models.DispatchJob) error) error {
	msgs, err := s.channel.Consume(
		DispatchQueueName, // queue
		"",                // consumer
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logrus.Infof("RabbitMQ consumer started for %s queue", DispatchQueueName)

	go func() {
		for {
			select {
			case <-s.stopChan:
				logrus.Info("RabbitMQ dispatch consumer stopped")
				return
			case d, ok := <-msgs:
				if !ok {
					logrus.Warn("RabbitMQ delivery channel closed")
					return
				}

				var job models.DispatchJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					logrus.Errorf("Invalid dispatch job payload, dropping: %v", err)
					_ = d.Ack(false)
					continue
				}

				if err := handle(job); err != nil {
					logrus.WithField("job_id", job.JobID).Errorf("Dispatch job failed: %v", err)
					if !d.Redelivered {
						_ = d.Nack(false, true)
						continue
					}
					logrus.WithField("job_id", job.JobID).Error("Dispatch job failed after redelivery, dropping")
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// StopDispatchConsumer signals the consumer goroutine to exit
func (s *RabbitMQService) StopDispatchConsumer() {
	close(s.stopChan)
}

// Close closes the RabbitMQ connection
func (s *RabbitMQService) Close() error {
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			logrus.Errorf("Error closing channel: %v", err)
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			logrus.Errorf("Error closing connection: %v", err)
		}
	}
	return nil
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
