// Package kafkaclient consumes bucket notification messages from Kafka with
// manual offset commits.
package kafkaclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"tourguide/internal/config"
)

// Reader is the part of kafka.Reader the consumer uses.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer pumps messages from a Reader into a channel until it is stopped
// or its context is canceled.
type Consumer struct {
	reader   Reader
	done     chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	messages chan kafka.Message
	backoff  time.Duration
}

// NewConsumer creates a consumer group reader for cfg. Broker may list
// several comma-separated addresses.
func NewConsumer(cfg config.Kafka) (*Consumer, error) {
	if cfg.Broker == "" || cfg.Topic == "" || cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka: broker, topic and group id are required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(cfg.Broker, ","),
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		// Offsets are committed by CommitOffset only.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
	})
	log.Printf("Kafka consumer for topic=%s group=%s on %s", cfg.Topic, cfg.GroupID, cfg.Broker)
	return newConsumer(reader), nil
}

func newConsumer(r Reader) *Consumer {
	return &Consumer{
		reader:   r,
		done:     make(chan struct{}),
		messages: make(chan kafka.Message),
		backoff:  time.Second,
	}
}

// Messages is closed once the consume loop exits.
func (c *Consumer) Messages() <-chan kafka.Message {
	return c.messages
}

func (c *Consumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	log.Printf("Committing offset for topic=%s, partition=%d, offset=%d", msg.Topic, msg.Partition, msg.Offset)
	return c.reader.CommitMessages(ctx, msg)
}

// Start runs the consume loop in a goroutine. Stop cancels the context the
// loop reads with, so a blocked read returns.
func (c *Consumer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.messages)

		log.Println("Starting Kafka consumer loop...")
		for {
			select {
			case <-ctx.Done():
				log.Println("Context canceled, stopping consumer loop.")
				return
			case <-c.done:
				log.Println("Shutdown signal received, stopping consumer loop.")
				return
			default:
			}

			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("Error reading message: %v", err)
				select {
				case <-time.After(c.backoff):
				case <-ctx.Done():
				case <-c.done:
				}
				continue
			}

			select {
			case c.messages <- msg:
				log.Printf("Message received: topic=%s, partition=%d, offset=%d", msg.Topic, msg.Partition, msg.Offset)
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}()
}

// Stop ends the consume loop, waits for it and closes the reader. It is safe
// to call more than once.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		log.Println("Stopping Kafka consumer...")
		close(c.done)
		c.mu.Lock()
		if c.cancel != nil {
			c.cancel()
		}
		c.mu.Unlock()
		c.wg.Wait()
		if err := c.reader.Close(); err != nil {
			log.Printf("Failed to close Kafka reader: %v", err)
		}
		log.Println("Kafka consumer stopped.")
	})
}
