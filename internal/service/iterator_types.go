package service

import (
	"context"
	"errors"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

// MessageIterator is a source of Kafka messages with manual commits.
// pkg/kafkaclient.Consumer implements it.
type MessageIterator interface {
	// Messages is closed by the implementation when the source stops.
	Messages() <-chan kafka.Message
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// ErrSkip tells the iterator an object is not meant for this consumer. The
// message is committed and nothing is emitted.
var ErrSkip = errors.New("object skipped")

// LoaderFunc loads the object a bucket event refers to. It must not modify
// the object.
type LoaderFunc[T any] func(ctx context.Context, bucket, key string) (T, error)

// FetchedObject pairs a loaded object with the event that announced it.
type FetchedObject[T any] struct {
	Data  T
	Event notification.Event
}
