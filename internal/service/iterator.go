// Package service turns MinIO bucket notifications delivered over Kafka into
// loaded objects.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

const objectCreatedPrefix = "s3:ObjectCreated:"

// Iterator reads notification.Info messages and loads every created object
// they name.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]
}

func NewIterator[T any](iterator MessageIterator, loader LoaderFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
	}
}

// Objects emits one FetchedObject per created object. A message is committed
// once each of its objects was emitted or skipped. Undecodable messages and
// load failures are logged and left uncommitted. The channel closes when the
// message source closes or ctx is done.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	go func() {
		defer close(out)

		for {
			var msg kafka.Message
			select {
			case <-ctx.Done():
				return
			case m, open := <-it.msgIterator.Messages():
				if !open {
					return
				}
				msg = m
			}

			ok, stop := it.handle(ctx, msg, out)
			if stop {
				return
			}
			if !ok {
				continue
			}
			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				log.Printf("Failed to commit offset: %v", err)
			}
		}
	}()
	return out
}

func (it *Iterator[T]) handle(ctx context.Context, msg kafka.Message, out chan<- *FetchedObject[T]) (ok, stop bool) {
	var info notification.Info
	if err := json.Unmarshal(msg.Value, &info); err != nil {
		log.Printf("Error unmarshalling JSON at offset %d: %v", msg.Offset, err)
		return false, false
	}

	for _, event := range info.Records {
		if !strings.HasPrefix(string(event.EventName), objectCreatedPrefix) {
			continue
		}
		key, err := url.QueryUnescape(event.S3.Object.Key)
		if err != nil {
			log.Printf("Error decoding object key %q: %v", event.S3.Object.Key, err)
			return false, false
		}

		data, err := it.loader(ctx, event.S3.Bucket.Name, key)
		if errors.Is(err, ErrSkip) {
			log.Printf("Skipping %s/%s: %v", event.S3.Bucket.Name, key, err)
			continue
		}
		if err != nil {
			log.Printf("Error loading object: %v", err)
			return false, false
		}

		select {
		case out <- &FetchedObject[T]{Data: data, Event: event}:
		case <-ctx.Done():
			return false, true
		}
	}
	return true, false
}
