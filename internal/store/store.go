// Package store persists landmark records keyed by photo blob name.
package store

import (
	"context"

	"tourguide/internal/models"
)

// RecordStore is a key-value store of records. Put overwrites any record
// with the same blob name. List returns records oldest first.
type RecordStore interface {
	Put(ctx context.Context, rec models.Record) error
	List(ctx context.Context) ([]models.Record, error)
	Ping(ctx context.Context) error
	Close()
}
