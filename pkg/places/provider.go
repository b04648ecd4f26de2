// Package places resolves a landmark label to contact and address details
// through a places API.
package places

import (
	"context"

	"tourguide/internal/models"
)

// Provider looks a place up by free text. Found is false when the provider
// has no candidate for the query; that is not an error.
type Provider interface {
	Lookup(ctx context.Context, query string) (details models.PlaceDetails, found bool, err error)
	Name() string
}
