package service

import (
	"context"
	"fmt"
	"strings"

	"tourguide/internal/keys"
	"tourguide/internal/storage"
)

// Stater loads object metadata.
type Stater interface {
	Stat(ctx context.Context, bucket, key string) (*storage.Object, error)
}

// PhotoLoader loads images written straight into bucket. Objects in other
// buckets, anything the API stored itself (uploaded photos and narration
// audio) and anything that is not an image are skipped.
func PhotoLoader(stater Stater, bucket string) LoaderFunc[*storage.Object] {
	return func(ctx context.Context, eventBucket, key string) (*storage.Object, error) {
		if eventBucket != bucket {
			return nil, fmt.Errorf("%w: bucket %s is not %s", ErrSkip, eventBucket, bucket)
		}
		if keys.IsAudio(key) {
			return nil, fmt.Errorf("%w: narration audio", ErrSkip)
		}
		obj, err := stater.Stat(ctx, eventBucket, key)
		if err != nil {
			return nil, err
		}
		if obj.Source == storage.SourceAPI {
			return nil, fmt.Errorf("%w: %s was stored by the API", ErrSkip, key)
		}
		if !strings.HasPrefix(obj.ContentType, "image/") {
			return nil, fmt.Errorf("%w: content type %q", ErrSkip, obj.ContentType)
		}
		return obj, nil
	}
}
