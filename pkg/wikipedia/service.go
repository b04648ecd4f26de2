// Package wikipedia looks up short encyclopedic extracts for recognized
// landmarks through the MediaWiki API.
package wikipedia

import (
	"context"
	"log"
	"strings"

	"tourguide/internal/models"
)

type Service struct {
	client *Client
}

func NewService(client *Client) *Service {
	return &Service{client: client}
}

// Summary returns the plain-text intro of the article best matching label.
// An absent result means no article or an empty intro; it is not an error.
func (s *Service) Summary(ctx context.Context, label string) (models.Optional[string], error) {
	search, err := s.client.OpenSearch(ctx, label, 1)
	if err != nil {
		return models.None[string](), err
	}
	title := label
	if len(search.Titles) > 0 {
		title = search.Titles[0]
	}

	resp, err := s.client.FetchExtract(ctx, title)
	if err != nil {
		return models.None[string](), err
	}
	for _, page := range resp.Query.Pages {
		if page.Missing != nil {
			continue
		}
		extract := strings.TrimSpace(StripMarkup(page.Extract))
		if extract != "" {
			return models.Some(extract), nil
		}
	}
	log.Printf("No extract found for '%s'", title)
	return models.None[string](), nil
}
