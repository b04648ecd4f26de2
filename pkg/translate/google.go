package translate

import (
	"context"
	"fmt"
	"html"

	"google.golang.org/api/option"
	translateapi "google.golang.org/api/translate/v2"
)

// Google uses the Cloud Translation v2 REST API.
type Google struct {
	svc *translateapi.Service
}

func NewGoogle(ctx context.Context, opts ...option.ClientOption) (*Google, error) {
	svc, err := translateapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation service: %w", err)
	}
	return &Google{svc: svc}, nil
}

func (g *Google) Name() string { return "google" }

func (g *Google) Translate(ctx context.Context, text, target string) (string, error) {
	resp, err := g.svc.Translations.List([]string{text}, target).Format("text").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", target, err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("translate to %s: empty response", target)
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}
