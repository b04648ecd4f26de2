// Package app builds the shared clients both binaries run on.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"tourguide/internal/config"
	"tourguide/internal/landmark"
	"tourguide/internal/reporting"
	"tourguide/internal/storage"
	"tourguide/internal/store"
	"tourguide/pkg/places"
	"tourguide/pkg/speech"
	"tourguide/pkg/translate"
	"tourguide/pkg/vision"
	"tourguide/pkg/wikipedia"
)

// App owns every long-lived client. Close releases them.
type App struct {
	Landmarks *landmark.Service
	Storage   *storage.S3Service
	Reporter  *reporting.Sink

	closers []func() error
}

// Build connects to every collaborator named by cfg.
func Build(ctx context.Context, cfg config.Config, service string) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Reporter, err = reporting.Setup(ctx, cfg.GoogleProject, service, cfg.LogName, googleOptions(cfg, false)...)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Reporter.Close)

	a.Storage, err = storage.NewS3Service(cfg.Storage)
	if err != nil {
		return nil, err
	}

	records, err := newRecordStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { records.Close(); return nil })

	analyzer, err := vision.NewClient(ctx, googleOptions(cfg, false)...)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, analyzer.Close)

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}

	translator, err := newTranslator(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}
	synthesizer, err := newSynthesizer(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}
	log.Printf("Using places=%s translate=%s speech=%s store=%s", cfg.PlacesProvider, translator.Name(), synthesizer.Name(), cfg.RecordStore)

	a.Landmarks = landmark.NewService(landmark.Deps{
		Blobs:           a.Storage,
		Records:         records,
		Vision:          analyzer,
		Places:          newPlaces(cfg, httpClient),
		Encyclopedia:    wikipedia.NewService(wikipedia.NewClient(httpClient, cfg.WikipediaLang)),
		Translator:      translator,
		Speech:          synthesizer,
		DefaultLanguage: cfg.DefaultLanguage,
	})
	return a, nil
}

// Close releases clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newRecordStore(ctx context.Context, cfg config.Config) (store.RecordStore, error) {
	switch cfg.RecordStore {
	case "memory":
		log.Println("Using in-memory record store; records are lost on restart.")
		return store.NewMemory(), nil
	case "postgres":
		return store.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown RECORD_STORE %q", cfg.RecordStore)
	}
}

func newPlaces(cfg config.Config, httpClient *http.Client) places.Provider {
	if cfg.PlacesProvider == "nominatim" {
		return places.NewNominatim(httpClient)
	}
	return places.NewGoogle(httpClient, cfg.PlacesAPIKey)
}

func newTranslator(ctx context.Context, cfg config.Config, httpClient *http.Client) (translate.Translator, error) {
	if cfg.TranslateProvider == "openai" {
		return translate.NewOpenAI(openAIClient(cfg, httpClient), cfg.OpenAIModel), nil
	}
	return translate.NewGoogle(ctx, googleOptions(cfg, true)...)
}

func newSynthesizer(ctx context.Context, cfg config.Config, httpClient *http.Client) (speech.Synthesizer, error) {
	if cfg.SpeechProvider == "openai" {
		return speech.NewOpenAI(openAIClient(cfg, httpClient), cfg.OpenAITTSModel, cfg.OpenAITTSVoice), nil
	}
	return speech.NewGoogle(ctx, googleOptions(cfg, true)...)
}

func openAIClient(cfg config.Config, httpClient *http.Client) *openai.Client {
	oc := openai.DefaultConfig(cfg.OpenAIKey)
	oc.HTTPClient = httpClient
	return openai.NewClientWithConfig(oc)
}

// googleOptions picks credentials for Google clients. The translation and
// speech REST clients may use an API key; the others use the credentials
// file or Application Default Credentials. Google clients keep their own
// transports, so HTTP_CLIENT_TIMEOUT does not apply to them.
func googleOptions(cfg config.Config, apiKeyOK bool) []option.ClientOption {
	if apiKeyOK && cfg.GoogleAPIKey != "" {
		return []option.ClientOption{option.WithAPIKey(cfg.GoogleAPIKey)}
	}
	if cfg.GoogleCredsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.GoogleCredsFile)}
	}
	return nil
}
