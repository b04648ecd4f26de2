// Package landmark chains the blob store, image analysis, places,
// encyclopedia, translation and speech collaborators into the photo and
// text enrichment flows.
package landmark

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"mime"
	"path"
	"strings"

	"tourguide/internal/keys"
	"tourguide/internal/models"
	"tourguide/internal/storage"
	"tourguide/internal/store"
	"tourguide/pkg/places"
	"tourguide/pkg/speech"
	"tourguide/pkg/translate"
	"tourguide/pkg/vision"
)

var ErrMissingField = errors.New("missing required field")

// BlobStore is the subset of storage.S3Service the flows use.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (storage.Blob, error)
	SourceURI(key string) string
}

// Encyclopedia returns a plain-text extract for a landmark label.
type Encyclopedia interface {
	Summary(ctx context.Context, label string) (models.Optional[string], error)
}

// UploadRequest is the body of both upload endpoints.
type UploadRequest struct {
	File     string `json:"file"`
	Filename string `json:"filename"`
	Language string `json:"language"`
}

func (r UploadRequest) validate() error {
	var missing []string
	if r.File == "" {
		missing = append(missing, "file")
	}
	if r.Filename == "" {
		missing = append(missing, "filename")
	}
	if strings.TrimSpace(r.Language) == "" {
		missing = append(missing, "language")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

type Deps struct {
	Blobs           BlobStore
	Records         store.RecordStore
	Vision          vision.Analyzer
	Places          places.Provider
	Encyclopedia    Encyclopedia
	Translator      translate.Translator
	Speech          speech.Synthesizer
	DefaultLanguage string
}

type Service struct {
	blobs           BlobStore
	records         store.RecordStore
	vision          vision.Analyzer
	places          places.Provider
	wiki            Encyclopedia
	translator      translate.Translator
	speech          speech.Synthesizer
	defaultLanguage string
}

func NewService(d Deps) *Service {
	lang := d.DefaultLanguage
	if lang == "" {
		lang = "en-US"
	}
	return &Service{
		blobs:           d.Blobs,
		records:         d.Records,
		vision:          d.Vision,
		places:          d.Places,
		wiki:            d.Encyclopedia,
		translator:      d.Translator,
		speech:          d.Speech,
		defaultLanguage: lang,
	}
}

// EnrichPhoto stores the uploaded photo, recognizes the landmark on it,
// gathers place details and a narrated extract in the requested language and
// persists the combined record.
func (s *Service) EnrichPhoto(ctx context.Context, req UploadRequest) (models.Record, error) {
	blob, err := s.storePhoto(ctx, req)
	if err != nil {
		return models.Record{}, err
	}
	return s.enrich(ctx, blob.Name, blob.URL, req.Language)
}

// EnrichStored runs the enrichment chain for a photo that is already in the
// bucket. An empty language falls back to the configured default.
func (s *Service) EnrichStored(ctx context.Context, key, publicURL, language string) (models.Record, error) {
	if strings.TrimSpace(language) == "" {
		language = s.defaultLanguage
	}
	return s.enrich(ctx, key, publicURL, language)
}

// ReadText stores the uploaded photo, reads the text on it and returns the
// text translated and narrated in the requested language. Nothing is
// persisted.
func (s *Service) ReadText(ctx context.Context, req UploadRequest) (models.TextReading, error) {
	blob, err := s.storePhoto(ctx, req)
	if err != nil {
		return models.TextReading{}, err
	}

	var reading models.TextReading
	text, err := s.vision.DetectText(ctx, s.blobs.SourceURI(blob.Name))
	if err != nil {
		return reading, err
	}
	original, ok := text.Get()
	if !ok {
		log.Printf("No text detected for %s", blob.Name)
		return reading, nil
	}
	reading.OriginalText = text

	translated, err := s.translator.Translate(ctx, original, translate.PrimarySubtag(req.Language))
	if err != nil {
		return reading, err
	}
	reading.TranslatedText = models.SomeString(translated)

	reading.AudioURL, err = s.narrate(ctx, translated, req.Language, blob.Name)
	return reading, err
}

// List returns every persisted record.
func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	return s.records.List(ctx)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.records.Ping(ctx)
}

func (s *Service) storePhoto(ctx context.Context, req UploadRequest) (storage.Blob, error) {
	if err := req.validate(); err != nil {
		return storage.Blob{}, err
	}
	data, err := base64.StdEncoding.DecodeString(req.File)
	if err != nil {
		return storage.Blob{}, fmt.Errorf("decode file: %w", err)
	}
	return s.blobs.Put(ctx, keys.Photo(req.Filename), data, photoContentType(req.Filename))
}

func (s *Service) enrich(ctx context.Context, blobName, publicURL, language string) (models.Record, error) {
	rec := models.Record{BlobName: blobName, ImageURL: models.SomeString(publicURL)}

	found, err := s.vision.DetectLandmark(ctx, s.blobs.SourceURI(blobName))
	if err != nil {
		return rec, err
	}
	lm, ok := found.Get()
	if !ok {
		log.Printf("No landmarks detected for %s", blobName)
		return rec, s.records.Put(ctx, rec)
	}
	rec.Description = models.Some(lm.Description)
	rec.Location = lm.Location

	details, hasPlace, err := s.places.Lookup(ctx, lm.Description)
	if err != nil {
		return rec, fmt.Errorf("%s place lookup: %w", s.places.Name(), err)
	}
	if hasPlace {
		rec.PlaceDetails = details
	} else {
		log.Printf("No place found for '%s'", lm.Description)
	}

	summary, err := s.wiki.Summary(ctx, lm.Description)
	if err != nil {
		return rec, err
	}
	if extract, ok := summary.Get(); ok {
		translated, err := s.translator.Translate(ctx, extract, translate.PrimarySubtag(language))
		if err != nil {
			return rec, err
		}
		rec.Extract = models.SomeString(translated)
		rec.AudioURL, err = s.narrate(ctx, translated, language, lm.Description)
		if err != nil {
			return rec, err
		}
	}

	if err := s.records.Put(ctx, rec); err != nil {
		return rec, err
	}
	log.Printf("Stored record for %s (%s)", blobName, lm.Description)
	return rec, nil
}

// narrate synthesizes text and stores the audio under a key derived from
// language and subject.
func (s *Service) narrate(ctx context.Context, text, language, subject string) (models.Optional[string], error) {
	if text == "" {
		return models.None[string](), nil
	}
	audio, err := s.speech.Synthesize(ctx, text, language)
	if err != nil {
		return models.None[string](), err
	}
	blob, err := s.blobs.Put(ctx, keys.Audio(language, subject), audio, "audio/mpeg")
	if err != nil {
		return models.None[string](), err
	}
	return models.Some(blob.URL), nil
}

func photoContentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); strings.HasPrefix(ct, "image/") {
		return ct
	}
	return "image/jpeg"
}
