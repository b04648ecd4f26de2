package landmark

import (
	"context"
	"sync"

	"tourguide/internal/models"
	"tourguide/internal/storage"
	"tourguide/internal/store"
	"tourguide/pkg/vision"
)

const cdn = "https://cdn.example.com/photos/"

type putCall struct {
	key, contentType string
	data             []byte
}

type fakeBlobs struct {
	mu   sync.Mutex
	puts []putCall
	err  error
}

func (f *fakeBlobs) Put(_ context.Context, key string, data []byte, contentType string) (storage.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return storage.Blob{}, f.err
	}
	f.puts = append(f.puts, putCall{key: key, contentType: contentType, data: data})
	return storage.Blob{Name: key, URL: cdn + key}, nil
}

func (f *fakeBlobs) SourceURI(key string) string { return "gs://photos/" + key }

func (f *fakeBlobs) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.puts {
		out = append(out, p.key)
	}
	return out
}

type fakeVision struct {
	landmark models.Optional[vision.Landmark]
	text     models.Optional[string]
	err      error
	uris     []string
}

func (f *fakeVision) DetectLandmark(_ context.Context, uri string) (models.Optional[vision.Landmark], error) {
	f.uris = append(f.uris, uri)
	return f.landmark, f.err
}

func (f *fakeVision) DetectText(_ context.Context, uri string) (models.Optional[string], error) {
	f.uris = append(f.uris, uri)
	return f.text, f.err
}

type fakePlaces struct {
	details models.PlaceDetails
	found   bool
	err     error
	queries []string
}

func (f *fakePlaces) Lookup(_ context.Context, query string) (models.PlaceDetails, bool, error) {
	f.queries = append(f.queries, query)
	return f.details, f.found, f.err
}

func (f *fakePlaces) Name() string { return "fake" }

type fakeWiki struct {
	extract models.Optional[string]
	err     error
	labels  []string
}

func (f *fakeWiki) Summary(_ context.Context, label string) (models.Optional[string], error) {
	f.labels = append(f.labels, label)
	return f.extract, f.err
}

type translateCall struct{ text, target string }

type fakeTranslator struct {
	err   error
	calls []translateCall
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.calls = append(f.calls, translateCall{text, target})
	if f.err != nil {
		return "", f.err
	}
	return "[" + target + "] " + text, nil
}

func (f *fakeTranslator) Name() string { return "fake" }

type synthCall struct{ text, language string }

type fakeSpeech struct {
	err   error
	calls []synthCall
}

func (f *fakeSpeech) Synthesize(_ context.Context, text, language string) ([]byte, error) {
	f.calls = append(f.calls, synthCall{text, language})
	if f.err != nil {
		return nil, f.err
	}
	return []byte("ID3" + text), nil
}

func (f *fakeSpeech) Name() string { return "fake" }

type fakes struct {
	blobs      *fakeBlobs
	vision     *fakeVision
	places     *fakePlaces
	wiki       *fakeWiki
	translator *fakeTranslator
	speech     *fakeSpeech
}

func (f fakes) deps(records store.RecordStore) Deps {
	return Deps{
		Blobs:        f.blobs,
		Records:      records,
		Vision:       f.vision,
		Places:       f.places,
		Encyclopedia: f.wiki,
		Translator:   f.translator,
		Speech:       f.speech,
	}
}

// newFakes returns collaborators that recognize the Eiffel Tower, find its
// place details and an encyclopedia extract.
func newFakes() fakes {
	return fakes{
		blobs: &fakeBlobs{},
		vision: &fakeVision{
			landmark: models.Some(vision.Landmark{
				Description: "Eiffel Tower",
				Location:    models.Some(models.Coordinates{Lat: 48.858461, Lon: 2.294351}),
			}),
			text: models.Some("SORTIE"),
		},
		places: &fakePlaces{
			found: true,
			details: models.PlaceDetails{
				FormattedAddress:         models.Some("Champ de Mars, 75007 Paris, France"),
				FormattedPhoneNumber:     models.Some("08 92 70 12 39"),
				InternationalPhoneNumber: models.Some("+33 8 92 70 12 39"),
				Types:                    []string{"tourist_attraction"},
				Website:                  models.Some("https://www.toureiffel.paris/"),
			},
		},
		wiki:       &fakeWiki{extract: models.Some("The Eiffel Tower is a wrought-iron lattice tower.")},
		translator: &fakeTranslator{},
		speech:     &fakeSpeech{},
	}
}
