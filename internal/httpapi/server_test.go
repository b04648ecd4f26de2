package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourguide/internal/landmark"
	"tourguide/internal/models"
	"tourguide/internal/storage"
	"tourguide/internal/store"
	"tourguide/pkg/vision"
)

type blobs struct{}

func (blobs) Put(_ context.Context, key string, _ []byte, _ string) (storage.Blob, error) {
	return storage.Blob{Name: key, URL: "https://cdn.example.com/photos/" + key}, nil
}

func (blobs) SourceURI(key string) string { return "gs://photos/" + key }

type analyzer struct {
	landmark models.Optional[vision.Landmark]
	text     models.Optional[string]
}

func (a analyzer) DetectLandmark(context.Context, string) (models.Optional[vision.Landmark], error) {
	return a.landmark, nil
}

func (a analyzer) DetectText(context.Context, string) (models.Optional[string], error) {
	return a.text, nil
}

type placesProvider struct {
	details models.PlaceDetails
	found   bool
}

func (p placesProvider) Lookup(context.Context, string) (models.PlaceDetails, bool, error) {
	return p.details, p.found, nil
}

func (placesProvider) Name() string { return "test" }

type encyclopedia struct{ extract models.Optional[string] }

func (e encyclopedia) Summary(context.Context, string) (models.Optional[string], error) {
	return e.extract, nil
}

type translator struct{}

func (translator) Translate(_ context.Context, text, target string) (string, error) {
	return target + ": " + text, nil
}

func (translator) Name() string { return "test" }

type synthesizer struct{}

func (synthesizer) Synthesize(context.Context, string, string) ([]byte, error) {
	return []byte("ID3"), nil
}

func (synthesizer) Name() string { return "test" }

type recordingReporter struct{ errs []error }

func (r *recordingReporter) Report(err error, _ *http.Request) { r.errs = append(r.errs, err) }

type fixture struct {
	server   *Server
	reporter *recordingReporter
}

func eiffelDeps() landmark.Deps {
	return landmark.Deps{
		Blobs:   blobs{},
		Records: store.NewMemory(),
		Vision: analyzer{
			landmark: models.Some(vision.Landmark{
				Description: "Eiffel Tower",
				Location:    models.Some(models.Coordinates{Lat: 48.858461, Lon: 2.294351}),
			}),
			text: models.Some("SORTIE"),
		},
		Places: placesProvider{found: true, details: models.PlaceDetails{
			FormattedAddress:         models.Some("Champ de Mars, 75007 Paris, France"),
			FormattedPhoneNumber:     models.Some("08 92 70 12 39"),
			InternationalPhoneNumber: models.Some("+33 8 92 70 12 39"),
			Types:                    []string{"tourist_attraction", "point_of_interest"},
			Website:                  models.Some("https://www.toureiffel.paris/"),
		}},
		Encyclopedia: encyclopedia{extract: models.Some("The Eiffel Tower is a <tower>.")},
		Translator:   translator{},
		Speech:       synthesizer{},
	}
}

func newFixture(t *testing.T, deps landmark.Deps) fixture {
	t.Helper()
	rep := &recordingReporter{}
	return fixture{server: NewServer(landmark.NewService(deps), rep), reporter: rep}
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.server.ServeHTTP(rr, req)
	return rr
}

// decodeWrapped unwraps a JSON string response and decodes the JSON inside.
func decodeWrapped(t *testing.T, body []byte, v any) {
	t.Helper()
	var inner string
	require.NoError(t, json.Unmarshal(body, &inner), "body is not a JSON string: %s", body)
	require.NoError(t, json.Unmarshal([]byte(inner), v), "inner JSON: %s", inner)
}

const uploadBody = `{"file":"/9j/4AAQ","filename":"eiffel.jpg","language":"fr-FR"}`

func TestList_Empty(t *testing.T) {
	f := newFixture(t, eiffelDeps())

	rr := f.do(http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `"[]"`, strings.TrimSpace(rr.Body.String()))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestUploadPhoto_RoundTrip(t *testing.T) {
	f := newFixture(t, eiffelDeps())

	rr := f.do(http.MethodPost, "/upload_photo", uploadBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	var uploaded map[string]any
	decodeWrapped(t, rr.Body.Bytes(), &uploaded)
	assert.Equal(t, "Eiffel Tower", uploaded["description"])
	assert.Equal(t, 48.858461, uploaded["latitude"])
	assert.Equal(t, 2.294351, uploaded["longitude"])
	assert.Equal(t, "https://cdn.example.com/photos/eiffel.jpg", uploaded["url"])
	assert.Equal(t, "fr: The Eiffel Tower is a <tower>.", uploaded["wikipedia_extract"])
	assert.Equal(t, "https://cdn.example.com/photos/audio/fr-fr/eiffel-tower.mp3", uploaded["audio"])
	assert.Equal(t, []any{"tourist_attraction", "point_of_interest"}, uploaded["types"])

	rr = f.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []map[string]any
	decodeWrapped(t, rr.Body.Bytes(), &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, uploaded, listed[0])
}

func TestUploadPhoto_NoLandmark(t *testing.T) {
	deps := eiffelDeps()
	deps.Vision = analyzer{}
	f := newFixture(t, deps)

	rr := f.do(http.MethodPost, "/upload_photo", uploadBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got map[string]any
	decodeWrapped(t, rr.Body.Bytes(), &got)
	assert.Equal(t, models.Unknown, got["description"])
	assert.Equal(t, models.Unknown, got["latitude"])
	assert.Equal(t, models.Unknown, got["longitude"])
	assert.Equal(t, models.Unknown, got["wikipedia_extract"])
	assert.Equal(t, models.Unknown, got["audio"])
	assert.Equal(t, "https://cdn.example.com/photos/eiffel.jpg", got["url"])
}

func TestUploadPhoto_NoPlace(t *testing.T) {
	deps := eiffelDeps()
	deps.Places = placesProvider{}
	f := newFixture(t, deps)

	rr := f.do(http.MethodPost, "/upload_photo", uploadBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got map[string]any
	decodeWrapped(t, rr.Body.Bytes(), &got)
	for _, key := range []string{"formatted_address", "formatted_phone_number", "international_phone_number", "website"} {
		assert.Equal(t, models.Unknown, got[key], key)
	}
	assert.Equal(t, []any{}, got["types"])
	assert.Equal(t, "Eiffel Tower", got["description"])
}

func TestUploadTextPhoto(t *testing.T) {
	f := newFixture(t, eiffelDeps())

	rr := f.do(http.MethodPost, "/upload_text_photo",
		`{"file":"/9j/4AAQ","filename":"sign.jpg","language":"en-US"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got models.TextReadingView
	decodeWrapped(t, rr.Body.Bytes(), &got)
	assert.Equal(t, models.TextReadingView{
		OriginalText:   "SORTIE",
		TranslatedText: "en: SORTIE",
		Audio:          "https://cdn.example.com/photos/audio/en-us/sign.mp3",
	}, got)

	rr = f.do(http.MethodGet, "/", "")
	assert.Equal(t, `"[]"`, strings.TrimSpace(rr.Body.String()), "text uploads are not persisted")
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		body     string
		wantText string
	}{
		{name: "missing file", target: "/upload_photo", body: `{"filename":"a.jpg","language":"en-US"}`, wantText: "missing required field: file"},
		{name: "missing file text", target: "/upload_text_photo", body: `{"filename":"a.jpg","language":"en-US"}`, wantText: "missing required field: file"},
		{name: "malformed json", target: "/upload_photo", body: `{"file":`, wantText: "decode request body"},
		{name: "empty body", target: "/upload_photo", body: ``, wantText: "decode request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, eiffelDeps())

			rr := f.do(http.MethodPost, tt.target, tt.body)

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.True(t, strings.HasPrefix(rr.Body.String(), "An internal error occurred: <pre>"), rr.Body.String())
			assert.Contains(t, rr.Body.String(), tt.wantText)
			assert.Contains(t, rr.Body.String(), "See logs for full stacktrace.")
			require.Len(t, f.reporter.errs, 1)
		})
	}
}

type panicking struct{ Landmarks }

func (panicking) List(context.Context) ([]models.Record, error) { panic("nil map") }

func TestPanicRecovered(t *testing.T) {
	rep := &recordingReporter{}
	s := NewServer(panicking{}, rep)

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "<pre>panic: nil map</pre>")
	require.Len(t, rep.errs, 1)
}

func TestPreflight(t *testing.T) {
	f := newFixture(t, eiffelDeps())

	for _, target := range []string{"/", "/upload_photo", "/upload_text_photo"} {
		rr := f.do(http.MethodOptions, target, "")
		assert.Equal(t, http.StatusNoContent, rr.Code, target)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"), target)
		assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"), target)
	}
}

func TestCORS_UnmatchedRoutes(t *testing.T) {
	f := newFixture(t, eiffelDeps())

	tests := []struct {
		name   string
		method string
		target string
		code   int
	}{
		{"not found", http.MethodGet, "/missing", http.StatusNotFound},
		{"method not allowed", http.MethodGet, "/upload_photo", http.StatusMethodNotAllowed},
		{"healthz preflight", http.MethodOptions, "/healthz", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(tt.method, tt.target, "")
			assert.Equal(t, tt.code, rr.Code)
			assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}
}

func TestRequestID_Echoed(t *testing.T) {
	f := newFixture(t, eiffelDeps())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	f.server.ServeHTTP(rr, req)

	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))
}

type unreachableStore struct{ store.RecordStore }

func (unreachableStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthz(t *testing.T) {
	f := newFixture(t, eiffelDeps())
	rr := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	deps := eiffelDeps()
	deps.Records = unreachableStore{}
	f = newFixture(t, deps)
	rr = f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}
