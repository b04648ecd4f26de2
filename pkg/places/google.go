package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"tourguide/internal/models"
)

const googleBaseURL = "https://maps.googleapis.com/maps/api/place"

// FindPlaceResponse is shaped for the findplacefromtext API response.
type FindPlaceResponse struct {
	Candidates []struct {
		PlaceID string `json:"place_id"`
	} `json:"candidates"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// PlaceDetailsResponse is shaped for the details API response.
type PlaceDetailsResponse struct {
	Result struct {
		FormattedAddress         string   `json:"formatted_address"`
		FormattedPhoneNumber     string   `json:"formatted_phone_number"`
		InternationalPhoneNumber string   `json:"international_phone_number"`
		Types                    []string `json:"types"`
		Website                  string   `json:"website"`
	} `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// Google talks to the Google Places web service.
type Google struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewGoogle(httpClient *http.Client, apiKey string) *Google {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Google{httpClient: httpClient, apiKey: apiKey, baseURL: googleBaseURL}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Lookup(ctx context.Context, query string) (models.PlaceDetails, bool, error) {
	placeID, err := g.FindPlaceID(ctx, query)
	if err != nil || placeID == "" {
		return models.PlaceDetails{}, false, err
	}
	details, err := g.Details(ctx, placeID)
	if err != nil {
		return models.PlaceDetails{}, false, err
	}
	return details, true, nil
}

// FindPlaceID returns the id of the first candidate for input, or "" when
// there is none.
func (g *Google) FindPlaceID(ctx context.Context, input string) (string, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("input", input)
	params.Set("inputtype", "textquery")

	var resp FindPlaceResponse
	if err := g.get(ctx, "/findplacefromtext/json", params, &resp); err != nil {
		return "", fmt.Errorf("find place %q: %w", input, err)
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return "", fmt.Errorf("find place %q: %w", input, err)
	}
	if len(resp.Candidates) == 0 {
		return "", nil
	}
	return resp.Candidates[0].PlaceID, nil
}

// Details fetches the contact details of a place.
func (g *Google) Details(ctx context.Context, placeID string) (models.PlaceDetails, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("placeid", placeID)

	var resp PlaceDetailsResponse
	if err := g.get(ctx, "/details/json", params, &resp); err != nil {
		return models.PlaceDetails{}, fmt.Errorf("place details %s: %w", placeID, err)
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return models.PlaceDetails{}, fmt.Errorf("place details %s: %w", placeID, err)
	}

	r := resp.Result
	return models.PlaceDetails{
		FormattedAddress:         models.SomeString(r.FormattedAddress),
		FormattedPhoneNumber:     models.SomeString(r.FormattedPhoneNumber),
		InternationalPhoneNumber: models.SomeString(r.InternationalPhoneNumber),
		Types:                    r.Types,
		Website:                  models.SomeString(r.Website),
	}, nil
}

func (g *Google) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s%s?%s", g.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status: %s: %s", resp.Status, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// checkStatus maps the Places API status field to an error. ZERO_RESULTS is
// a valid empty answer.
func checkStatus(status, message string) error {
	switch status {
	case "", "OK", "ZERO_RESULTS":
		return nil
	}
	if message != "" {
		return fmt.Errorf("places api status %s: %s", status, message)
	}
	return fmt.Errorf("places api status %s", status)
}
