package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tourguide/internal/models"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimResponse is shaped for the search API response.
type NominatimResponse []struct {
	PlaceID     int64  `json:"place_id"`
	OsmType     string `json:"osm_type"`
	OsmID       int64  `json:"osm_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Class       string `json:"class"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// NominatimDetailsResponse is shaped for the details API response.
type NominatimDetailsResponse struct {
	PlaceID     int64             `json:"place_id"`
	OsmType     string            `json:"osm_type"`
	OsmID       int64             `json:"osm_id"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	LocalName   string            `json:"localname"`
	AddressTags map[string]string `json:"addresstags"`
	ExtraTags   map[string]string `json:"extratags"`
	CountryCode string            `json:"country_code"`
}

// Nominatim resolves places against OpenStreetMap. It needs no API key but
// carries no formatted local phone numbers, so both phone fields are taken
// from the same tag.
type Nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewNominatim(httpClient *http.Client) *Nominatim {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Nominatim{httpClient: httpClient, baseURL: nominatimBaseURL, userAgent: "tourguide/1.0"}
}

func (n *Nominatim) Name() string { return "nominatim" }

func (n *Nominatim) Lookup(ctx context.Context, query string) (models.PlaceDetails, bool, error) {
	results, err := n.Geocode(ctx, query)
	if err != nil {
		return models.PlaceDetails{}, false, err
	}
	if len(results) == 0 {
		return models.PlaceDetails{}, false, nil
	}
	first := results[0]

	details, err := n.PlaceDetails(ctx, first.OsmType, first.OsmID)
	if err != nil {
		return models.PlaceDetails{}, false, err
	}

	phone := firstTag(details.ExtraTags, "phone", "contact:phone")
	var types []string
	for _, t := range []string{details.Type, details.Category} {
		if t != "" && t != "yes" {
			types = append(types, t)
		}
	}
	return models.PlaceDetails{
		FormattedAddress:         models.SomeString(first.DisplayName),
		FormattedPhoneNumber:     models.SomeString(phone),
		InternationalPhoneNumber: models.SomeString(phone),
		Types:                    types,
		Website:                  models.SomeString(firstTag(details.ExtraTags, "website", "contact:website", "url")),
	}, true, nil
}

// Geocode looks a landmark name up and returns the best match first.
func (n *Nominatim) Geocode(ctx context.Context, query string) (NominatimResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("accept-language", "en")

	var results NominatimResponse
	if err := n.get(ctx, "/search", params, &results); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	return results, nil
}

// PlaceDetails fetches full details about an OSM object. osmType is the
// search API form ("node", "way", "relation").
func (n *Nominatim) PlaceDetails(ctx context.Context, osmType string, osmID int64) (*NominatimDetailsResponse, error) {
	params := url.Values{}
	params.Set("osmtype", strings.ToUpper(osmType[:min(1, len(osmType))]))
	params.Set("osmid", fmt.Sprintf("%d", osmID))
	params.Set("addressdetails", "1")
	params.Set("hierarchy", "0")
	params.Set("format", "json")

	var details NominatimDetailsResponse
	if err := n.get(ctx, "/details", params, &details); err != nil {
		return nil, fmt.Errorf("details %s/%d: %w", osmType, osmID, err)
	}
	return &details, nil
}

func (n *Nominatim) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s%s?%s", n.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
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

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(tags[k]); v != "" {
			return v
		}
	}
	return ""
}
