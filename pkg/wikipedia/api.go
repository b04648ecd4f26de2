package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	lang       string
}

// NewClient returns a MediaWiki API client for the given language edition
// ("en" for en.wikipedia.org).
func NewClient(httpClient *http.Client, lang string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if lang == "" {
		lang = "en"
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  "tourguide/1.0",
		lang:       lang,
	}
}

func (c *Client) apiURL(params url.Values) string {
	params.Set("format", "json")
	return fmt.Sprintf("https://%s.wikipedia.org/w/api.php?%s", c.lang, params.Encode())
}

// OpenSearch runs an opensearch query and returns at most limit titles.
func (c *Client) OpenSearch(ctx context.Context, search string, limit int) (*OpenSearchResponse, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", search)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("namespace", "0")

	var out OpenSearchResponse
	if err := c.get(ctx, c.apiURL(params), &out); err != nil {
		return nil, fmt.Errorf("opensearch %q: %w", search, err)
	}
	return &out, nil
}

// FetchExtract requests the intro extract of the page titled title.
func (c *Client) FetchExtract(ctx context.Context, title string) (*ExtractAPIResponse, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)

	var out ExtractAPIResponse
	if err := c.get(ctx, c.apiURL(params), &out); err != nil {
		return nil, fmt.Errorf("extract %q: %w", title, err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, apiURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
