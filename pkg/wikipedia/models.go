package wikipedia

import (
	"encoding/json"
	"fmt"
)

// OpenSearchResponse is the positional array returned by action=opensearch:
// [query, [titles], [descriptions], [urls]].
type OpenSearchResponse struct {
	Query  string
	Titles []string
	URLs   []string
}

func (r *OpenSearchResponse) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("opensearch: expected at least 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &r.Query); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &r.Titles); err != nil {
		return err
	}
	if len(raw) > 3 {
		if err := json.Unmarshal(raw[3], &r.URLs); err != nil {
			return err
		}
	}
	return nil
}

// ExtractAPIResponse is the top-level struct for a prop=extracts query.
type ExtractAPIResponse struct {
	Query ExtractQuery `json:"query"`
}

// ExtractQuery contains the pages map, keyed by page id ("-1" for missing pages).
type ExtractQuery struct {
	Pages map[string]ExtractPage `json:"pages"`
}

type ExtractPage struct {
	PageID  int     `json:"pageid"`
	Title   string  `json:"title"`
	Extract string  `json:"extract"`
	Missing *string `json:"missing,omitempty"`
}
