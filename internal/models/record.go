package models

import "time"

// Coordinates is a point returned by the vision or places services.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlaceDetails is what a places provider knows about a landmark.
type PlaceDetails struct {
	FormattedAddress         Optional[string]
	FormattedPhoneNumber     Optional[string]
	InternationalPhoneNumber Optional[string]
	Types                    []string
	Website                  Optional[string]
}

// Record is one photo's aggregated recognition, enrichment and translation
// result. It is keyed by the name of the photo blob.
type Record struct {
	BlobName    string
	ImageURL    Optional[string]
	Description Optional[string]
	Location    Optional[Coordinates]
	PlaceDetails
	Extract   Optional[string]
	AudioURL  Optional[string]
	CreatedAt time.Time
}

// RecordView is the wire shape of a Record with placeholders applied.
type RecordView struct {
	Description              string     `json:"description"`
	Latitude                 Coordinate `json:"latitude"`
	Longitude                Coordinate `json:"longitude"`
	URL                      string     `json:"url"`
	FormattedAddress         string     `json:"formatted_address"`
	FormattedPhoneNumber     string     `json:"formatted_phone_number"`
	InternationalPhoneNumber string     `json:"international_phone_number"`
	Types                    []string   `json:"types"`
	Website                  string     `json:"website"`
	WikipediaExtract         string     `json:"wikipedia_extract"`
	Audio                    string     `json:"audio"`
}

func (r Record) View() RecordView {
	v := RecordView{
		Description:              r.Description.OrElse(Unknown),
		URL:                      r.ImageURL.OrElse(Unknown),
		FormattedAddress:         r.FormattedAddress.OrElse(Unknown),
		FormattedPhoneNumber:     r.FormattedPhoneNumber.OrElse(Unknown),
		InternationalPhoneNumber: r.InternationalPhoneNumber.OrElse(Unknown),
		Types:                    r.Types,
		Website:                  r.Website.OrElse(Unknown),
		WikipediaExtract:         r.Extract.OrElse(Unknown),
		Audio:                    r.AudioURL.OrElse(Unknown),
	}
	if loc, ok := r.Location.Get(); ok {
		v.Latitude = NewCoordinate(loc.Lat)
		v.Longitude = NewCoordinate(loc.Lon)
	}
	if v.Types == nil {
		v.Types = []string{}
	}
	return v
}

// TextReading is the result of the OCR-and-translate flow.
type TextReading struct {
	OriginalText   Optional[string]
	TranslatedText Optional[string]
	AudioURL       Optional[string]
}

type TextReadingView struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	Audio          string `json:"audio"`
}

func (t TextReading) View() TextReadingView {
	return TextReadingView{
		OriginalText:   t.OriginalText.OrElse(Unknown),
		TranslatedText: t.TranslatedText.OrElse(Unknown),
		Audio:          t.AudioURL.OrElse(Unknown),
	}
}
