// Package vision detects landmarks and text in stored photos with the
// Google Cloud Vision API.
package vision

import (
	"context"
	"fmt"
	"strings"

	visionapi "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"tourguide/internal/models"
)

// Landmark is the best landmark annotation for an image.
type Landmark struct {
	Description string
	Location    models.Optional[models.Coordinates]
}

// Analyzer runs image analysis over a stored image URI (gs:// or http(s)://).
type Analyzer interface {
	DetectLandmark(ctx context.Context, imageURI string) (models.Optional[Landmark], error)
	DetectText(ctx context.Context, imageURI string) (models.Optional[string], error)
}

type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)
}

// clientAdapter drops the variadic call options so the generated client
// satisfies annotator.
type clientAdapter struct {
	client *visionapi.ImageAnnotatorClient
}

func (a clientAdapter) BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
	return a.client.BatchAnnotateImages(ctx, req)
}

// Client is an Analyzer backed by a shared ImageAnnotatorClient.
type Client struct {
	api    annotator
	closer func() error
}

// NewClient dials the Vision API. Credentials come from opts or from
// Application Default Credentials.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	c, err := visionapi.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &Client{api: clientAdapter{client: c}, closer: c.Close}, nil
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) DetectLandmark(ctx context.Context, imageURI string) (models.Optional[Landmark], error) {
	resp, err := c.annotate(ctx, imageURI, visionpb.Feature_LANDMARK_DETECTION)
	if err != nil {
		return models.None[Landmark](), fmt.Errorf("landmark detection for %s: %w", imageURI, err)
	}
	return landmarkFrom(resp), nil
}

func (c *Client) DetectText(ctx context.Context, imageURI string) (models.Optional[string], error) {
	resp, err := c.annotate(ctx, imageURI, visionpb.Feature_TEXT_DETECTION)
	if err != nil {
		return models.None[string](), fmt.Errorf("text detection for %s: %w", imageURI, err)
	}
	return textFrom(resp), nil
}

func (c *Client) annotate(ctx context.Context, imageURI string, feature visionpb.Feature_Type) (*visionpb.AnnotateImageResponse, error) {
	batch, err := c.api.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    imageFromURI(imageURI),
			Features: []*visionpb.Feature{{Type: feature, MaxResults: 1}},
		}},
	})
	if err != nil {
		return nil, err
	}
	if len(batch.GetResponses()) == 0 {
		return nil, fmt.Errorf("empty annotate response")
	}
	resp := batch.GetResponses()[0]
	if st := resp.GetError(); st != nil && st.GetCode() != 0 {
		return nil, fmt.Errorf("vision error %d: %s", st.GetCode(), st.GetMessage())
	}
	return resp, nil
}

func imageFromURI(uri string) *visionpb.Image {
	if strings.HasPrefix(uri, "gs://") {
		return &visionpb.Image{Source: &visionpb.ImageSource{GcsImageUri: uri}}
	}
	return &visionpb.Image{Source: &visionpb.ImageSource{ImageUri: uri}}
}

// landmarkFrom takes the first landmark annotation and its first location.
func landmarkFrom(resp *visionpb.AnnotateImageResponse) models.Optional[Landmark] {
	anns := resp.GetLandmarkAnnotations()
	if len(anns) == 0 || anns[0].GetDescription() == "" {
		return models.None[Landmark]()
	}
	lm := Landmark{Description: anns[0].GetDescription()}
	if locs := anns[0].GetLocations(); len(locs) > 0 && locs[0].GetLatLng() != nil {
		ll := locs[0].GetLatLng()
		lm.Location = models.Some(models.Coordinates{Lat: ll.GetLatitude(), Lon: ll.GetLongitude()})
	}
	return models.Some(lm)
}

// textFrom returns the first text annotation, which holds the full text.
func textFrom(resp *visionpb.AnnotateImageResponse) models.Optional[string] {
	anns := resp.GetTextAnnotations()
	if len(anns) == 0 {
		return models.None[string]()
	}
	return models.SomeString(strings.TrimSpace(anns[0].GetDescription()))
}
