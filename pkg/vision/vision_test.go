package vision

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/genproto/googleapis/type/latlng"
)

type fakeAnnotator struct {
	resp *visionpb.AnnotateImageResponse
	err  error
	got  *visionpb.BatchAnnotateImagesRequest
}

func (f *fakeAnnotator) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{f.resp}}, nil
}

func TestClient_DetectLandmark(t *testing.T) {
	tests := []struct {
		name      string
		resp      *visionpb.AnnotateImageResponse
		wantFound bool
		wantDesc  string
		wantLoc   bool
	}{
		{
			name: "landmark with location",
			resp: &visionpb.AnnotateImageResponse{LandmarkAnnotations: []*visionpb.EntityAnnotation{{
				Description: "Eiffel Tower",
				Locations:   []*visionpb.LocationInfo{{LatLng: &latlng.LatLng{Latitude: 48.858461, Longitude: 2.294351}}},
			}}},
			wantFound: true,
			wantDesc:  "Eiffel Tower",
			wantLoc:   true,
		},
		{
			name: "landmark without location",
			resp: &visionpb.AnnotateImageResponse{LandmarkAnnotations: []*visionpb.EntityAnnotation{{
				Description: "Big Ben",
			}}},
			wantFound: true,
			wantDesc:  "Big Ben",
		},
		{
			name: "no landmark",
			resp: &visionpb.AnnotateImageResponse{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnnotator{resp: tt.resp}
			c := &Client{api: fake}

			got, err := c.DetectLandmark(context.Background(), "gs://photos/eiffel.jpg")
			require.NoError(t, err)

			req := fake.got.GetRequests()[0]
			assert.Equal(t, "gs://photos/eiffel.jpg", req.GetImage().GetSource().GetGcsImageUri())
			assert.Equal(t, visionpb.Feature_LANDMARK_DETECTION, req.GetFeatures()[0].GetType())

			lm, ok := got.Get()
			require.Equal(t, tt.wantFound, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantDesc, lm.Description)
			assert.Equal(t, tt.wantLoc, lm.Location.Valid())
			if loc, ok := lm.Location.Get(); ok {
				assert.InDelta(t, 48.858461, loc.Lat, 1e-9)
				assert.InDelta(t, 2.294351, loc.Lon, 1e-9)
			}
		})
	}
}

func TestClient_DetectText(t *testing.T) {
	fake := &fakeAnnotator{resp: &visionpb.AnnotateImageResponse{TextAnnotations: []*visionpb.EntityAnnotation{
		{Description: "SORTIE\nEXIT\n"},
		{Description: "SORTIE"},
	}}}
	c := &Client{api: fake}

	got, err := c.DetectText(context.Background(), "https://cdn.example.com/photos/sign.jpg")
	require.NoError(t, err)
	assert.Equal(t, "SORTIE\nEXIT", got.OrElse(""))
	assert.Equal(t, "https://cdn.example.com/photos/sign.jpg", fake.got.GetRequests()[0].GetImage().GetSource().GetImageUri())

	fake.resp = &visionpb.AnnotateImageResponse{}
	got, err = c.DetectText(context.Background(), "gs://photos/blank.jpg")
	require.NoError(t, err)
	assert.False(t, got.Valid())
}

func TestClient_Errors(t *testing.T) {
	c := &Client{api: &fakeAnnotator{err: errors.New("permission denied")}}
	_, err := c.DetectLandmark(context.Background(), "gs://photos/a.jpg")
	assert.ErrorContains(t, err, "permission denied")

	c = &Client{api: &fakeAnnotator{resp: &visionpb.AnnotateImageResponse{
		Error: &status.Status{Code: 7, Message: "caller lacks access to gs://photos/a.jpg"},
	}}}
	_, err = c.DetectText(context.Background(), "gs://photos/a.jpg")
	assert.ErrorContains(t, err, "caller lacks access")
}
