package speech

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"
)

// Google uses the Cloud Text-to-Speech REST API with a neutral voice.
type Google struct {
	svc *texttospeech.Service
}

func NewGoogle(ctx context.Context, opts ...option.ClientOption) (*Google, error) {
	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech service: %w", err)
	}
	return &Google{svc: svc}, nil
}

func (g *Google) Name() string { return "google" }

func (g *Google) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	resp, err := g.svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: languageCode,
			SsmlGender:   "NEUTRAL",
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("synthesize %s speech: %w", languageCode, err)
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio content: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesize %s speech: no audio data received", languageCode)
	}
	return audio, nil
}
