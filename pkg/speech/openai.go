package speech

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// OpenAI uses the OpenAI speech endpoint. The models detect the language
// from the input, so languageCode only shows up in errors.
type OpenAI struct {
	client *openai.Client
	model  string
	voice  string
}

func NewOpenAI(client *openai.Client, model, voice string) *OpenAI {
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAI{client: client, model: model, voice: voice}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	response, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          text,
		Voice:          openai.SpeechVoice(o.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	audio, err := io.ReadAll(response)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("no %s audio data received from OpenAI", languageCode)
	}
	return audio, nil
}
