// Package speech synthesizes MP3 narration for text.
package speech

import "context"

// Synthesizer renders text as MP3 audio in the voice of a full language
// code such as "en-US".
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) ([]byte, error)
	Name() string
}
