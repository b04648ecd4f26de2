// Package translate renders text in a target language.
package translate

import (
	"context"
	"strings"
)

// Translator translates text into the language named by a BCP-47 primary
// subtag such as "fr".
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
	Name() string
}

// PrimarySubtag returns the language part of a tag: "en-US" -> "en".
func PrimarySubtag(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
