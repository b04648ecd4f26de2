package keys

import (
	"fmt"
	"path"
	"strings"
)

const audioPrefix = "audio"

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// Photo returns the blob key for an uploaded photo. The client's filename is
// kept as-is apart from leading slashes and any directory components.
func Photo(filename string) string {
	return path.Base("/" + strings.TrimLeft(filename, "/"))
}

// Audio returns the blob key for the narration of subject in language,
// e.g. audio/en-us/eiffel-tower.mp3.
func Audio(language, subject string) string {
	return fmt.Sprintf("%s/%s/%s.mp3",
		audioPrefix,
		sanitizeKey(language),
		sanitizeKey(strings.TrimSuffix(subject, path.Ext(subject))),
	)
}

// IsAudio reports whether key was produced by Audio.
func IsAudio(key string) bool {
	return strings.HasPrefix(key, audioPrefix+"/")
}
