// Package config loads service settings from the environment, an optional
// .env file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	ShutdownTimeout time.Duration
	LogName         string

	Storage Storage

	RecordStore string
	DatabaseURL string

	GoogleProject   string
	GoogleAPIKey    string
	GoogleCredsFile string

	PlacesProvider    string
	PlacesAPIKey      string
	TranslateProvider string
	SpeechProvider    string
	WikipediaLang     string

	OpenAIKey      string
	OpenAIModel    string
	OpenAITTSModel string
	OpenAITTSVoice string

	HTTPClientTimeout time.Duration
	DefaultLanguage   string

	Kafka Kafka
}

type Storage struct {
	Bucket        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	PublicBaseURL string
	PublicRead    bool
}

type Kafka struct {
	Broker  string
	Topic   string
	GroupID string
}

var defaults = map[string]any{
	"PORT":                "8090",
	"SHUTDOWN_TIMEOUT":    15 * time.Second,
	"LOG_NAME":            "tourguide",
	"MINIO_USE_SSL":       true,
	"STORAGE_PUBLIC_READ": true,
	"RECORD_STORE":        "postgres",
	"PLACES_PROVIDER":     "google",
	"TRANSLATE_PROVIDER":  "google",
	"SPEECH_PROVIDER":     "google",
	"WIKIPEDIA_LANG":      "en",
	"OPENAI_MODEL":        "gpt-4o-mini",
	"OPENAI_TTS_MODEL":    "tts-1",
	"OPENAI_TTS_VOICE":    "alloy",
	"HTTP_CLIENT_TIMEOUT": 60 * time.Second,
	"DEFAULT_LANGUAGE":    "en-US",
}

// LoadEnv reads a .env file from the working directory if there is one.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set directly.")
	}
}

// New returns a viper instance with defaults and environment binding. Flags,
// when given, take precedence over the environment. Flag names are the
// lower-kebab form of the key (PORT -> port, KAFKA_TOPIC -> kafka-topic).
func New(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()
	if flags == nil {
		return v, nil
	}
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = errors.Join(bindErr, err)
		}
	})
	return v, bindErr
}

// Load builds a Config from v.
func Load(v *viper.Viper) Config {
	return Config{
		Port:            v.GetString("PORT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		LogName:         v.GetString("LOG_NAME"),
		Storage: Storage{
			Bucket:        v.GetString("CLOUD_STORAGE_BUCKET"),
			Endpoint:      v.GetString("MINIO_ENDPOINT"),
			AccessKey:     v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:     v.GetString("MINIO_SECRET_KEY"),
			UseSSL:        v.GetBool("MINIO_USE_SSL"),
			Region:        v.GetString("MINIO_REGION"),
			PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
			PublicRead:    v.GetBool("STORAGE_PUBLIC_READ"),
		},
		RecordStore:       strings.ToLower(v.GetString("RECORD_STORE")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		GoogleProject:     v.GetString("GOOGLE_CLOUD_PROJECT"),
		GoogleAPIKey:      v.GetString("GOOGLE_API_KEY"),
		GoogleCredsFile:   v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		PlacesProvider:    strings.ToLower(v.GetString("PLACES_PROVIDER")),
		PlacesAPIKey:      v.GetString("PLACES_API_KEY"),
		TranslateProvider: strings.ToLower(v.GetString("TRANSLATE_PROVIDER")),
		SpeechProvider:    strings.ToLower(v.GetString("SPEECH_PROVIDER")),
		WikipediaLang:     v.GetString("WIKIPEDIA_LANG"),
		OpenAIKey:         v.GetString("OPENAI_API_KEY"),
		OpenAIModel:       v.GetString("OPENAI_MODEL"),
		OpenAITTSModel:    v.GetString("OPENAI_TTS_MODEL"),
		OpenAITTSVoice:    v.GetString("OPENAI_TTS_VOICE"),
		HTTPClientTimeout: v.GetDuration("HTTP_CLIENT_TIMEOUT"),
		DefaultLanguage:   v.GetString("DEFAULT_LANGUAGE"),
		Kafka: Kafka{
			Broker:  v.GetString("KAFKA_BROKER"),
			Topic:   v.GetString("KAFKA_TOPIC"),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
	}
}

// Validate reports every missing setting the enrichment chain needs.
func (c Config) Validate() error {
	var missing []string
	require := func(key, val string) {
		if val == "" {
			missing = append(missing, key)
		}
	}
	require("CLOUD_STORAGE_BUCKET", c.Storage.Bucket)
	require("MINIO_ENDPOINT", c.Storage.Endpoint)
	require("MINIO_ACCESS_KEY", c.Storage.AccessKey)
	require("MINIO_SECRET_KEY", c.Storage.SecretKey)

	switch c.RecordStore {
	case "postgres":
		require("DATABASE_URL", c.DatabaseURL)
	case "memory":
	default:
		return fmt.Errorf("unknown RECORD_STORE %q", c.RecordStore)
	}
	switch c.PlacesProvider {
	case "google":
		require("PLACES_API_KEY", c.PlacesAPIKey)
	case "nominatim":
	default:
		return fmt.Errorf("unknown PLACES_PROVIDER %q", c.PlacesProvider)
	}
	for _, p := range []struct{ key, val string }{
		{"TRANSLATE_PROVIDER", c.TranslateProvider},
		{"SPEECH_PROVIDER", c.SpeechProvider},
	} {
		switch p.val {
		case "google":
		case "openai":
			require("OPENAI_API_KEY", c.OpenAIKey)
		default:
			return fmt.Errorf("unknown %s %q", p.key, p.val)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(dedupe(missing), ", "))
	}
	return nil
}

// ValidateKafka reports missing settings for the bucket-event indexer.
func (c Config) ValidateKafka() error {
	var missing []string
	for key, val := range map[string]string{
		"KAFKA_BROKER":   c.Kafka.Broker,
		"KAFKA_TOPIC":    c.Kafka.Topic,
		"KAFKA_GROUP_ID": c.Kafka.GroupID,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
