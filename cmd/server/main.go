package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tourguide/internal/app"
	"tourguide/internal/config"
	"tourguide/internal/httpapi"
	"tourguide/pkg/graceful"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tourguide-server",
		Short: "Landmark photo recognition and narration API",
		Long: `tourguide-server accepts base64 photos, recognizes the landmark or text on
them, looks up place details and an encyclopedia extract, translates and
narrates the result, and serves the stored records.`,
		SilenceUsage: true,
		RunE:         runServer,
	}
	cmd.Flags().String("port", "8090", "HTTP listen port")
	cmd.Flags().String("record-store", "postgres", "Record store: postgres or memory")
	cmd.Flags().String("places-provider", "google", "Places provider: google or nominatim")
	cmd.Flags().String("translate-provider", "google", "Translation provider: google or openai")
	cmd.Flags().String("speech-provider", "google", "Speech provider: google or openai")
	cmd.Flags().Duration("shutdown-timeout", 15*time.Second, "Time allowed for in-flight requests on shutdown")
	return cmd
}

func runServer(cmd *cobra.Command, _ []string) error {
	config.LoadEnv()
	v, err := config.New(cmd.Flags())
	if err != nil {
		return err
	}
	cfg := config.Load(v)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	a, err := app.Build(ctx, cfg, "tourguide-server")
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Error closing clients: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewServer(a.Landmarks, a.Reporter),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return graceful.Serve(ctx, srv, cfg.ShutdownTimeout)
}
