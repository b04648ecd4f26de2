package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"tourguide/internal/app"
	"tourguide/internal/config"
	"tourguide/internal/service"
	"tourguide/pkg/graceful"
	"tourguide/pkg/kafkaclient"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tourguide-indexer",
		Short: "Enrich photos written straight into the bucket",
		Long: `tourguide-indexer consumes MinIO bucket notifications from Kafka and runs
the landmark enrichment chain for every new image in the bucket.`,
		SilenceUsage: true,
		RunE:         runIndexer,
	}
	cmd.Flags().String("kafka-broker", "", "Kafka broker address(es), comma separated")
	cmd.Flags().String("kafka-topic", "", "Topic carrying bucket notifications")
	cmd.Flags().String("kafka-group-id", "", "Consumer group id")
	cmd.Flags().String("default-language", "en-US", "Narration language for objects without language metadata")
	return cmd
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	config.LoadEnv()
	v, err := config.New(cmd.Flags())
	if err != nil {
		return err
	}
	cfg := config.Load(v)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateKafka(); err != nil {
		return err
	}

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	a, err := app.Build(ctx, cfg, "tourguide-indexer")
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Error closing clients: %v", err)
		}
	}()

	consumer, err := kafkaclient.NewConsumer(cfg.Kafka)
	if err != nil {
		return err
	}
	consumer.Start(ctx)
	defer consumer.Stop()

	photos := service.NewIterator(consumer, service.PhotoLoader(a.Storage, cfg.Storage.Bucket))
	for obj := range photos.Objects(ctx) {
		rec, err := a.Landmarks.EnrichStored(ctx, obj.Data.Key, obj.Data.URL, obj.Data.Language)
		if err != nil {
			a.Reporter.Report(fmt.Errorf("enrich %s: %w", obj.Data.Key, err), nil)
			continue
		}
		log.Printf("Indexed %s as %s", rec.BlobName, rec.Description.OrElse("no landmark"))
	}

	log.Println("Indexer finished, application exiting.")
	return nil
}
