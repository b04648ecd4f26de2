// Package reporting sends handler errors to Google Cloud Error Reporting and
// mirrors the standard logger into Google Cloud Logging. Without a project
// it only writes to the standard logger.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"cloud.google.com/go/errorreporting"
	"cloud.google.com/go/logging"
	"google.golang.org/api/option"
)

// Reporter receives errors that ended a request.
type Reporter interface {
	Report(err error, r *http.Request)
}

type Sink struct {
	errs *errorreporting.Client
	logs *logging.Client
}

// Setup connects to Error Reporting and Cloud Logging for project and points
// the standard logger at both stderr and logName. An empty project yields a
// log-only sink.
func Setup(ctx context.Context, project, service, logName string, opts ...option.ClientOption) (*Sink, error) {
	if project == "" {
		log.Println("GOOGLE_CLOUD_PROJECT not set, reporting errors to the log only.")
		return &Sink{}, nil
	}

	errs, err := errorreporting.NewClient(ctx, project, errorreporting.Config{
		ServiceName: service,
		OnError: func(err error) {
			log.Printf("Could not report error: %v", err)
		},
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create error reporting client: %w", err)
	}

	logs, err := logging.NewClient(ctx, project, opts...)
	if err != nil {
		_ = errs.Close()
		return nil, fmt.Errorf("failed to create logging client: %w", err)
	}
	logs.OnError = func(err error) {
		fmt.Fprintf(os.Stderr, "cloud logging: %v\n", err)
	}

	cloud := logs.Logger(logName).StandardLogger(logging.Info)
	log.SetOutput(io.MultiWriter(os.Stderr, cloud.Writer()))
	log.Printf("Reporting to project %s as %s", project, service)
	return &Sink{errs: errs, logs: logs}, nil
}

// Report logs err and, when connected, forwards it with the request that
// failed.
func (s *Sink) Report(err error, r *http.Request) {
	if r != nil {
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		log.Printf("error: %v", err)
	}
	if s == nil || s.errs == nil {
		return
	}
	s.errs.Report(errorreporting.Entry{Error: err, Req: r})
}

// Close flushes pending entries and restores the standard logger output.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.errs != nil {
		s.errs.Flush()
		errs = append(errs, s.errs.Close())
	}
	if s.logs != nil {
		log.SetOutput(os.Stderr)
		errs = append(errs, s.logs.Close())
	}
	return errors.Join(errs...)
}
