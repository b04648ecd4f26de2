// Package httpapi exposes the landmark flows over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tourguide/internal/landmark"
	"tourguide/internal/models"
	"tourguide/internal/reporting"
)

const maxBodyBytes = 32 << 20

// Landmarks is implemented by landmark.Service.
type Landmarks interface {
	EnrichPhoto(ctx context.Context, req landmark.UploadRequest) (models.Record, error)
	ReadText(ctx context.Context, req landmark.UploadRequest) (models.TextReading, error)
	List(ctx context.Context) ([]models.Record, error)
	Ping(ctx context.Context) error
}

type Server struct {
	landmarks Landmarks
	reporter  reporting.Reporter
	router    *mux.Router
	handler   http.Handler
}

func NewServer(landmarks Landmarks, reporter reporting.Reporter) *Server {
	s := &Server{landmarks: landmarks, reporter: reporter, router: mux.NewRouter()}
	s.routes()
	// Wrapping the router rather than using mux middleware covers
	// unmatched routes too.
	s.handler = requestID(cors(s.router))
	return s
}

func (s *Server) routes() {
	s.router.Handle("/", s.handle(s.listRecords)).Methods(http.MethodGet)
	s.router.Handle("/upload_photo", s.handle(s.uploadPhoto)).Methods(http.MethodPost)
	s.router.Handle("/upload_text_photo", s.handle(s.uploadTextPhoto)).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// appHandler is a handler whose error ends in the 500 page.
type appHandler func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handle(fn appHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.serverError(w, r, fmt.Errorf("panic: %v", p))
			}
		}()
		if err := fn(w, r); err != nil {
			s.serverError(w, r, err)
		}
	})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("[%s] %v", RequestIDFrom(r.Context()), err)
	if s.reporter != nil {
		s.reporter.Report(err, r)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, "An internal error occurred: <pre>%s</pre> See logs for full stacktrace.", err)
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) error {
	records, err := s.landmarks.List(r.Context())
	if err != nil {
		return err
	}
	views := make([]models.RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, rec.View())
	}
	return writeJSONString(w, views)
}

func (s *Server) uploadPhoto(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeUpload(w, r)
	if err != nil {
		return err
	}
	rec, err := s.landmarks.EnrichPhoto(r.Context(), req)
	if err != nil {
		return err
	}
	return writeJSONString(w, rec.View())
}

func (s *Server) uploadTextPhoto(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeUpload(w, r)
	if err != nil {
		return err
	}
	reading, err := s.landmarks.ReadText(r.Context(), req)
	if err != nil {
		return err
	}
	return writeJSONString(w, reading.View())
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.landmarks.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

func decodeUpload(w http.ResponseWriter, r *http.Request) (landmark.UploadRequest, error) {
	var req landmark.UploadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request body: %w", err)
	}
	return req, nil
}
