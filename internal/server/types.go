// Package server implements the HTTP API for slipscan: health, metrics,
// extraction endpoints, and a WebSocket channel with stage progress.
package server

import (
	"context"
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/slipscan/internal/pipeline"
	"github.com/MeKo-Tech/slipscan/internal/source"
)

// extractor defines the methods the server needs from a pipeline.
type extractor interface {
	ExtractTicketContext(ctx context.Context, img image.Image, progress pipeline.StageCallback) (*pipeline.TicketResult, error)
	ExtractDocumentContext(ctx context.Context, img image.Image, progress pipeline.StageCallback) (*pipeline.DocumentResult, error)
	ExtractTextContext(ctx context.Context, img image.Image, progress pipeline.StageCallback) (*pipeline.TextResult, error)
	EngineVersion() string
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    extractor
	fetcher     *source.Fetcher
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	Pipeline    pipeline.Config
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	EngineVersion string `json:"engine_version"`
	Time          string `json:"time"`
}

// ExtractRequest is the JSON request body for extraction endpoints. Exactly
// one of the image fields must be set.
type ExtractRequest struct {
	ImageBase64 string `json:"image_base64,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// TicketResponse wraps a ticket extraction result.
type TicketResponse struct {
	Success bool                   `json:"success"`
	Result  *pipeline.TicketResult `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// DocumentResponse wraps a document extraction result.
type DocumentResponse struct {
	Success bool                     `json:"success"`
	Result  *pipeline.DocumentResult `json:"result,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// TextResponse wraps a plain text recognition result.
type TextResponse struct {
	Success bool                 `json:"success"`
	Result  *pipeline.TextResult `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewServer creates a new extraction server instance, building the pipeline
// from the provided configuration.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.NewBuilder().
		WithLanguage(config.Pipeline.Language).
		WithDataPath(config.Pipeline.DataPath).
		WithTicketPreprocess(config.Pipeline.Ticket).
		WithDocumentPreprocess(config.Pipeline.Document).
		Build()
	if err != nil {
		return nil, err
	}
	return newServer(config, pl), nil
}

func newServer(config Config, p extractor) *Server {
	corsOrigin := config.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	maxUploadMB := config.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &Server{
		pipeline:    p,
		fetcher:     source.NewFetcher(nil),
		corsOrigin:  corsOrigin,
		maxUploadMB: maxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/extract", s.corsMiddleware(s.extractTextHandler))
	mux.HandleFunc("/extract/ticket", s.corsMiddleware(s.extractTicketHandler))
	mux.HandleFunc("/extract/document", s.corsMiddleware(s.extractDocumentHandler))
	mux.HandleFunc("/ws/extract", s.extractWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
