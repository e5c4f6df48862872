package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/slipscan/internal/recognize"
	"github.com/MeKo-Tech/slipscan/internal/source"
	"github.com/MeKo-Tech/slipscan/internal/version"
)

// healthHandler returns server health status including the recognition
// engine version.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:        "healthy",
		Version:       version.Version,
		EngineVersion: s.pipeline.EngineVersion(),
		Time:          time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// extractTicketHandler processes betting ticket extraction requests.
func (s *Server) extractTicketHandler(w http.ResponseWriter, r *http.Request) {
	img, ok := s.parseImageRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := s.pipeline.ExtractTicketContext(r.Context(), img, nil)
	if err != nil {
		s.recordFailure("ticket", w, err)
		return
	}
	extractDuration.WithLabelValues("ticket").Observe(time.Since(start).Seconds())
	extractTextLength.WithLabelValues("ticket").Observe(float64(len(result.RawText)))
	extractRequestsTotal.WithLabelValues("ticket", "success").Inc()

	s.writeJSON(w, http.StatusOK, TicketResponse{Success: true, Result: result})
}

// extractDocumentHandler processes identity document extraction requests.
func (s *Server) extractDocumentHandler(w http.ResponseWriter, r *http.Request) {
	img, ok := s.parseImageRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := s.pipeline.ExtractDocumentContext(r.Context(), img, nil)
	if err != nil {
		s.recordFailure("document", w, err)
		return
	}
	extractDuration.WithLabelValues("document").Observe(time.Since(start).Seconds())
	extractTextLength.WithLabelValues("document").Observe(float64(len(result.RawText)))
	extractRequestsTotal.WithLabelValues("document", "success").Inc()

	s.writeJSON(w, http.StatusOK, DocumentResponse{Success: true, Result: result})
}

// extractTextHandler processes plain text recognition requests.
func (s *Server) extractTextHandler(w http.ResponseWriter, r *http.Request) {
	img, ok := s.parseImageRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := s.pipeline.ExtractTextContext(r.Context(), img, nil)
	if err != nil {
		s.recordFailure("text", w, err)
		return
	}
	extractDuration.WithLabelValues("text").Observe(time.Since(start).Seconds())
	extractTextLength.WithLabelValues("text").Observe(float64(len(result.Text)))
	extractRequestsTotal.WithLabelValues("text", "success").Inc()

	s.writeJSON(w, http.StatusOK, TextResponse{Success: true, Result: result})
}

// parseImageRequest extracts the input image from either a multipart form
// upload (field "image") or a JSON body carrying base64 data or a URL. On
// failure it writes the error response and returns ok=false.
func (s *Server) parseImageRequest(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return s.parseMultipartImage(w, r, maxBytes)
	}
	return s.parseJSONImage(w, r)
}

func (s *Server) parseMultipartImage(w http.ResponseWriter, r *http.Request, maxBytes int64) (image.Image, bool) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return nil, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return nil, false
	}
	uploadSizeBytes.Observe(float64(len(data)))

	img, err := source.DecodeBytes(data)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return nil, false
	}
	return img, true
}

func (s *Server) parseJSONImage(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Failed to parse JSON request: %v", err), http.StatusBadRequest)
		return nil, false
	}

	switch {
	case req.ImageBase64 != "" && req.ImageURL != "":
		s.writeErrorResponse(w, "Provide either image_base64 or image_url, not both", http.StatusBadRequest)
		return nil, false
	case req.ImageBase64 != "":
		img, err := source.DecodeBase64(req.ImageBase64)
		if err != nil {
			s.writeErrorResponse(w, "Invalid base64 image data", http.StatusBadRequest)
			return nil, false
		}
		return img, true
	case req.ImageURL != "":
		img, err := s.fetcher.Fetch(r.Context(), req.ImageURL)
		if err != nil {
			var fetchErr *source.FetchError
			if errors.As(err, &fetchErr) {
				s.writeErrorResponse(w, fmt.Sprintf("Failed to fetch image: %v", err), http.StatusBadGateway)
			} else {
				s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
			}
			return nil, false
		}
		return img, true
	default:
		s.writeErrorResponse(w, "No image provided", http.StatusBadRequest)
		return nil, false
	}
}

// recordFailure maps a pipeline error to an HTTP error response. Engine
// failures mean the service cannot recognize, not that the request was bad.
func (s *Server) recordFailure(kind string, w http.ResponseWriter, err error) {
	extractRequestsTotal.WithLabelValues(kind, "error").Inc()
	slog.Error("extraction failed", "type", kind, "error", err)

	var engErr *recognize.EngineError
	if errors.As(err, &engErr) {
		s.writeErrorResponse(w, fmt.Sprintf("Recognition failed: %v", err), http.StatusServiceUnavailable)
		return
	}
	s.writeErrorResponse(w, fmt.Sprintf("Extraction failed: %v", err), http.StatusInternalServerError)
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
