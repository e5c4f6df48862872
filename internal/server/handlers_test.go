package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/slipscan/internal/extract"
	"github.com/MeKo-Tech/slipscan/internal/pipeline"
	"github.com/MeKo-Tech/slipscan/internal/recognize"
	"github.com/MeKo-Tech/slipscan/internal/version"
)

// fakeExtractor returns canned results without running any pipeline.
type fakeExtractor struct {
	ticket   *pipeline.TicketResult
	document *pipeline.DocumentResult
	text     *pipeline.TextResult
	err      error
}

func (f *fakeExtractor) ExtractTicketContext(_ context.Context, _ image.Image, progress pipeline.StageCallback) (*pipeline.TicketResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if progress != nil {
		progress(pipeline.StagePreprocess, 1.0)
		progress(pipeline.StageRecognize, 1.0)
		progress(pipeline.StageExtract, 1.0)
	}
	return f.ticket, nil
}

func (f *fakeExtractor) ExtractDocumentContext(_ context.Context, _ image.Image, _ pipeline.StageCallback) (*pipeline.DocumentResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.document, nil
}

func (f *fakeExtractor) ExtractTextContext(_ context.Context, _ image.Image, _ pipeline.StageCallback) (*pipeline.TextResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.text, nil
}

func (f *fakeExtractor) EngineVersion() string { return "tesseract 5.3.0" }

func newTestServer(t *testing.T, f *fakeExtractor) *Server {
	t.Helper()
	return newServer(Config{CORSOrigin: "*", MaxUploadMB: 10, TimeoutSec: 30}, f)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetGray(4, 4, color.Gray{Y: 10})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngBase64(t *testing.T) string {
	return base64.StdEncoding.EncodeToString(pngBytes(t))
}

func ticketResult() *pipeline.TicketResult {
	id := "12345678"
	rec := extract.TicketRecord{TicketID: &id, Events: []string{}}
	return &pipeline.TicketResult{Record: rec, RawText: "Ticket: 12345678", Confidence: 91.5, Scale: 1.0}
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.healthHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, version.Version, resp.Version)
	assert.Equal(t, "tesseract 5.3.0", resp.EngineVersion)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	srv.healthHandler(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestExtractTicket_JSONBase64(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{ticket: ticketResult()})

	body, err := json.Marshal(ExtractRequest{ImageBase64: pngBase64(t)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/extract/ticket", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.extractTicketHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp TicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	require.NotNil(t, resp.Result.Record.TicketID)
	assert.Equal(t, "12345678", *resp.Result.Record.TicketID)
}

func TestExtractTicket_MultipartUpload(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{ticket: ticketResult()})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "ticket.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract/ticket", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.extractTicketHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp TicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestExtractTicket_ImageURL(t *testing.T) {
	imgServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes(t))
	}))
	defer imgServer.Close()

	srv := newTestServer(t, &fakeExtractor{ticket: ticketResult()})

	body, err := json.Marshal(ExtractRequest{ImageURL: imgServer.URL})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/extract/ticket", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.extractTicketHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestExtractTicket_FetchFailure(t *testing.T) {
	imgServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer imgServer.Close()

	srv := newTestServer(t, &fakeExtractor{ticket: ticketResult()})

	body, err := json.Marshal(ExtractRequest{ImageURL: imgServer.URL})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/extract/ticket", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.extractTicketHandler(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestExtractTicket_InputValidation(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{ticket: ticketResult()})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"no image", `{}`, http.StatusBadRequest},
		{"both inputs", `{"image_base64":"aaaa","image_url":"http://x"}`, http.StatusBadRequest},
		{"bad base64", `{"image_base64":"!!notbase64!!"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/extract/ticket", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			srv.extractTicketHandler(w, req)

			assert.Equal(t, tt.want, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestExtractTicket_EngineFailure(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{
		err: &recognize.EngineError{Err: errors.New("tesseract unavailable")},
	})

	body, err := json.Marshal(ExtractRequest{ImageBase64: pngBase64(t)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/extract/ticket", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.extractTicketHandler(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Recognition failed")
}

func TestExtractDocument_JSONBase64(t *testing.T) {
	num := "1234567890"
	srv := newTestServer(t, &fakeExtractor{
		document: &pipeline.DocumentResult{
			Record:  extract.DocumentRecord{DocumentNumber: &num},
			RawText: "NUMERO: 1234567890",
		},
	})

	body, err := json.Marshal(ExtractRequest{ImageBase64: pngBase64(t)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/extract/document", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.extractDocumentHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DocumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result.Record.DocumentNumber)
	assert.Equal(t, "1234567890", *resp.Result.Record.DocumentNumber)
}

func TestExtractText_JSONBase64(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{
		text: &pipeline.TextResult{Text: "hola mundo", WordCount: 2, Confidence: 88},
	})

	body, err := json.Marshal(ExtractRequest{ImageBase64: pngBase64(t)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.extractTextHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp TextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "hola mundo", resp.Result.Text)
	assert.Equal(t, 2, resp.Result.WordCount)
}

func TestCORSMiddleware(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{})

	handler := srv.corsMiddleware(srv.healthHandler)

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRoutes(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{})

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
