package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/slipscan/internal/pipeline"
	"github.com/MeKo-Tech/slipscan/internal/source"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		return true
	},
}

// WebSocketExtractRequest is an extraction request sent over WebSocket.
type WebSocketExtractRequest struct {
	Type        string `json:"type"` // "ticket", "document", or "text"
	ImageBase64 string `json:"image_base64"`
}

// WebSocketExtractResponse is streamed back while processing runs. While
// status is "processing" the Stage and Progress fields track the flow;
// "completed" carries the result, "error" the failure.
type WebSocketExtractResponse struct {
	Type      string      `json:"type"`
	Status    string      `json:"status"` // "processing", "completed", "error"
	Stage     string      `json:"stage,omitempty"`
	Progress  float64     `json:"progress,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// extractWebSocketHandler handles WebSocket connections for extraction with
// live stage progress.
func (s *Server) extractWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("websocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r.Context(), conn)
}

func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(ctx, conn, data)
		}
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, conn *websocket.Conn, data []byte) {
	var req WebSocketExtractRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	img, err := source.DecodeBase64(req.ImageBase64)
	if err != nil {
		s.sendWebSocketError(conn, requestID, "Invalid base64 image data")
		return
	}

	// Stream stage progress as the flow advances. The callback runs on
	// this goroutine, so writes to conn do not race.
	progress := func(stage pipeline.Stage, fraction float64) {
		s.sendWebSocketResponse(conn, WebSocketExtractResponse{
			Type:      "extract_response",
			Status:    "processing",
			Stage:     string(stage),
			Progress:  fraction,
			RequestID: requestID,
		})
	}

	var result interface{}
	switch req.Type {
	case "ticket":
		result, err = s.pipeline.ExtractTicketContext(ctx, img, progress)
	case "document":
		result, err = s.pipeline.ExtractDocumentContext(ctx, img, progress)
	case "text", "":
		result, err = s.pipeline.ExtractTextContext(ctx, img, progress)
	default:
		s.sendWebSocketError(conn, requestID, fmt.Sprintf("Unknown extraction type: %s", req.Type))
		return
	}
	if err != nil {
		s.sendWebSocketError(conn, requestID, fmt.Sprintf("Extraction failed: %v", err))
		return
	}

	s.sendWebSocketResponse(conn, WebSocketExtractResponse{
		Type:      "extract_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    result,
		RequestID: requestID,
	})
}

func (s *Server) sendWebSocketResponse(conn *websocket.Conn, resp WebSocketExtractResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("marshaling websocket response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("writing websocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

func (s *Server) sendWebSocketError(conn *websocket.Conn, requestID, message string) {
	s.sendWebSocketResponse(conn, WebSocketExtractResponse{
		Type:      "extract_response",
		Status:    "error",
		Error:     message,
		RequestID: requestID,
	})
}
