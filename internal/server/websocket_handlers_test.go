package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestWebSocket(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/extract"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) WebSocketExtractResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var resp WebSocketExtractResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func TestWebSocket_TicketFlowStreamsProgress(t *testing.T) {
	conn := dialTestWebSocket(t, newTestServer(t, &fakeExtractor{ticket: ticketResult()}))

	req := WebSocketExtractRequest{Type: "ticket", ImageBase64: pngBase64(t)}
	require.NoError(t, conn.WriteJSON(req))

	var statuses []string
	var stages []string
	for {
		resp := readResponse(t, conn)
		statuses = append(statuses, resp.Status)
		if resp.Status == "processing" {
			stages = append(stages, resp.Stage)
		}
		if resp.Status != "processing" {
			assert.Equal(t, "completed", resp.Status)
			assert.NotNil(t, resp.Result)
			assert.NotEmpty(t, resp.RequestID)
			break
		}
	}

	assert.Contains(t, stages, "preprocess")
	assert.Contains(t, stages, "recognize")
	assert.Contains(t, stages, "extract")
	assert.Equal(t, "completed", statuses[len(statuses)-1])
}

func TestWebSocket_InvalidJSON(t *testing.T) {
	conn := dialTestWebSocket(t, newTestServer(t, &fakeExtractor{}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "parse request")
}

func TestWebSocket_UnknownType(t *testing.T) {
	conn := dialTestWebSocket(t, newTestServer(t, &fakeExtractor{}))

	req := WebSocketExtractRequest{Type: "receipt", ImageBase64: pngBase64(t)}
	require.NoError(t, conn.WriteJSON(req))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "Unknown extraction type")
}

func TestWebSocket_BadImage(t *testing.T) {
	conn := dialTestWebSocket(t, newTestServer(t, &fakeExtractor{}))

	req := WebSocketExtractRequest{Type: "ticket", ImageBase64: "!!!"}
	require.NoError(t, conn.WriteJSON(req))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "base64")
}
