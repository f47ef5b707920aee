package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development; restrict in production
	},
}

// StreamHandler upgrades streaming clients to a websocket and feeds the
// three session routes: connect on upgrade, default on each inbound message,
// disconnect when the read loop ends.
type StreamHandler struct {
	manager *session.Manager
	logger  *zap.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(manager *session.Manager, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		manager: manager,
		logger:  logger,
	}
}

// Stream handles GET /api/v1/stream (WebSocket upgrade)
func (h *StreamHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The result subscriber writes to this socket too; serialize writers.
	wc := session.WrapConn(conn)

	ctx := c.Request.Context()
	connectionID, err := h.manager.Connect(ctx, wc)
	if err != nil {
		// No session record, no session: drop the connection.
		return
	}
	defer h.manager.Disconnect(ctx, connectionID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			h.logger.Debug("WebSocket read failed (client disconnected)",
				zap.String("connection_id", connectionID), zap.Error(err))
			return
		}

		if err := h.manager.HandleMessage(ctx, connectionID, raw); err != nil {
			// Tell the client and keep the session alive for the next message.
			_ = wc.WriteJSON(gin.H{"error": err.Error()})
		}
	}
}
