package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"shop-service/internal/bus"
	"shop-service/internal/models"
	"shop-service/internal/util"
)

// autoAckDelay is the fixed delay before a question is echoed back to the
// asker as a liveness placeholder, not a real answer.
const autoAckDelay = time.Second

// wsMessage is one frame on the wire in either direction.
type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type faqQuestionPayload struct {
	Question string `json:"question"`
}

type faqAnswerPayload struct {
	UserID   string `json:"userId"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// serveWS upgrades the connection and ties a hub subscription to its
// lifetime: subscribed on upgrade, unsubscribed when the read loop ends.
func (h *Handler) serveWS(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.corsOrigins {
				if allowed == origin {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		util.GetLogger().Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	sessionID := uuid.New().String()
	sub := h.hub.Subscribe(sessionID)
	util.WSConnections.Inc()
	util.GetLogger().Info("Client connected", zap.String("session_id", sessionID))

	go h.writePump(conn, sub)
	h.readPump(conn, sessionID)
}

// readPump consumes client frames until the connection drops, then tears
// the subscription down.
func (h *Handler) readPump(conn *websocket.Conn, sessionID string) {
	logger := util.GetLogger()
	defer func() {
		h.hub.Unsubscribe(sessionID)
		_ = conn.Close()
		util.WSConnections.Dec()
		logger.Info("Client disconnected", zap.String("session_id", sessionID))
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case models.EventTypeJoinFAQRoom:
			var room string
			if err := json.Unmarshal(msg.Payload, &room); err != nil || room == "" {
				continue
			}
			h.hub.Join(sessionID, room)
			logger.Info("Session joined room",
				zap.String("session_id", sessionID),
				zap.String("room", room))

		case models.EventTypeFAQQuestion:
			var payload faqQuestionPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			h.relayQuestion(sessionID, payload.Question)

		case models.EventTypeFAQAnswer:
			var payload faqAnswerPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			h.hub.Send(payload.UserID, bus.Event{
				Type: models.EventTypeQuestionAnswered,
				Payload: models.QuestionAnsweredEvent{
					Question:  payload.Question,
					Answer:    payload.Answer,
					Timestamp: time.Now(),
				},
			})
		}
	}
}

// relayQuestion forwards a shopper question to the admin inbox, tagged with
// the asking session's identity, and schedules the scripted
// auto-acknowledgement back to the asker.
func (h *Handler) relayQuestion(sessionID, question string) {
	h.hub.Publish(models.AdminRoom, bus.Event{
		Type: models.EventTypeNewQuestion,
		Payload: models.NewQuestionEvent{
			UserID:    sessionID,
			Question:  question,
			Timestamp: time.Now(),
		},
	})

	time.AfterFunc(autoAckDelay, func() {
		h.hub.Send(sessionID, bus.Event{
			Type: models.EventTypeQuestionAnswered,
			Payload: models.QuestionAnsweredEvent{
				Question:  question,
				Answer:    "Thank you for your question: \"" + question + "\". Our team will respond shortly.",
				Timestamp: time.Now(),
			},
		})
	})
}

// writePump drains the subscription onto the socket, preserving the hub's
// per-publisher send order. It exits when the subscription channel closes.
func (h *Handler) writePump(conn *websocket.Conn, sub *bus.Subscription) {
	for event := range sub.Events() {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
	_ = conn.Close()
}
