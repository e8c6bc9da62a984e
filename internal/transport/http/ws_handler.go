package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"disciple-assessment-service/internal/app"
	"disciple-assessment-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler drives one attempt over a websocket.
type WSHandler struct {
	service  *app.AssessmentService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type pagePayload struct {
	Number int `json:"number"`
}

type answerPayload struct {
	ItemID string `json:"item_id"`
	Value  int    `json:"value"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeWS upgrades HTTP requests to websockets and wires them into the attempt use cases.
// The connection ends after a result has been sent.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	attemptID := r.URL.Query().Get("attemptId")
	if attemptID == "" {
		http.Error(w, "missing attemptId", http.StatusBadRequest)
		return
	}
	user := userID(r)

	attempt, err := h.service.Attempt(r.Context(), attemptID, user)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				// Keep draining so the reader never blocks on send.
				for range send {
				}
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "attempt", Payload: newAttemptResponse(attempt)}

	for done := false; !done; {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "page":
			var payload pagePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid page payload")
				continue
			}
			view, err := h.service.Page(r.Context(), attemptID, user, payload.Number)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "page", Payload: view}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			progress, err := h.service.Answer(r.Context(), attemptID, user, payload.ItemID, payload.Value)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "answered", Payload: progress}
		case "submit":
			var payload submitRequest
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- errorMessage("invalid submit payload")
					continue
				}
			}
			sub, err := h.service.Submit(r.Context(), attemptID, user, payload.Confirm)
			if errors.Is(err, domain.ErrIncompleteAnswers) {
				send <- outboundMessage[any]{Type: "confirm", Payload: newIncompleteResponse(sub)}
				continue
			}
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: sub}
			done = true
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(send)
	<-writerDone
}
