package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"pancasila-learning-service/internal/app"
)

// WSHandler drives a quiz attempt over a websocket: the client starts an
// attempt by connecting, answers and advances via inbound messages, and
// receives ticks, feedback and the final certificate as outbound events.
type WSHandler struct {
	runner   *app.QuizRunner
	upgrader websocket.Upgrader
}

func NewWSHandler(runner *app.QuizRunner) *WSHandler {
	return &WSHandler{
		runner: runner,
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

type answerPayload struct {
	Option int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeQuiz upgrades the request and runs one attempt for its lifetime. The
// attempt is aborted (countdown cancelled, nothing recorded) if the client
// disconnects before finishing.
func (h *WSHandler) ServeQuiz(w http.ResponseWriter, r *http.Request) {
	chapterID := r.URL.Query().Get("chapterId")
	studentName := r.URL.Query().Get("name")
	if chapterID == "" || studentName == "" {
		http.Error(w, "missing chapterId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if err := h.runner.Start(r.Context(), chapterID, studentName); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.runner.Abort()

	updates, cancel, err := h.runner.Subscribe()
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg := outboundMessage[any]{Type: "tick", Payload: update}
				if update.Result != nil {
					msg = outboundMessage[any]{Type: "finished", Payload: update.Result}
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	if question, err := h.runner.CurrentQuestion(); err == nil {
		send <- outboundMessage[any]{Type: "started", Payload: question}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			feedback, err := h.runner.SubmitAnswer(payload.Option)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: feedback}
		case "advance":
			result, err := h.runner.Advance()
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			if result == nil {
				if question, err := h.runner.CurrentQuestion(); err == nil {
					send <- outboundMessage[any]{Type: "question", Payload: question}
				}
			}
			// The finished event arrives via the subscription.
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
