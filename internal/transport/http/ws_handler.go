package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"livequiz-service/internal/domain"
	"livequiz-service/internal/session"
)

// WSHandler wires host and player websockets into the session use cases.
type WSHandler struct {
	service  *session.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *session.Service) *WSHandler {
	return &WSHandler{
		service: service,
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

type hostCommandPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	ParticipantID string `json:"participantId"`
}

type answerPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	Value         string `json:"value"`
}

type joinedPayload struct {
	ParticipantID string          `json:"participantId"`
	RoomCode      string          `json:"roomCode"`
	State         domain.Snapshot `json:"state"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorCode maps domain sentinels to wire codes so clients can branch without
// string matching.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuestionSet):
		return "validation_error"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return "duplicate_submission"
	case errors.Is(err, domain.ErrNotAcceptingAnswers):
		return "not_accepting_answers"
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, domain.ErrRoomClosed):
		return "room_closed"
	case errors.Is(err, domain.ErrSessionEnded):
		return "session_ended"
	case errors.Is(err, domain.ErrParticipantNotFound):
		return "participant_not_found"
	case errors.Is(err, domain.ErrQuizNotFound):
		return "quiz_not_found"
	default:
		return "internal_error"
	}
}

// CreateSession brings up a live session for a quiz and returns its room code.
func (h *WSHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	sess, err := h.service.Create(r.Context(), quizID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrQuizNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, domain.ErrInvalidQuestionSet) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"sessionId": sess.ID(),
		"roomCode":  sess.RoomCode(),
	})
}

// ServeHost upgrades the host's connection and translates its messages into
// host commands. Command failures go back on this socket only; they never
// disturb player connections.
func (h *WSHandler) ServeHost(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}
	sess, err := h.service.Lookup(code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	h.pump(conn, sess, func(inbound inboundMessage, send chan<- outboundMessage[any]) bool {
		var payload hostCommandPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg(err)
				return true
			}
		}
		var cmdErr error
		switch inbound.Type {
		case "start":
			cmdErr = sess.Start()
		case "pause":
			cmdErr = sess.Pause()
		case "resume":
			cmdErr = sess.Resume()
		case "reveal":
			cmdErr = sess.ForceReveal(payload.QuestionIndex)
		case "advance":
			cmdErr = sess.Advance()
		case "restart":
			cmdErr = sess.RestartQuestion()
		case "end":
			cmdErr = sess.End()
		case "kick":
			cmdErr = sess.Kick(payload.ParticipantID)
		default:
			send <- errMsg(errors.New("unsupported message type"))
			return true
		}
		if cmdErr != nil {
			send <- errMsg(cmdErr)
		}
		return true
	}, nil)
}

// ServePlay upgrades a player's connection, joins them into the room (or
// reattaches a disconnected participant when participantId is supplied), and
// translates their answer messages.
func (h *WSHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	name := r.URL.Query().Get("name")
	rejoinID := r.URL.Query().Get("participantId")
	if code == "" || (name == "" && rejoinID == "") {
		http.Error(w, "missing code or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var (
		participant *domain.Participant
		sess        *session.Session
	)
	if rejoinID != "" {
		sess, err = h.service.Lookup(code)
		if err == nil {
			err = sess.SetConnectionStatus(rejoinID, domain.Connected)
			participant = &domain.Participant{ID: rejoinID}
		}
	} else {
		participant, sess, err = h.service.Join(r.Context(), code, name)
		if err == nil {
			_ = sess.SetConnectionStatus(participant.ID, domain.Connected)
		}
	}
	if err != nil {
		_ = conn.WriteJSON(errMsg(err))
		return
	}

	left := false
	h.pump(conn, sess, func(inbound inboundMessage, send chan<- outboundMessage[any]) bool {
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg(errors.New("invalid answer payload"))
				return true
			}
			if err := sess.SubmitAnswer(participant.ID, payload.QuestionIndex, payload.Value); err != nil {
				send <- errMsg(err)
			}
		case "leave":
			left = true
			_ = sess.Leave(participant.ID)
			return false
		default:
			send <- errMsg(errors.New("unsupported message type"))
		}
		return true
	}, func(send chan<- outboundMessage[any]) {
		send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{
			ParticipantID: participant.ID,
			RoomCode:      sess.RoomCode(),
			State:         sess.Snapshot(),
		}}
	})

	// A drop without an explicit leave keeps the seat for rejoin.
	if !left {
		_ = sess.SetConnectionStatus(participant.ID, domain.Disconnected)
	}
}

func errMsg(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: errorCode(err), Message: err.Error()}}
}

// pump runs the shared read/write wiring: a writer goroutine owns the socket
// for writes, a forwarder turns projection updates into state messages, and
// the read loop hands inbound messages to handle until it returns false or
// the socket closes.
func (h *WSHandler) pump(conn *websocket.Conn, sess *session.Session, handle func(inboundMessage, chan<- outboundMessage[any]) bool, onOpen func(chan<- outboundMessage[any])) {
	updates, cancel, err := sess.Subscribe()
	if err != nil {
		_ = conn.WriteJSON(errMsg(err))
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
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	if onOpen != nil {
		onOpen(send)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if !handle(inbound, send) {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
