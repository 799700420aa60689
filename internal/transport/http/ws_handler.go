package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aparna-hs/literally-invented/internal/app"
	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler exposes the game service over HTTP: a login endpoint, the
// scoreboard, and a websocket per player-and-game pair.
type Handler struct {
	service  *app.GameService
	timeout  time.Duration
	upgrader websocket.Upgrader
}

func NewHandler(service *app.GameService, timeout time.Duration) *Handler {
	return &Handler{
		service: service,
		timeout: timeout,
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

type submitPayload struct {
	ItemID string `json:"itemId"`
	Value  string `json:"value"`
}

type batchPayload struct {
	Answers map[string]string `json:"answers"`
}

type sessionPayload struct {
	Session engine.Snapshot `json:"session"`
	Verdict string          `json:"verdict"`
	Reason  string          `json:"reason,omitempty"`
}

type submitResultPayload struct {
	Result  domain.SubmitResult `json:"result"`
	Session engine.Snapshot     `json:"session"`
}

type batchResultPayload struct {
	Result  domain.BatchResult `json:"result"`
	Session engine.Snapshot    `json:"session"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login resolves credentials to a player identity.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid login payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	player, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Printf("login failed: %v", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(player)
}

// Leaderboard serves the aggregated scoreboard.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	board, err := h.service.Leaderboard(ctx)
	if err != nil {
		log.Printf("leaderboard failed: %v", err)
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(board)
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game
// use cases. One connection serves one player-and-game pair.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userParam := r.URL.Query().Get("userId")
	gameParam := r.URL.Query().Get("game")
	if userParam == "" || gameParam == "" {
		http.Error(w, "missing userId or game", http.StatusBadRequest)
		return
	}
	playerID, err := strconv.ParseInt(userParam, 10, 64)
	if err != nil || playerID <= 0 {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}
	gameID := domain.GameID(gameParam)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not support
	// concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws %s write error: %v", connID, err)
				return
			}
		}
	}()

	deliver := func(msg outboundMessage[any]) bool {
		return sendOrDone(send, writerDone, msg)
	}

	snapshot, decision, err := h.resume(r.Context(), playerID, gameID)
	if err != nil {
		deliver(errorMessage(err))
		close(send)
		<-writerDone
		return
	}
	if !deliver(outboundMessage[any]{Type: "session", Payload: sessionPayload{
		Session: snapshot,
		Verdict: decision.Verdict.String(),
		Reason:  decision.Reason,
	}}) {
		close(send)
		<-writerDone
		return
	}

read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !deliver(errorMessage(errors.New("invalid submit payload"))) {
					break read
				}
				continue
			}
			res, snap, err := h.submit(r.Context(), playerID, gameID, payload.ItemID, payload.Value)
			if err != nil {
				// Locked items and terminal sessions are unreachable through
				// normal UI flow; answer with current state, not an error.
				if invalidTransition(err) {
					log.Printf("ws %s: ignored submission: %v", connID, err)
					if !deliver(outboundMessage[any]{Type: "session", Payload: sessionPayload{Session: snap, Verdict: engine.VerdictAllowed.String()}}) {
						break read
					}
					continue
				}
				if !deliver(errorMessage(err)) {
					break read
				}
				continue
			}
			if !deliver(outboundMessage[any]{Type: "answerResult", Payload: submitResultPayload{Result: res, Session: snap}}) {
				break read
			}
		case "submitBatch":
			var payload batchPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !deliver(errorMessage(errors.New("invalid batch payload"))) {
					break read
				}
				continue
			}
			res, snap, err := h.submitBatch(r.Context(), playerID, gameID, payload.Answers)
			if err != nil {
				if invalidTransition(err) {
					log.Printf("ws %s: ignored batch submission: %v", connID, err)
					if !deliver(outboundMessage[any]{Type: "session", Payload: sessionPayload{Session: snap, Verdict: engine.VerdictAllowed.String()}}) {
						break read
					}
					continue
				}
				if !deliver(errorMessage(err)) {
					break read
				}
				continue
			}
			if !deliver(outboundMessage[any]{Type: "batchResult", Payload: batchResultPayload{Result: res, Session: snap}}) {
				break read
			}
		case "saveProgress":
			var payload batchPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !deliver(errorMessage(errors.New("invalid progress payload"))) {
					break read
				}
				continue
			}
			if err := h.saveDraft(r.Context(), playerID, gameID, payload.Answers); err != nil {
				if !deliver(errorMessage(err)) {
					break read
				}
				continue
			}
			if !deliver(outboundMessage[any]{Type: "progressSaved", Payload: struct{}{}}) {
				break read
			}
		case "retryFinalize":
			snap, err := h.retryFinalize(r.Context(), playerID, gameID)
			if err != nil {
				if !deliver(errorMessage(err)) {
					break read
				}
				continue
			}
			if !deliver(outboundMessage[any]{Type: "session", Payload: sessionPayload{Session: snap, Verdict: engine.VerdictAllowed.String()}}) {
				break read
			}
		default:
			if !deliver(errorMessage(errors.New("unsupported message type"))) {
				break read
			}
		}
	}

	close(send)
	<-writerDone
}

func (h *Handler) resume(ctx context.Context, playerID int64, gameID domain.GameID) (engine.Snapshot, engine.PlayDecision, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.service.Resume(ctx, playerID, gameID)
}

func (h *Handler) submit(ctx context.Context, playerID int64, gameID domain.GameID, itemID, value string) (domain.SubmitResult, engine.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.service.Submit(ctx, playerID, gameID, itemID, value)
}

func (h *Handler) submitBatch(ctx context.Context, playerID int64, gameID domain.GameID, answers map[string]string) (domain.BatchResult, engine.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.service.SubmitBatch(ctx, playerID, gameID, answers)
}

func (h *Handler) saveDraft(ctx context.Context, playerID int64, gameID domain.GameID, answers map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.service.SaveDraft(ctx, playerID, gameID, answers)
}

func (h *Handler) retryFinalize(ctx context.Context, playerID int64, gameID domain.GameID) (engine.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.service.RetryFinalize(ctx, playerID, gameID)
}

// sendOrDone queues msg for the writer goroutine. It reports false once the
// writer has exited on a write error, so the read loop stops producing
// instead of blocking on a buffer nobody drains.
func sendOrDone(send chan<- outboundMessage[any], done <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-done:
		return false
	}
}

// invalidTransition reports whether err came from a submission the session
// state machine cannot accept, such as a resubmit of a locked item. These
// are expected after reconnects and double-clicks.
func invalidTransition(err error) bool {
	return errors.Is(err, domain.ErrItemLocked) ||
		errors.Is(err, domain.ErrSessionCompleted) ||
		errors.Is(err, domain.ErrSessionNotInProgress) ||
		errors.Is(err, domain.ErrSubmissionInFlight)
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}
