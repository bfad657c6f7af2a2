package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"n5-drill-service/internal/app"
	"n5-drill-service/internal/auth"
	"n5-drill-service/internal/domain"
)

// WSHandler runs one practice session per connection.
type WSHandler struct {
	service  *app.PracticeService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler builds the handler; a nil checkOrigin accepts every origin.
func NewWSHandler(service *app.PracticeService, logger *zap.Logger, checkOrigin func(r *http.Request) bool) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type loadPayload struct {
	Types []domain.ExerciseType `json:"types"`
	Limit int                   `json:"limit"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// exerciseView is an exercise as the client sees it before answering.
type exerciseView struct {
	ID      string              `json:"id"`
	Type    domain.ExerciseType `json:"tipo"`
	Prompt  string              `json:"pregunta"`
	Content map[string]any      `json:"contenido"`
	Options []string            `json:"opciones"`
	Level   string              `json:"nivel"`
	Index   int                 `json:"index"`
	Total   int                 `json:"total"`
}

type stateView struct {
	State        string `json:"state"`
	Index        int    `json:"index"`
	Total        int    `json:"total"`
	Answered     bool   `json:"answered"`
	Score        int    `json:"score"`
	CorrectCount int    `json:"correctCount"`
	TotalTime    int    `json:"totalTime"`
	Accuracy     int    `json:"accuracy"`
}

type answerView struct {
	ExerciseID     string `json:"exerciseId"`
	Correct        bool   `json:"correct"`
	Points         int    `json:"points"`
	ElapsedSeconds int    `json:"time"`
	CorrectAnswer  string `json:"respuesta_correcta"`
	Explanation    string `json:"explicacion,omitempty"`
	Score          int    `json:"score"`
	CorrectCount   int    `json:"correctCount"`
}

type finishedView struct {
	Score         int             `json:"score"`
	CorrectCount  int             `json:"correctCount"`
	Total         int             `json:"total"`
	TotalTime     int             `json:"totalTime"`
	Accuracy      int             `json:"accuracy"`
	Results       []domain.Result `json:"results"`
	Experience    int             `json:"exp"`
	Streak        int             `json:"streak"`
	Level         int             `json:"level"`
	SavedAttempts int             `json:"savedAttempts"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// ServeWS upgrades an authenticated request and wires it into the practice use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	session, err := h.service.Start(ctx, userID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer h.service.Leave(userID, session)

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("user_id", userID), zap.Error(err))
				// Unblock the reader and keep draining so it never blocks on send.
				_ = conn.Close()
				for range send {
				}
				return
			}
		}
	}()

	send <- stateMessage(session.Snapshot())

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.handle(ctx, session, inbound) {
			send <- msg
		}
	}

	close(send)
	<-writerDone
}

// handle runs one inbound message to completion; messages of a connection are
// processed in order, so submit and advance never race each other.
func (h *WSHandler) handle(ctx context.Context, session *app.Session, inbound inboundMessage) []outboundMessage {
	switch inbound.Type {
	case "load":
		var payload loadPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return []outboundMessage{invalidPayload("load")}
			}
		}
		limit := payload.Limit
		if limit == 0 {
			limit = h.service.DefaultLimit()
		}
		if err := session.Load(ctx, payload.Types, limit); err != nil {
			return []outboundMessage{errorMessage(err), stateMessage(session.Snapshot())}
		}
		snap := session.Snapshot()
		return []outboundMessage{stateMessage(snap), exerciseMessage(snap)}

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []outboundMessage{invalidPayload("answer")}
		}
		result, err := session.SubmitAnswer(payload.Answer)
		if err != nil {
			return []outboundMessage{errorMessage(err)}
		}
		snap := session.Snapshot()
		view := answerView{
			ExerciseID:     result.ExerciseID,
			Correct:        result.Correct,
			Points:         result.Points,
			ElapsedSeconds: result.ElapsedSeconds,
			Score:          snap.Score,
			CorrectCount:   snap.CorrectCount,
		}
		if snap.Current != nil && snap.Current.ID == result.ExerciseID {
			view.CorrectAnswer = snap.Current.CorrectAnswer
			view.Explanation = snap.Current.Explanation
		}
		return []outboundMessage{{Type: "answerResult", Payload: view}}

	case "next":
		finished, err := session.Advance(ctx)
		if err != nil {
			return []outboundMessage{errorMessage(err)}
		}
		snap := session.Snapshot()
		if finished {
			if snap.Report != nil && len(snap.Report.Failures) > 0 {
				h.logger.Warn("practice round finished with persistence failures",
					zap.String("user_id", session.User().UserID()),
					zap.Error(snap.Report.Err()))
			}
			return []outboundMessage{stateMessage(snap), finishedMessage(snap)}
		}
		return []outboundMessage{stateMessage(snap), exerciseMessage(snap)}

	case "reset":
		session.Reset()
		return []outboundMessage{stateMessage(session.Snapshot())}

	case "state":
		snap := session.Snapshot()
		if snap.Current != nil {
			return []outboundMessage{stateMessage(snap), exerciseMessage(snap)}
		}
		return []outboundMessage{stateMessage(snap)}

	default:
		return []outboundMessage{{Type: "error", Payload: errorPayload{Code: "unsupported", Message: "unsupported message type"}}}
	}
}

func stateMessage(snap app.SessionSnapshot) outboundMessage {
	return outboundMessage{Type: "state", Payload: stateView{
		State:        snap.State.String(),
		Index:        snap.Index,
		Total:        snap.Total,
		Answered:     snap.Answered,
		Score:        snap.Score,
		CorrectCount: snap.CorrectCount,
		TotalTime:    snap.TotalTime,
		Accuracy:     snap.Accuracy(),
	}}
}

func exerciseMessage(snap app.SessionSnapshot) outboundMessage {
	ex := snap.Current
	if ex == nil {
		return outboundMessage{Type: "error", Payload: errorPayload{Code: "no_active_exercise", Message: domain.ErrNoActiveExercise.Error()}}
	}
	return outboundMessage{Type: "exercise", Payload: exerciseView{
		ID:      ex.ID,
		Type:    ex.Type,
		Prompt:  ex.Prompt,
		Content: ex.Content,
		Options: ex.Options,
		Level:   ex.Level,
		Index:   snap.Index,
		Total:   snap.Total,
	}}
}

func finishedMessage(snap app.SessionSnapshot) outboundMessage {
	view := finishedView{
		Score:        snap.Score,
		CorrectCount: snap.CorrectCount,
		Total:        snap.Total,
		TotalTime:    snap.TotalTime,
		Accuracy:     snap.Accuracy(),
		Results:      snap.Results,
	}
	if snap.Report != nil {
		view.Experience = snap.Report.Experience
		view.Streak = snap.Report.Streak
		view.Level = domain.Level(snap.Report.Experience)
		view.SavedAttempts = snap.Report.SavedAttempts
		view.Warnings = snap.Report.Warnings()
	}
	return outboundMessage{Type: "finished", Payload: view}
}

func invalidPayload(kind string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Code: "invalid_payload", Message: "invalid " + kind + " payload"}}
}

func errorMessage(err error) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Code: errorCode(err), Message: err.Error()}}
}

func errorCode(err error) string {
	var loadErr *domain.LoadError
	switch {
	case errors.As(err, &loadErr):
		return "load_failed"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrNoActiveExercise):
		return "no_active_exercise"
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return "already_answered"
	case errors.Is(err, domain.ErrNotAnswered):
		return "not_answered"
	case errors.Is(err, domain.ErrSessionBusy):
		return "busy"
	case errors.Is(err, domain.ErrSessionReset):
		return "reset"
	default:
		return "internal"
	}
}
