package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"ordinal-quest-service/internal/app"
	"ordinal-quest-service/internal/domain"
)

// GameSocket runs one live session per websocket connection.
type GameSocket struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewGameSocket(service *app.GameService, clientOrigin string) *GameSocket {
	return &GameSocket{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return clientOrigin == "*" || origin == "" || origin == clientOrigin
			},
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Player domain.Player   `json:"player"`
	Index  json.RawMessage `json:"index"`
	Round  *int            `json:"round,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

const maxInboundMessage = 4096

// ServeWS upgrades the request and plays a session until it finishes or the client leaves.
// A client leaving early discards the session without recording it.
func (h *GameSocket) ServeWS(w http.ResponseWriter, r *http.Request) {
	mode := domain.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = domain.ModeSingle
	}
	difficulty := domain.Difficulty(r.URL.Query().Get("difficulty"))
	if difficulty == "" {
		difficulty = domain.DifficultyWarmup
	}

	runner, err := h.service.Start(mode, difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	defer h.service.Release(runner.GameID())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxInboundMessage)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- runner.Run(ctx) }()

	replies := make(chan outboundMessage[any], 8)
	writerDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		defer conn.Close()
		updates := runner.Updates()
		for {
			var msg outboundMessage[any]
			select {
			case u, ok := <-updates:
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
					return
				}
				msg = toOutbound(u)
			case msg = <-replies:
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Str("game", runner.GameID()).Msg("ws write error")
				return
			}
		}
	}()

	reply := func(message string) {
		select {
		case replies <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}:
		case <-writerDone:
		}
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
				reply("invalid answer payload")
				continue
			}
			err := h.submit(ctx, runner, payload)
			if errors.Is(err, app.ErrRunnerStopped) {
				reply("game is over")
			} else if err != nil {
				reply(err.Error())
			}
		default:
			reply("unsupported message type")
		}
	}

	cancel()
	if err := <-runDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("game", runner.GameID()).Msg("game loop stopped")
	}
	<-writerDone
}

func (h *GameSocket) submit(ctx context.Context, runner *app.Runner, payload answerPayload) error {
	index := answerIndex(payload.Index)
	if payload.Round != nil {
		return runner.SubmitForRound(ctx, *payload.Round, payload.Player, index)
	}
	return runner.Submit(ctx, payload.Player, index)
}

// answerIndex reads the chosen position. Anything that is not an integer can never match a
// target and is scored as a wrong answer.
func answerIndex(raw json.RawMessage) int {
	var index int
	if err := json.Unmarshal(raw, &index); err != nil {
		return -1
	}
	return index
}

func toOutbound(u app.Update) outboundMessage[any] {
	switch {
	case u.Result != nil:
		return outboundMessage[any]{Type: "result", Payload: u.Result}
	case u.Cue != nil:
		return outboundMessage[any]{Type: "cue", Payload: u.Cue}
	default:
		return outboundMessage[any]{Type: "state", Payload: u.Snapshot}
	}
}
