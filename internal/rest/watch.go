package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/twbrandon7/lexi-connect/internal/pkg/fn"
	"github.com/twbrandon7/lexi-connect/internal/pkg/httpx"
	"github.com/twbrandon7/lexi-connect/internal/pkg/middleware"
	"github.com/twbrandon7/lexi-connect/internal/service"
	"github.com/twbrandon7/lexi-connect/internal/watch"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (api *API) handleWatchCards(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if _, err := api.sessions.GetSession(r.Context(), sessionID); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	sub := api.hub.Subscribe(watch.TopicSessionCards(sessionID))
	api.stream(conn, sub, func(ctx context.Context) (any, error) {
		cards, err := api.cards.ListCards(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return fn.Map(cards, toCardResponse), nil
	})
}

func (api *API) handleWatchBank(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	sub := api.hub.Subscribe(watch.TopicBank(userID))
	api.stream(conn, sub, func(ctx context.Context) (any, error) {
		resolved, err := api.bank.ResolveBankCards(ctx, userID)
		if err != nil {
			return nil, err
		}
		return fn.Map(resolved, func(re service.ResolvedEntry) resolvedEntryResponse {
			out := resolvedEntryResponse{Entry: toBankEntryResponse(re.Entry)}
			if re.Card != nil {
				card := toCardResponse(*re.Card)
				out.Card = &card
			}
			return out
		}), nil
	})
}

func (api *API) handleWatchPublicSessions(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	sub := api.hub.Subscribe(watch.TopicPublicSessions)
	api.stream(conn, sub, func(ctx context.Context) (any, error) {
		sessions, err := api.sessions.ListPublicSessions(ctx)
		if err != nil {
			return nil, err
		}
		return fn.Map(sessions, toSessionResponse), nil
	})
}

// stream pushes one snapshot immediately, then one per change signal. Signals
// arriving while a snapshot is in flight coalesce, so a burst of writes costs
// at most one extra re-query.
func (api *API) stream(conn *websocket.Conn, sub *watch.Subscription, snapshot func(ctx context.Context) (any, error)) {
	defer conn.Close()
	defer sub.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Read pump: the client never sends data frames, but reading is how we
	// learn the connection closed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() bool {
		payload, err := snapshot(ctx)
		if err != nil {
			slog.Error("watch snapshot failed", "error", err)
			return false
		}
		return conn.WriteJSON(payload) == nil
	}

	if !push() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.C():
			if !push() {
				return
			}
		}
	}
}
