package realtime

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/veilapp/veil-backend/internal/app"
	"github.com/veilapp/veil-backend/internal/auth"
	"github.com/veilapp/veil-backend/internal/db"
	"github.com/veilapp/veil-backend/internal/repository"
	"github.com/veilapp/veil-backend/internal/service/presence"
)

// Router owns the websocket endpoint: it authenticates connections, wires
// each one into the Hub, and relays events between room members. It persists
// nothing itself beyond delegating presence flips and location overwrites.
type Router struct {
	appCtx    *app.AppContext
	hub       *Hub
	tracker   *presence.Tracker
	issuer    *auth.TokenIssuer
	matchRepo *repository.MatchRepository
	userRepo  *repository.UserRepository
	upgrader  websocket.Upgrader
}

// NewRouter creates the realtime router with dependencies from AppContext.
func NewRouter(appCtx *app.AppContext, hub *Hub, tracker *presence.Tracker, issuer *auth.TokenIssuer) *Router {
	return &Router{
		appCtx:    appCtx,
		hub:       hub,
		tracker:   tracker,
		issuer:    issuer,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		userRepo:  repository.NewUserRepository(appCtx.DB),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Hub exposes the router's hub for components that push events (message
// delivery from the match coordinator).
func (r *Router) Hub() *Hub { return r.hub }

// Register attaches the websocket endpoint to the echo server.
func (r *Router) Register(e *echo.Echo) {
	e.GET("/ws", r.HandleWS)
}

// HandleWS upgrades an HTTP request to a websocket connection.
//
// The bearer token comes from the "token" query parameter (or the
// Authorization header). Verification failure rejects the connection
// outright: no retry, no anonymous mode. On success the connection joins its
// implicit user room and the user is marked online.
func (r *Router) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		header := c.Request().Header.Get("Authorization")
		if len(header) > 7 && header[:7] == "Bearer " {
			token = header[7:]
		}
	}

	userID, err := r.issuer.Verify(token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication error"})
	}
	if _, err := r.userRepo.GetByID(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
	}

	ws, err := r.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	conn := newConn(ws, userID, r.appCtx.Logger)
	conn.handlers = r.dispatchTable()

	r.appCtx.Logger.Info("user connected", "user", userID)
	r.hub.Join(UserRoom(userID), conn)

	ctx := context.Background()
	if err := r.tracker.SetOnline(ctx, userID); err != nil {
		r.appCtx.Logger.Error("failed to mark user online", "user", userID, "err", err)
	}

	go conn.writePump()
	conn.readPump(ctx)

	// readPump returned: transport-level disconnect
	r.disconnect(ctx, conn)
	return nil
}

// dispatchTable maps inbound event names to their handlers. Built once per
// connection.
func (r *Router) dispatchTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		EventTyping:         r.handleTyping,
		EventVoiceCall:      r.handleCall(EventVoiceCall),
		EventVideoCall:      r.handleCall(EventVideoCall),
		EventJoinMatch:      r.handleJoinMatch,
		EventLeaveMatch:     r.handleLeaveMatch,
		EventActivity:       r.handleActivity,
		EventLocationUpdate: r.handleLocationUpdate,
	}
}

// handleTyping relays a typing indicator to the match room, excluding the
// sender. Nothing is persisted or de-duplicated.
func (r *Router) handleTyping(ctx context.Context, c *Conn, data json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	r.hub.Broadcast(MatchRoom(p.MatchID), c, EventUserTyping, UserTypingEvent{
		UserID:   c.UserID(),
		IsTyping: p.IsTyping,
	})
}

// handleCall relays voice/video signaling verbatim to the match room,
// excluding the sender, tagged with the sender identity.
func (r *Router) handleCall(event string) handlerFunc {
	return func(ctx context.Context, c *Conn, data json.RawMessage) {
		var p CallPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		r.hub.Broadcast(MatchRoom(p.MatchID), c, event, CallEvent{
			From:    c.UserID(),
			Type:    p.Type,
			Payload: p.Payload,
		})
	}
}

func (r *Router) handleJoinMatch(ctx context.Context, c *Conn, data json.RawMessage) {
	var matchID string
	if err := json.Unmarshal(data, &matchID); err != nil {
		return
	}
	r.hub.Join(MatchRoom(matchID), c)
	r.appCtx.Logger.Info("user joined match room", "user", c.UserID(), "match", matchID)
}

func (r *Router) handleLeaveMatch(ctx context.Context, c *Conn, data json.RawMessage) {
	var matchID string
	if err := json.Unmarshal(data, &matchID); err != nil {
		return
	}
	r.hub.Leave(MatchRoom(matchID), c)
	r.appCtx.Logger.Info("user left match room", "user", c.UserID(), "match", matchID)
}

// handleActivity records the TTL'd activity marker then fans the event out
// to every match room the user currently participates in. Membership is
// computed by a live query at event time, not cached.
func (r *Router) handleActivity(ctx context.Context, c *Conn, data json.RawMessage) {
	var activity string
	if err := json.Unmarshal(data, &activity); err != nil {
		return
	}

	_ = r.tracker.RecordActivity(ctx, c.UserID(), activity)

	matchIDs, err := r.matchRepo.ActiveMatchIDs(ctx, c.UserID())
	if err != nil {
		r.appCtx.Logger.Error("failed to list active matches", "user", c.UserID(), "err", err)
		return
	}
	for _, matchID := range matchIDs {
		r.hub.Broadcast(MatchRoom(matchID), c, EventUserActivity, UserActivityEvent{
			UserID:   c.UserID(),
			Activity: activity,
		})
	}
}

// handleLocationUpdate overwrites the user's persistent location field.
func (r *Router) handleLocationUpdate(ctx context.Context, c *Conn, data json.RawMessage) {
	var p LocationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	loc := &db.Location{Latitude: p.Latitude, Longitude: p.Longitude}
	if err := r.userRepo.UpdateLocation(ctx, c.UserID(), loc); err != nil {
		r.appCtx.Logger.Error("failed to update location", "user", c.UserID(), "err", err)
		return
	}
	r.appCtx.Logger.Info("location updated", "user", c.UserID())
}

// disconnect leaves all rooms and flips the user offline. A broadcast that
// snapshotted the conn before LeaveAll may still deliver afterwards; shutdown
// turns those late sends into drops.
func (r *Router) disconnect(ctx context.Context, c *Conn) {
	r.appCtx.Logger.Info("user disconnected", "user", c.UserID())
	r.hub.LeaveAll(c)
	c.shutdown()

	if err := r.tracker.SetOffline(ctx, c.UserID()); err != nil {
		r.appCtx.Logger.Error("failed to mark user offline", "user", c.UserID(), "err", err)
	}
}
