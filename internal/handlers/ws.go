// internal/handlers/ws.go
package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/javajoker/barter-backend/internal/i18n"
	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/services"
	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/utils"
)

const (
	wsPingInterval = 25 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 16
)

// WSHandler serves live queries over a websocket. Clients send subscribe
// and unsubscribe frames; the server answers with full snapshots.
type WSHandler struct {
	liveQueries    *services.LiveQueryService
	revoker        store.TokenRevoker
	originPatterns []string
}

func NewWSHandler(liveQueries *services.LiveQueryService, revoker store.TokenRevoker, originPatterns []string) *WSHandler {
	return &WSHandler{
		liveQueries:    liveQueries,
		revoker:        revoker,
		originPatterns: originPatterns,
	}
}

// GET /ws?token=...
// Browsers cannot set an Authorization header on websocket requests, so the
// access token travels as a query parameter.
func (h *WSHandler) Handle(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	claims, err := utils.ValidateJWT(c.Query("token"))
	if err != nil {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
		return
	}
	if revoked, err := h.revoker.IsRevoked(c.Request.Context(), claims.ID); err != nil || revoked {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		// Accept already wrote the response
		return
	}

	session := newWSSession(c.Request.Context(), conn, userID, h.liveQueries)
	session.run()
}

type wsSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	conn   *websocket.Conn
	userID uuid.UUID
	live   *services.LiveQueryService
	out    chan livequery.ServerFrame
	subs   map[string]context.CancelFunc
	logger *logrus.Entry
}

func newWSSession(parent context.Context, conn *websocket.Conn, userID uuid.UUID, live *services.LiveQueryService) *wsSession {
	ctx, cancel := context.WithCancel(parent)
	return &wsSession{
		ctx:    ctx,
		cancel: cancel,
		conn:   conn,
		userID: userID,
		live:   live,
		out:    make(chan livequery.ServerFrame, wsSendBuffer),
		subs:   make(map[string]context.CancelFunc),
		logger: logrus.WithField("user_id", userID),
	}
}

// run owns the connection until the client goes away. Subscriptions are
// only touched from this goroutine.
func (s *wsSession) run() {
	defer s.conn.Close(websocket.StatusNormalClosure, "bye")
	defer s.cancel()

	go s.writeLoop()

	for {
		var frame livequery.ClientFrame
		if err := wsjson.Read(s.ctx, s.conn, &frame); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				s.logger.WithError(err).Debug("Websocket read ended")
			}
			return
		}

		switch frame.Op {
		case livequery.OpSubscribe:
			s.subscribe(frame)
		case livequery.OpUnsubscribe:
			s.unsubscribe(frame.ID)
		default:
			s.send(livequery.ServerFrame{Type: livequery.FrameError, ID: frame.ID, Message: "unknown op"})
		}
	}
}

func (s *wsSession) subscribe(frame livequery.ClientFrame) {
	if frame.ID == "" {
		s.send(livequery.ServerFrame{Type: livequery.FrameError, Message: "subscription id required"})
		return
	}
	// re-subscribing under the same id replaces the old query
	s.unsubscribe(frame.ID)

	subCtx, cancel := context.WithCancel(s.ctx)
	sub, err := s.live.Subscribe(subCtx, s.userID, frame.Query())
	if err != nil {
		cancel()
		s.send(livequery.ServerFrame{Type: livequery.FrameError, ID: frame.ID, Message: err.Error()})
		return
	}
	s.subs[frame.ID] = cancel

	go func() {
		defer sub.Close()
		for snap := range sub.Updates() {
			s.send(livequery.ServerFrame{Type: livequery.FrameSnapshot, ID: frame.ID, Data: snap.Data})
		}
	}()
}

func (s *wsSession) unsubscribe(id string) {
	if cancel, ok := s.subs[id]; ok {
		cancel()
		delete(s.subs, id)
	}
}

func (s *wsSession) send(frame livequery.ServerFrame) {
	select {
	case s.out <- frame:
	case <-s.ctx.Done():
	}
}

// writeLoop is the only writer on the connection.
func (s *wsSession) writeLoop() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case frame := <-s.out:
			writeCtx, cancel := context.WithTimeout(s.ctx, wsWriteTimeout)
			err := wsjson.Write(writeCtx, s.conn, frame)
			cancel()
			if err != nil {
				s.logger.WithError(err).Debug("Websocket write failed")
				s.cancel()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				s.cancel()
				return
			}
		}
	}
}
