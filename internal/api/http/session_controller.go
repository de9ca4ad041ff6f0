package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/vibe_chat/internal/domain"
	"github.com/immxrtalbeast/vibe_chat/internal/service"
	"github.com/immxrtalbeast/vibe_chat/lib/logger/sl"
)

type SessionController struct {
	sessions service.SessionInteractor
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewSessionController(sessions service.SessionInteractor, log *slog.Logger) *SessionController {
	if log == nil {
		log = slog.Default()
	}
	return &SessionController{
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Connect upgrades the request to a websocket, issues the connection its id
// and pumps frames between the socket and the session registry until the
// client goes away.
func (c *SessionController) Connect(ctx *gin.Context) {
	name := ctx.Query("name")
	if name == "" {
		name = "anonymous"
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to upgrade connection")
		return
	}

	user := domain.NewUser(name, conn)

	go forwardUserEvents(user)

	if err := c.sessions.AddUser(context.Background(), user); err != nil {
		c.log.Error("failed to register user", sl.Err(err))
		close(user.Events)
		conn.WriteJSON(gin.H{"error": err.Error()})
		conn.Close()
		return
	}

	log := c.log.With(
		slog.String("conn_id", user.ConnID),
		slog.String("name", user.Name),
	)

	for {
		var event domain.Event
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("read failed", sl.Err(err))
			}
			_ = c.sessions.RemoveUser(context.Background(), user.ConnID)
			return
		}

		if err := event.ValidateInbound(); err != nil {
			log.Warn("dropping invalid frame", slog.String("type", string(event.Type)), sl.Err(err))
			continue
		}

		if err := c.sessions.HandleEvent(context.Background(), user.ConnID, &event); err != nil {
			log.Warn("dropping frame", slog.String("type", string(event.Type)), sl.Err(err))
		}
	}
}

// forwardUserEvents is the single writer for a connection. It drains the
// user's event channel until the registry closes it.
func forwardUserEvents(user *domain.User) {
	for event := range user.Events {
		if user.Socket == nil {
			return
		}
		if err := user.Socket.WriteJSON(event); err != nil {
			return
		}
	}
}
