package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/vibe_chat/internal/api/http/converter"
	"github.com/immxrtalbeast/vibe_chat/internal/service"
)

// StatsController exposes a read-only view of the registry for debugging.
type StatsController struct {
	sessions service.SessionInteractor
	rooms    service.RoomInteractor
}

func NewStatsController(sessions service.SessionInteractor, rooms service.RoomInteractor) *StatsController {
	return &StatsController{sessions: sessions, rooms: rooms}
}

func (c *StatsController) GetStats(ctx *gin.Context) {
	stats, err := c.sessions.Stats(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"stats": converter.StatsToApi(stats)})
}

func (c *StatsController) ListRooms(ctx *gin.Context) {
	rooms, err := c.rooms.ListRooms(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result := make([]*converter.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, converter.RoomToApi(room))
	}

	ctx.JSON(http.StatusOK, gin.H{"rooms": result})
}
