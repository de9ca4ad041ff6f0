package converter

import (
	"time"

	"github.com/immxrtalbeast/vibe_chat/internal/domain"
	"github.com/immxrtalbeast/vibe_chat/internal/service"
)

type RoomResponse struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

type StatsResponse struct {
	Users   int `json:"users"`
	Waiting int `json:"waiting"`
	Rooms   int `json:"rooms"`
}

func RoomToApi(r *domain.Room) *RoomResponse {
	return &RoomResponse{
		ID:           r.ID,
		Participants: []string{r.User1.Name, r.User2.Name},
		CreatedAt:    r.CreatedAt,
	}
}

func StatsToApi(s *service.SessionStats) *StatsResponse {
	return &StatsResponse{
		Users:   s.Users,
		Waiting: s.Waiting,
		Rooms:   s.Rooms,
	}
}
