package service

import (
	"context"

	"github.com/immxrtalbeast/vibe_chat/internal/domain"
)

type SessionInteractor interface {
	AddUser(ctx context.Context, user *domain.User) error
	RemoveUser(ctx context.Context, connID string) error
	HandleEvent(ctx context.Context, senderID string, event *domain.Event) error
	Stats(ctx context.Context) (*SessionStats, error)
}

type RoomInteractor interface {
	CreateRoom(ctx context.Context, user1, user2 *domain.User) (*domain.Room, error)
	Relay(ctx context.Context, roomID, senderID string, event *domain.Event)
	DeleteRoom(ctx context.Context, roomID string)
	FindByConnID(ctx context.Context, connID string) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]*domain.Room, error)
}

// SessionStats is a point-in-time snapshot of the registry.
type SessionStats struct {
	Users   int
	Waiting int
	Rooms   int
}
