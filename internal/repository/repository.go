package repository

import (
	"context"

	"github.com/immxrtalbeast/vibe_chat/internal/domain"
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	GetByConnID(ctx context.Context, connID string) (*domain.Room, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Room, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByConnID(ctx context.Context, connID string) (*domain.User, error)
	Delete(ctx context.Context, connID string) error
	List(ctx context.Context) ([]*domain.User, error)
}
