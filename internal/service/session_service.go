package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/immxrtalbeast/vibe_chat/internal/domain"
	"github.com/immxrtalbeast/vibe_chat/internal/repository"
	"github.com/immxrtalbeast/vibe_chat/lib/logger/sl"
)

var ErrUnsupportedEvent = errors.New("unsupported event type")

// SessionService is the single entry point for connect, disconnect and
// message events coming from the gateway. It owns the match queue and drives
// RoomService; every operation runs to completion under mu, which is the
// only thing that keeps the queue and the user map consistent.
type SessionService struct {
	users repository.UserRepository
	rooms *RoomService
	log   *slog.Logger
	mu    sync.Mutex
	queue *MatchQueue
}

func NewSessionService(users repository.UserRepository, rooms *RoomService, log *slog.Logger) *SessionService {
	if log == nil {
		log = slog.Default()
	}
	return &SessionService{
		users: users,
		rooms: rooms,
		log:   log,
		queue: NewMatchQueue(),
	}
}

// AddUser registers a freshly connected user, acknowledges it with "lobby",
// queues it for matching and runs a matching pass.
func (s *SessionService) AddUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.log.Info("user connected",
		slog.String("conn_id", user.ConnID),
		slog.String("name", user.Name),
	)

	user.EnqueueEvent(domain.Event{Type: domain.EventLobby})
	s.queue.Push(user.ConnID)
	s.matchWaiting(ctx)

	return nil
}

// RemoveUser tears down everything tied to a connection: the user record,
// its queue slot and, if it was paired, the room. The remaining participant
// is told the peer left and goes back into the queue. Removing an unknown
// connection is a no-op.
func (s *SessionService) RemoveUser(ctx context.Context, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.users.GetByConnID(ctx, connID)
	if err != nil {
		return nil
	}

	user.SetStatus(domain.UserStatusDisconnected)

	if err := s.users.Delete(ctx, connID); err != nil {
		s.log.Error("failed to delete user", slog.String("conn_id", connID), sl.Err(err))
	}
	s.queue.Remove(connID)

	if room, err := s.rooms.FindByConnID(ctx, connID); err == nil {
		s.log.Info("cleaning up room after disconnect",
			slog.String("room_id", room.ID),
			slog.String("conn_id", connID),
		)

		peer := room.Other(connID)
		s.rooms.DeleteRoom(ctx, room.ID)

		if peer != nil {
			peer.EnqueueEvent(domain.Event{Type: domain.EventUserDisconnected})
			s.queue.Push(peer.ConnID)
		}
	}

	// No relay can reach the user past this point: the record is gone and
	// the room is deleted, so closing the event channel is safe.
	if user.Events != nil {
		close(user.Events)
	}
	if user.Socket != nil {
		user.Socket.Close()
	}

	s.log.Info("user disconnected", slog.String("conn_id", connID), slog.String("name", user.Name))

	s.matchWaiting(ctx)
	return nil
}

// HandleEvent dispatches a validated client frame. Signaling and chat frames
// carry opaque payloads; the sender id is always the registry's own
// resolution of the connection, never a client-supplied field.
func (s *SessionService) HandleEvent(ctx context.Context, senderID string, event *domain.Event) error {
	switch event.Type {
	case domain.EventOffer, domain.EventAnswer, domain.EventAddICECandidate, domain.EventChatMessage:
		s.rooms.Relay(ctx, event.RoomID, senderID, event)
		return nil
	case domain.EventNextUser:
		return s.nextPartner(ctx, senderID)
	default:
		return ErrUnsupportedEvent
	}
}

// nextPartner handles a skip request. The abandoned peer is queued before
// the requester, so it is matched first on the next pass.
func (s *SessionService) nextPartner(ctx context.Context, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("user requested next partner", slog.String("conn_id", connID))

	if room, err := s.rooms.FindByConnID(ctx, connID); err == nil {
		peer := room.Other(connID)
		s.rooms.DeleteRoom(ctx, room.ID)

		if peer != nil {
			peer.EnqueueEvent(domain.Event{Type: domain.EventUserDisconnected})
			s.queue.Push(peer.ConnID)
		}
	}

	s.queue.Push(connID)
	s.matchWaiting(ctx)
	return nil
}

// matchWaiting pairs queued users strictly in arrival order. An id that no
// longer resolves to a live user is discarded; its would-be partner goes back
// to the end of the queue rather than being paired with a dead connection.
func (s *SessionService) matchWaiting(ctx context.Context) {
	for s.queue.Len() >= 2 {
		id1, _ := s.queue.Pop()
		id2, _ := s.queue.Pop()

		user1, err1 := s.users.GetByConnID(ctx, id1)
		user2, err2 := s.users.GetByConnID(ctx, id2)

		if err1 != nil || err2 != nil {
			s.log.Warn("discarding stale queue entry",
				slog.String("id1", id1),
				slog.String("id2", id2),
			)
			if err1 == nil {
				s.queue.Push(id1)
			}
			if err2 == nil {
				s.queue.Push(id2)
			}
			continue
		}

		if _, err := s.rooms.CreateRoom(ctx, user1, user2); err != nil {
			s.log.Error("failed to create room", sl.Err(err))
			s.queue.Push(id1)
			s.queue.Push(id2)
			return
		}
	}
}

func (s *SessionService) Stats(ctx context.Context) (*SessionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	return &SessionStats{
		Users:   len(users),
		Waiting: s.queue.Len(),
		Rooms:   len(rooms),
	}, nil
}
