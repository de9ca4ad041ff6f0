package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/immxrtalbeast/vibe_chat/internal/domain"
	"github.com/immxrtalbeast/vibe_chat/internal/repository"
	"github.com/immxrtalbeast/vibe_chat/lib/logger/sl"
)

const DefaultOfferDelay = 500 * time.Millisecond

// RoomService owns active rooms, the room id counter and the delayed
// offer-initiation task, and routes signaling and chat frames between the
// two participants of a room.
//
// Every operation, including the timer callback, runs under mu. Deleting a
// room stops its timer while holding mu, so a task that already fired blocks
// until the deletion finishes and then finds the room gone.
type RoomService struct {
	rooms      repository.RoomRepository
	log        *slog.Logger
	mu         sync.Mutex
	lastRoomID uint64
	offerDelay time.Duration
}

func NewRoomService(rooms repository.RoomRepository, offerDelay time.Duration, log *slog.Logger) *RoomService {
	if log == nil {
		log = slog.Default()
	}
	if offerDelay <= 0 {
		offerDelay = DefaultOfferDelay
	}
	return &RoomService{
		rooms:      rooms,
		log:        log,
		offerDelay: offerDelay,
	}
}

// CreateRoom pairs user1 and user2 under the next room id. user1 is the
// first-popped participant and will be told to initiate the offer once the
// delay elapses; the delay only gives both clients time to finish local
// setup.
func (s *RoomService) CreateRoom(ctx context.Context, user1, user2 *domain.User) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRoomID++
	room := domain.NewRoom(strconv.FormatUint(s.lastRoomID, 10), user1, user2)

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	s.log.Info("room created",
		slog.String("room_id", room.ID),
		slog.String("user1", user1.ConnID),
		slog.String("user2", user2.ConnID),
	)

	user1.EnqueueEvent(domain.Event{Type: domain.EventRoomReady, RoomID: room.ID})
	user2.EnqueueEvent(domain.Event{Type: domain.EventRoomReady, RoomID: room.ID})

	room.Timer = time.AfterFunc(s.offerDelay, func() {
		s.initiateOffer(room.ID)
	})

	return room, nil
}

// initiateOffer is the delayed task armed by CreateRoom. If the room was
// deleted meanwhile, or the initiator is gone, it does nothing.
func (s *RoomService) initiateOffer(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.rooms.GetByID(context.Background(), roomID)
	if err != nil {
		return
	}
	if !room.User1.IsConnected() {
		return
	}

	s.log.Debug("offer initiation", slog.String("room_id", roomID), slog.String("initiator", room.User1.ConnID))
	room.User1.EnqueueEvent(domain.Event{Type: domain.EventSendOffer, RoomID: roomID})
}

// Relay forwards an offer, answer, ICE candidate or chat message to the
// sender's partner. A missing room or a dead receiver drops the frame with a
// diagnostic; the sender is never told, loss is tolerated above this layer.
func (s *RoomService) Relay(ctx context.Context, roomID, senderID string, event *domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With(
		slog.String("room_id", roomID),
		slog.String("type", string(event.Type)),
	)

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		log.Warn("dropping frame, room not found")
		return
	}

	receiver := room.Other(senderID)
	if receiver == nil {
		log.Warn("dropping frame, sender is not a participant", slog.String("sender", senderID))
		return
	}
	if !receiver.IsConnected() {
		log.Warn("dropping frame, receiver disconnected", slog.String("receiver", receiver.ConnID))
		return
	}

	switch event.Type {
	case domain.EventOffer:
		receiver.EnqueueEvent(domain.Event{Type: domain.EventOffer, SDP: event.SDP, RoomID: room.ID})
	case domain.EventAnswer:
		receiver.EnqueueEvent(domain.Event{Type: domain.EventAnswer, SDP: event.SDP, RoomID: room.ID, SenderID: senderID})
	case domain.EventAddICECandidate:
		receiver.EnqueueEvent(domain.Event{Type: domain.EventAddICECandidate, Candidate: event.Candidate, RoomID: room.ID, SenderID: senderID})
	case domain.EventChatMessage:
		receiver.EnqueueEvent(domain.Event{Type: domain.EventReceiveMessage, Message: event.Message})
	default:
		log.Warn("dropping frame, not relayable")
	}
}

// DeleteRoom tears the room down. The pending offer task is stopped before
// the room is removed. Deleting an absent room is a no-op.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return
	}

	room.StopOfferTimer()

	if err := s.rooms.Delete(ctx, roomID); err != nil && !errors.Is(err, repository.ErrRoomNotFound) {
		s.log.Error("failed to delete room", slog.String("room_id", roomID), sl.Err(err))
		return
	}

	s.log.Info("room deleted", slog.String("room_id", roomID))
}

func (s *RoomService) FindByConnID(ctx context.Context, connID string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms.GetByConnID(ctx, connID)
}

func (s *RoomService) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms.List(ctx)
}
