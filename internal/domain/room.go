package domain

import "time"

// Room pairs exactly two users. User1 is the participant that was popped
// from the queue first and is the sole offer initiator.
type Room struct {
	ID        string
	User1     *User
	User2     *User
	Timer     *time.Timer
	CreatedAt time.Time
}

func NewRoom(id string, user1, user2 *User) *Room {
	return &Room{
		ID:        id,
		User1:     user1,
		User2:     user2,
		CreatedAt: time.Now().UTC(),
	}
}

func (r *Room) Has(connID string) bool {
	return r.User1.ConnID == connID || r.User2.ConnID == connID
}

// Other returns the participant opposite connID, or nil if connID is not
// a participant of the room.
func (r *Room) Other(connID string) *User {
	switch connID {
	case r.User1.ConnID:
		return r.User2
	case r.User2.ConnID:
		return r.User1
	}
	return nil
}

// StopOfferTimer cancels the pending offer-initiation task if it is armed.
func (r *Room) StopOfferTimer() {
	if r.Timer != nil {
		r.Timer.Stop()
	}
}
