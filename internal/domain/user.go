package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type UserStatus string

const (
	UserStatusConnected    UserStatus = "connected"
	UserStatusDisconnected UserStatus = "disconnected"
)

// User is one live connection waiting for, or talking to, a partner.
// ConnID is issued by the gateway and is valid for the connection lifetime.
type User struct {
	ConnID   string
	Name     string
	Status   UserStatus
	JoinedAt time.Time
	Mutex    sync.RWMutex
	Socket   *websocket.Conn
	Events   chan Event
}

func NewUser(name string, socket *websocket.Conn) *User {
	return &User{
		ConnID:   uuid.New().String(),
		Name:     name,
		Status:   UserStatusConnected,
		JoinedAt: time.Now().UTC(),
		Socket:   socket,
		Events:   make(chan Event, 16),
	}
}

// EnqueueEvent hands an event to the connection's writer without blocking.
// Delivery is at-most-once: a full buffer drops the event.
func (u *User) EnqueueEvent(event Event) {
	select {
	case u.Events <- event:
	default:
	}
}

func (u *User) SetStatus(status UserStatus) {
	u.Mutex.Lock()
	defer u.Mutex.Unlock()
	u.Status = status
}

func (u *User) IsConnected() bool {
	u.Mutex.RLock()
	defer u.Mutex.RUnlock()
	return u.Status == UserStatusConnected
}
