package service

// MatchQueue is the FIFO pool of connection ids waiting for a partner.
// It is not safe for concurrent use; SessionService serializes access.
type MatchQueue struct {
	ids []string
}

func NewMatchQueue() *MatchQueue {
	return &MatchQueue{}
}

// Push appends connID unless it is already queued.
func (q *MatchQueue) Push(connID string) {
	if q.Contains(connID) {
		return
	}
	q.ids = append(q.ids, connID)
}

// Pop removes and returns the oldest entry.
func (q *MatchQueue) Pop() (string, bool) {
	if len(q.ids) == 0 {
		return "", false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

func (q *MatchQueue) Remove(connID string) {
	for i, id := range q.ids {
		if id == connID {
			q.ids = append(q.ids[:i], q.ids[i+1:]...)
			return
		}
	}
}

func (q *MatchQueue) Contains(connID string) bool {
	for _, id := range q.ids {
		if id == connID {
			return true
		}
	}
	return false
}

func (q *MatchQueue) Len() int {
	return len(q.ids)
}
