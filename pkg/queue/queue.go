package queue

import (
	"sync"
	"time"
)

// Notice is one overdue notification waiting to be delivered to the webhook.
type Notice struct {
	ID          string
	BorrowingID uint
	UserEmail   string
	BookTitle   string
	DaysLate    int
	AmountCents int
	RetryAt     time.Time
	RetryCount  int
	MaxRetries  int
}

type Queue struct {
	items []*Notice
	mu    sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		items: make([]*Notice, 0),
	}
}

func (q *Queue) Enqueue(n *Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Dequeue removes and returns the first notice whose RetryAt has passed,
// or nil when nothing is due.
func (q *Queue) Dequeue() *Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for i, n := range q.items {
		if n.RetryAt.Before(now) || n.RetryAt.Equal(now) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return n
		}
	}
	return nil
}

func (q *Queue) Peek() *Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for _, n := range q.items {
		if n.RetryAt.Before(now) || n.RetryAt.Equal(now) {
			return n
		}
	}
	return nil
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) GetAll() []*Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := make([]*Notice, len(q.items))
	copy(result, q.items)
	return result
}
