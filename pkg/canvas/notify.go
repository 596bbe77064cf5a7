// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package canvas

import (
	"net/url"
	"sync"
	"time"
)

// Level of a notice.
type Level string

const (
	Info  Level = "info"
	Error Level = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// Location holds the externally visible, bookmarkable canvas state as URL query parameters.
// SetQuery is called with the canvas locked and must not call back into the canvas.
type Location interface {
	SetQuery(key, value string)
}

// NoticeQueue is a [Notifier] that keeps notices until they are drained.
// At most Max notices are kept, older notices are dropped.
type NoticeQueue struct {
	Max int

	m       sync.Mutex
	notices []Notice
}

// DefaultMaxNotices is used when NoticeQueue.Max is 0.
const DefaultMaxNotices = 20

func (q *NoticeQueue) Notify(n Notice) {
	q.m.Lock()
	defer q.m.Unlock()
	max := q.Max
	if max <= 0 {
		max = DefaultMaxNotices
	}
	q.notices = append(q.notices, n)
	if over := len(q.notices) - max; over > 0 {
		q.notices = q.notices[over:]
	}
}

// Drain returns and removes all queued notices, oldest first.
func (q *NoticeQueue) Drain() []Notice {
	q.m.Lock()
	defer q.m.Unlock()
	notices := q.notices
	q.notices = nil
	return notices
}

// Query is a [Location] held in memory.
type Query struct {
	m      sync.Mutex
	values url.Values
}

func (q *Query) SetQuery(key, value string) {
	q.m.Lock()
	defer q.m.Unlock()
	if q.values == nil {
		q.values = url.Values{}
	}
	q.values.Set(key, value)
}

// Get a query value.
func (q *Query) Get(key string) string {
	q.m.Lock()
	defer q.m.Unlock()
	return q.values.Get(key)
}

// Encode the query as a URL query string.
func (q *Query) Encode() string {
	q.m.Lock()
	defer q.m.Unlock()
	return q.values.Encode()
}
