package backend

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/genzes/internal/models"
)

// Listeners is a registry of auth callbacks. The zero value is ready to use.
type Listeners struct {
	mu   sync.Mutex
	next int
	subs map[int]AuthCallback
}

// Subscribe registers cb until the returned subscription is cancelled.
func (l *Listeners) Subscribe(cb AuthCallback) Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.subs == nil {
		l.subs = make(map[int]AuthCallback)
	}
	id := l.next
	l.next++
	l.subs[id] = cb
	return &subscription{l: l, id: id}
}

// Emit calls every registered callback synchronously, in registration
// order. Callbacks may subscribe or unsubscribe.
func (l *Listeners) Emit(event AuthEvent, s *models.Session) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.subs))
	cbs := make(map[int]AuthCallback, len(l.subs))
	for id, cb := range l.subs {
		ids = append(ids, id)
		cbs[id] = cb
	}
	l.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		cbs[id](event, s)
	}
}

// Len returns the number of active subscriptions.
func (l *Listeners) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

type subscription struct {
	once sync.Once
	l    *Listeners
	id   int
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.l.mu.Lock()
		delete(s.l.subs, s.id)
		s.l.mu.Unlock()
	})
}
