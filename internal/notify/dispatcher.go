package notify

import (
	"sync"

	"github.com/google/uuid"
	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/metrics"
	"github.com/vietddude/docpipe/internal/session"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

// Dispatcher fans user notifications and progress updates out to
// subscribers. Delivery is per-subscriber ordered and never blocks a
// publisher: a full buffer drops the update and counts the drop. Late
// subscribers miss prior notifications.
type Dispatcher struct {
	mu        sync.RWMutex
	store     *session.Store
	buffer    int
	notifSubs map[string]chan *domain.UserNotification
	progSubs  map[string]chan domain.ProgressUpdate
}

// NewDispatcher creates a dispatcher over the session store. buffer <= 0
// selects DefaultBuffer.
func NewDispatcher(store *session.Store, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Dispatcher{
		store:     store,
		buffer:    buffer,
		notifSubs: make(map[string]chan *domain.UserNotification),
		progSubs:  make(map[string]chan domain.ProgressUpdate),
	}
}

// Subscribe registers a notification subscriber. The returned token
// unsubscribes it.
func (d *Dispatcher) Subscribe() (string, <-chan *domain.UserNotification) {
	d.mu.Lock()
	defer d.mu.Unlock()

	token := uuid.New().String()
	ch := make(chan *domain.UserNotification, d.buffer)
	d.notifSubs[token] = ch
	return token, ch
}

// Unsubscribe removes a notification subscriber and closes its channel.
func (d *Dispatcher) Unsubscribe(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ch, ok := d.notifSubs[token]; ok {
		delete(d.notifSubs, token)
		close(ch)
	}
}

// SubscribeProgress registers a progress subscriber.
func (d *Dispatcher) SubscribeProgress() (string, <-chan domain.ProgressUpdate) {
	d.mu.Lock()
	defer d.mu.Unlock()

	token := uuid.New().String()
	ch := make(chan domain.ProgressUpdate, d.buffer)
	d.progSubs[token] = ch
	return token, ch
}

// UnsubscribeProgress removes a progress subscriber and closes its channel.
func (d *Dispatcher) UnsubscribeProgress(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ch, ok := d.progSubs[token]; ok {
		delete(d.progSubs, token)
		close(ch)
	}
}

// PublishNotification delivers a notification to all current subscribers.
// Each subscriber gets its own copy; mutating a received notification
// cannot race other subscribers.
func (d *Dispatcher) PublishNotification(n *domain.UserNotification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, ch := range d.notifSubs {
		select {
		case ch <- n.Clone():
		default:
			metrics.NotificationsDropped.Inc()
		}
	}
}

// PublishProgress delivers a progress update to all current subscribers.
func (d *Dispatcher) PublishProgress(update domain.ProgressUpdate) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, ch := range d.progSubs {
		select {
		case ch <- update:
		default:
			metrics.NotificationsDropped.Inc()
		}
	}
}
