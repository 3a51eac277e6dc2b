package broadcast

import (
	"context"
	"sync"
)

// Broadcaster publishes values to subscribers, retaining the latest one.
// The zero value is not usable; create instances with New.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	latest T
	has    bool
	closed bool
}

// New creates an empty broadcaster.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Publish records v as the latest value and offers it to every subscriber.
// Publishing after Close is a no-op.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.latest, b.has = v, true
	for sub := range b.subs {
		sub.offer(v)
	}
}

// Latest returns the most recently published value.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.has
}

// Subscribe registers a reader. The subscription ends when ctx is done, when
// Close is called on it, or when the broadcaster closes; its channel is then
// closed. Subscribing to a closed broadcaster yields a closed subscription.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) *Subscription[T] {
	sub := &Subscription[T]{
		b:    b,
		ch:   make(chan T, 1),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		sub.closeLocked()
		b.mu.Unlock()
		return sub
	}
	b.subs[sub] = struct{}{}
	if b.has {
		sub.offer(b.latest)
	}
	b.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = sub.Close()
			case <-sub.done:
			}
		}()
	}
	return sub
}

// Close ends every subscription. It is safe to call more than once.
func (b *Broadcaster[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		sub.closeLocked()
	}
	clear(b.subs)
	return nil
}

// Len reports the number of active subscriptions.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscription is one reader's view of a Broadcaster.
type Subscription[T any] struct {
	b    *Broadcaster[T]
	ch   chan T
	done chan struct{}
	once sync.Once
}

// C returns the channel values arrive on. It is closed when the
// subscription ends.
func (s *Subscription[T]) C() <-chan T { return s.ch }

// Close ends the subscription. It is idempotent.
func (s *Subscription[T]) Close() error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	delete(s.b.subs, s)
	s.closeLocked()
	return nil
}

// offer replaces any unread value with v. Caller holds b.mu, so no other
// sender can refill the buffer between the drain and the send.
func (s *Subscription[T]) offer(v T) {
	select {
	case s.ch <- v:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- v:
	default:
	}
}

// closeLocked closes the channels once. Caller holds b.mu.
func (s *Subscription[T]) closeLocked() {
	s.once.Do(func() {
		close(s.done)
		close(s.ch)
	})
}
