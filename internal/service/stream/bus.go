package stream

import (
	"sync"

	"github.com/sourcegraph/conc"

	"qwksearch/internal/domain/models"
)

// Bus fans one ordered event stream out to independent subscribers. Publish
// never blocks: every subscription buffers on its own, so a slow or gone
// consumer cannot stall the producer or the other consumers.
type Bus struct {
	mu     sync.Mutex
	subs   []*Subscription
	closed bool
	wg     conc.WaitGroup
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a consumer. Subscribe before the first Publish to
// observe the whole stream.
func (b *Bus) Subscribe(name string) *Subscription {
	s := &Subscription{
		name:   name,
		notify: make(chan struct{}, 1),
		out:    make(chan models.StreamEvent),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		s.closed = true
	}
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	b.wg.Go(s.pump)
	return s
}

// Publish appends ev to every attached subscription.
func (b *Bus) Publish(ev models.StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		s.push(ev)
	}
}

// Close ends the stream. Subscribers still receive everything published
// before Close, then their channel is closed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		s.finish()
	}
}

// Wait blocks until every subscription has delivered its backlog or been
// detached.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// Subscription is one consumer's ordered view of the bus.
type Subscription struct {
	name string

	mu       sync.Mutex
	queue    []models.StreamEvent
	closed   bool
	detached bool

	notify     chan struct{}
	out        chan models.StreamEvent
	done       chan struct{}
	detachOnce sync.Once
}

// Name identifies the consumer in logs
func (s *Subscription) Name() string { return s.name }

// Events delivers the stream in publish order. It is closed after the last
// event or on Detach.
func (s *Subscription) Events() <-chan models.StreamEvent {
	return s.out
}

// Detach drops the backlog and stops delivery. Safe to call more than once.
func (s *Subscription) Detach() {
	s.detachOnce.Do(func() {
		s.mu.Lock()
		s.detached = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *Subscription) push(ev models.StreamEvent) {
	s.mu.Lock()
	if s.detached || s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription) finish() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		ev := s.queue[0]
		s.queue[0] = models.StreamEvent{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}
