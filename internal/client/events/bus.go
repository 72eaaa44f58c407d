// Package events is the in-process notification bus connecting the chat
// and upload components with whoever presents them.
package events

import "sync"

type Kind int

const (
	// ConversationCreated is published after a send promoted the empty state
	// into a server-minted conversation.
	ConversationCreated Kind = iota + 1
	// BatchCompleted is published once per upload batch when all its tasks
	// reached a terminal status.
	BatchCompleted
	// UploadSucceeded is published for every file the server accepted.
	UploadSucceeded
)

func (k Kind) String() string {
	switch k {
	case ConversationCreated:
		return "conversation_created"
	case BatchCompleted:
		return "batch_completed"
	case UploadSucceeded:
		return "upload_succeeded"
	}
	return "unknown"
}

type Event struct {
	Kind Kind
	// ID is the conversation id, batch id or task id depending on Kind.
	ID string
	// Name carries the filename for upload events.
	Name string
}

// Bus fans events out to subscribers. Publishing never blocks and never
// drops: every subscriber has its own unbounded queue drained in order by a
// pump goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

type subscriber struct {
	mu    sync.Mutex
	queue []Event
	wake  chan struct{}
	done  chan struct{}
	out   chan Event
}

func newSubscriber() *subscriber {
	s := &subscriber{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan Event),
	}
	go s.pump()
	return s
}

func (s *subscriber) push(e Event) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		e := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- e:
		case <-s.done:
			return
		}
	}
}

// Subscribe returns a channel of future events and a function that detaches
// it. The channel is closed on detach or when the bus closes; events still
// queued at that point are discarded.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	sub := newSubscriber()
	b.subs[id] = sub

	var once sync.Once
	return sub.out, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if s, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.done)
			}
		})
	}
}

// Publish queues e for every current subscriber.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.subs {
		s.push(e)
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		close(s.done)
	}
}
