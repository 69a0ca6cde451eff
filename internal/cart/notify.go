package cart

import (
	"context"
	"errors"
	"sync"
)

// Publisher forwards applied changes to something outside the process.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

type multiPublisher []Publisher

// Publishers fans a change out to every non-nil publisher.
func Publishers(pubs ...Publisher) Publisher {
	var out multiPublisher
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m multiPublisher) Publish(ctx context.Context, change Change) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// hub delivers changes to in-process subscribers. A subscriber that is behind
// misses intermediate changes; since every change means "re-read the cart",
// the next one it receives brings it up to date.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Change
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan Change)}
}

func (h *hub) subscribe(buffer int) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Change, buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

func (h *hub) broadcast(change Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
