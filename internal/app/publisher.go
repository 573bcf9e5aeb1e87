package app

import (
	"sync"

	"github.com/ayusman/mudra/internal/control"
)

// subscriberBuffer is how many results a subscriber may fall behind before
// frames are dropped for it.
const subscriberBuffer = 16

// Publisher fans per-frame results out to subscribers without ever
// blocking the frame loop.
type Publisher struct {
	mu     sync.Mutex
	subs   map[chan control.Result]struct{}
	closed bool
}

// NewPublisher creates an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{subs: make(map[chan control.Result]struct{})}
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel; it is safe to call more than once. Subscribing to a
// closed publisher yields an already closed channel.
func (p *Publisher) Subscribe() (<-chan control.Result, func()) {
	ch := make(chan control.Result, subscriberBuffer)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	p.subs[ch] = struct{}{}

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.subs[ch]; ok {
			delete(p.subs, ch)
			close(ch)
		}
	}
}

// Publish delivers res to every subscriber with room for it.
func (p *Publisher) Publish(res control.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		select {
		case ch <- res:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (p *Publisher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Close closes every subscriber channel.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for ch := range p.subs {
		delete(p.subs, ch)
		close(ch)
	}
}
