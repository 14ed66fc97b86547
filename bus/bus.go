// Package bus is a small in-process topic trie used to publish light state
// to whoever is listening (the host simulator, the UART monitor).
//
// Topics are token slices. A "+" token matches exactly one level and a
// trailing "#" matches zero or more levels. Retained messages are stored
// per exact topic and replayed to matching subscribers when they subscribe.
// A full subscriber queue drops its oldest message.
package bus

import (
	"sync"

	"torchcode-go/x/conv"
)

const (
	wildOne  = "+"
	wildMany = "#"
)

// Topic is a sequence of comparable tokens, usually strings or ints.
type Topic []any

// T builds a topic, panicking on non-comparable tokens.
func T(tokens ...any) Topic {
	for _, tok := range tokens {
		switch tok.(type) {
		case string, int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64, bool:
		default:
			panic("bus: topic token must be a comparable scalar")
		}
	}
	return Topic(tokens)
}

// Join appends tokens to a copy of t.
func (t Topic) Join(tokens ...any) Topic {
	out := make(Topic, 0, len(t)+len(tokens))
	out = append(out, t...)
	return append(out, T(tokens...)...)
}

// String renders t as slash-separated tokens, e.g. "light/state".
func (t Topic) String() string {
	var b []byte
	for i, tok := range t {
		if i > 0 {
			b = append(b, '/')
		}
		switch v := tok.(type) {
		case string:
			b = append(b, v...)
		case bool:
			if v {
				b = append(b, "true"...)
			} else {
				b = append(b, "false"...)
			}
		case int:
			b = conv.AppendInt(b, int64(v))
		case int8:
			b = conv.AppendInt(b, int64(v))
		case int16:
			b = conv.AppendInt(b, int64(v))
		case int32:
			b = conv.AppendInt(b, int64(v))
		case int64:
			b = conv.AppendInt(b, v)
		case uint:
			b = conv.AppendUint(b, uint64(v))
		case uint8:
			b = conv.AppendUint(b, uint64(v))
		case uint16:
			b = conv.AppendUint(b, uint64(v))
		case uint32:
			b = conv.AppendUint(b, uint64(v))
		case uint64:
			b = conv.AppendUint(b, v)
		default:
			b = append(b, '?')
		}
	}
	return string(b)
}

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// deliver never blocks: if the queue is full the oldest message goes.
func (s *Subscription) deliver(m *Message) {
	for {
		select {
		case s.ch <- m:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// -----------------------------------------------------------------------------
// Trie
// -----------------------------------------------------------------------------

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any, create bool) *node {
	if c, ok := n.children[tok]; ok || !create {
		return c
	}
	if n.children == nil {
		n.children = make(map[any]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

func (n *node) empty() bool {
	return len(n.subs) == 0 && len(n.children) == 0 && n.retained == nil
}

// match collects subscriptions whose filter matches topic[i:].
func (n *node) match(topic Topic, i int, out []*Subscription) []*Subscription {
	if c := n.children[wildMany]; c != nil {
		out = append(out, c.subs...)
	}
	if i == len(topic) {
		return append(out, n.subs...)
	}
	if c := n.children[topic[i]]; c != nil {
		out = c.match(topic, i+1, out)
	}
	if c := n.children[wildOne]; c != nil {
		out = c.match(topic, i+1, out)
	}
	return out
}

// retainedFor collects retained messages matching filter[i:].
func (n *node) retainedFor(filter Topic, i int, out []*Message) []*Message {
	if i == len(filter) {
		if n.retained != nil {
			out = append(out, n.retained)
		}
		return out
	}
	switch filter[i] {
	case wildMany:
		return n.collectAll(out)
	case wildOne:
		for _, c := range n.children {
			out = c.retainedFor(filter, i+1, out)
		}
		return out
	}
	if c := n.children[filter[i]]; c != nil {
		out = c.retainedFor(filter, i+1, out)
	}
	return out
}

func (n *node) collectAll(out []*Message) []*Message {
	if n.retained != nil {
		out = append(out, n.retained)
	}
	for _, c := range n.children {
		out = c.collectAll(out)
	}
	return out
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu       sync.Mutex
	subs     *node // subscription filters
	retained *node // retained messages by exact topic
	qLen     int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{subs: &node{}, retained: &node{}, qLen: queueLen}
}

func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish delivers msg to every matching subscriber. A retained message with
// a nil payload clears the retained slot for its topic.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		b.storeRetained(msg)
	}
	if msg.Retained && msg.Payload == nil {
		return
	}
	for _, s := range b.subs.match(msg.Topic, 0, nil) {
		s.deliver(msg)
	}
}

func (b *Bus) storeRetained(msg *Message) {
	if msg.Payload != nil {
		n := b.retained
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		n.retained = msg
		return
	}
	n := b.retained
	path := make([]*node, 0, len(msg.Topic))
	for _, tok := range msg.Topic {
		path = append(path, n)
		if n = n.child(tok, false); n == nil {
			return
		}
	}
	n.retained = nil
	prune(path, msg.Topic)
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.subs
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	for _, m := range b.retained.retainedFor(sub.topic, 0, nil) {
		sub.deliver(m)
	}
}

func (b *Bus) removeSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.subs
	path := make([]*node, 0, len(sub.topic))
	for _, tok := range sub.topic {
		path = append(path, n)
		if n = n.child(tok, false); n == nil {
			return
		}
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	prune(path, sub.topic)
}

// prune removes empty nodes bottom-up along path.
func prune(path []*node, topic Topic) {
	for i := len(topic) - 1; i >= 0; i-- {
		parent := path[i]
		if c := parent.children[topic[i]]; c != nil && c.empty() {
			delete(parent.children, topic[i])
			continue
		}
		break
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection groups subscriptions so a client can drop them all at once.
type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a filter owned by this connection. Retained messages
// matching the filter are queued before Subscribe returns.
func (c *Connection) Subscribe(filter Topic) *Subscription {
	sub := &Subscription{
		topic: filter,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.addSubscription(sub)
	return sub
}

func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.removeSubscription(sub)
	close(sub.ch)
}

// Disconnect closes all subscriptions owned by the connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.removeSubscription(sub)
		close(sub.ch)
	}
}
