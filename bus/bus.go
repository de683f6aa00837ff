// Package bus is a small in-process message bus with retained messages,
// MQTT-style "+"/"#" wildcards and request/reply, sized for MCU use.
package bus

import (
	"context"
	"sync"

	"soundsteer-go/errcode"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a sequence of comparable tokens (strings and integers in practice).
// "+" matches exactly one token; "#" matches any remaining tokens.
// Wildcards are only meaningful in subscriptions, never in published topics.
type Topic []any

func (t Topic) Len() int     { return len(t) }
func (t Topic) At(i int) any { return t[i] }

// T builds a Topic and validates that every token is comparable, so it can be
// used as a trie key. It panics on non-comparable tokens to catch mistakes at
// start-up.
func T(toks ...any) Topic {
	for _, tok := range toks {
		switch tok.(type) {
		case string, int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64, bool:
		default:
			panic("bus: topic token must be a comparable scalar")
		}
	}
	return Topic(toks)
}

const (
	wildOne = "+"
	wildAny = "#"
)

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
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

// -----------------------------------------------------------------------------
// Trie
// -----------------------------------------------------------------------------

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any, create bool) *node {
	if n.children == nil {
		if !create {
			return nil
		}
		n.children = make(map[any]*node)
	}
	c, ok := n.children[tok]
	if !ok {
		if !create {
			return nil
		}
		c = &node{}
		n.children[tok] = c
	}
	return c
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
	seq  uint32
}

// NewBus creates a bus with the given per-subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

// NewMessage builds a message; tokens are validated as with T.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: T(topic...), Payload: payload, Retained: retained}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	// Deliver retained messages matching the (possibly wildcarded) pattern.
	var retained []*Message
	collectRetained(b.root, sub.topic, &retained)
	for _, m := range retained {
		deliver(sub, m)
	}
}

// Publish delivers a message to every subscription whose pattern matches the
// topic, and stores (or clears, on nil payload) retained messages.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var targets []*Subscription
	match(b.root, msg.Topic, &targets)
	for _, sub := range targets {
		deliver(sub, msg)
	}

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
}

// deliver pushes a message, dropping the oldest queued one when full so the
// publisher never blocks.
func deliver(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// match appends every subscription under n whose remaining pattern matches
// toks. Wildcards live in the trie (subscriber side), toks are concrete.
func match(n *node, toks []any, out *[]*Subscription) {
	if n == nil {
		return
	}
	if len(toks) == 0 {
		*out = append(*out, n.subs...)
		if c := n.child(wildAny, false); c != nil {
			*out = append(*out, c.subs...) // "#" also matches zero tokens
		}
		return
	}
	match(n.child(toks[0], false), toks[1:], out)
	match(n.child(wildOne, false), toks[1:], out)
	if c := n.child(wildAny, false); c != nil {
		*out = append(*out, c.subs...)
	}
}

// collectRetained walks the trie gathering retained messages matching pat.
func collectRetained(n *node, pat []any, out *[]*Message) {
	if n == nil {
		return
	}
	if len(pat) == 0 {
		if n.retained != nil {
			*out = append(*out, n.retained)
		}
		return
	}
	switch pat[0] {
	case wildAny:
		collectSubtree(n, out)
	case wildOne:
		for _, c := range n.children {
			collectRetained(c, pat[1:], out)
		}
	default:
		collectRetained(n.child(pat[0], false), pat[1:], out)
	}
}

func collectSubtree(n *node, out *[]*Message) {
	if n.retained != nil {
		*out = append(*out, n.retained)
	}
	for _, c := range n.children {
		collectSubtree(c, out)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, tok := range sub.topic {
		c := n.child(tok, false)
		if c == nil {
			return
		}
		stack = append(stack, n)
		n = c
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	// Prune empty nodes.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent := stack[i]
		child := parent.children[sub.topic[i]]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, sub.topic[i])
		} else {
			break
		}
	}
}

func (b *Bus) nextSeq() uint32 {
	b.mu.Lock()
	b.seq++
	s := b.seq
	b.mu.Unlock()
	return s
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	mu   sync.Mutex
	subs []*Subscription
	id   string
}

// NewConnection creates a connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

// NewMessage builds a message; tokens are validated as with T.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: T(topic...),
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}

// -----------------------------------------------------------------------------
// Request / Reply
// -----------------------------------------------------------------------------

// Request stamps msg with a unique ReplyTo topic, subscribes to it, and
// publishes the request. The caller owns the returned subscription.
func (c *Connection) Request(msg *Message) *Subscription {
	msg.ReplyTo = Topic{"_reply", c.id, int(c.bus.nextSeq())}
	sub := c.Subscribe(msg.ReplyTo)
	c.Publish(msg)
	return sub
}

// RequestWait performs Request and blocks for a single reply or ctx expiry.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)
	select {
	case reply, ok := <-sub.ch:
		if !ok {
			return nil, errcode.Error
		}
		return reply, nil
	case <-ctx.Done():
		return nil, errcode.Timeout
	}
}

// Reply publishes a response to the request's ReplyTo topic.
// Requests without a ReplyTo are silently ignored.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if len(req.ReplyTo) == 0 {
		return
	}
	c.Publish(c.NewMessage(req.ReplyTo, payload, retained))
}
