// Package netmsg implements the message-transport layer of the explorer:
// opaque Addresses, the algorithm-defined Message contract, and the
// immutable MessageBag/MessageFunnel that hold in-flight messages between
// nodes.
//
// The defining modeling choice — a funnel holds at most one in-flight
// message per (destination, source) pair, and a second send from the same
// source overwrites the first — is what keeps the reachable state space
// finite for retry-heavy algorithms like Paxos. It is implemented in Funnel
// below; it is not a FIFO queue, and algorithms that need ordering must
// encode a sequence number inside the message body themselves.
package netmsg

import (
	"sort"

	"github.com/google/uuid"
	"reach/core/explorer/fingerprint"
)

// Address identifies a node (or an external client) uniquely within one run.
type Address string

func (a Address) Fingerprint() string {
	return fingerprint.Of(string(a))
}

// NewClientAddress returns a fresh opaque address suitable for an exogenous
// message source (a simulated client injecting a starting message), backed
// by a random UUID so repeated demo runs never collide on address space.
func NewClientAddress() Address {
	return Address("client-" + uuid.New().String())
}

// Message is the contract every algorithm-defined message type must
// satisfy. The core treats messages as opaque beyond this: it fingerprints
// them for canonical configuration hashing, and it clones them on handoff
// to a NodeHandler so that a handler retaining a reference into its input
// can never observe mutation from a sibling search branch.
type Message interface {
	fingerprint.Fingerprinter
	Clone() Message
}

// Envelope is a message in transit: what, from whom, to whom. NodeHandlers
// produce envelopes as their "outgoing" return value; the core folds them
// into a Bag.
type Envelope struct {
	Message Message
	From    Address
	To      Address
}

// Funnel holds, for a single destination, at most one pending message per
// source address.
type Funnel struct {
	destination Address
	bySource    map[Address]Message
}

// NewFunnel returns an empty funnel for the given destination.
func NewFunnel(destination Address) Funnel {
	return Funnel{destination: destination}
}

// IsEmpty reports whether the funnel holds no pending messages. Empty
// funnels are never represented inside a Bag (they compare equal to
// absence, per the MessageBag invariant).
func (f Funnel) IsEmpty() bool {
	return len(f.bySource) == 0
}

// Sources returns the addresses with a message currently pending for this
// funnel's destination, in ascending order.
func (f Funnel) Sources() []Address {
	out := make([]Address, 0, len(f.bySource))
	for src := range f.bySource {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Take returns the message pending from the given source, and a copy of the
// funnel with that message removed. If no message is pending, it returns
// (nil, f) unchanged.
func (f Funnel) Take(from Address) (Message, Funnel) {
	m, ok := f.bySource[from]
	if !ok {
		return nil, f
	}
	next := f.copyMap()
	delete(next, from)
	return m, Funnel{destination: f.destination, bySource: next}
}

// Put returns a copy of the funnel with m pending from the given source,
// overwriting any message already pending from that source (the funnel
// overwrite rule).
func (f Funnel) Put(from Address, m Message) Funnel {
	next := f.copyMap()
	next[from] = m
	return Funnel{destination: f.destination, bySource: next}
}

func (f Funnel) copyMap() map[Address]Message {
	next := make(map[Address]Message, len(f.bySource)+1)
	for k, v := range f.bySource {
		next[k] = v
	}
	return next
}

// Fingerprint encodes the funnel as its sorted source-to-message walk.
func (f Funnel) Fingerprint() string {
	sources := f.Sources()
	enc := make(map[string]any, len(sources))
	for _, src := range sources {
		enc[string(src)] = f.bySource[src].Fingerprint()
	}
	return fingerprint.Of(enc)
}

// Bag is the whole network's message store: a map from destination address
// to that destination's Funnel. Every mutator returns a new Bag; the
// receiver is never modified.
type Bag struct {
	byDest map[Address]Funnel
}

// NewBag returns an empty bag.
func NewBag() Bag {
	return Bag{}
}

// Destinations returns the addresses with at least one pending message, in
// ascending order.
func (b Bag) Destinations() []Address {
	out := make([]Address, 0, len(b.byDest))
	for dest, funnel := range b.byDest {
		if funnel.IsEmpty() {
			continue
		}
		out = append(out, dest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Pending enumerates, in ascending order, the sources that currently have a
// message waiting for the given destination.
func (b Bag) Pending(to Address) []Address {
	funnel, ok := b.byDest[to]
	if !ok {
		return nil
	}
	return funnel.Sources()
}

// Take returns the message pending from `from` to `to`, and a bag with it
// removed. It returns (nil, b) unchanged when no such message exists.
func (b Bag) Take(from, to Address) (Message, Bag) {
	funnel, ok := b.byDest[to]
	if !ok {
		return nil, b
	}
	m, nextFunnel := funnel.Take(from)
	if m == nil {
		return nil, b
	}
	next := b.copyMap()
	if nextFunnel.IsEmpty() {
		delete(next, to)
	} else {
		next[to] = nextFunnel
	}
	return m, Bag{byDest: next}
}

// Send returns a new bag with the given envelopes added, applying the
// funnel overwrite rule per (destination, source) pair.
func (b Bag) Send(envelopes []Envelope) Bag {
	if len(envelopes) == 0 {
		return b
	}
	next := b.copyMap()
	for _, e := range envelopes {
		funnel, ok := next[e.To]
		if !ok {
			funnel = NewFunnel(e.To)
		}
		next[e.To] = funnel.Put(e.From, e.Message)
	}
	return Bag{byDest: next}
}

func (b Bag) copyMap() map[Address]Funnel {
	next := make(map[Address]Funnel, len(b.byDest)+1)
	for k, v := range b.byDest {
		next[k] = v
	}
	return next
}

// Fingerprint encodes the bag as its sorted destination walk, each entry
// containing its funnel's sorted walk. Empty funnels never appear.
func (b Bag) Fingerprint() string {
	dests := b.Destinations()
	enc := make(map[string]any, len(dests))
	for _, dest := range dests {
		enc[string(dest)] = b.byDest[dest].Fingerprint()
	}
	return fingerprint.Of(enc)
}
