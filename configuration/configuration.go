// Package configuration implements the immutable global-state value of the
// explorer: a snapshot of every node's state plus the in-flight message
// bag, together with successor generation via one-step message delivery.
package configuration

import (
	"sort"

	"reach/core/explorer/errs"
	"reach/core/explorer/fingerprint"
	"reach/core/explorer/netmsg"
	"reach/core/explorer/node"
)

// Configuration is an immutable tuple of (nodes, bag, parent). It is never
// mutated after construction; every operation that would change it returns
// a new Configuration. Parent links form a forest rooted at whichever
// configuration(s) were built with BuildInitial, since dedup in the
// explorer discards duplicates rather than merging them.
type Configuration struct {
	nodes  map[netmsg.Address]node.Handler
	bag    netmsg.Bag
	parent *Configuration
}

// Nodes returns the node map. Callers must treat it as read-only; the
// explorer and trace packages never mutate it.
func (c *Configuration) Nodes() map[netmsg.Address]node.Handler {
	return c.nodes
}

// Bag returns the configuration's message bag.
func (c *Configuration) Bag() netmsg.Bag {
	return c.bag
}

// Parent returns the configuration this one was reached from, or nil if it
// is a root (built by BuildInitial).
func (c *Configuration) Parent() *Configuration {
	return c.parent
}

// Fingerprint returns the canonical fingerprint of this configuration. It
// depends only on nodes and bag, never on parent, so that two
// configurations reached by different paths but with identical nodes and
// bag fingerprint identically.
func (c *Configuration) Fingerprint() string {
	nodeAddrs := make([]netmsg.Address, 0, len(c.nodes))
	for addr := range c.nodes {
		nodeAddrs = append(nodeAddrs, addr)
	}
	sort.Slice(nodeAddrs, func(i, j int) bool { return nodeAddrs[i] < nodeAddrs[j] })

	nodesEnc := make(map[string]any, len(nodeAddrs))
	for _, addr := range nodeAddrs {
		nodesEnc[string(addr)] = c.nodes[addr].Fingerprint()
	}

	return fingerprint.Of(map[string]any{
		"nodes": nodesEnc,
		"bag":   c.bag.Fingerprint(),
	})
}

// BuildInitial constructs the root configuration from a node list and a set
// of starting envelopes. It fails with errs.CodeIllFormedInitial if any
// starting envelope targets an address absent from nodeList, or if two
// nodes in nodeList share an address.
func BuildInitial(nodeList []node.Handler, startingEnvelopes []netmsg.Envelope) (*Configuration, error) {
	nodes := make(map[netmsg.Address]node.Handler, len(nodeList))
	for _, n := range nodeList {
		addr := n.Address()
		if _, dup := nodes[addr]; dup {
			return nil, errs.New(errs.CodeIllFormedInitial, "duplicate node address: "+string(addr))
		}
		nodes[addr] = n
	}

	for _, e := range startingEnvelopes {
		if _, ok := nodes[e.To]; !ok {
			return nil, errs.New(errs.CodeIllFormedInitial, "starting envelope targets unknown address: "+string(e.To))
		}
	}

	bag := netmsg.NewBag().Send(startingEnvelopes)
	return &Configuration{nodes: nodes, bag: bag}, nil
}

// SendSuccessor injects an exogenous message into an existing
// configuration, producing a child without invoking any handler. It models
// a client injecting a message mid-run (spec §6 operation 4). It fails with
// errs.CodeUnknownDestination if `to` is not a node in this configuration.
func SendSuccessor(c *Configuration, msg netmsg.Message, from, to netmsg.Address) (*Configuration, error) {
	if _, ok := c.nodes[to]; !ok {
		return nil, errs.New(errs.CodeUnknownDestination, "send_successor targets unknown address: "+string(to))
	}
	nextBag := c.bag.Send([]netmsg.Envelope{{Message: msg, From: from, To: to}})
	return &Configuration{nodes: c.nodes, bag: nextBag, parent: c}, nil
}

// Successor takes the one message pending from `from` to `to`, invokes
// Receive on the node at `to`, and returns the resulting child
// configuration. It returns (nil, nil) if no such message is pending. It
// fails with errs.CodeHandlerViolation if the handler returns a next node
// whose Address() differs from `to`.
func (c *Configuration) Successor(from, to netmsg.Address) (*Configuration, error) {
	target, ok := c.nodes[to]
	if !ok {
		return nil, nil
	}

	msg, bagAfterTake := c.bag.Take(from, to)
	if msg == nil {
		return nil, nil
	}

	// Deep-copy-on-transmit: the handler must never be able to observe
	// mutation of a message value shared structurally with another
	// in-flight copy in a sibling branch.
	nextHandler, outgoing := target.Receive(msg.Clone(), from)

	if nextHandler.Address() != to {
		return nil, errs.Wrap(errs.CodeHandlerViolation, "handler changed its own address", addressMismatchError{expected: to, got: nextHandler.Address()})
	}

	// The outgoing envelopes are consumed here; copy the slice so a handler
	// that returned a reference into its own internal buffer cannot have
	// it mutated out from under the configuration it was folded into.
	freshOutgoing := make([]netmsg.Envelope, len(outgoing))
	copy(freshOutgoing, outgoing)

	nextBag := bagAfterTake.Send(freshOutgoing)

	nextNodes := make(map[netmsg.Address]node.Handler, len(c.nodes))
	for addr, n := range c.nodes {
		nextNodes[addr] = n
	}
	nextNodes[to] = nextHandler

	return &Configuration{nodes: nextNodes, bag: nextBag, parent: c}, nil
}

// Successors enumerates every successor reachable by delivering exactly one
// pending message, in deterministic order: destinations ascending, and
// within each destination, sources ascending.
func (c *Configuration) Successors() ([]*Configuration, error) {
	var out []*Configuration
	for _, to := range c.bag.Destinations() {
		for _, from := range c.bag.Pending(to) {
			succ, err := c.Successor(from, to)
			if err != nil {
				return nil, err
			}
			if succ == nil {
				continue
			}
			out = append(out, succ)
		}
	}
	return out, nil
}

type addressMismatchError struct {
	expected netmsg.Address
	got      netmsg.Address
}

func (e addressMismatchError) Error() string {
	return "expected address " + string(e.expected) + ", got " + string(e.got)
}
