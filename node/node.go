// Package node defines the NodeHandler contract: the interface an algorithm
// author implements to plug deterministic message-handling logic into the
// explorer. The core never imports a concrete algorithm package — only this
// interface.
package node

import "reach/core/explorer/netmsg"

// Handler is a single node's transition function plus identity. Receive
// must be pure: given the same (Handler, msg, from) it must always return
// an equal successor Handler and an equal outgoing list, it must perform no
// I/O, read no clock, and use no randomness. The returned Handler must not
// share mutable state with the receiver, and the returned outgoing slice
// must be freshly allocated — the explorer never reuses slices or structs
// returned from a prior call.
type Handler interface {
	// Address returns this node's address. It must be constant for the
	// lifetime of the handler; a Receive implementation must never change
	// the address it returns.
	Address() netmsg.Address

	// Fingerprint returns a canonical encoding capturing exactly the fields
	// that affect this node's future behavior. Fields kept only for
	// bookkeeping (counters used purely for logging, etc.) must be
	// excluded — this is the algorithm author's responsibility, per the
	// NodeState contract.
	Fingerprint() string

	// Receive computes this node's reaction to msg arriving from `from`: a
	// successor Handler (replacing this one in the configuration) plus a
	// list of outgoing envelopes to fold into the network.
	Receive(msg netmsg.Message, from netmsg.Address) (next Handler, outgoing []netmsg.Envelope)
}
