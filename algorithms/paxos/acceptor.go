package paxos

import (
	"reach/core/explorer/fingerprint"
	"reach/core/explorer/netmsg"
	"reach/core/explorer/node"
)

// Acceptor is a Paxos acceptor: it promises not to accept proposals below a
// number it has already prepared for, and tracks the highest-numbered
// proposal it has in fact accepted.
type Acceptor struct {
	addr netmsg.Address

	promised      int
	hasAccepted   bool
	acceptedNum   int
	acceptedValue string
}

var _ node.Handler = Acceptor{}

// NewAcceptor returns the initial state for an acceptor at addr.
func NewAcceptor(addr netmsg.Address) Acceptor {
	return Acceptor{addr: addr}
}

func (a Acceptor) Address() netmsg.Address { return a.addr }

func (a Acceptor) Fingerprint() string {
	return fingerprint.Of(map[string]any{
		"promised":    a.promised,
		"hasAccepted": a.hasAccepted,
		"acceptedNum": a.acceptedNum,
		"acceptedVal": a.acceptedValue,
	})
}

// HasAcceptedValue reports the acceptor's currently accepted value and
// whether it has accepted any proposal, for tests and safety predicates.
func (a Acceptor) HasAcceptedValue() (string, bool) { return a.acceptedValue, a.hasAccepted }

func (a Acceptor) Receive(msg netmsg.Message, from netmsg.Address) (node.Handler, []netmsg.Envelope) {
	m, ok := msg.(Message)
	if !ok {
		return a, nil
	}

	next := a

	switch m.Kind {
	case KindPrepare:
		if m.ProposalNum < a.promised {
			return next, nil
		}
		next.promised = m.ProposalNum
		ack := Message{Kind: KindPrepareAck}
		if a.hasAccepted {
			ack.HasAccepted = true
			ack.AcceptedNum = a.acceptedNum
			ack.AcceptedValue = a.acceptedValue
		}
		return next, []netmsg.Envelope{{Message: ack, From: a.addr, To: from}}

	case KindAccept:
		if m.ProposalNum < a.promised {
			return next, nil
		}
		if !a.hasAccepted || m.ProposalNum > a.acceptedNum {
			next.promised = m.ProposalNum
			next.hasAccepted = true
			next.acceptedNum = m.ProposalNum
			next.acceptedValue = m.Value
			return next, []netmsg.Envelope{{Message: Message{Kind: KindAcceptAck}, From: a.addr, To: from}}
		}
		return next, nil
	}

	return next, nil
}
