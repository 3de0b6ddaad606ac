package paxos

import (
	"sort"

	"reach/core/explorer/fingerprint"
	"reach/core/explorer/netmsg"
	"reach/core/explorer/node"
)

// Proposer is a Paxos proposer: it drives one round of the prepare/accept
// protocol for a single proposal number against a fixed set of acceptors.
type Proposer struct {
	addr        netmsg.Address
	acceptors   []netmsg.Address // ascending
	proposalNum int

	value    string
	hasValue bool

	highestAcceptedSeen int // -1 until a prepare_ack reports an accepted value
	phase2              bool
	chosen              bool

	p1Acks map[netmsg.Address]struct{}
	p2Acks map[netmsg.Address]struct{}
}

var _ node.Handler = Proposer{}

// NewProposer returns the initial state for a proposer at addr driving
// proposal number proposalNum against acceptors.
func NewProposer(addr netmsg.Address, acceptors []netmsg.Address, proposalNum int) Proposer {
	sorted := make([]netmsg.Address, len(acceptors))
	copy(sorted, acceptors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return Proposer{
		addr:                addr,
		acceptors:           sorted,
		proposalNum:         proposalNum,
		highestAcceptedSeen: -1,
	}
}

func (p Proposer) Address() netmsg.Address { return p.addr }

func (p Proposer) Fingerprint() string {
	return fingerprint.Of(map[string]any{
		"value":    p.value,
		"hasValue": p.hasValue,
		"highest":  p.highestAcceptedSeen,
		"phase2":   p.phase2,
		"chosen":   p.chosen,
		"p1Acks":   addrSetSlice(p.p1Acks),
		"p2Acks":   addrSetSlice(p.p2Acks),
	})
}

func addrSetSlice(set map[netmsg.Address]struct{}) []string {
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, string(a))
	}
	sort.Strings(out)
	return out
}

// Chosen reports whether this proposer has observed a majority of
// accept_acks, and the value it believes was chosen.
func (p Proposer) Chosen() (string, bool) { return p.value, p.chosen }

func (p Proposer) majority(acks map[netmsg.Address]struct{}) bool {
	return len(acks) > len(p.acceptors)/2
}

func withAck(set map[netmsg.Address]struct{}, addr netmsg.Address) map[netmsg.Address]struct{} {
	next := make(map[netmsg.Address]struct{}, len(set)+1)
	for a := range set {
		next[a] = struct{}{}
	}
	next[addr] = struct{}{}
	return next
}

func (p Proposer) Receive(msg netmsg.Message, from netmsg.Address) (node.Handler, []netmsg.Envelope) {
	m, ok := msg.(Message)
	if !ok {
		return p, nil
	}

	next := p

	switch m.Kind {
	case KindClientValue:
		next.value = m.Value
		next.hasValue = true
		prepare := Message{Kind: KindPrepare, Value: next.value, ProposalNum: next.proposalNum}
		outgoing := make([]netmsg.Envelope, 0, len(p.acceptors))
		for _, acc := range p.acceptors {
			outgoing = append(outgoing, netmsg.Envelope{Message: prepare, From: p.addr, To: acc})
		}
		return next, outgoing

	case KindPrepareAck:
		if p.phase2 {
			return next, nil
		}
		next.p1Acks = withAck(p.p1Acks, from)
		if m.HasAccepted && m.AcceptedNum > p.highestAcceptedSeen {
			next.highestAcceptedSeen = m.AcceptedNum
			next.value = m.AcceptedValue
		}
		if next.majority(next.p1Acks) {
			next.phase2 = true
			accept := Message{Kind: KindAccept, Value: next.value, ProposalNum: next.proposalNum}
			outgoing := make([]netmsg.Envelope, 0, len(p.acceptors))
			for _, acc := range p.acceptors {
				outgoing = append(outgoing, netmsg.Envelope{Message: accept, From: p.addr, To: acc})
			}
			return next, outgoing
		}
		return next, nil

	case KindAcceptAck:
		next.p2Acks = withAck(p.p2Acks, from)
		next.chosen = next.majority(next.p2Acks)
		return next, nil
	}

	return next, nil
}
