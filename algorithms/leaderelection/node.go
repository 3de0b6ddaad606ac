package leaderelection

import (
	"fmt"
	"sort"

	"reach/core/explorer/fingerprint"
	"reach/core/explorer/netmsg"
	"reach/core/explorer/node"
)

// Node is a single participant in the unanimous-vote election. A candidate
// that starts an election asks every peer to vote; a peer votes for a
// candidate whenever the candidate's address sorts after its own, and
// sends nothing otherwise (no reject is ever emitted). A candidate that collects a vote from every other
// node — including its own implicit self-vote — declares itself leader.
type Node struct {
	addr     netmsg.Address
	peers    []netmsg.Address // all other addresses, ascending
	value    string
	amLeader bool
	votes    int
	required int
}

var _ node.Handler = Node{}

// New returns the initial state for the node at addr within a cluster
// containing all of allAddresses (addr must be present in it).
func New(addr netmsg.Address, allAddresses []netmsg.Address) Node {
	peers := make([]netmsg.Address, 0, len(allAddresses))
	for _, a := range allAddresses {
		if a != addr {
			peers = append(peers, a)
		}
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })
	return Node{
		addr:     addr,
		peers:    peers,
		value:    string(addr),
		required: len(allAddresses),
	}
}

func (n Node) Address() netmsg.Address { return n.addr }

func (n Node) Fingerprint() string {
	return fingerprint.Of(map[string]any{
		"addr":     string(n.addr),
		"value":    n.value,
		"amLeader": n.amLeader,
		"votes":    n.votes,
	})
}

func (n Node) String() string {
	return fmt.Sprintf("{addr: %q, value: %q, leader: %t, votes: %d}", n.addr, n.value, n.amLeader, n.votes)
}

// Receive implements node.Handler.
func (n Node) Receive(msg netmsg.Message, from netmsg.Address) (node.Handler, []netmsg.Envelope) {
	m, ok := msg.(Message)
	if !ok {
		return n, nil
	}

	next := n
	var outgoing []netmsg.Envelope

	switch m.Kind {
	case KindStartElection:
		if !n.amLeader {
			next.votes = 1
			for _, to := range n.peers {
				outgoing = append(outgoing, netmsg.Envelope{
					Message: Message{Kind: KindRequestVote, Candidate: n.addr},
					From:    n.addr,
					To:      to,
				})
			}
		}
	case KindAck:
		next.votes = n.votes + 1
		if next.votes == n.required {
			next.amLeader = true
		}
	case KindReject:
		next.votes = -1
		next.amLeader = false
	}

	if m.Kind == KindRequestVote && string(m.Candidate) > n.value {
		outgoing = append(outgoing, netmsg.Envelope{
			Message: Message{Kind: KindAck},
			From:    n.addr,
			To:      from,
		})
	}

	return next, outgoing
}

// IsLeader reports whether this node currently believes itself the leader.
// It exists so tests and predicates can inspect handler state without
// reaching into unexported fields; algorithm packages are free to expose
// whatever accessors their invariants need.
func (n Node) IsLeader() bool { return n.amLeader }
