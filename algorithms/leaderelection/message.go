// Package leaderelection implements a small unanimous-vote leader election
// algorithm as a concrete node.Handler, translated from the distillation's
// original_source/dummy_impl/dummy_system.py. It is an example algorithm: an
// external collaborator per the core's scope, never imported by
// configuration/explorer/trace.
package leaderelection

import "reach/core/explorer/netmsg"

// Kind tags which variant a Message carries — the tagged-variant
// re-architecture of the distillation's untyped dict body.
type Kind int

const (
	// KindStartElection kicks off a node's candidacy.
	KindStartElection Kind = iota
	// KindRequestVote asks a peer to vote for the sending candidate.
	KindRequestVote
	// KindAck is a favorable vote response.
	KindAck
	// KindReject is an unfavorable vote response.
	KindReject
)

func (k Kind) String() string {
	switch k {
	case KindStartElection:
		return "start_election"
	case KindRequestVote:
		return "request_vote"
	case KindAck:
		return "ack"
	case KindReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Message is the single message type for this algorithm; which fields are
// meaningful depends on Kind.
type Message struct {
	Kind      Kind
	Candidate netmsg.Address // set for KindRequestVote
}

func (m Message) Fingerprint() string {
	return m.Kind.String() + ":" + string(m.Candidate)
}

func (m Message) Clone() netmsg.Message {
	return Message{Kind: m.Kind, Candidate: m.Candidate}
}
