package paxos

import (
	"context"
	"testing"

	"reach/core/explorer/configuration"
	"reach/core/explorer/explorer"
	"reach/core/explorer/netmsg"
	"reach/core/explorer/node"
)

func threeAcceptorCluster(t *testing.T) (proposerAddr netmsg.Address, acceptorAddrs []netmsg.Address, nodes []node.Handler) {
	t.Helper()
	proposerAddr = "proposer"
	acceptorAddrs = []netmsg.Address{"acc1", "acc2", "acc3"}

	nodes = append(nodes, NewProposer(proposerAddr, acceptorAddrs, 1))
	for _, a := range acceptorAddrs {
		nodes = append(nodes, NewAcceptor(a))
	}
	return
}

func buildClientValueInitial(t *testing.T, value string) *configuration.Configuration {
	t.Helper()
	proposerAddr, _, nodes := threeAcceptorCluster(t)

	start := []netmsg.Envelope{{
		Message: Message{Kind: KindClientValue, Value: value},
		From:    netmsg.NewClientAddress(),
		To:      proposerAddr,
	}}
	cfg, err := configuration.BuildInitial(nodes, start)
	if err != nil {
		t.Fatalf("BuildInitial failed: %v", err)
	}
	return cfg
}

func chosenValues(c *configuration.Configuration) map[string]struct{} {
	out := make(map[string]struct{})
	for _, n := range c.Nodes() {
		if p, ok := n.(Proposer); ok {
			if value, chosen := p.Chosen(); chosen {
				out[value] = struct{}{}
			}
		}
	}
	return out
}

func hasAnyChosenValue(c *configuration.Configuration) bool {
	return len(chosenValues(c)) > 0
}

// TestSafetyAtMostOneValueChosen realizes the Paxos safety property: across
// every reachable configuration, the set of distinct values any proposer
// believes chosen never exceeds one — with a single proposer and a single
// client value injected, nothing else could be chosen anyway, so the
// meaningful assertion is that whenever something is chosen, it is exactly
// the proposed value.
func TestSafetyAtMostOneValueChosen(t *testing.T) {
	cfg := buildClientValueInitial(t, "v1")

	res, err := explorer.Explore(context.Background(), cfg, explorer.NoLimit, hasAnyChosenValue, nil)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if len(res.Matches) == 0 {
		t.Fatal("expected at least one reachable configuration with a chosen value")
	}

	allChosen := make(map[string]struct{})
	for _, m := range res.Matches {
		for v := range chosenValues(m) {
			allChosen[v] = struct{}{}
		}
	}
	if len(allChosen) > 1 {
		t.Errorf("expected at most one distinct chosen value across all reachable configurations, got %v", allChosen)
	}
	if _, ok := allChosen["v1"]; !ok {
		t.Errorf("expected the chosen value to be the proposed value, got %v", allChosen)
	}
}

func twoProposerThreeAcceptorCluster(t *testing.T) (proposerAddrs []netmsg.Address, acceptorAddrs []netmsg.Address, nodes []node.Handler) {
	t.Helper()
	proposerAddrs = []netmsg.Address{"proposer-1", "proposer-2"}
	acceptorAddrs = []netmsg.Address{"acc1", "acc2", "acc3"}

	nodes = append(nodes, NewProposer(proposerAddrs[0], acceptorAddrs, 1))
	nodes = append(nodes, NewProposer(proposerAddrs[1], acceptorAddrs, 2))
	for _, a := range acceptorAddrs {
		nodes = append(nodes, NewAcceptor(a))
	}
	return
}

// TestSafetyUnderTwoCompetingProposers realizes spec scenario 5: two
// proposers with distinct proposal numbers race distinct client values
// against the same three acceptors. Paxos safety requires that the set of
// distinct values any proposer believes chosen never exceeds one, even
// though two different values were proposed concurrently.
func TestSafetyUnderTwoCompetingProposers(t *testing.T) {
	proposerAddrs, _, nodes := twoProposerThreeAcceptorCluster(t)

	start := []netmsg.Envelope{
		{Message: Message{Kind: KindClientValue, Value: "v1"}, From: netmsg.NewClientAddress(), To: proposerAddrs[0]},
		{Message: Message{Kind: KindClientValue, Value: "v2"}, From: netmsg.NewClientAddress(), To: proposerAddrs[1]},
	}
	cfg, err := configuration.BuildInitial(nodes, start)
	if err != nil {
		t.Fatalf("BuildInitial failed: %v", err)
	}

	res, err := explorer.Explore(context.Background(), cfg, explorer.NoLimit, hasAnyChosenValue, nil)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if len(res.Matches) == 0 {
		t.Fatal("expected at least one reachable configuration with a chosen value")
	}

	allChosen := make(map[string]struct{})
	for _, m := range res.Matches {
		for v := range chosenValues(m) {
			allChosen[v] = struct{}{}
		}
	}
	if len(allChosen) > 1 {
		t.Errorf("expected at most one distinct chosen value across all reachable configurations under contention, got %v", allChosen)
	}
}

func TestAcceptorIgnoresLowerNumberedAccept(t *testing.T) {
	a := NewAcceptor("acc1")
	afterHigh, outgoing := a.Receive(Message{Kind: KindAccept, ProposalNum: 5, Value: "high"}, "proposer")
	if len(outgoing) != 1 || outgoing[0].Message.(Message).Kind != KindAcceptAck {
		t.Fatalf("expected an accept_ack after first accept, got %v", outgoing)
	}

	afterLow, outgoing := afterHigh.(Acceptor).Receive(Message{Kind: KindAccept, ProposalNum: 3, Value: "low"}, "proposer")
	if outgoing != nil {
		t.Errorf("expected no ack for a lower-numbered accept, got %v", outgoing)
	}
	value, has := afterLow.(Acceptor).HasAcceptedValue()
	if !has || value != "high" {
		t.Errorf("expected accepted value to remain %q, got %q", "high", value)
	}
}

func TestProposerIgnoresPrepareAckAfterPhase2(t *testing.T) {
	p := NewProposer("proposer", []netmsg.Address{"acc1", "acc2", "acc3"}, 1)
	next, _ := p.Receive(Message{Kind: KindClientValue, Value: "v1"}, netmsg.NewClientAddress())

	next, outgoing := next.(Proposer).Receive(Message{Kind: KindPrepareAck}, "acc1")
	if outgoing != nil {
		t.Fatalf("expected no accept messages before a majority of prepare_acks, got %v", outgoing)
	}
	next, outgoing = next.(Proposer).Receive(Message{Kind: KindPrepareAck}, "acc2")
	if len(outgoing) != 3 {
		t.Fatalf("expected phase 2 to begin with a majority of prepare_acks, got %d envelopes", len(outgoing))
	}

	_, outgoing = next.(Proposer).Receive(Message{Kind: KindPrepareAck}, "acc3")
	if outgoing != nil {
		t.Errorf("expected a late prepare_ack after phase 2 began to be ignored, got %v", outgoing)
	}
}
