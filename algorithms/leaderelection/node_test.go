package leaderelection

import (
	"context"
	"testing"

	"reach/core/explorer/configuration"
	"reach/core/explorer/explorer"
	"reach/core/explorer/netmsg"
	"reach/core/explorer/node"
)

func threeNodeCluster() []netmsg.Address {
	return []netmsg.Address{"a", "b", "c"}
}

func buildInitial(t *testing.T, addrs []netmsg.Address, starter netmsg.Address) *configuration.Configuration {
	t.Helper()
	nodes := make([]node.Handler, 0, len(addrs))
	for _, a := range addrs {
		nodes = append(nodes, New(a, addrs))
	}
	start := []netmsg.Envelope{{
		Message: Message{Kind: KindStartElection},
		From:    netmsg.NewClientAddress(),
		To:      starter,
	}}
	cfg, err := configuration.BuildInitial(nodes, start)
	if err != nil {
		t.Fatalf("BuildInitial failed: %v", err)
	}
	return cfg
}

func hasLeader(c *configuration.Configuration) bool {
	for _, n := range c.Nodes() {
		if ln, ok := n.(Node); ok && ln.IsLeader() {
			return true
		}
	}
	return false
}

func leaderCount(c *configuration.Configuration) int {
	count := 0
	for _, n := range c.Nodes() {
		if ln, ok := n.(Node); ok && ln.IsLeader() {
			count++
		}
	}
	return count
}

func TestSomeReachableConfigurationHasExactlyOneLeader(t *testing.T) {
	cfg := buildInitial(t, threeNodeCluster(), "c")

	res, err := explorer.Explore(context.Background(), cfg, explorer.NoLimit, hasLeader, nil)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if len(res.Matches) == 0 {
		t.Fatal("expected at least one reachable configuration with a leader")
	}
	for _, m := range res.Matches {
		if leaderCount(m) != 1 {
			t.Errorf("expected exactly one leader, found %d", leaderCount(m))
		}
	}
}

func TestNoReachableConfigurationHasTwoLeaders(t *testing.T) {
	cfg := buildInitial(t, threeNodeCluster(), "c")

	twoLeaders := func(c *configuration.Configuration) bool { return leaderCount(c) >= 2 }

	res, err := explorer.Explore(context.Background(), cfg, explorer.NoLimit, twoLeaders, nil)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if len(res.Matches) != 0 {
		t.Errorf("expected no configuration with two simultaneous leaders, found %d", len(res.Matches))
	}
}

func TestLowestAddressNeverBecomesLeader(t *testing.T) {
	addrs := threeNodeCluster()
	cfg := buildInitial(t, addrs, "a")

	aLeads := func(c *configuration.Configuration) bool {
		n, ok := c.Nodes()["a"].(Node)
		return ok && n.IsLeader()
	}

	res, err := explorer.Explore(context.Background(), cfg, explorer.NoLimit, aLeads, nil)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if len(res.Matches) != 0 {
		t.Errorf("expected node %q (lowest address) to never win a vote from every peer, got %d matches", "a", len(res.Matches))
	}
}

func TestReceiveIgnoresForeignMessageType(t *testing.T) {
	n := New("a", threeNodeCluster())
	next, outgoing := n.Receive(wrongMessage{}, "b")
	if outgoing != nil {
		t.Errorf("expected no outgoing envelopes for an unrecognized message, got %v", outgoing)
	}
	if next.(Node).Fingerprint() != n.Fingerprint() {
		t.Errorf("expected state to be unchanged for an unrecognized message")
	}
}

type wrongMessage struct{}

func (wrongMessage) Fingerprint() string   { return "wrong" }
func (wrongMessage) Clone() netmsg.Message { return wrongMessage{} }
