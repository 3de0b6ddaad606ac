// Command explore-demo runs the bounded state-space explorer against one of
// the bundled example algorithms and prints a summary of what it found. It
// is a demonstration entry point, not part of the core search contract.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"reach/core/explorer/algorithms/leaderelection"
	"reach/core/explorer/algorithms/paxos"
	"reach/core/explorer/configuration"
	"reach/core/explorer/explorer"
	"reach/core/explorer/netmsg"
	"reach/core/explorer/node"
	"reach/core/explorer/runconfig"
	"reach/core/explorer/storage"
	"reach/core/explorer/trace"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (optional)")
	algorithmFlag := flag.String("algorithm", "", "override the algorithm to run: leader-election or paxos")
	depthFlag := flag.Int("depth", 0, "override the depth limit (0 means use the loaded config)")
	dbFlag := flag.String("db", "", "override the SQLite path to persist run results to")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *algorithmFlag != "" {
		cfg.Algorithm = *algorithmFlag
	}
	if *depthFlag != 0 {
		cfg.DepthLimit = *depthFlag
	}
	if *dbFlag != "" {
		cfg.TraceDB = *dbFlag
	}

	initial, predicate, err := buildScenario(cfg.Algorithm)
	if err != nil {
		log.Fatalf("building scenario: %v", err)
	}

	log.Printf("exploring %s (depth limit %d)", cfg.Algorithm, cfg.DepthLimit)

	ctx := context.Background()
	res, err := explorer.Explore(ctx, initial, cfg.DepthLimit, predicate, nil)
	if err != nil {
		log.Fatalf("explore failed: %v", err)
	}

	fmt.Printf("visited %d configurations, found %d matches\n", len(res.Visited), len(res.Matches))
	for i, match := range res.Matches {
		fmt.Printf("match %d: %s\n", i, match.Fingerprint())
	}

	if cfg.TraceDB != "" {
		if err := persistRun(cfg, initial, res); err != nil {
			log.Fatalf("persisting run: %v", err)
		}
	}
}

func loadConfig(path string) (*runconfig.Options, error) {
	if path == "" {
		return runconfig.Load()
	}
	return runconfig.LoadFromFile(path)
}

// buildScenario constructs the initial configuration and match predicate for
// the named algorithm (a three-node leader-election cluster, or one proposer
// with three acceptors for Paxos), matching the demo layouts used by the
// distillation's dummy_main.py and paxos_main.py entry points.
func buildScenario(algorithm string) (*configuration.Configuration, explorer.Predicate, error) {
	switch algorithm {
	case "paxos":
		return buildPaxosScenario()
	case "leader-election", "":
		return buildLeaderElectionScenario()
	default:
		return nil, nil, fmt.Errorf("unknown algorithm %q", algorithm)
	}
}

func buildLeaderElectionScenario() (*configuration.Configuration, explorer.Predicate, error) {
	addrs := []netmsg.Address{"node-a", "node-b", "node-c"}
	nodes := make([]node.Handler, 0, len(addrs))
	for _, a := range addrs {
		nodes = append(nodes, leaderelection.New(a, addrs))
	}

	start := []netmsg.Envelope{{
		Message: leaderelection.Message{Kind: leaderelection.KindStartElection},
		From:    netmsg.NewClientAddress(),
		To:      addrs[len(addrs)-1],
	}}

	initial, err := configuration.BuildInitial(nodes, start)
	if err != nil {
		return nil, nil, err
	}

	predicate := func(c *configuration.Configuration) bool {
		for _, n := range c.Nodes() {
			if ln, ok := n.(leaderelection.Node); ok && ln.IsLeader() {
				return true
			}
		}
		return false
	}
	return initial, predicate, nil
}

func buildPaxosScenario() (*configuration.Configuration, explorer.Predicate, error) {
	proposerAddr := netmsg.Address("proposer")
	acceptorAddrs := []netmsg.Address{"acceptor-1", "acceptor-2", "acceptor-3"}

	nodes := []node.Handler{paxos.NewProposer(proposerAddr, acceptorAddrs, 1)}
	for _, a := range acceptorAddrs {
		nodes = append(nodes, paxos.NewAcceptor(a))
	}

	start := []netmsg.Envelope{{
		Message: paxos.Message{Kind: paxos.KindClientValue, Value: "hello-paxos"},
		From:    netmsg.NewClientAddress(),
		To:      proposerAddr,
	}}

	initial, err := configuration.BuildInitial(nodes, start)
	if err != nil {
		return nil, nil, err
	}

	predicate := func(c *configuration.Configuration) bool {
		for _, n := range c.Nodes() {
			if p, ok := n.(paxos.Proposer); ok {
				if _, chosen := p.Chosen(); chosen {
					return true
				}
			}
		}
		return false
	}
	return initial, predicate, nil
}

func persistRun(cfg *runconfig.Options, initial *configuration.Configuration, res explorer.Result) error {
	rec, err := storage.Open(cfg.TraceDB)
	if err != nil {
		return err
	}
	defer rec.Close()

	ctx := context.Background()
	runID := fmt.Sprintf("%s-%d", cfg.Algorithm, time.Now().UnixNano())

	if err := rec.SaveRun(ctx, storage.RunRecord{
		ID:           runID,
		Algorithm:    cfg.Algorithm,
		DepthLimit:   cfg.DepthLimit,
		VisitedCount: len(res.Visited),
		MatchCount:   len(res.Matches),
		CreatedAt:    time.Now(),
	}); err != nil {
		return err
	}

	includeAll := func(*configuration.Configuration) bool { return true }
	for _, match := range res.Matches {
		walk := trace.Path(match, initial, includeAll)
		records := make([]storage.TraceStepRecord, 0, len(walk.Configurations))
		for i, step := range walk.Configurations {
			records = append(records, storage.TraceStepRecord{
				RunID:        runID,
				StepIndex:    i,
				Fingerprint:  step.Fingerprint(),
				ReachedStart: walk.ReachedStart,
				CreatedAt:    time.Now(),
			})
		}
		if err := rec.SaveTrace(ctx, records); err != nil {
			return err
		}
	}
	return nil
}
