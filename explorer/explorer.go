// Package explorer implements the breadth-first state-space search: it
// enqueues an initial configuration, expands the frontier one message
// delivery at a time, deduplicates by fingerprint, and reports every
// configuration satisfying a caller-supplied predicate along with the
// ancestor chain each one was reached by (via package trace).
package explorer

import (
	"context"

	"reach/core/explorer/configuration"
)

// Predicate reports whether a configuration is of interest. It must be a
// pure function of the configuration's fingerprint-relevant state.
type Predicate func(*configuration.Configuration) bool

// NoLimit is the depth-limit sentinel meaning "run until exhaustion". It is
// the Go realization of passing math.inf to the distillation's BFS.
const NoLimit = -1

// Result is the outcome of an Explore call.
type Result struct {
	// Matches holds every configuration for which predicate held, in
	// discovery order. Finding a match does not stop the search.
	Matches []*configuration.Configuration

	// Visited holds the hashed fingerprint of every configuration the
	// search dequeued and examined (for cost reporting and test
	// assertions). It does not include configurations discarded at dequeue
	// (at or past the depth limit, or matched by skip).
	Visited map[string]struct{}
}

type frontierEntry struct {
	depth  int
	config *configuration.Configuration
}

// Explore runs a breadth-first traversal from initial, stopping expansion
// of any configuration at depth >= depthLimit (pass NoLimit to run until
// exhaustion, which terminates because the funnel-overwrite rule bounds the
// reachable state space for any finite node-state alphabet).
//
// skip, if non-nil, is consulted before predicate and before expansion: a
// configuration for which skip holds is neither recorded as a match nor
// expanded, but per spec it is NOT marked visited, so other paths into it
// may still be explored.
//
// Explore returns a non-nil error only when expanding a frontier
// configuration raises a HandlerViolation (errs.CodeHandlerViolation), or
// when ctx is done (ctx.Err(), checked once per dequeue); either way the
// whole search aborts and the error is returned alongside whatever was
// found so far.
func Explore(ctx context.Context, initial *configuration.Configuration, depthLimit int, predicate Predicate, skip Predicate) (Result, error) {
	res := Result{Visited: make(map[string]struct{})}

	queue := []frontierEntry{{depth: 0, config: initial}}

	for len(queue) != 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		entry := queue[0]
		queue = queue[1:]

		fp := fingerprintHash(entry.config)
		if _, seen := res.Visited[fp]; seen {
			continue
		}
		if depthLimit >= 0 && entry.depth >= depthLimit {
			continue
		}

		if skip != nil && skip(entry.config) {
			continue
		}

		if predicate(entry.config) {
			res.Matches = append(res.Matches, entry.config)
		}

		res.Visited[fp] = struct{}{}

		successors, err := entry.config.Successors()
		if err != nil {
			return res, err
		}
		for _, succ := range successors {
			succFP := fingerprintHash(succ)
			if _, seen := res.Visited[succFP]; seen {
				continue
			}
			queue = append(queue, frontierEntry{depth: entry.depth + 1, config: succ})
		}
	}

	return res, nil
}
