// Package trace reconstructs and filters the ancestor chain leading to a
// found configuration, for extracting the sequence of decision points
// behind a counter-example.
package trace

import "reach/core/explorer/configuration"

// Predicate reports whether a configuration belongs in a trace.
type Predicate func(*configuration.Configuration) bool

// Result is the outcome of a Path walk.
type Result struct {
	// Configurations holds every ancestor (nearest-first, i.e. end before
	// start) for which predicate held, including start itself if it
	// satisfies predicate and was reached.
	Configurations []*configuration.Configuration

	// ReachedStart reports whether the walk actually reached start by
	// fingerprint. If false, this is a TraceGap: start was not an ancestor
	// of end, and Configurations holds whatever was collected before the
	// walk ran off the root.
	ReachedStart bool
}

// Path walks parent links from end toward start, collecting every
// configuration along the way (end inclusive, start inclusive) for which
// predicate holds. It never mutates its inputs and never panics; a
// TraceGap is reported via Result.ReachedStart, not as an error.
func Path(end, start *configuration.Configuration, predicate Predicate) Result {
	var res Result

	startFP := start.Fingerprint()
	curr := end

	for curr != nil {
		if curr.Fingerprint() == startFP {
			if predicate(curr) {
				res.Configurations = append(res.Configurations, curr)
			}
			res.ReachedStart = true
			return res
		}
		if predicate(curr) {
			res.Configurations = append(res.Configurations, curr)
		}
		curr = curr.Parent()
	}

	return res
}
