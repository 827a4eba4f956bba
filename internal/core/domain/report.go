package domain

// EventKind names an informational installer event.
type EventKind string

const (
	// EventAdded reports a newly installed version.
	EventAdded EventKind = "added"
	// EventReused reports a primary kept at its locked version.
	EventReused EventKind = "reused"
	// EventOverride reports that an installed version was preferred over the origin's latest.
	EventOverride EventKind = "override"
	// EventForked reports a second installed version of a package.
	EventForked EventKind = "forked"
	// EventDeprecated reports a version dropped from the graph.
	EventDeprecated EventKind = "deprecated"
	// EventSkipped reports an optional dependency that could not be resolved.
	EventSkipped EventKind = "skipped"
)

// Event is one informational, non-error outcome of an operation.
type Event struct {
	Kind       EventKind
	Coordinate Coordinate
	// Path is the dependency path that triggered the event.
	Path   string
	Detail string
}

// Report summarizes an operation.
type Report struct {
	Events []Event
	// Lookups counts latest-version requests sent to providers.
	Lookups int
}

// Count returns the number of events of kind.
func (r *Report) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Of returns the events of kind in order.
func (r *Report) Of(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Inspection describes how the exports of one installed primary resolve.
type Inspection struct {
	Alias      string
	Coordinate Coordinate
	URL        string
	// Served maps each subpath to the target a loader is given.
	Served map[string]string
	// ResolutionSet maps each subpath to every target any viable
	// alternative could serve.
	ResolutionSet map[string][]string
}
