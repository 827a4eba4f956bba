package domain

import (
	"encoding/json"

	"go.trai.ch/lockmap/internal/semver"
)

type lockEdge struct {
	Target Coordinate   `json:"target"`
	Range  semver.Range `json:"range"`
}

type lockGraph struct {
	Env          []string                           `json:"env,omitempty"`
	Dependencies map[string]VersionTarget           `json:"dependencies"`
	Primaries    map[string]Coordinate              `json:"primaries"`
	Versions     map[PackageName][]string           `json:"versions"`
	Scopes       map[Coordinate]map[string]lockEdge `json:"scopes"`
}

// MarshalJSON implements json.Marshaler. Map keys are emitted sorted, so
// equal graphs always serialize to identical bytes.
func (g *DependencyGraph) MarshalJSON() ([]byte, error) {
	out := lockGraph{
		Env:          g.env,
		Dependencies: g.dependencies,
		Primaries:    g.primaries,
		Versions:     g.versions,
		Scopes:       make(map[Coordinate]map[string]lockEdge, len(g.scopes)),
	}
	for parent, scope := range g.scopes {
		edges := make(map[string]lockEdge, len(scope))
		for local, e := range scope {
			edges[local] = lockEdge(e)
		}
		out.Scopes[parent] = edges
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. It does not validate; callers
// run Validate on graphs read from disk.
func (g *DependencyGraph) UnmarshalJSON(data []byte) error {
	var in lockGraph
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	fresh := NewDependencyGraph()
	fresh.env = in.Env
	for name, target := range in.Dependencies {
		fresh.dependencies[name] = target
	}
	for name, c := range in.Primaries {
		fresh.primaries[name] = c
	}
	for pkg, versions := range in.Versions {
		sorted := append([]string(nil), versions...)
		semver.Sort(sorted)
		fresh.versions[pkg] = sorted
	}
	for parent, edges := range in.Scopes {
		scope := make(map[string]Edge, len(edges))
		for local, e := range edges {
			scope[local] = Edge(e)
		}
		fresh.scopes[parent] = scope
	}

	*g = *fresh
	return nil
}
