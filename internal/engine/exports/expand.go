// Package exports expands package exports maps against a condition set.
package exports

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/zerr"
)

// ExpandTargetResolutions walks node and returns the targets it resolves to
// under env. With firstOnly the walk stops at the first viable alternative,
// which is the file a loader would be served. Without it every viable
// alternative is collected, which is the set of files an import map must
// account for.
//
// A node that matches nothing yields no targets and no error. An explicit
// null matches and yields no targets either.
func ExpandTargetResolutions(node domain.ExportsNode, env *domain.ConditionSet, firstOnly bool) ([]string, error) {
	e := expander{env: env, firstOnly: firstOnly}
	if _, err := e.expand(node, nil); err != nil {
		return nil, err
	}
	return e.targets, nil
}

type expander struct {
	env       *domain.ConditionSet
	firstOnly bool
	targets   []string
}

func (e *expander) expand(node domain.ExportsNode, excluded *domain.ExclusionSet) (bool, error) {
	switch n := node.(type) {
	case domain.ExportsTarget:
		target := string(n)
		if !strings.HasPrefix(target, "./") {
			return false, nil
		}
		if !slices.Contains(e.targets, target) {
			e.targets = append(e.targets, target)
		}
		return true, nil

	case domain.ExportsNull:
		return true, nil

	case domain.ExportsAlternatives:
		matched := false
		for _, alt := range n {
			ok, err := e.expand(alt, excluded)
			if err != nil {
				return false, err
			}
			if ok {
				matched = true
				if e.firstOnly {
					return true, nil
				}
			}
		}
		return matched, nil

	case domain.ExportsConditions:
		matched := false
		for _, branch := range n {
			selected := e.env.Matches(branch.Condition, excluded)
			// A key that is still live commits to excluding its opposite
			// for the rest of this object and for its own subtree.
			if !excluded.Contains(branch.Condition) {
				excluded = e.env.Exclude(branch.Condition, excluded)
			}
			if !selected {
				continue
			}
			ok, err := e.expand(branch.Node, excluded)
			if err != nil {
				return false, err
			}
			if ok {
				matched = true
				if e.firstOnly {
					return true, nil
				}
			}
		}
		return matched, nil

	case domain.ExportsInvalid:
		return false, zerr.With(zerr.Wrap(domain.ErrInvalidExports, "unsupported exports value"), "value", n.Raw)

	case nil:
		return false, nil

	default:
		return false, zerr.With(zerr.Wrap(domain.ErrInvalidExports, "unknown exports node"), "type", fmt.Sprintf("%T", node))
	}
}
