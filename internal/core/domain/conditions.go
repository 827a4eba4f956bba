package domain

import (
	"slices"
	"strings"
)

// DefaultCondition is the exports key that matches under every condition set.
const DefaultCondition = "default"

// DefaultConditions is used when neither the configuration nor an existing
// import map names a condition set.
var DefaultConditions = []string{"browser", "production", "module", "import"}

// DefaultExclusions pairs conditions that can never both apply to one branch.
var DefaultExclusions = map[string]string{
	"production":  "development",
	"development": "production",
	"browser":     "node",
	"node":        "browser",
	"import":      "require",
	"require":     "import",
}

var defaultKey = NewConditionTag(DefaultCondition)

// ConditionSet is an ordered set of condition tags with declared mutual
// exclusions. It is immutable once built.
type ConditionSet struct {
	tags       []ConditionTag
	active     map[ConditionTag]struct{}
	exclusions map[ConditionTag]ConditionTag
}

// NewConditionSet builds a set from tags, keeping the first occurrence of
// duplicates. A nil exclusions map selects DefaultExclusions.
func NewConditionSet(tags []string, exclusions map[string]string) *ConditionSet {
	if exclusions == nil {
		exclusions = DefaultExclusions
	}

	c := &ConditionSet{
		active:     make(map[ConditionTag]struct{}, len(tags)),
		exclusions: make(map[ConditionTag]ConditionTag, len(exclusions)),
	}
	for _, name := range tags {
		if name == "" {
			continue
		}
		tag := NewConditionTag(name)
		if _, ok := c.active[tag]; ok {
			continue
		}
		c.active[tag] = struct{}{}
		c.tags = append(c.tags, tag)
	}
	for from, to := range exclusions {
		c.exclusions[NewConditionTag(from)] = NewConditionTag(to)
	}
	return c
}

// Tags returns the conditions in declaration order.
func (c *ConditionSet) Tags() []string {
	out := make([]string, len(c.tags))
	for i, tag := range c.tags {
		out[i] = tag.String()
	}
	return out
}

// Has reports whether tag is part of the set.
func (c *ConditionSet) Has(tag string) bool {
	_, ok := c.active[NewConditionTag(tag)]
	return ok
}

// Matches reports whether an exports key selects its branch given the
// exclusions accumulated so far.
func (c *ConditionSet) Matches(key ConditionTag, excluded *ExclusionSet) bool {
	if key == defaultKey {
		return true
	}
	if _, ok := c.active[key]; !ok {
		return false
	}
	return !excluded.Contains(key)
}

// Exclude returns the exclusion set siblings after key must use. Only keys
// that are part of the set commit to excluding their opposite.
func (c *ConditionSet) Exclude(key ConditionTag, excluded *ExclusionSet) *ExclusionSet {
	if _, ok := c.active[key]; !ok {
		return excluded
	}
	opposite, ok := c.exclusions[key]
	if !ok {
		return excluded
	}
	return excluded.With(opposite)
}

// Equal reports whether both sets hold the same tags in the same order.
func (c *ConditionSet) Equal(other *ConditionSet) bool {
	return slices.Equal(c.tags, other.tags)
}

func (c *ConditionSet) String() string {
	return strings.Join(c.Tags(), ",")
}

// ExclusionSet is a persistent set of excluded conditions. Adding a tag
// returns a new set and leaves the receiver untouched, so a branch can hand
// its current set to a child without the child's additions leaking back.
// The nil set is empty.
type ExclusionSet struct {
	parent *ExclusionSet
	tag    ConditionTag
}

// Contains reports whether tag is excluded.
func (e *ExclusionSet) Contains(tag ConditionTag) bool {
	for n := e; n != nil; n = n.parent {
		if n.tag == tag {
			return true
		}
	}
	return false
}

// With returns a set that also excludes tag.
func (e *ExclusionSet) With(tag ConditionTag) *ExclusionSet {
	if e.Contains(tag) {
		return e
	}
	return &ExclusionSet{parent: e, tag: tag}
}

// Tags returns the excluded conditions, most recent first.
func (e *ExclusionSet) Tags() []string {
	var out []string
	for n := e; n != nil; n = n.parent {
		out = append(out, n.tag.String())
	}
	return out
}
