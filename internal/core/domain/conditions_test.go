package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/lockmap/internal/core/domain"
)

func TestConditionSet_OrderAndDedup(t *testing.T) {
	t.Parallel()

	c := domain.NewConditionSet([]string{"browser", "import", "browser", "", "production"}, nil)

	assert.Equal(t, []string{"browser", "import", "production"}, c.Tags())
	assert.True(t, c.Has("import"))
	assert.False(t, c.Has("require"))
	assert.Equal(t, "browser,import,production", c.String())
}

func TestConditionSet_Matches(t *testing.T) {
	t.Parallel()

	c := domain.NewConditionSet([]string{"production", "development"}, nil)
	dev := domain.NewConditionTag("development")
	prod := domain.NewConditionTag("production")

	var excluded *domain.ExclusionSet
	assert.True(t, c.Matches(dev, excluded))
	assert.True(t, c.Matches(domain.NewConditionTag("default"), excluded))
	assert.False(t, c.Matches(domain.NewConditionTag("node"), excluded))

	excluded = c.Exclude(prod, excluded)
	assert.False(t, c.Matches(dev, excluded), "production commits to excluding development")
	assert.True(t, c.Matches(prod, excluded))
}

func TestConditionSet_ExcludeOnlyForActiveKeys(t *testing.T) {
	t.Parallel()

	c := domain.NewConditionSet([]string{"development"}, nil)
	var excluded *domain.ExclusionSet

	// "production" is not active, so visiting it must not exclude "development".
	excluded = c.Exclude(domain.NewConditionTag("production"), excluded)
	assert.True(t, c.Matches(domain.NewConditionTag("development"), excluded))
}

func TestConditionSet_CustomExclusions(t *testing.T) {
	t.Parallel()

	c := domain.NewConditionSet([]string{"worker", "browser"}, map[string]string{"worker": "browser"})
	excluded := c.Exclude(domain.NewConditionTag("worker"), nil)
	assert.False(t, c.Matches(domain.NewConditionTag("browser"), excluded))
}

func TestExclusionSet_Persistent(t *testing.T) {
	t.Parallel()

	a := domain.NewConditionTag("a")
	b := domain.NewConditionTag("b")

	var root *domain.ExclusionSet
	withA := root.With(a)
	withAB := withA.With(b)

	assert.False(t, root.Contains(a))
	assert.True(t, withA.Contains(a))
	assert.False(t, withA.Contains(b), "adding to a child never leaks into its parent")
	assert.True(t, withAB.Contains(a))
	assert.True(t, withAB.Contains(b))
	assert.Same(t, withA, withA.With(a))
	assert.Equal(t, []string{"b", "a"}, withAB.Tags())
}
