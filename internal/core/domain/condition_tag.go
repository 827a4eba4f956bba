package domain

import "unique"

// ConditionTag is an interned export condition such as "browser". Tags are
// compared for every conditional key during expansion, so equality is a
// handle comparison.
type ConditionTag struct {
	h unique.Handle[string]
}

// NewConditionTag interns name.
func NewConditionTag(name string) ConditionTag {
	return ConditionTag{h: unique.Make(name)}
}

func (t ConditionTag) String() string {
	return t.h.Value()
}
