package env

import (
	"github.com/robbyt/go-polyexpr/execution/value"
)

// VariableCasing is implemented by contexts that can report how they match variable
// names. Contexts without it are treated as case-insensitive.
type VariableCasing interface {
	CaseSensitiveVariables() bool
}

// Overlay layers a private variable scope over a base Context. Reads consult the
// overlay first; writes stay in the overlay, so a shared base is never modified by the
// evaluations that use it. Names are matched the way the base matches them.
type Overlay struct {
	Context

	vars *store[value.Value]
}

// NewOverlay returns an Overlay over base seeded with vars.
func NewOverlay(base Context, vars map[string]value.Value) *Overlay {
	caseSensitive := false
	if vc, ok := base.(VariableCasing); ok {
		caseSensitive = vc.CaseSensitiveVariables()
	}
	o := &Overlay{Context: base, vars: newStore[value.Value](!caseSensitive)}
	for name, v := range vars {
		o.vars.set(name, v)
	}
	return o
}

// CaseSensitiveVariables implements VariableCasing.
func (o *Overlay) CaseSensitiveVariables() bool {
	return !o.vars.fold
}

// TryGetVariable implements Context.
func (o *Overlay) TryGetVariable(name string) (value.Value, bool) {
	if v, ok := o.vars.get(name); ok {
		return v, true
	}
	return o.Context.TryGetVariable(name)
}

// SetVariable implements Context.
func (o *Overlay) SetVariable(name string, v value.Value) {
	o.vars.set(name, v)
}
