package keymap

import "github.com/samber/lo"

// Resolver maps key strings to actions.
type Resolver struct {
	bindings     map[string]Action   // key -> action
	byAction     map[Action][]string // action -> keys (for help/documentation)
	descriptions map[Action]string
}

// NewResolver creates a resolver from bindings. A key bound twice keeps
// its last action.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings:     make(map[string]Action),
		byAction:     make(map[Action][]string),
		descriptions: make(map[Action]string),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			r.bindings[key] = b.Action
		}
		r.byAction[b.Action] = lo.Uniq(append(r.byAction[b.Action], b.Keys...))
		if _, ok := r.descriptions[b.Action]; !ok {
			r.descriptions[b.Action] = b.Description
		}
	}
	return r
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}

// KeysFor returns the keys bound to an action (for help/documentation).
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Description returns the help text of an action.
func (r *Resolver) Description(action Action) string {
	return r.descriptions[action]
}
