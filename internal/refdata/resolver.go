package refdata

// Lookup resolves a code to a display title within one collection.
type Lookup interface {
	TitleByCode(code string) (string, bool)
}

// Resolver substitutes foreign-key codes with display titles. Every field is
// bound to an explicit store; there is no global lookup, so a currency code
// colliding with an account code cannot resolve across domains.
type Resolver struct {
	bindings map[string]Lookup
}

// NewResolver returns a resolver with no bindings.
func NewResolver() *Resolver {
	return &Resolver{bindings: make(map[string]Lookup)}
}

// Bind associates a row field with the store that resolves it.
func (r *Resolver) Bind(field string, source Lookup) *Resolver {
	r.bindings[field] = source
	return r
}

// Resolve returns a copy of row with each bound field's code replaced by its
// title. A miss falls back to the raw code; Resolve never fails and has no
// side effects, so it can be re-run whenever a row or a store changes.
func (r *Resolver) Resolve(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for field, value := range row {
		out[field] = value
		source, bound := r.bindings[field]
		if !bound || value == "" {
			continue
		}
		if title, ok := source.TitleByCode(value); ok {
			out[field] = title
		}
	}
	return out
}

// Title resolves a single code through the binding for field, falling back to
// the raw code on a miss.
func (r *Resolver) Title(field, code string) string {
	if source, ok := r.bindings[field]; ok && code != "" {
		if title, found := source.TitleByCode(code); found {
			return title
		}
	}
	return code
}
