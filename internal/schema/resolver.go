package schema

import "strings"

// Order is the processing sequence of the seeded entities.
type Order struct {
	Entities []*Entity
	Cycles   []Cycle
}

// Cycle is a reference loop among seeded entities. Path[i] references Path[i+1]
// and Field, declared on the last entity of Path, closes the loop back to Path[0].
// The ordering ignores that closing reference.
type Cycle struct {
	Path  []*Entity
	Field *Field
}

func (c Cycle) String() string {
	names := make([]string, 0, len(c.Path)+1)
	for _, e := range c.Path {
		names = append(names, e.Name)
	}
	names = append(names, c.Path[0].Name)
	return strings.Join(names, " -> ")
}

// Breakable reports whether the ignored reference may be left null.
func (c Cycle) Breakable() bool {
	return c.Field.Nullable
}

const (
	unvisited = iota
	visiting
	visited
)

// Resolve orders the seeded entities so that a referenced entity comes before
// every entity referencing it. Entities without a SeedConfig are left out.
// Self references and references to unseeded entities do not constrain the
// order. Loops are reported in Order.Cycles and broken at the reference that
// closes them.
func Resolve(entities []*Entity) Order {
	seeded := make(map[*Entity]bool)
	for _, e := range entities {
		if e.Seeded() {
			seeded[e] = true
		}
	}

	var order Order
	state := make(map[*Entity]int)
	var stack []*Entity

	var visit func(e *Entity)
	visit = func(e *Entity) {
		state[e] = visiting
		stack = append(stack, e)

		for _, f := range e.Fields {
			if f.Kind != KindRef || f.Ref == nil || f.Ref == e || !seeded[f.Ref] {
				continue
			}
			switch state[f.Ref] {
			case unvisited:
				visit(f.Ref)
			case visiting:
				order.Cycles = append(order.Cycles, Cycle{Path: loopFrom(stack, f.Ref), Field: f})
			}
		}

		stack = stack[:len(stack)-1]
		state[e] = visited
		order.Entities = append(order.Entities, e)
	}

	for _, e := range entities {
		if seeded[e] && state[e] == unvisited {
			visit(e)
		}
	}
	return order
}

func loopFrom(stack []*Entity, start *Entity) []*Entity {
	for i, e := range stack {
		if e == start {
			return append([]*Entity(nil), stack[i:]...)
		}
	}
	return nil
}

// Dependencies lists the entities e references through single references, excluding itself.
func (e *Entity) Dependencies() []string {
	var deps []string
	for _, f := range e.Fields {
		if f.Kind == KindRef && f.Ref != nil && f.Ref != e {
			deps = append(deps, f.Ref.Name)
		}
	}
	return deps
}
