// Package symtab implements the two-level scoped symbol table of
// spec.md §4.2: one map for the lifetime of a class compilation, one
// for the lifetime of a subroutine body, and four independently
// indexed counters.
package symtab

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Kind is the storage class of a declared name.
type Kind int

const (
	None Kind = iota
	Static
	Field
	Argument
	Local
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Field:
		return "field"
	case Argument:
		return "argument"
	case Local:
		return "local"
	default:
		return "none"
	}
}

// Segment returns the VM memory segment a kind is pushed/popped through,
// per spec.md §4.3's segment mapping. None has no segment.
func (k Kind) Segment() string {
	switch k {
	case Static:
		return "static"
	case Field:
		return "this"
	case Argument:
		return "argument"
	case Local:
		return "local"
	default:
		return ""
	}
}

type symbol struct {
	declaredType string
	kind         Kind
	index        int
}

// Table is one compilation session's symbol table: a class scope that
// lives for the whole class and a subroutine scope reset by
// StartSubroutine.
type Table struct {
	class      map[string]symbol
	subroutine map[string]symbol
	counters   map[Kind]int
}

func New() *Table {
	return &Table{
		class:      make(map[string]symbol),
		subroutine: make(map[string]symbol),
		counters:   make(map[Kind]int),
	}
}

// StartSubroutine clears the subroutine scope and resets the Argument
// and Local counters to zero. Static and Field are untouched — they
// persist for the entire class compilation.
func (t *Table) StartSubroutine() {
	t.subroutine = make(map[string]symbol)
	t.counters[Argument] = 0
	t.counters[Local] = 0
}

// Define inserts name into the scope its kind belongs to and advances
// that kind's counter. Redefinition of a name already in scope silently
// overwrites (spec.md §4.2/§9.5) — this is documented original-source
// behavior, not a bug to fix.
func (t *Table) Define(name, declaredType string, kind Kind) {
	index := t.counters[kind]
	sym := symbol{declaredType: declaredType, kind: kind, index: index}

	switch kind {
	case Argument, Local:
		t.subroutine[name] = sym
	case Static, Field:
		t.class[name] = sym
	}

	t.counters[kind] = index + 1
}

// VarCount returns the number of names defined under kind since the
// last reset of that kind's counter.
func (t *Table) VarCount(kind Kind) int {
	return t.counters[kind]
}

// lookup resolves name against the subroutine scope first, then the
// class scope (spec.md §3: "order does not affect semantics... but
// consistent policy matters for the None return").
func (t *Table) lookup(name string) (symbol, bool) {
	if sym, ok := t.subroutine[name]; ok {
		return sym, true
	}
	sym, ok := t.class[name]
	return sym, ok
}

func (t *Table) KindOf(name string) Kind {
	sym, ok := t.lookup(name)
	if !ok {
		return None
	}
	return sym.kind
}

func (t *Table) TypeOf(name string) string {
	sym, ok := t.lookup(name)
	if !ok {
		return ""
	}
	return sym.declaredType
}

func (t *Table) IndexOf(name string) int {
	sym, ok := t.lookup(name)
	if !ok {
		return -1
	}
	return sym.index
}

// Names returns every name currently in scope (subroutine and class),
// sorted, for verbose diagnostic logging (see engine.class).
func (t *Table) Names() []string {
	names := append(maps.Keys(t.class), maps.Keys(t.subroutine)...)
	slices.Sort(names)
	return names
}
