// Package logic implements the term model consumed by the abstract machine.
//
// A logic term falls in one of two categories:
//
// * variable: a term that represents an unbound, yet-to-be-resolved term.
//
// * compound: a functor applied to an ordered list of argument terms. A compound
// term with no arguments is called an atom.
//
// Terms are immutable values. Two terms are considered the same if they are
// structurally equal, that is, variables with the same name or compounds with the
// same functor, arity and (recursively) equal args.
package logic

import (
	"fmt"
	"strconv"
	"strings"
)

// ---- Basic types

// Term is a representation of a logic term.
type Term interface {
	fmt.Stringer
	vars(seen map[Var]struct{}, xs []Var) []Var
	hasVar() bool
	writeKey(b *strings.Builder)
}

// Var is a variable term.
type Var struct {
	// Name is the identifier for a var.
	Name string
}

// Comp is a compound term.
type Comp struct {
	// Functor is the primary identifier of a comp.
	Functor string
	// Args is the list of terms within this term.
	Args    []Term
	hasVar_ bool
}

// ---- Public vars

var (
	// AnonymousVar represents a variable to be ignored.
	AnonymousVar = NewVar("_")
)

// ---- Vars

// NewVar creates a new var.
//
// It panics if the name doesn't start with an uppercase letter or an underscore.
func NewVar(name string) Var {
	if !IsVar(name) {
		panic(fmt.Sprintf("NewVar: invalid name: %q", name))
	}
	return Var{name}
}

// ---- Compound terms

// NewComp creates a compound term.
func NewComp(functor string, terms ...Term) *Comp {
	var hasVar bool
	for _, term := range terms {
		if term.hasVar() {
			hasVar = true
			break
		}
	}
	return &Comp{Functor: functor, Args: terms, hasVar_: hasVar}
}

// NewAtom creates a compound term with no args.
func NewAtom(name string) *Comp {
	return &Comp{Functor: name}
}

// IsAtom returns whether the comp has no args.
func (c *Comp) IsAtom() bool {
	return len(c.Args) == 0
}

// Indicator is a notation for a comp, usually shown as functor/arity, e.g., f/2.
type Indicator struct {
	// Name is the compound term's functor.
	Name string
	// Arity is the compound term's number of args.
	Arity int
}

func (ind Indicator) String() string {
	return fmt.Sprintf("%s/%d", ind.Name, ind.Arity)
}

// Indicator returns the functor's indicator.
func (c *Comp) Indicator() Indicator {
	return Indicator{c.Functor, len(c.Args)}
}

// ---- vars()

// Vars returns a set with all term variables, in insertion order.
func Vars(term Term) []Var {
	if !term.hasVar() {
		return nil
	}
	return term.vars(make(map[Var]struct{}), nil)
}

func (t Var) vars(seen map[Var]struct{}, xs []Var) []Var {
	if _, ok := seen[t]; ok {
		return xs
	}
	seen[t] = struct{}{}
	return append(xs, t)
}

func (t *Comp) vars(seen map[Var]struct{}, xs []Var) []Var {
	if !t.hasVar_ {
		return xs
	}
	for _, term := range t.Args {
		xs = term.vars(seen, xs)
	}
	return xs
}

// ---- hasVar()

func (t Var) hasVar() bool   { return true }
func (t *Comp) hasVar() bool { return t.hasVar_ }

// IsGround returns whether the term has no variables.
func IsGround(term Term) bool {
	return !term.hasVar()
}

// ---- Key()

// Key returns a string that uniquely identifies the term's structure. Terms are
// Eq if and only if their keys are equal, so keys may be used to index terms
// in maps.
func Key(term Term) string {
	var b strings.Builder
	term.writeKey(&b)
	return b.String()
}

func (t Var) writeKey(b *strings.Builder) {
	b.WriteString("V")
	b.WriteString(strconv.Quote(t.Name))
}

func (t *Comp) writeKey(b *strings.Builder) {
	b.WriteString(strconv.Quote(t.Functor))
	fmt.Fprintf(b, "/%d(", len(t.Args))
	for i, arg := range t.Args {
		if i > 0 {
			b.WriteRune(',')
		}
		arg.writeKey(b)
	}
	b.WriteRune(')')
}

// ---- Comparisons

func termOrder(t Term) int {
	switch t.(type) {
	case Var:
		return 1
	case *Comp:
		return 2
	default:
		panic(fmt.Sprintf("logic.termOrder: unhandled type %T", t))
	}
}

type ordering int

const (
	less ordering = iota
	equal
	more
)

func compareStrings(s1, s2 string) ordering {
	if s1 < s2 {
		return less
	}
	if s1 > s2 {
		return more
	}
	return equal
}

func compareInts(a, b int) ordering {
	if a < b {
		return less
	}
	if a > b {
		return more
	}
	return equal
}

func compare(t1, t2 Term) ordering {
	switch u := t1.(type) {
	case Var:
		if v, ok := t2.(Var); ok {
			return compareStrings(u.Name, v.Name)
		}
	case *Comp:
		if v, ok := t2.(*Comp); ok {
			return u.compare(v)
		}
	default:
		panic(fmt.Sprintf("logic.compare: unhandled type %T", t1))
	}
	return compareInts(termOrder(t1), termOrder(t2))
}

func (c *Comp) compare(other *Comp) ordering {
	if o := compareInts(len(c.Args), len(other.Args)); o != equal {
		return o
	}
	if o := compareStrings(c.Functor, other.Functor); o != equal {
		return o
	}
	for i := 0; i < len(c.Args); i++ {
		if o := compare(c.Args[i], other.Args[i]); o != equal {
			return o
		}
	}
	return equal
}

// Less returns the order between t1 and t2, following the standard of terms.
//
// Vars come before comps. Comps are first compared by arity, then by functor,
// then by args pairwise.
func Less(t1, t2 Term) bool {
	return compare(t1, t2) == less
}

// Eq returns whether t1 and t2 are identical terms.
//
// Note that this only takes into account the structure of terms, not whether
// any binding may make them identical.
func Eq(t1, t2 Term) bool {
	return compare(t1, t2) == equal
}

// Variant returns whether t1 and t2 are equal up to a consistent renaming of
// their variables, e.g., f(X, Y, X) and f(A, B, A).
func Variant(t1, t2 Term) bool {
	fwd := make(map[Var]Var)
	bwd := make(map[Var]Var)
	stack := []Term{t1, t2}
	for len(stack) > 0 {
		n := len(stack)
		u, v := stack[n-2], stack[n-1]
		stack = stack[:n-2]
		switch a := u.(type) {
		case Var:
			b, ok := v.(Var)
			if !ok {
				return false
			}
			if x, ok := fwd[a]; ok && x != b {
				return false
			}
			if y, ok := bwd[b]; ok && y != a {
				return false
			}
			fwd[a], bwd[b] = b, a
		case *Comp:
			b, ok := v.(*Comp)
			if !ok || a.Indicator() != b.Indicator() {
				return false
			}
			for i := range a.Args {
				stack = append(stack, a.Args[i], b.Args[i])
			}
		default:
			panic(fmt.Sprintf("logic.Variant: unhandled type %T", u))
		}
	}
	return true
}

// ---- String()

func (t Var) String() string {
	return t.Name
}

func (t *Comp) String() string {
	if len(t.Args) == 0 {
		return FormatAtom(t.Functor)
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", FormatAtom(t.Functor), strings.Join(args, ", "))
}
