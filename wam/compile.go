package wam

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/brunokim/l0/errors"
	"github.com/brunokim/l0/logic"
)

// ErrNoStructure is returned when compiling a term that is a bare variable.
var ErrNoStructure = errors.New("term has no structure")

// ---- Numbering

// Root is a structure node of a numbered term, with its args replaced by
// their registers.
type Root struct {
	Reg     RegAddr
	Functor Functor
	Args    []RegAddr
}

func (r Root) String() string {
	args := make([]string, len(r.Args))
	for i, arg := range r.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%v = %s(%s)", r.Reg, logic.FormatAtom(r.Functor.Name), strings.Join(args, ", "))
}

// Numbering assigns a register to every distinct subterm of a term.
type Numbering struct {
	// Register of each distinct subterm, indexed by its key.
	Registers map[string]RegAddr

	// Structure nodes, one per distinct structure, sorted by register.
	Roots []Root

	// Register of each var.
	Vars map[logic.Var]RegAddr

	// Number of registers assigned.
	NumRegisters int

	// Key of each structure. A key refers to its args by their id, so that
	// equal subterms have equal keys without rewriting whole subtrees.
	keys map[*logic.Comp]string
	ids  map[string]int
}

// Number assigns registers to the subterms of term.
//
// Registers are assigned breadth-first, with a structure's args numbered
// before any of them is descended into. Subterms that are structurally equal
// share the same register.
func Number(term logic.Term) (*Numbering, error) {
	root, ok := term.(*logic.Comp)
	if !ok {
		return nil, errors.New("numbering %v: %v", term, ErrNoStructure)
	}
	n := &Numbering{
		Registers: make(map[string]RegAddr),
		Vars:      make(map[logic.Var]RegAddr),
		keys:      make(map[*logic.Comp]string),
		ids:       make(map[string]int),
	}
	n.intern(root)
	n.assign(root)
	queue := []*logic.Comp{root}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, arg := range c.Args {
			if _, ok := n.Registers[n.key(arg)]; ok {
				continue
			}
			n.assign(arg)
			if a, ok := arg.(*logic.Comp); ok {
				queue = append(queue, a)
			}
		}
	}
	n.collect(root)
	return n, nil
}

// intern computes the keys of all structures within root, args first.
func (n *Numbering) intern(root *logic.Comp) {
	type item struct {
		c        *logic.Comp
		expanded bool
	}
	stack := []item{{root, false}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := n.keys[it.c]; ok {
			continue
		}
		if !it.expanded {
			stack = append(stack, item{it.c, true})
			for _, arg := range it.c.Args {
				if a, ok := arg.(*logic.Comp); ok {
					stack = append(stack, item{a, false})
				}
			}
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s/%d(", strconv.Quote(it.c.Functor), len(it.c.Args))
		for i, arg := range it.c.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(n.id(n.key(arg))))
		}
		b.WriteByte(')')
		k := b.String()
		n.id(k)
		n.keys[it.c] = k
	}
}

func (n *Numbering) id(key string) int {
	id, ok := n.ids[key]
	if !ok {
		id = len(n.ids)
		n.ids[key] = id
	}
	return id
}

func (n *Numbering) key(term logic.Term) string {
	switch t := term.(type) {
	case logic.Var:
		return "V" + strconv.Quote(t.Name)
	case *logic.Comp:
		return n.keys[t]
	default:
		panic(fmt.Sprintf("wam.Numbering.key: unhandled type %T (%v)", term, term))
	}
}

func (n *Numbering) assign(term logic.Term) {
	reg := RegAddr(n.NumRegisters)
	n.NumRegisters++
	n.Registers[n.key(term)] = reg
	if x, ok := term.(logic.Var); ok {
		n.Vars[x] = reg
	}
}

// Reg returns the register assigned to a subterm.
func (n *Numbering) Reg(term logic.Term) (RegAddr, bool) {
	if c, ok := term.(*logic.Comp); ok {
		n.intern(c)
	}
	reg, ok := n.Registers[n.key(term)]
	return reg, ok
}

// collect walks the term depth-first with an explicit stack, collecting one
// root per distinct structure.
func (n *Numbering) collect(root *logic.Comp) {
	seen := make(map[RegAddr]struct{})
	stack := []*logic.Comp{root}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reg := n.Registers[n.key(c)]
		if _, ok := seen[reg]; ok {
			continue
		}
		seen[reg] = struct{}{}
		args := make([]RegAddr, len(c.Args))
		for i, arg := range c.Args {
			args[i] = n.Registers[n.key(arg)]
			if a, ok := arg.(*logic.Comp); ok {
				stack = append(stack, a)
			}
		}
		n.Roots = append(n.Roots, Root{Reg: reg, Functor: toFunctor(c), Args: args})
	}
	sort.Slice(n.Roots, func(i, j int) bool {
		return n.Roots[i].Reg < n.Roots[j].Reg
	})
}

// ---- Compilation

// Role tells whether code builds a term on the heap or matches against one.
type Role int

const (
	QueryRole Role = iota
	ProgramRole
)

func (r Role) String() string {
	switch r {
	case QueryRole:
		return "query"
	case ProgramRole:
		return "program"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole returns the Role with the given name.
func ParseRole(s string) (Role, error) {
	switch s {
	case "query":
		return QueryRole, nil
	case "program":
		return ProgramRole, nil
	default:
		return 0, errors.New("invalid role %q", s)
	}
}

// Code is a compiled term.
type Code struct {
	Role         Role
	Instructions []Instruction
	NumRegisters int

	// Register of each var in the compiled term.
	Vars map[logic.Var]RegAddr
}

func (c *Code) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%% %v", c.Role)
	for _, x := range c.sortedVars() {
		fmt.Fprintf(&b, "\n%% var %v: %v", x, c.Vars[x])
	}
	for _, instr := range c.Instructions {
		b.WriteString("\n")
		b.WriteString(instr.String())
	}
	return b.String()
}

// CompileQuery compiles a term into instructions that build it on the heap.
//
// A structure is built only after all structures it references as args, so
// that they are copied into it with SetValue. Among independent structures,
// the ones with higher registers are built first.
func CompileQuery(term logic.Term) (*Code, error) {
	n, err := Number(term)
	if err != nil {
		return nil, err
	}
	var instrs []Instruction
	seen := make(map[RegAddr]struct{})
	for _, root := range buildOrder(n.Roots) {
		seen[root.Reg] = struct{}{}
		instrs = append(instrs, PutStructure{root.Functor, root.Reg})
		for _, arg := range root.Args {
			if _, ok := seen[arg]; ok {
				instrs = append(instrs, SetValue{arg})
			} else {
				seen[arg] = struct{}{}
				instrs = append(instrs, SetVariable{arg})
			}
		}
	}
	return newCode(QueryRole, instrs, n), nil
}

// buildOrder returns roots in post-order of their dependencies, visiting
// roots and args from the highest register down.
func buildOrder(roots []Root) []Root {
	index := make(map[RegAddr]int, len(roots))
	for i, root := range roots {
		index[root.Reg] = i
	}
	type item struct {
		idx      int
		expanded bool
	}
	done := make(map[RegAddr]struct{}, len(roots))
	order := make([]Root, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack := []item{{i, false}}
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			root := roots[it.idx]
			if _, ok := done[root.Reg]; ok {
				continue
			}
			if it.expanded {
				done[root.Reg] = struct{}{}
				order = append(order, root)
				continue
			}
			stack = append(stack, item{it.idx, true})
			args := append([]RegAddr(nil), root.Args...)
			sort.Slice(args, func(i, j int) bool { return args[i] < args[j] })
			for _, arg := range args {
				j, ok := index[arg]
				if !ok {
					continue
				}
				if _, ok := done[arg]; !ok {
					stack = append(stack, item{j, false})
				}
			}
		}
	}
	return order
}

// CompileProgram compiles a term into instructions that match it against a
// term in the heap.
//
// Structures are matched in register order, starting from the outermost.
func CompileProgram(term logic.Term) (*Code, error) {
	n, err := Number(term)
	if err != nil {
		return nil, err
	}
	var instrs []Instruction
	seen := make(map[RegAddr]struct{})
	for _, root := range n.Roots {
		instrs = append(instrs, GetStructure{root.Functor, root.Reg})
		for _, arg := range root.Args {
			if _, ok := seen[arg]; ok {
				instrs = append(instrs, UnifyValue{arg})
			} else {
				seen[arg] = struct{}{}
				instrs = append(instrs, UnifyVariable{arg})
			}
		}
	}
	return newCode(ProgramRole, instrs, n), nil
}

// Compile compiles a term with the given role.
func Compile(role Role, term logic.Term) (*Code, error) {
	switch role {
	case QueryRole:
		return CompileQuery(term)
	case ProgramRole:
		return CompileProgram(term)
	default:
		panic(fmt.Sprintf("wam.Compile: unhandled role %v", role))
	}
}

func newCode(role Role, instrs []Instruction, n *Numbering) *Code {
	return &Code{
		Role:         role,
		Instructions: instrs,
		NumRegisters: n.NumRegisters,
		Vars:         n.Vars,
	}
}
