package wam

import (
	"fmt"

	"github.com/brunokim/l0/errors"
	"github.com/brunokim/l0/logic"
)

// ErrCyclicTerm is returned when reading back a term that contains itself.
var ErrCyclicTerm = errors.New("cyclic term")

func toFunctor(c *logic.Comp) Functor {
	ind := c.Indicator()
	return Functor{Name: ind.Name, Arity: ind.Arity}
}

// heapVar returns the var used to represent the unbound ref at a.
func heapVar(a Addr) logic.Var {
	return logic.NewVar(fmt.Sprintf("_H%d", a))
}

// ReadTerm reads back the term stored at a. Unbound refs are returned as vars
// named after their address, like _H12.
//
// Since there's no occurs check, the heap may hold cyclic terms, for which
// an error wrapping ErrCyclicTerm is returned.
func (m *Machine) ReadTerm(a Addr) (logic.Term, error) {
	r := &termReader{m: m, parents: make(map[Addr]struct{})}
	return r.read(a)
}

type termReader struct {
	m       *Machine
	parents map[Addr]struct{}
}

func (r *termReader) read(a Addr) (logic.Term, error) {
	a = r.m.Deref(a)
	switch c := r.m.cell(a).(type) {
	case Ref:
		return heapVar(a), nil
	case Str:
		if _, ok := r.parents[c.Addr]; ok {
			return nil, errors.New("reading %v: %v", a, ErrCyclicTerm)
		}
		r.parents[c.Addr] = struct{}{}
		defer delete(r.parents, c.Addr)
		fn, ok := r.m.cell(c.Addr).(Functor)
		if !ok {
			return nil, errors.New("reading %v: expected functor at %v, got %v", a, c.Addr, r.m.cell(c.Addr))
		}
		args := make([]logic.Term, fn.Arity)
		for i := range args {
			arg, err := r.read(c.Addr + Addr(i+1))
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return logic.NewComp(fn.Name, args...), nil
	default:
		return nil, errors.New("reading %v: not a term: %v", a, c)
	}
}

// Bindings reads back the value of each var from the register file reg.
func (m *Machine) Bindings(vars map[logic.Var]RegAddr, reg []Addr) (map[logic.Var]logic.Term, error) {
	bindings := make(map[logic.Var]logic.Term, len(vars))
	for x, i := range vars {
		if i < 0 || int(i) >= len(reg) {
			return nil, errors.New("var %v: register %v out of range (%d registers)", x, i, len(reg))
		}
		term, err := m.ReadTerm(reg[i])
		if err != nil {
			return nil, errors.New("var %v: %v", x, err)
		}
		bindings[x] = term
	}
	return bindings, nil
}
