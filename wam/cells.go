package wam

import (
	"fmt"
)

func (m *Machine) cell(a Addr) Cell {
	if a < 0 || int(a) >= len(m.Heap) {
		panic(fmt.Sprintf("wam.Machine: heap address %v out of range (heap size %d)", a, len(m.Heap)))
	}
	return m.Heap[a]
}

func (m *Machine) reg(i RegAddr) Addr {
	if i < 0 || int(i) >= len(m.Reg) {
		panic(fmt.Sprintf("wam.Machine: register %v out of range (%d registers)", i, len(m.Reg)))
	}
	return m.Reg[i]
}

func (m *Machine) setReg(i RegAddr, a Addr) {
	if i < 0 || int(i) >= len(m.Reg) {
		panic(fmt.Sprintf("wam.Machine: register %v out of range (%d registers)", i, len(m.Reg)))
	}
	m.Reg[i] = a
}

// push appends a cell to the heap and returns its address.
func (m *Machine) push(c Cell) Addr {
	a := Addr(len(m.Heap))
	m.Heap = append(m.Heap, c)
	return a
}

// newRef pushes an unbound ref.
func (m *Machine) newRef() Addr {
	a := Addr(len(m.Heap))
	return m.push(Ref{a})
}

// newStr pushes a structure header followed by its functor, and returns the
// header's address. Args must be pushed right after.
func (m *Machine) newStr(fn Functor) Addr {
	a := Addr(len(m.Heap))
	m.push(Str{a + 1})
	m.push(fn)
	return a
}

// IsUnbound returns whether the cell at a is an unbound ref.
func (m *Machine) IsUnbound(a Addr) bool {
	ref, ok := m.cell(a).(Ref)
	return ok && ref.Addr == a
}

// Deref walks the reference chain from a until it finds a non-ref cell, or an
// unbound ref, and returns its address.
func (m *Machine) Deref(a Addr) Addr {
	for {
		ref, ok := m.cell(a).(Ref)
		if !ok || ref.Addr == a {
			return a
		}
		a = ref.Addr
	}
}

// Bind makes the unbound ref at a1 point to a2.
//
// It panics if a1 is not an unbound ref.
func (m *Machine) Bind(a1, a2 Addr) {
	if !m.IsUnbound(a1) {
		panic(fmt.Sprintf("wam.Machine.Bind: %v is not an unbound ref (%v)", a1, m.cell(a1)))
	}
	m.Heap[a1] = Ref{a2}
	logger().Debugf("bind %v -> %v", a1, a2)
}

// Unify unifies the terms at a1 and a2, binding unbound refs as necessary.
//
// It clears the fail flag at the start, and sets it if the terms don't unify.
// Bindings made before a conflict is found are not undone. It returns whether
// unification succeeded.
func (m *Machine) Unify(a1, a2 Addr) bool {
	m.Fail = false
	m.pdl = append(m.pdl[:0], a1, a2)
	for len(m.pdl) > 0 {
		n := len(m.pdl)
		d1 := m.Deref(m.pdl[n-1])
		d2 := m.Deref(m.pdl[n-2])
		m.pdl = m.pdl[:n-2]
		if d1 == d2 {
			continue
		}
		c1, c2 := m.cell(d1), m.cell(d2)
		if _, ok := c1.(Ref); ok {
			m.Bind(d1, d2)
			continue
		}
		if _, ok := c2.(Ref); ok {
			m.Bind(d2, d1)
			continue
		}
		s1, ok1 := c1.(Str)
		s2, ok2 := c2.(Str)
		if !ok1 || !ok2 {
			m.fail("cannot unify %v with %v", c1, c2)
			break
		}
		f1, f2 := m.cell(s1.Addr), m.cell(s2.Addr)
		if f1 != f2 {
			m.fail("cannot unify %v with %v", f1, f2)
			break
		}
		arity := f1.(Functor).Arity
		for i := 1; i <= arity; i++ {
			m.pdl = append(m.pdl, s1.Addr+Addr(i), s2.Addr+Addr(i))
		}
	}
	m.pdl = m.pdl[:0]
	return !m.Fail
}

func (m *Machine) fail(msg string, args ...interface{}) {
	m.Fail = true
	m.failReason = fmt.Sprintf(msg, args...)
	logger().Debugf("fail: %s", m.failReason)
}
