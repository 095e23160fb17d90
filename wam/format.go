package wam

import (
	"fmt"
	"strings"

	"github.com/brunokim/l0/logic"
)

// FormatAddr returns the term stored at a in text form.
//
// Unbound refs are shown as _H<addr>. A structure that contains itself is
// labeled with =_S<n>, and inner references to it are shown as the label.
func (m *Machine) FormatAddr(a Addr) string {
	ctx := &formatCtx{
		m:       m,
		b:       new(strings.Builder),
		parents: make(map[Addr]struct{}),
		loops:   make(map[Addr]string),
	}
	ctx.format(a)
	return ctx.b.String()
}

type formatCtx struct {
	m       *Machine
	b       *strings.Builder
	parents map[Addr]struct{}
	loops   map[Addr]string
	id      int
}

func (ctx *formatCtx) format(a Addr) {
	a = ctx.m.Deref(a)
	var p Addr
	switch c := ctx.m.cell(a).(type) {
	case Ref:
		fmt.Fprintf(ctx.b, "_H%d", a)
		return
	case Str:
		p = c.Addr
	default:
		fmt.Fprintf(ctx.b, "<%v>", c)
		return
	}
	// Handle self-reference.
	if _, ok := ctx.parents[p]; ok {
		label, ok := ctx.loops[p]
		if !ok {
			ctx.id++
			label = fmt.Sprintf("_S%d", ctx.id)
			ctx.loops[p] = label
		}
		ctx.b.WriteString(label)
		return
	}
	ctx.parents[p] = struct{}{}
	defer delete(ctx.parents, p)
	fn, ok := ctx.m.cell(p).(Functor)
	if !ok {
		fmt.Fprintf(ctx.b, "<%v>", ctx.m.cell(p))
		return
	}
	ctx.b.WriteString(logic.FormatAtom(fn.Name))
	if fn.Arity > 0 {
		ctx.b.WriteString("(")
		for i := 1; i <= fn.Arity; i++ {
			ctx.format(p + Addr(i))
			if i < fn.Arity {
				ctx.b.WriteString(", ")
			}
		}
		ctx.b.WriteString(")")
	}
	// Annotate parents that loop.
	if label, ok := ctx.loops[p]; ok {
		delete(ctx.loops, p)
		fmt.Fprintf(ctx.b, "=%s", label)
	}
}

// DumpHeap returns the heap contents, one cell per line.
func (m *Machine) DumpHeap() string {
	lines := make([]string, len(m.Heap))
	for i, c := range m.Heap {
		lines[i] = fmt.Sprintf("%v: %v", Addr(i), c)
	}
	return strings.Join(lines, "\n")
}

// DumpRegisters returns the register file contents, one register per line,
// along with the term each one refers to.
func (m *Machine) DumpRegisters() string {
	lines := make([]string, len(m.Reg))
	for i, a := range m.Reg {
		if a < 0 || int(a) >= len(m.Heap) {
			lines[i] = fmt.Sprintf("%v: %v", RegAddr(i), a)
			continue
		}
		lines[i] = fmt.Sprintf("%v: %v %s", RegAddr(i), a, m.FormatAddr(a))
	}
	return strings.Join(lines, "\n")
}

func (m *Machine) String() string {
	return fmt.Sprintf(`%% %p
heap:
%s
registers:
%s
unification_mode: %v
s: %v
fail: %t`,
		m, indent(m.DumpHeap()), indent(m.DumpRegisters()), m.Mode, m.S, m.Fail)
}

func indent(s string) string {
	if s == "" {
		return s
	}
	return "\t" + strings.ReplaceAll(s, "\n", "\n\t")
}
