package wam_test

import (
	"github.com/brunokim/l0/dsl"
	"github.com/brunokim/l0/logic"
	"github.com/brunokim/l0/wam"
)

type (
	functor = wam.Functor
	reg     = wam.RegAddr
	addr    = wam.Addr
	ref     = wam.Ref
	str     = wam.Str

	put_structure  = wam.PutStructure
	set_variable   = wam.SetVariable
	set_value      = wam.SetValue
	get_structure  = wam.GetStructure
	unify_variable = wam.UnifyVariable
	unify_value    = wam.UnifyValue
)

var (
	atom = dsl.Atom
	comp = dsl.Comp
	var_ = dsl.Var
)

// runPair runs query and then program on a fresh machine, sharing the
// register of the outermost term.
func runPair(query, program logic.Term) (m *wam.Machine, qcode, pcode *wam.Code, qreg, preg []wam.Addr, err error) {
	qcode, err = wam.CompileQuery(query)
	if err != nil {
		return
	}
	pcode, err = wam.CompileProgram(program)
	if err != nil {
		return
	}
	m = wam.NewMachine()
	qreg, err = m.RunCode(qcode)
	if err != nil {
		return
	}
	preg = make([]wam.Addr, pcode.NumRegisters)
	preg[0] = qreg[0]
	err = m.Run(pcode.Instructions, preg)
	return
}
