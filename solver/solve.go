// Package solver unifies a query term against a program term by compiling
// both and running them on the same machine.
package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/brunokim/l0/errors"
	"github.com/brunokim/l0/logic"
	"github.com/brunokim/l0/parser"
	"github.com/brunokim/l0/wam"
)

func logger() commonlog.Logger {
	return commonlog.GetLogger("l0.solver")
}

// Options configures a Solver.
type Options struct {
	// Register shared between the query and program runs. The outermost
	// term is always at register 0, and the other registers of both runs are
	// unrelated, so any other value only makes sense for hand-written code.
	LinkRegister int

	// File to append the machine's debug trace, if not empty.
	DebugFilename string
}

// Solver runs query and program code on a fresh machine per call.
type Solver struct {
	opts Options
}

// Bindings maps each var of a term to its value after unification.
type Bindings map[logic.Var]logic.Term

func (b Bindings) String() string {
	xs := make([]logic.Var, 0, len(b))
	for x := range b {
		xs = append(xs, x)
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].Name < xs[j].Name })
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%v = %v", x, b[x])
	}
	return strings.Join(parts, ", ")
}

// Result holds the machine state after running a query and a program.
type Result struct {
	Query, Program       *wam.Code
	QueryReg, ProgramReg []wam.Addr

	// Failure of the program run, or nil if unification succeeded.
	Fail *wam.FailError

	Machine *wam.Machine
}

// Ok returns whether the program unified with the query.
func (r *Result) Ok() bool {
	return r.Fail == nil
}

// QueryBindings reads back the values of the query vars.
func (r *Result) QueryBindings() (Bindings, error) {
	return r.Machine.Bindings(r.Query.Vars, r.QueryReg)
}

// ProgramBindings reads back the values of the program vars.
func (r *Result) ProgramBindings() (Bindings, error) {
	return r.Machine.Bindings(r.Program.Vars, r.ProgramReg)
}

// String formats the bindings of each side in a line, or the failure.
//
// Values are formatted directly from the heap, so cyclic terms are shown with
// labels instead of returning an error.
func (r *Result) String() string {
	if !r.Ok() {
		return fmt.Sprintf("false: %v", r.Fail)
	}
	return fmt.Sprintf("query: %s\nprogram: %s",
		r.formatVars(r.Query, r.QueryReg),
		r.formatVars(r.Program, r.ProgramReg))
}

func (r *Result) formatVars(code *wam.Code, reg []wam.Addr) string {
	if len(code.Vars) == 0 {
		return "true"
	}
	xs := make([]logic.Var, 0, len(code.Vars))
	for x := range code.Vars {
		xs = append(xs, x)
	}
	sort.Slice(xs, func(i, j int) bool { return code.Vars[xs[i]] < code.Vars[xs[j]] })
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%v = %s", x, r.Machine.FormatAddr(reg[code.Vars[x]]))
	}
	return strings.Join(parts, ", ")
}

// New returns a solver with the given options.
func New(opts Options) *Solver {
	return &Solver{opts: opts}
}

// Unify compiles query and program, and runs them in sequence.
//
// A failed unification is not an error: it's reported in Result.Fail.
func (s *Solver) Unify(query, program logic.Term) (*Result, error) {
	qcode, err := wam.CompileQuery(query)
	if err != nil {
		return nil, errors.New("compiling query: %v", err)
	}
	pcode, err := wam.CompileProgram(program)
	if err != nil {
		return nil, errors.New("compiling program: %v", err)
	}
	return s.Run(qcode, pcode)
}

// UnifyText parses text in the form "query = program" and unifies both sides.
func (s *Solver) UnifyText(text string) (*Result, error) {
	query, program, err := parser.ParseUnification(text)
	if err != nil {
		return nil, err
	}
	return s.Unify(query, program)
}

// ErrInvalidCode is returned when running code that breaks a machine
// contract, like reading a heap cell that was never written. Compiled code
// never does that, but assembled or decoded code may.
var ErrInvalidCode = errors.New("invalid code")

// Run executes already compiled query and program code.
func (s *Solver) Run(query, program *wam.Code) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger().Errorf("recovered from machine panic: %v", r)
			res, err = nil, errors.New("%v: %v", ErrInvalidCode, r)
		}
	}()
	if query.Role != wam.QueryRole {
		return nil, errors.New("expected query code, got %v", query.Role)
	}
	if program.Role != wam.ProgramRole {
		return nil, errors.New("expected program code, got %v", program.Role)
	}
	link := s.opts.LinkRegister
	if link < 0 || link >= query.NumRegisters || link >= program.NumRegisters {
		return nil, errors.New("link register X%d out of range (query: %d, program: %d registers)",
			link, query.NumRegisters, program.NumRegisters)
	}
	m := wam.NewMachine()
	m.DebugFilename = s.opts.DebugFilename
	res = &Result{Query: query, Program: program, Machine: m}

	res.QueryReg, err = m.RunCode(query)
	if err != nil {
		return nil, errors.New("running query: %v", err)
	}
	res.ProgramReg = make([]wam.Addr, program.NumRegisters)
	res.ProgramReg[link] = res.QueryReg[link]
	err = m.Run(program.Instructions, res.ProgramReg)
	if fail, ok := err.(*wam.FailError); ok {
		logger().Debugf("unification failed: %v", fail)
		res.Fail = fail
		return res, nil
	}
	if err != nil {
		return nil, errors.New("running program: %v", err)
	}
	logger().Debugf("unified with %d heap cells", len(m.Heap))
	return res, nil
}
