// Package fuzz has go-fuzz entry points.
package fuzz

import (
	"errors"
	"fmt"

	"github.com/brunokim/l0/logic"
	"github.com/brunokim/l0/parser"
	"github.com/brunokim/l0/solver"
	"github.com/brunokim/l0/wam"
)

// Fuzz parses data as a unification, and runs it. It panics if the
// compiled code can't be round-tripped through its text and binary forms, if
// the query code doesn't build the query term, or if the result can't be
// read back.
func Fuzz(data []byte) int {
	query, program, err := parser.ParseUnification(string(data))
	if err != nil {
		return 0
	}
	qcode, err := wam.CompileQuery(query)
	if err != nil {
		return 0
	}
	pcode, err := wam.CompileProgram(program)
	if err != nil {
		return 0
	}
	for _, code := range []*wam.Code{qcode, pcode} {
		roundTrip(code)
	}
	checkQuery(query, qcode)
	res, err := solver.New(solver.Options{}).Run(qcode, pcode)
	if err != nil {
		panic(err)
	}
	if res.Ok() {
		// Read back must succeed or find a cycle.
		if _, err := res.QueryBindings(); err != nil && !errors.Is(err, wam.ErrCyclicTerm) {
			panic(err)
		}
		if _, err := res.ProgramBindings(); err != nil && !errors.Is(err, wam.ErrCyclicTerm) {
			panic(err)
		}
		if s := res.String(); s == "" {
			panic("empty result text")
		}
	}
	return 1
}

func roundTrip(code *wam.Code) {
	text := code.String()
	parsed, err := wam.ParseCode(text)
	if err != nil {
		panic(err)
	}
	if parsed.String() != text {
		panic("text round trip mismatch:\n" + text + "\n---\n" + parsed.String())
	}
	data, err := wam.MarshalCode(code)
	if err != nil {
		panic(err)
	}
	decoded, err := wam.UnmarshalCode(data)
	if err != nil {
		panic(err)
	}
	if decoded.String() != text {
		panic("binary round trip mismatch:\n" + text + "\n---\n" + decoded.String())
	}
}

// checkQuery runs the query code alone and reads back the built term.
func checkQuery(query logic.Term, code *wam.Code) {
	m := wam.NewMachine()
	reg, err := m.RunCode(code)
	if err != nil {
		panic(err)
	}
	got, err := m.ReadTerm(reg[0])
	if err != nil {
		panic(err)
	}
	if !logic.Variant(query, got) {
		panic(fmt.Sprintf("query %v built %v", query, got))
	}
}
