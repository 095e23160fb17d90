// Package dsl provides short constructors for logic terms.
package dsl

import (
	"github.com/brunokim/l0/logic"
)

func Terms(terms ...logic.Term) []logic.Term {
	return terms
}

func Atom(name string) *logic.Comp {
	return logic.NewAtom(name)
}

func Var(name string) logic.Var {
	return logic.NewVar(name)
}

func Comp(functor string, args ...logic.Term) *logic.Comp {
	return logic.NewComp(functor, args...)
}

func Indicator(name string, arity int) logic.Indicator {
	return logic.Indicator{Name: name, Arity: arity}
}
