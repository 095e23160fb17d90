package wam

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/brunokim/l0/errors"
	"github.com/brunokim/l0/logic"
	"github.com/brunokim/l0/parser"
)

var (
	functorRE = regexp.MustCompile(`^(.+)/(\d+)$`)
	regRE     = regexp.MustCompile(`^X(\d+)$`)
	instrRE   = regexp.MustCompile(`^([a-z_]+)\s+(?:(.+?)\s*,\s*)?(\S+)$`)
	varRE     = regexp.MustCompile(`^var\s+(\S+)\s*:\s*(\S+)$`)
)

// ParseFunctor returns a Functor from a string like 'fn/3'. The name may be
// quoted, as in 'my fn'/3.
func ParseFunctor(s string) (Functor, error) {
	matches := functorRE.FindStringSubmatch(s)
	if len(matches) != 3 {
		return Functor{}, errors.New("%q doesn't match a functor pattern", s)
	}
	name, arityStr := matches[1], matches[2]
	arity, err := strconv.Atoi(arityStr)
	if err != nil {
		return Functor{}, errors.New("invalid arity for functor %q: %v", s, err)
	}
	if strings.HasPrefix(name, "'") || strings.HasPrefix(name, `"`) {
		term, err := parser.ParseTerm(name)
		if err != nil {
			return Functor{}, errors.New("invalid name for functor %q: %v", s, err)
		}
		c, ok := term.(*logic.Comp)
		if !ok || !c.IsAtom() {
			return Functor{}, errors.New("invalid name for functor %q: not an atom", s)
		}
		name = c.Functor
	}
	return Functor{name, arity}, nil
}

// ParseRegAddr returns a RegAddr from a string like 'X3'.
func ParseRegAddr(s string) (RegAddr, error) {
	matches := regRE.FindStringSubmatch(s)
	if len(matches) != 2 {
		return 0, errors.New("%q doesn't match a register pattern", s)
	}
	reg, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, errors.New("invalid register %q: %v", s, err)
	}
	return RegAddr(reg), nil
}

// ParseInstruction builds an instruction from its text form, as returned by
// its String method.
func ParseInstruction(text string) (Instruction, error) {
	text = strings.TrimSpace(text)
	matches := instrRE.FindStringSubmatch(text)
	if len(matches) != 4 {
		return nil, errors.New("%q doesn't match an instruction pattern", text)
	}
	name, functorStr, regStr := matches[1], matches[2], matches[3]
	reg, err := ParseRegAddr(regStr)
	if err != nil {
		return nil, errors.New("%s: %v", name, err)
	}
	switch name {
	case "put_structure", "get_structure":
		if functorStr == "" {
			return nil, errors.New("%s: missing functor", name)
		}
		fn, err := ParseFunctor(functorStr)
		if err != nil {
			return nil, errors.New("%s: %v", name, err)
		}
		if name == "put_structure" {
			return PutStructure{fn, reg}, nil
		}
		return GetStructure{fn, reg}, nil
	case "set_variable", "set_value", "unify_variable", "unify_value":
		if functorStr != "" {
			return nil, errors.New("%s: unexpected arg %q", name, functorStr)
		}
	default:
		return nil, errors.New("unknown instruction %q", name)
	}
	switch name {
	case "set_variable":
		return SetVariable{reg}, nil
	case "set_value":
		return SetValue{reg}, nil
	case "unify_variable":
		return UnifyVariable{reg}, nil
	default:
		return UnifyValue{reg}, nil
	}
}

// ParseCode builds compiled code from its text form, as returned by its String
// method: one instruction per line, and comment lines starting with '%'.
//
// Comments may hold the code role and the register of each var:
//
//	% query
//	% var X: X1
func ParseCode(text string) (*Code, error) {
	code := &Code{Role: QueryRole, Vars: make(map[logic.Var]RegAddr)}
	s := bufio.NewScanner(strings.NewReader(text))
	for lineno := 1; s.Scan(); lineno++ {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "%") {
			if err := code.parseComment(strings.TrimSpace(line[1:])); err != nil {
				return nil, errors.New("line %d: %v", lineno, err)
			}
			continue
		}
		instr, err := ParseInstruction(line)
		if err != nil {
			return nil, errors.New("line %d: %v", lineno, err)
		}
		code.Instructions = append(code.Instructions, instr)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading code: %w", err)
	}
	code.NumRegisters = NumRegisters(code.Instructions)
	for _, reg := range code.Vars {
		if int(reg) >= code.NumRegisters {
			code.NumRegisters = int(reg) + 1
		}
	}
	return code, nil
}

func (c *Code) parseComment(text string) error {
	if role, err := ParseRole(text); err == nil {
		c.Role = role
		return nil
	}
	matches := varRE.FindStringSubmatch(text)
	if len(matches) != 3 {
		// Free-form comment.
		return nil
	}
	if !logic.IsVar(matches[1]) {
		return errors.New("invalid var name %q", matches[1])
	}
	reg, err := ParseRegAddr(matches[2])
	if err != nil {
		return errors.New("var %s: %v", matches[1], err)
	}
	c.Vars[logic.NewVar(matches[1])] = reg
	return nil
}

// sortedVars returns the code vars ordered by register.
func (c *Code) sortedVars() []logic.Var {
	xs := make([]logic.Var, 0, len(c.Vars))
	for x := range c.Vars {
		xs = append(xs, x)
	}
	sort.Slice(xs, func(i, j int) bool {
		return c.Vars[xs[i]] < c.Vars[xs[j]]
	})
	return xs
}
