// Package suite runs scenario files: named query/program pairs with their
// expected outcome and bindings.
//
// A scenario file is YAML:
//
//	scenarios:
//	  - name: shared var
//	    query: f(X, g(X, a))
//	    program: f(b, Y)
//	    query_bindings:
//	      X: b
//	    program_bindings:
//	      Y: g(b, a)
//	  - name: functor clash
//	    query: f(a)
//	    program: f(b)
//	    expect: failure
//
// Expected bindings are compared with the actual ones up to variable renaming,
// so unbound vars may be written with any name. Terms with commas must not be
// written in YAML flow style, and quoted atoms need to be quoted again for YAML.
package suite

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"github.com/brunokim/l0/errors"
	"github.com/brunokim/l0/logic"
	"github.com/brunokim/l0/parser"
	"github.com/brunokim/l0/solver"
)

func logger() commonlog.Logger {
	return commonlog.GetLogger("l0.suite")
}

// Outcome is the expected result of a scenario.
type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
)

// Suite is a list of scenarios.
type Suite struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario describes a single unification between a query and a program.
type Scenario struct {
	Name    string `yaml:"name"`
	Query   string `yaml:"query"`
	Program string `yaml:"program"`

	// Expect defaults to "success".
	Expect Outcome `yaml:"expect,omitempty"`

	// Expected bindings of each side, from var name to term text. Only
	// checked on success.
	QueryBindings   map[string]string `yaml:"query_bindings,omitempty"`
	ProgramBindings map[string]string `yaml:"program_bindings,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses scenario file contents. The path is only used for error
// messages.
func Parse(data []byte, path string) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Suite) validate(path string) error {
	if len(s.Scenarios) == 0 {
		return errors.New("%s: no scenarios defined", path)
	}
	names := make(map[string]int)
	for i := range s.Scenarios {
		sc := &s.Scenarios[i]
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("#%d", i)
		}
		if j, ok := names[sc.Name]; ok {
			return errors.New("%s: scenarios[%d]: name %q already used by scenarios[%d]", path, i, sc.Name, j)
		}
		names[sc.Name] = i
		if sc.Query == "" || sc.Program == "" {
			return errors.New("%s: scenarios[%d] (%s): query and program are required", path, i, sc.Name)
		}
		switch sc.Expect {
		case "":
			sc.Expect = Success
		case Success, Failure:
		default:
			return errors.New("%s: scenarios[%d] (%s): invalid expect %q, want %q or %q",
				path, i, sc.Name, sc.Expect, Success, Failure)
		}
		if sc.Expect == Failure && (len(sc.QueryBindings) > 0 || len(sc.ProgramBindings) > 0) {
			return errors.New("%s: scenarios[%d] (%s): bindings given for expected failure", path, i, sc.Name)
		}
	}
	return nil
}

// ---- Running

// Report is the outcome of running a scenario.
type Report struct {
	Scenario Scenario

	// Error preventing the scenario from running, like a parse error.
	Err error

	// Differences between expected and actual results.
	Problems []string

	Result *solver.Result
}

// Passed returns whether the scenario ran as expected.
func (r Report) Passed() bool {
	return r.Err == nil && len(r.Problems) == 0
}

func (r Report) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("ERROR %s: %v", r.Scenario.Name, r.Err)
	case len(r.Problems) > 0:
		return fmt.Sprintf("FAIL %s:\n  %s", r.Scenario.Name, strings.Join(r.Problems, "\n  "))
	default:
		return fmt.Sprintf("ok %s", r.Scenario.Name)
	}
}

// Run runs all scenarios with sol, in order.
func (s *Suite) Run(sol *solver.Solver) []Report {
	reports := make([]Report, len(s.Scenarios))
	for i, sc := range s.Scenarios {
		reports[i] = sc.Run(sol)
		logger().Infof("%v", reports[i])
	}
	return reports
}

// Run runs a single scenario with sol.
func (sc Scenario) Run(sol *solver.Solver) Report {
	r := Report{Scenario: sc}
	query, err := parser.ParseTerm(sc.Query)
	if err != nil {
		r.Err = errors.New("query: %v", err)
		return r
	}
	program, err := parser.ParseTerm(sc.Program)
	if err != nil {
		r.Err = errors.New("program: %v", err)
		return r
	}
	r.Result, err = sol.Unify(query, program)
	if err != nil {
		r.Err = err
		return r
	}
	if !r.Result.Ok() {
		if sc.Expect != Failure {
			r.Problems = append(r.Problems, fmt.Sprintf("want success, got %v", r.Result.Fail))
		}
		return r
	}
	if sc.Expect == Failure {
		r.Problems = append(r.Problems, "want failure, got success")
		return r
	}
	if len(sc.QueryBindings) == 0 && len(sc.ProgramBindings) == 0 {
		return r
	}
	qb, err := r.Result.QueryBindings()
	if err != nil {
		r.Err = errors.New("query bindings: %v", err)
		return r
	}
	pb, err := r.Result.ProgramBindings()
	if err != nil {
		r.Err = errors.New("program bindings: %v", err)
		return r
	}
	r.Problems, r.Err = compareBindings(sc, qb, pb)
	return r
}

// bindingKey identifies an expected binding.
type bindingKey struct {
	side string
	name string
}

func sortedKeys(sc Scenario) []bindingKey {
	var keys []bindingKey
	for name := range sc.QueryBindings {
		keys = append(keys, bindingKey{"query", name})
	}
	for name := range sc.ProgramBindings {
		keys = append(keys, bindingKey{"program", name})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].side != keys[j].side {
			return keys[i].side > keys[j].side
		}
		return keys[i].name < keys[j].name
	})
	return keys
}

// compareBindings checks all expected bindings at once, so that vars shared
// between values must be shared in the heap as well.
func compareBindings(sc Scenario, qb, pb solver.Bindings) ([]string, error) {
	keys := sortedKeys(sc)
	texts := make([]string, len(keys))
	got := make([]logic.Term, len(keys))
	var problems []string
	for i, k := range keys {
		bindings, want := qb, sc.QueryBindings
		if k.side == "program" {
			bindings, want = pb, sc.ProgramBindings
		}
		texts[i] = want[k.name]
		if !logic.IsVar(k.name) {
			return nil, errors.New("%s bindings: invalid var name %q", k.side, k.name)
		}
		term, ok := bindings[logic.NewVar(k.name)]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s var %s: not present", k.side, k.name))
			term = logic.AnonymousVar
		}
		got[i] = term
	}
	if len(problems) > 0 {
		return problems, nil
	}
	// Parse all values as args of a single term, so that vars are shared.
	wantTerm, err := parser.ParseTerm(fmt.Sprintf("bindings(%s)", strings.Join(texts, ", ")))
	if err != nil {
		return nil, errors.New("expected bindings: %v", err)
	}
	want := wantTerm.(*logic.Comp).Args
	if len(want) != len(got) {
		return nil, errors.New("expected bindings: got %d values for %d vars", len(want), len(got))
	}
	if logic.Variant(logic.NewComp("bindings", want...), logic.NewComp("bindings", got...)) {
		return nil, nil
	}
	for i, k := range keys {
		if !logic.Variant(want[i], got[i]) {
			problems = append(problems, fmt.Sprintf("%s var %s: want %v, got %v", k.side, k.name, want[i], got[i]))
		}
	}
	if len(problems) == 0 {
		problems = append(problems, fmt.Sprintf("bindings share vars differently: want %v, got %v", want, got))
	}
	return problems, nil
}

// Summary counts passed and failed reports.
func Summary(reports []Report) (passed, failed int) {
	for _, r := range reports {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return
}
