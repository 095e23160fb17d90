package suite_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/brunokim/l0/solver"
	"github.com/brunokim/l0/suite"
	"github.com/brunokim/l0/test_helpers"
)

func TestLoad(t *testing.T) {
	s, err := suite.Load("testdata/scenarios.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	reports := s.Run(solver.New(solver.Options{}))
	for _, r := range reports {
		if !r.Passed() {
			t.Errorf("%v", r)
		}
	}
	if passed, failed := suite.Summary(reports); passed != 5 || failed != 0 {
		t.Errorf("Summary: got %d passed, %d failed, want 5 passed", passed, failed)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := suite.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !os.IsNotExist(unwrapAll(err)) {
		t.Errorf("Load: got err %v, want not exist", err)
	}
}

func unwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok || u.Unwrap() == nil {
			return err
		}
		err = u.Unwrap()
	}
}

func TestParse(t *testing.T) {
	data := test_helpers.Dedent(`
		scenarios:
		  - query: f(X)
		    program: f(a)
		  - name: clash
		    query: f(a)
		    program: g(a)
		    expect: failure
	`)
	got, err := suite.Parse([]byte(data), "test.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &suite.Suite{Scenarios: []suite.Scenario{
		{Name: "#0", Query: "f(X)", Program: "f(a)", Expect: suite.Success},
		{Name: "clash", Query: "f(a)", Program: "g(a)", Expect: suite.Failure},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse: (-want, +got)%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{"scenarios: []", "no scenarios defined"},
		{"scenarios: [", "parsing test.yaml"},
		{`
scenarios:
  - name: a
    query: f(X)
    program: f(a)
  - name: a
    query: f(X)
    program: f(b)
`, `name "a" already used by scenarios[0]`},
		{`
scenarios:
  - query: f(X)
`, "query and program are required"},
		{`
scenarios:
  - query: f(X)
    program: f(a)
    expect: maybe
`, `invalid expect "maybe"`},
		{`
scenarios:
  - query: f(X)
    program: f(a)
    expect: failure
    query_bindings:
      X: a
`, "bindings given for expected failure"},
	}
	for _, test := range tests {
		_, err := suite.Parse([]byte(test.data), "test.yaml")
		if err == nil {
			t.Errorf("Parse(%q): want err, got nil", test.data)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("Parse(%q): got err %q, want it to contain %q", test.data, err, test.want)
		}
	}
}

func TestScenario_Run(t *testing.T) {
	tests := []struct {
		sc           suite.Scenario
		wantErr      bool
		wantProblems []string
	}{
		{
			sc: suite.Scenario{Name: "pass", Query: "f(X)", Program: "f(a)", Expect: suite.Success,
				QueryBindings: map[string]string{"X": "a"}},
		},
		{
			sc: suite.Scenario{Name: "wrong binding", Query: "f(X)", Program: "f(a)", Expect: suite.Success,
				QueryBindings: map[string]string{"X": "b"}},
			wantProblems: []string{"query var X: want b, got a"},
		},
		{
			sc: suite.Scenario{Name: "missing var", Query: "f(X)", Program: "f(a)", Expect: suite.Success,
				ProgramBindings: map[string]string{"X": "a"}},
			wantProblems: []string{"program var X: not present"},
		},
		{
			sc:           suite.Scenario{Name: "unexpected failure", Query: "f(a)", Program: "f(b)", Expect: suite.Success},
			wantProblems: []string{"want success, got get_structure b/0, X1 (instruction 2): expected b/0, got a/0"},
		},
		{
			sc:           suite.Scenario{Name: "unexpected success", Query: "f(a)", Program: "f(a)", Expect: suite.Failure},
			wantProblems: []string{"want failure, got success"},
		},
		{
			sc: suite.Scenario{Name: "different sharing", Query: "f(X, Y)", Program: "f(a, Z)", Expect: suite.Success,
				QueryBindings:   map[string]string{"Y": "A"},
				ProgramBindings: map[string]string{"Z": "B"}},
			wantProblems: []string{"bindings share vars differently: want [A B], got [_H3 _H3]"},
		},
		{
			sc:      suite.Scenario{Name: "parse error", Query: "f(X", Program: "f(a)", Expect: suite.Success},
			wantErr: true,
		},
		{
			sc:      suite.Scenario{Name: "bare var", Query: "X", Program: "f(a)", Expect: suite.Success},
			wantErr: true,
		},
	}
	s := solver.New(solver.Options{})
	for _, test := range tests {
		t.Run(test.sc.Name, func(t *testing.T) {
			r := test.sc.Run(s)
			if (r.Err != nil) != test.wantErr {
				t.Fatalf("Run: got err %v, want err: %t", r.Err, test.wantErr)
			}
			if diff := cmp.Diff(test.wantProblems, r.Problems); diff != "" {
				t.Errorf("Run: problems (-want, +got)%s", diff)
			}
			if r.Passed() != (!test.wantErr && len(test.wantProblems) == 0) {
				t.Errorf("Passed() = %t", r.Passed())
			}
		})
	}
}

func TestReport_String(t *testing.T) {
	r := suite.Report{
		Scenario: suite.Scenario{Name: "x"},
		Problems: []string{"p1", "p2"},
	}
	if got, want := r.String(), "FAIL x:\n  p1\n  p2"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
