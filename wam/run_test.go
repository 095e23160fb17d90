package wam_test

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brunokim/l0/logic"
	"github.com/brunokim/l0/test_helpers"
	"github.com/brunokim/l0/wam"

	"github.com/google/go-cmp/cmp"
)

func TestRun_BuildQuery(t *testing.T) {
	code, err := wam.CompileQuery(comp("f", var_("X"), comp("g", var_("X"), atom("a"))))
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	m := wam.NewMachine()
	reg, err := m.RunCode(code)
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	want := []wam.Cell{
		str{1},
		functor{"a", 0},
		str{3},
		functor{"g", 2},
		ref{4},
		str{1},
		str{7},
		functor{"f", 2},
		ref{4},
		str{3},
	}
	if diff := cmp.Diff(want, m.Heap); diff != "" {
		t.Errorf("heap: (-want, +got)\n%s", diff)
	}
	if diff := cmp.Diff([]addr{6, 4, 2, 0}, reg); diff != "" {
		t.Errorf("registers: (-want, +got)\n%s", diff)
	}
	if got := m.FormatAddr(reg[0]); got != "f(_H4, g(_H4, a))" {
		t.Errorf("query = %s", got)
	}
}

func TestRun_BindingPropagation(t *testing.T) {
	m, qcode, pcode, qreg, preg, err := runPair(
		comp("f", var_("X"), comp("g", var_("X"), atom("a"))),
		comp("f", atom("b"), var_("Y")))
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	if m.Fail {
		t.Fatalf("fail flag is set")
	}
	x := m.Deref(qreg[qcode.Vars[var_("X")]])
	if c, ok := m.Heap[x].(str); !ok || m.Heap[c.Addr] != (functor{"b", 0}) {
		t.Errorf("X = %v, want structure b/0", m.Heap[x])
	}
	if got := m.FormatAddr(preg[pcode.Vars[var_("Y")]]); got != "g(b, a)" {
		t.Errorf("Y = %s, want g(b, a)", got)
	}
	want := test_helpers.Dedent(`
		#0: STR #1
		#1: a/0
		#2: STR #3
		#3: g/2
		#4: REF #10
		#5: STR #1
		#6: STR #7
		#7: f/2
		#8: REF #4
		#9: STR #3
		#10: STR #11
		#11: b/0`)
	if diff := cmp.Diff(want, m.DumpHeap()); diff != "" {
		t.Errorf("heap: (-want, +got)\n%s", diff)
	}
}

func TestRun_NestedBindings(t *testing.T) {
	m, qcode, pcode, qreg, preg, err := runPair(
		comp("p", var_("Z"), comp("h", var_("Z"), var_("W")), comp("f", var_("W"))),
		comp("p", comp("f", var_("X")), comp("h", var_("Y"), comp("f", atom("a"))), var_("Y")))
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	qbindings, err := m.Bindings(qcode.Vars, qreg)
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	pbindings, err := m.Bindings(pcode.Vars, preg)
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	want := map[logic.Var]logic.Term{
		var_("Z"): comp("f", comp("f", atom("a"))),
		var_("W"): comp("f", atom("a")),
	}
	if diff := cmp.Diff(want, qbindings, test_helpers.EquateTerms); diff != "" {
		t.Errorf("query bindings: (-want, +got)\n%s", diff)
	}
	want = map[logic.Var]logic.Term{
		var_("X"): comp("f", atom("a")),
		var_("Y"): comp("f", comp("f", atom("a"))),
	}
	if diff := cmp.Diff(want, pbindings, test_helpers.EquateTerms); diff != "" {
		t.Errorf("program bindings: (-want, +got)\n%s", diff)
	}
	if len(m.Heap) != 20 {
		t.Errorf("len(heap) = %d, want 20", len(m.Heap))
	}
}

func TestRun_Mismatch(t *testing.T) {
	m, _, _, _, _, err := runPair(comp("f", atom("b")), comp("f", atom("a")))
	var failErr *wam.FailError
	if !errors.As(err, &failErr) {
		t.Fatalf("got err %v, want *FailError", err)
	}
	if !m.Fail {
		t.Errorf("fail flag is not set")
	}
	want := &wam.FailError{
		Pos:    2,
		Instr:  get_structure{functor{"a", 0}, 1},
		Reason: "expected a/0, got b/0",
	}
	if diff := cmp.Diff(want, failErr); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
	if got := err.Error(); got != "get_structure a/0, X1 (instruction 2): expected a/0, got b/0" {
		t.Errorf("Error() = %q", got)
	}
}

func TestRun_MismatchInUnify(t *testing.T) {
	// The conflict is found when unifying X with the second arg.
	_, _, _, _, _, err := runPair(
		comp("f", comp("g", atom("a")), comp("g", atom("b"))),
		comp("f", var_("X"), var_("X")))
	var failErr *wam.FailError
	if !errors.As(err, &failErr) {
		t.Fatalf("got err %v, want *FailError", err)
	}
	if failErr.Instr != (unify_value{1}) {
		t.Errorf("failed at %v, want unify_value X1", failErr.Instr)
	}
	if failErr.Reason != "cannot unify a/0 with b/0" && failErr.Reason != "cannot unify b/0 with a/0" {
		t.Errorf("reason = %q", failErr.Reason)
	}
}

func TestRun_StopsOnFail(t *testing.T) {
	m := wam.NewMachine()
	m.Heap = []wam.Cell{str{1}, functor{"a", 0}}
	code := []wam.Instruction{
		get_structure{functor{"b", 0}, 0},
		unify_variable{1},
	}
	reg := []addr{0, 0}
	err := m.Run(code, reg)
	if err == nil {
		t.Fatalf("expected failure")
	}
	if reg[1] != 0 {
		t.Errorf("instruction after failure was executed")
	}
	// A new run clears the flag.
	if err := m.Run(nil, nil); err != nil || m.Fail {
		t.Errorf("got err %v, fail %v", err, m.Fail)
	}
}

func TestRun_GroundRoundTrip(t *testing.T) {
	terms := []logic.Term{
		atom("a"),
		comp("f", atom("a"), atom("b")),
		comp("g", comp("f", atom("a")), comp("h", comp("f", atom("a")), atom("c"))),
		comp("p", comp("q", comp("r", comp("s", atom("t"))))),
		comp("f", atom("a"), comp("g", atom("a"))),
		comp("f", comp("g", atom("a")), comp("h", comp("g", atom("a")))),
	}
	for _, term := range terms {
		// The query alone must build the term.
		qcode, _ := wam.CompileQuery(term)
		qm := wam.NewMachine()
		qr, _ := qm.RunCode(qcode)
		if got, err := qm.ReadTerm(qr[0]); err != nil || !logic.Eq(term, got) {
			t.Errorf("%v: query built %v (err: %v)", term, got, err)
		}
		m, _, _, qreg, preg, err := runPair(term, term)
		if err != nil {
			t.Errorf("%v: got err: %v", term, err)
			continue
		}
		for i := range preg {
			got, err := m.ReadTerm(preg[i])
			if err != nil {
				t.Errorf("%v: X%d: got err: %v", term, i, err)
				continue
			}
			if !logic.IsGround(got) {
				t.Errorf("%v: X%d = %v is not ground", term, i, got)
			}
		}
		got, err := m.ReadTerm(qreg[0])
		if err != nil || !logic.Eq(term, got) {
			t.Errorf("%v: read back %v (err: %v)", term, got, err)
		}
	}
}

func TestRun_RepeatedStructureMismatch(t *testing.T) {
	tests := []struct {
		query, program logic.Term
		reason         string
	}{
		{
			comp("f", atom("a"), comp("g", atom("a"))),
			comp("f", atom("b"), comp("g", atom("b"))),
			"expected b/0, got a/0",
		},
		{
			comp("g", comp("f", atom("a")), comp("h", comp("f", atom("a")), atom("c"))),
			comp("g", comp("f", atom("b")), comp("h", comp("f", atom("b")), atom("c"))),
			"expected b/0, got a/0",
		},
	}
	for _, test := range tests {
		m, _, _, qreg, _, err := runPair(test.query, test.program)
		var failErr *wam.FailError
		if !errors.As(err, &failErr) {
			t.Errorf("%v = %v: got err %v, want failure", test.query, test.program, err)
			continue
		}
		if failErr.Reason != test.reason {
			t.Errorf("%v = %v: reason = %q, want %q", test.query, test.program, failErr.Reason, test.reason)
		}
		if got, err := m.ReadTerm(qreg[0]); err != nil || !logic.Eq(test.query, got) {
			t.Errorf("%v: query reads back as %v (err: %v)", test.query, got, err)
		}
	}
}

func TestRun_StructureSharing(t *testing.T) {
	qcode, _ := wam.CompileQuery(comp("f", atom("a"), var_("X")))
	pcode, _ := wam.CompileProgram(comp("f", var_("Y"), atom("b")))
	m := wam.NewMachine()
	qreg, err := m.RunCode(qcode)
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	m.Reg = make([]addr, pcode.NumRegisters)
	m.Reg[0] = qreg[0]
	size := len(m.Heap)
	m.Execute(pcode.Instructions[0])
	if m.Mode != wam.Read {
		t.Errorf("mode = %v, want Read", m.Mode)
	}
	if len(m.Heap) != size {
		t.Errorf("len(heap) = %d, want %d", len(m.Heap), size)
	}
}

func TestRun_WriteMode(t *testing.T) {
	m := wam.NewMachine()
	m.Heap = []wam.Cell{ref{0}}
	m.Reg = []addr{0, 0, 0}
	m.Execute(get_structure{functor{"f", 2}, 0})
	m.Execute(unify_variable{1})
	m.Execute(unify_value{1})
	if m.Mode != wam.Write {
		t.Errorf("mode = %v, want Write", m.Mode)
	}
	want := []wam.Cell{ref{1}, str{2}, functor{"f", 2}, ref{3}, ref{3}}
	if diff := cmp.Diff(want, m.Heap); diff != "" {
		t.Errorf("heap: (-want, +got)\n%s", diff)
	}
	if got := m.FormatAddr(0); got != "f(_H3, _H3)" {
		t.Errorf("got %s", got)
	}
}

func TestRun_PanicsOnSmallRegisterFile(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic")
		}
	}()
	m := wam.NewMachine()
	m.Run([]wam.Instruction{set_variable{3}}, make([]addr, 2))
}

func TestRun_DebugTrace(t *testing.T) {
	code, _ := wam.CompileQuery(comp("f", var_("X"), comp("g", var_("X"), atom("a"))))
	m := wam.NewMachine()
	m.DebugFilename = filepath.Join(t.TempDir(), "trace.jsonl")
	if _, err := m.RunCode(code); err != nil {
		t.Fatalf("got err: %v", err)
	}
	f, err := os.Open(m.DebugFilename)
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	defer f.Close()
	var lines []map[string]interface{}
	s := bufio.NewScanner(f)
	for s.Scan() {
		var obj map[string]interface{}
		if err := json.Unmarshal(s.Bytes(), &obj); err != nil {
			t.Fatalf("%s: got err: %v", s.Text(), err)
		}
		lines = append(lines, obj)
	}
	if len(lines) != len(code.Instructions)+1 {
		t.Fatalf("got %d lines, want %d", len(lines), len(code.Instructions)+1)
	}
	header := lines[0]
	instrs := header["Code"].([]interface{})
	if instrs[0] != "put_structure a/0, X3" {
		t.Errorf("first instruction = %v", instrs[0])
	}
	last := lines[len(lines)-1]
	if last["RunID"] != header["RunID"] {
		t.Errorf("run id changed: %v != %v", last["RunID"], header["RunID"])
	}
	if last["Instr"] != "set_value X2" {
		t.Errorf("last instruction = %v", last["Instr"])
	}
	if heap := last["Heap"].([]interface{}); len(heap) != 10 || heap[7] != "f/2" {
		t.Errorf("heap = %v", heap)
	}
}
