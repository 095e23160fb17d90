// Command l0 compiles and runs unifications on the abstract machine.
//
// Usage:
//
//	l0 [-config l0.toml] [-v N] run [-heap] ['QUERY = PROGRAM' ...]
//	l0 [-config l0.toml] [-v N] run -query q.cbor -program p.cbor
//	l0 compile [-role query|program] [-o out.cbor] TERM
//	l0 asm -o out.cbor FILE
//	l0 disasm FILE.cbor
//	l0 check SUITE.yaml...
//
// Without unifications as args, run reads one per line from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/brunokim/l0/config"
	"github.com/brunokim/l0/errors"
	"github.com/brunokim/l0/parser"
	"github.com/brunokim/l0/solver"
	"github.com/brunokim/l0/suite"
	"github.com/brunokim/l0/wam"
)

var (
	configFile = flag.String("config", "", "Config file (default l0.toml, if present)")
	verbosity  = flag.Int("v", -1, "Log verbosity, overriding the config file")
)

func logger() commonlog.Logger {
	return commonlog.GetLogger("l0.cmd")
}

type command struct {
	name  string
	usage string
	run   func(cfg *config.Config, args []string) error
}

var commands = []command{
	{"run", "unify queries with programs", runCmd},
	{"compile", "compile a term to instructions or a code image", compileCmd},
	{"asm", "assemble instruction text into a code image", asmCmd},
	{"disasm", "print the instructions of a code image", disasmCmd},
	{"check", "run scenario suites", checkCmd},
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] command [args]\n\nCommands:\n", os.Args[0])
	for _, cmd := range commands {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-8s %s\n", cmd.name, cmd.usage)
	}
	fmt.Fprintf(flag.CommandLine.Output(), "\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogFile())

	name, args := flag.Arg(0), flag.Args()[1:]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if err := cmd.run(cfg, args); err != nil {
			logger().Errorf("%s: %v", name, err)
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			os.Exit(1)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
	flag.Usage()
	os.Exit(2)
}

// ---- Output

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

type printer struct {
	color    bool
	showHeap bool
}

func newPrinter(cfg *config.Config) printer {
	return printer{color: cfg.Output.UseColor(os.Stdout), showHeap: cfg.Output.ShowHeap}
}

func (p printer) paint(code, text string) string {
	if !p.color {
		return text
	}
	return code + text + ansiReset
}

func (p printer) result(res *solver.Result) {
	if res.Ok() {
		fmt.Println(p.paint(ansiGreen, "true."))
	} else {
		fmt.Println(p.paint(ansiRed, "false."))
	}
	fmt.Println(res)
	if p.showHeap {
		fmt.Println(res.Machine.DumpHeap())
	}
}

// ---- Commands

func runCmd(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	showHeap := fs.Bool("heap", cfg.Output.ShowHeap, "Print the heap after each run")
	queryFile := fs.String("query", "", "Query code image, requires -program")
	programFile := fs.String("program", "", "Program code image, requires -query")
	fs.Parse(args)

	p := newPrinter(cfg)
	p.showHeap = *showHeap
	s := solver.New(cfg.SolverOptions())
	if *queryFile != "" || *programFile != "" {
		if *queryFile == "" || *programFile == "" {
			return errors.New("-query and -program must be given together")
		}
		qcode, err := readImage(*queryFile)
		if err != nil {
			return err
		}
		pcode, err := readImage(*programFile)
		if err != nil {
			return err
		}
		res, err := s.Run(qcode, pcode)
		if err != nil {
			return err
		}
		p.result(res)
		return nil
	}
	if fs.NArg() > 0 {
		for _, text := range fs.Args() {
			res, err := s.UnifyText(text)
			if err != nil {
				return errors.New("%q: %v", text, err)
			}
			p.result(res)
		}
		return nil
	}
	scanner := bufio.NewScanner(os.Stdin)
	for lineno := 1; scanner.Scan(); lineno++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		res, err := s.UnifyText(text)
		if err != nil {
			return errors.New("line %d: %v", lineno, err)
		}
		p.result(res)
	}
	return scanner.Err()
}

func compileCmd(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	roleName := fs.String("role", "query", "Compile as query or program")
	output := fs.String("o", "", "Write a code image to this file, instead of printing instructions")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("expected a single term, got %d args", fs.NArg())
	}
	role, err := wam.ParseRole(*roleName)
	if err != nil {
		return err
	}
	term, err := parser.ParseTerm(fs.Arg(0))
	if err != nil {
		return err
	}
	code, err := wam.Compile(role, term)
	if err != nil {
		return err
	}
	if *output == "" {
		fmt.Println(code)
		return nil
	}
	return writeImage(*output, code)
}

func asmCmd(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	output := fs.String("o", "", "Code image file (required)")
	fs.Parse(args)
	if *output == "" || fs.NArg() != 1 {
		return errors.New("usage: asm -o out.cbor FILE")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	code, err := wam.ParseCode(string(data))
	if err != nil {
		return errors.Prefix(fs.Arg(0), err)
	}
	return writeImage(*output, code)
}

func disasmCmd(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: disasm FILE.cbor")
	}
	code, err := readImage(args[0])
	if err != nil {
		return err
	}
	fmt.Println(code)
	return nil
}

func checkCmd(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: check SUITE.yaml...")
	}
	p := newPrinter(cfg)
	s := solver.New(cfg.SolverOptions())
	var reports []suite.Report
	for _, path := range args {
		st, err := suite.Load(path)
		if err != nil {
			return err
		}
		for _, r := range st.Run(s) {
			color := ansiGreen
			if !r.Passed() {
				color = ansiRed
			}
			fmt.Println(p.paint(color, r.String()))
			reports = append(reports, r)
		}
	}
	passed, failed := suite.Summary(reports)
	fmt.Printf("%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return errors.New("%d scenarios failed", failed)
	}
	return nil
}

// ---- Code images

func readImage(path string) (*wam.Code, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	code, err := wam.UnmarshalCode(data)
	if err != nil {
		return nil, errors.Prefix(path, err)
	}
	return code, nil
}

func writeImage(path string, code *wam.Code) error {
	data, err := wam.MarshalCode(code)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logger().Infof("wrote %d instructions to %s", len(code.Instructions), path)
	return nil
}
