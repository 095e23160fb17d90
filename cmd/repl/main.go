package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/brunokim/l0/config"
	"github.com/brunokim/l0/solver"
)

var (
	configFile  = flag.String("config", "", "Config file (default l0.toml, if present)")
	historyFile = flag.String("history", filepath.Join(os.TempDir(), "l0-history"), "Readline history file")
	query       = flag.String("query", "", "Initial unification to run, as 'query = program.'")
	interactive = flag.Bool("interactive", true, "Whether the REPL is interactive")
)

type ctx struct {
	solver   *solver.Solver
	readline *readline.Instance
	showHeap bool
}

func main() {
	flag.Parse()
	if !*interactive && len(*query) == 0 {
		log.Fatal("No query provided for non-interactive REPL")
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogFile())

	ctx := ctx{
		solver:   solver.New(cfg.SolverOptions()),
		showHeap: cfg.Output.ShowHeap,
	}
	if len(*query) > 0 {
		ctx.unify(*query)
	}
	if !*interactive {
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "?- ",
		HistoryFile:            *historyFile,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer rl.Close()
	ctx.readline = rl

	ctx.mainLoop()
}

func (ctx *ctx) mainLoop() {
	for {
		text, isClose := ctx.readUnification()
		if isClose {
			return
		}
		switch text {
		case ":heap.":
			ctx.showHeap = !ctx.showHeap
			fmt.Printf("show heap: %t\n", ctx.showHeap)
		case ":quit.", ":q.":
			return
		default:
			ctx.unify(text)
		}
	}
}

// readUnification reads lines until one ends with '.'.
func (ctx *ctx) readUnification() (string, bool) {
	ctx.readline.SetPrompt("?- ")
	var lines []string
	for {
		line, err := ctx.readline.Readline()
		if err == readline.ErrInterrupt {
			// Discard the current input.
			lines = nil
			ctx.readline.SetPrompt("?- ")
			continue
		}
		if err != nil {
			return "", true
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
		if !strings.HasSuffix(line, ".") {
			ctx.readline.SetPrompt("|  ")
			continue
		}
		break
	}
	text := strings.Join(lines, " ")
	ctx.readline.SaveHistory(text)
	return text, false
}

func (ctx *ctx) unify(text string) {
	res, err := ctx.solver.UnifyText(text)
	if err != nil {
		log.Print(err)
		return
	}
	if !res.Ok() {
		fmt.Println("false.")
		fmt.Println(res.Fail)
	} else {
		fmt.Println(res)
		fmt.Println("true.")
	}
	if ctx.showHeap {
		fmt.Println(res.Machine.DumpHeap())
	}
}
