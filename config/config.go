// Package config loads the tool configuration from a TOML file.
//
//	[machine]
//	debug_file = "trace.jsonl"
//	link_register = 0
//
//	[log]
//	verbosity = 1
//	file = ""
//
//	[output]
//	color = "auto"
//	show_heap = false
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mattn/go-isatty"

	"github.com/brunokim/l0/errors"
	"github.com/brunokim/l0/solver"
)

// DefaultPath is the file looked up when no path is given.
const DefaultPath = "l0.toml"

type Config struct {
	Machine Machine `toml:"machine"`
	Log     Log     `toml:"log"`
	Output  Output  `toml:"output"`
}

type Machine struct {
	// File to append the JSONL trace of every run, "" disables it.
	DebugFile string `toml:"debug_file"`
	// Register shared between query and program runs. Compiled code always
	// links register 0. Other values are for hand-written code only.
	LinkRegister int `toml:"link_register"`
}

type Log struct {
	// commonlog verbosity: 0 disables logging, higher values are more verbose.
	Verbosity int `toml:"verbosity"`
	// Log file, "" writes to stderr.
	File string `toml:"file"`
}

// Color tells when to use colored output.
type Color string

const (
	ColorAuto   Color = "auto"
	ColorAlways Color = "always"
	ColorNever  Color = "never"
)

type Output struct {
	Color    Color `toml:"color"`
	ShowHeap bool  `toml:"show_heap"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		Output: Output{Color: ColorAuto},
	}
}

// Load reads the configuration at path over the defaults.
//
// If path is empty, DefaultPath is read if it exists.
func Load(path string) (*Config, error) {
	optional := false
	if path == "" {
		path, optional = DefaultPath, true
	}
	data, err := os.ReadFile(path)
	if optional && os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML contents over the defaults. The path is only used for
// error messages.
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, errors.New("%s: unknown key %v", path, keys[0])
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Prefix(path, err)
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Machine.LinkRegister < 0 {
		return errors.New("machine.link_register must not be negative, got %d", cfg.Machine.LinkRegister)
	}
	if cfg.Log.Verbosity < 0 {
		return errors.New("log.verbosity must not be negative, got %d", cfg.Log.Verbosity)
	}
	switch cfg.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.New("output.color must be one of %q, %q or %q, got %q",
			ColorAuto, ColorAlways, ColorNever, cfg.Output.Color)
	}
	return nil
}

// SolverOptions returns the solver options from the machine section.
func (cfg *Config) SolverOptions() solver.Options {
	return solver.Options{
		LinkRegister:  cfg.Machine.LinkRegister,
		DebugFilename: cfg.Machine.DebugFile,
	}
}

// LogFile returns the log file path for commonlog.Configure, or nil for stderr.
func (cfg *Config) LogFile() *string {
	if cfg.Log.File == "" {
		return nil
	}
	return &cfg.Log.File
}

// UseColor returns whether output to f should be colored.
func (o Output) UseColor(f *os.File) bool {
	switch o.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
