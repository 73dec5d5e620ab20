// Package config parses the command line and the editor settings file.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dagbay/level-design/levels"
)

// Options holds the command line arguments.
type Options struct {
	Layers   int
	TileSize int
	// ExtraWidth and ExtraHeight are in tile units.
	ExtraWidth  int
	ExtraHeight int
	Base        string

	ConfigPath string
	Load       bool
	Watch      bool
	Script     string
}

func defaultOptions() Options {
	return Options{
		Layers:     2,
		TileSize:   64,
		Base:       "file",
		ConfigPath: "leveldesign.yaml",
	}
}

func newFlagSet(opts *Options) *flag.FlagSet {
	fs := flag.NewFlagSet("level-design", flag.ContinueOnError)
	fs.IntVar(&opts.Layers, "l", opts.Layers, "Number of layers")
	fs.IntVar(&opts.TileSize, "t", opts.TileSize, "Tile size in pixels")
	fs.IntVar(&opts.ExtraWidth, "xw", opts.ExtraWidth, "Extra width in tiles beyond the window")
	fs.IntVar(&opts.ExtraHeight, "xh", opts.ExtraHeight, "Extra height in tiles beyond the window")
	fs.StringVar(&opts.Base, "f", opts.Base, "Base filename for saved layers")
	fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to the settings file")
	fs.BoolVar(&opts.Load, "load", false, "Load existing layer files at startup")
	fs.BoolVar(&opts.Watch, "watch", false, "Reload layer files when they change on disk")
	fs.StringVar(&opts.Script, "script", "", "Tengo script run against every layer at startup")
	return fs
}

// ParseArgs parses args (without the program name). Every argument is
// scanned: a repeated flag keeps its last value, and unknown flags and
// positional arguments are skipped. Only a malformed or missing value fails.
func ParseArgs(args []string) (Options, error) {
	opts := defaultOptions()
	fs := newFlagSet(&opts)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(knownFlags(fs, args)); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// knownFlags keeps the tokens that name a flag of fs, each followed by its
// value when the flag takes one.
func knownFlags(fs *flag.FlagSet, args []string) []string {
	var kept []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-h" || arg == "-help" || arg == "--help" {
			kept = append(kept, arg)
			continue
		}
		name, hasValue := flagName(arg)
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		kept = append(kept, arg)
		if hasValue || isBoolFlag(f) {
			continue
		}
		if i+1 < len(args) {
			i++
			kept = append(kept, args[i])
		}
	}
	return kept
}

// flagName returns the flag named by a -name or -name=value token.
func flagName(arg string) (name string, hasValue bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	name = strings.TrimPrefix(arg[1:], "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true
	}
	return name, false
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// Usage writes the flag help to w.
func Usage(w io.Writer) {
	opts := defaultOptions()
	fs := newFlagSet(&opts)
	fs.SetOutput(w)
	fmt.Fprintf(w, "Usage: level-design [options]\n\nOptions:\n")
	fs.PrintDefaults()
}

// Grid converts the options into a layer grid for a window of the given size.
func (o Options) Grid(viewWidth, viewHeight int) levels.Grid {
	return levels.Grid{
		ViewWidth:   viewWidth,
		ViewHeight:  viewHeight,
		TileSize:    o.TileSize,
		ExtraWidth:  o.ExtraWidth * o.TileSize,
		ExtraHeight: o.ExtraHeight * o.TileSize,
	}
}
