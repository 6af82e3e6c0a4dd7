package base

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is the base type embedded by every CLI command, carrying the
// UI and logger every command needs.
type Command struct {
	// UI is used for command input and output.
	UI cli.Ui

	// Log is the logger to use.
	Log hclog.Logger
}

// NewCommand returns a base command.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		UI:  ui,
		Log: log,
	}
}

// FlagSet wraps flag.FlagSet with help rendering for command Help()
// output.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet creates a new wrapped flag set.
func NewFlagSet(fs *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: fs}
}

// StringVar defines a string flag.
func (f *FlagSet) StringVar(p *string, name, value, usage string) {
	f.FlagSet.StringVar(p, name, value, usage)
}

// BoolVar defines a bool flag.
func (f *FlagSet) BoolVar(p *bool, name string, value bool, usage string) {
	f.FlagSet.BoolVar(p, name, value, usage)
}

// IntVar defines an int flag.
func (f *FlagSet) IntVar(p *int, name string, value int, usage string) {
	f.FlagSet.IntVar(p, name, value, usage)
}

// Help returns the rendered flag usage block, for appending to a
// command's Help() text.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer

	f.FlagSet.SetOutput(&buf)
	buf.WriteString("\n\nCommand Options:\n\n")
	f.FlagSet.PrintDefaults()

	return buf.String()
}
