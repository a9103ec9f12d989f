package base

import (
	"bytes"
	"flag"
	"fmt"
	"strings"
)

// FlagSet wraps flag.FlagSet to render help in the CLI's style.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet creates a new FlagSet.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.Usage = func() {}
	return &FlagSet{FlagSet: f}
}

// Help returns the options section of a command's help text.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	buf.WriteString("\n\nOptions:\n")

	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&buf, "\n  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&buf, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&buf, "\n      %s\n", strings.ReplaceAll(fl.Usage, "\n", "\n      "))
	})

	return strings.TrimRight(buf.String(), "\n")
}
