package base

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"golang.org/x/term"

	"github.com/hashicorp-forge/docstore/pkg/auth"
	"github.com/hashicorp-forge/docstore/pkg/documents"
)

// Command is embedded by every docstore command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// ReadPassword reads a password without echo. Defaults to reading the
	// terminal on stdin.
	ReadPassword func() (string, error)
}

// NewCommand creates a new Command.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Log: log,
		UI:  ui,
	}
}

func (c *Command) readPassword(username string) (string, error) {
	read := c.ReadPassword
	if read == nil {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", errors.New("password is required: set DOCSTORE_PASSWORD or run from a terminal")
		}
		read = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(os.Stderr)
			return string(b), err
		}
	}

	c.UI.Output(fmt.Sprintf("Password for %s: ", username))
	pw, err := read()
	if err != nil {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	return pw, nil
}

// Error reports err to the user. The causal chain is printed most specific
// cause first, followed by a hint when the API could not be reached.
func (c *Command) Error(err error) {
	chain := ErrorChain(err)
	c.UI.Error("Error: " + chain[0])
	for _, msg := range chain[1:] {
		c.UI.Error("  caused by: " + msg)
	}

	if errors.Is(err, documents.ErrAPIUnavailable) || errors.Is(err, auth.ErrAuthentication) {
		c.UI.Error("")
		c.UI.Error("Check the host, your credentials and your network connection, then try again.")
	}
}

// ErrorChain returns what each layer of err contributes, deepest cause
// first. A wrapper's message is reduced to the text it adds in front of its
// cause. For errors wrapping several errors the last one is followed.
func ErrorChain(err error) []string {
	var msgs []string
	for err != nil {
		msgs = append(msgs, err.Error())
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			if len(errs) == 0 {
				err = nil
			} else {
				err = errs[len(errs)-1]
			}
		default:
			err = errors.Unwrap(err)
		}
	}

	out := make([]string, 0, len(msgs))
	seen := map[string]bool{}
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if i+1 < len(msgs) {
			m = strings.TrimSuffix(m, ": "+msgs[i+1])
		}
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	if len(out) == 0 {
		out = append(out, "unknown error")
	}
	return out
}

// Render writes v to the UI in the given format.
func (c *Command) Render(format documents.Format, v any) error {
	var buf strings.Builder
	if err := documents.Render(&buf, format, v); err != nil {
		return err
	}
	c.UI.Output(strings.TrimRight(buf.String(), "\n"))
	return nil
}
