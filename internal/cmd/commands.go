package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/docstore/internal/cmd/base"
	"github.com/hashicorp-forge/docstore/internal/cmd/commands/download"
	"github.com/hashicorp-forge/docstore/internal/cmd/commands/get"
	"github.com/hashicorp-forge/docstore/internal/cmd/commands/querydate"
	"github.com/hashicorp-forge/docstore/internal/cmd/commands/querymatter"
	"github.com/hashicorp-forge/docstore/internal/cmd/commands/status"
	"github.com/hashicorp-forge/docstore/internal/cmd/commands/token"
	"github.com/hashicorp-forge/docstore/internal/cmd/commands/version"
)

// Commands is the mapping of all available docstore commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"query-date": func() (cli.Command, error) {
			return &querydate.Command{Command: b}, nil
		},
		"query-matter": func() (cli.Command, error) {
			return &querymatter.Command{Command: b}, nil
		},
		"get": func() (cli.Command, error) {
			return &get.Command{Command: b}, nil
		},
		"download": func() (cli.Command, error) {
			return &download.Command{Command: b}, nil
		},
		"token": func() (cli.Command, error) {
			return &token.Command{Command: b}, nil
		},
		"status": func() (cli.Command, error) {
			return &status.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
