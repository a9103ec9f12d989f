package version

import (
	"github.com/hashicorp-forge/docstore/internal/cmd/base"
	"github.com/hashicorp-forge/docstore/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: docstore version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output("docstore " + version.String())
	return 0
}
