package status

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/docstore/internal/cmd/base"
)

type Command struct {
	*base.Command

	client base.ClientFlags
}

func (c *Command) Synopsis() string {
	return "Show the relations the API root advertises"
}

func (c *Command) Help() string {
	return `Usage: docstore status [options]

  Fetch the document store root and list its relations. Useful to check
  connectivity and authentication.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("status", flag.ContinueOnError))
	base.AddClientFlags(f, &c.client)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	ctx := context.Background()
	sess, err := c.NewSession(ctx, &c.client)
	if err != nil {
		c.Error(err)
		return 1
	}
	defer sess.Close(ctx)

	rels, err := sess.Client.Relations(ctx)
	if err != nil {
		c.Error(err)
		return 1
	}

	c.UI.Output(fmt.Sprintf("Root: %s", sess.Client.RootURL()))
	for _, rel := range rels {
		c.UI.Output("  " + rel)
	}
	return 0
}
