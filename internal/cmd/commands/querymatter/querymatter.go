package querymatter

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/docstore/internal/cmd/base"
)

type Command struct {
	*base.Command

	client base.ClientFlags

	flagMatter string
	flagOrder  string
}

func (c *Command) Synopsis() string {
	return "List documents for a matter reference and/or order ID"
}

func (c *Command) Help() string {
	return `Usage: docstore query-matter [options]

  List the documents for a matter reference, an order ID, or both. Values
  are sent to the API as given.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("query-matter", flag.ContinueOnError))
	base.AddClientFlags(f, &c.client)

	f.StringVar(&c.flagMatter, "matter", "", "Matter reference")
	f.StringVar(&c.flagOrder, "order", "", "Order ID")

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

	docs, err := sess.Client.QueryByMatterOrder(ctx, c.flagMatter, c.flagOrder)
	if err != nil {
		c.Error(err)
		return 1
	}

	if err := c.Render(sess.Format, docs); err != nil {
		c.Error(err)
		return 1
	}
	return 0
}
