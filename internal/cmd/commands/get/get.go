package get

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
	return "Show a document and its versions"
}

func (c *Command) Help() string {
	return `Usage: docstore get [options] <document-id>

  Show a document's summary and every version of it.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("get", flag.ContinueOnError))
	base.AddClientFlags(f, &c.client)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("exactly one document ID is required")
		return 1
	}

	ctx := context.Background()
	sess, err := c.NewSession(ctx, &c.client)
	if err != nil {
		c.Error(err)
		return 1
	}
	defer sess.Close(ctx)

	doc, err := sess.Client.GetDocumentByID(ctx, f.Arg(0))
	if err != nil {
		c.Error(err)
		return 1
	}

	if err := c.Render(sess.Format, doc); err != nil {
		c.Error(err)
		return 1
	}
	return 0
}
