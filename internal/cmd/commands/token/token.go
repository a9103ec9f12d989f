package token

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/hashicorp-forge/docstore/internal/cmd/base"
)

type Command struct {
	*base.Command

	client base.ClientFlags
}

func (c *Command) Synopsis() string {
	return "Check that the configured credentials can authenticate"
}

func (c *Command) Help() string {
	return `Usage: docstore token [options]

  Authenticate against the token endpoint and print the token type and
  expiry. The token itself is never printed.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("token", flag.ContinueOnError))
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

	tok, err := sess.Store.EnsureValidToken(ctx, sess.Credentials)
	if err != nil {
		c.Error(err)
		return 1
	}

	c.UI.Output(fmt.Sprintf("Authenticated as %s against %s", sess.Credentials.Username, sess.Authenticator.TokenURL()))
	c.UI.Output(fmt.Sprintf("Token type: %s", tok.TokenType))
	c.UI.Output(fmt.Sprintf("Expires:    %s", sess.Store.Expiry().Format(time.RFC3339)))
	return 0
}
