package querydate

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"github.com/hashicorp-forge/docstore/internal/cmd/base"
)

type Command struct {
	*base.Command

	client base.ClientFlags

	flagFrom string
	flagTo   string
}

func (c *Command) Synopsis() string {
	return "List documents created within a date range"
}

func (c *Command) Help() string {
	return `Usage: docstore query-date [options]

  List the documents whose timestamps fall between -from and -to, both
  inclusive. Dates accept most common layouts, e.g. 2024-01-31 or
  31/01/2024. Both default to today.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("query-date", flag.ContinueOnError))
	base.AddClientFlags(f, &c.client)

	f.StringVar(&c.flagFrom, "from", "", "First day of the range (default: today)")
	f.StringVar(&c.flagTo, "to", "", "Last day of the range (default: today)")

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	today := time.Now()
	from, err := ParseDate(c.flagFrom, today)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid -from: %v", err))
		return 1
	}
	to, err := ParseDate(c.flagTo, today)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid -to: %v", err))
		return 1
	}
	if to.Before(from) {
		c.UI.Error("-to must not be before -from")
		return 1
	}

	ctx := context.Background()
	sess, err := c.NewSession(ctx, &c.client)
	if err != nil {
		c.Error(err)
		return 1
	}
	defer sess.Close(ctx)

	docs, err := sess.Client.QueryByDateRange(ctx, from, to)
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

// ParseDate parses a calendar date in the local time zone. A blank value
// yields def.
func ParseDate(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
