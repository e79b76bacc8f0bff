package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/mmynk/splitlah/internal/models"
)

type useraddCmd struct {
	env      *Env
	username string
	password string
}

func (*useraddCmd) Name() string     { return "useradd" }
func (*useraddCmd) Synopsis() string { return "creates an account on the Basic monthly plan" }
func (*useraddCmd) Usage() string {
	return `splitctl useradd -user <name> -password <password>

Creates an account in the configured store. Usernames are unique ignoring case.
`
}
func (c *useraddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "user", "", "The username to register.")
	f.StringVar(&c.password, "password", "", "The password; it is stored as a bcrypt hash.")
}

func (c *useraddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" || c.password == "" {
		return c.env.usage("-user and -password are required.")
	}
	store, done, err := c.env.accounts()
	if err != nil {
		return c.env.fail(err)
	}
	defer done()

	if err := store.Create(ctx, c.username, c.password); err != nil {
		return c.env.fail(err)
	}
	u, err := store.Get(ctx, c.username)
	if err != nil {
		return c.env.fail(err)
	}
	if err := c.env.render(usersMarkdown([]models.User{*u})); err != nil {
		return c.env.fail(err)
	}
	return subcommands.ExitSuccess
}

type usersCmd struct {
	env *Env
}

func (*usersCmd) Name() string     { return "users" }
func (*usersCmd) Synopsis() string { return "lists every account with its plan" }
func (*usersCmd) Usage() string {
	return `splitctl users
`
}
func (*usersCmd) SetFlags(*flag.FlagSet) {}

func (c *usersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, done, err := c.env.accounts()
	if err != nil {
		return c.env.fail(err)
	}
	defer done()

	users, err := store.List(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	if err := c.env.render(usersMarkdown(users)); err != nil {
		return c.env.fail(err)
	}
	return subcommands.ExitSuccess
}

type planCmd struct {
	env      *Env
	username string
	planType string
	duration string
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "changes an account's plan" }
func (*planCmd) Usage() string {
	return `splitctl plan -user <name> -type <plan> [-duration Monthly|Yearly]

Plans: Basic, Premium Solo, Premium Duo, Premium Family, Premium Business.
`
}
func (c *planCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "user", "", "The account to change.")
	f.StringVar(&c.planType, "type", "", "The new plan type.")
	f.StringVar(&c.duration, "duration", string(models.Monthly), "The billing cycle.")
}

func (c *planCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" || c.planType == "" {
		return c.env.usage("-user and -type are required.")
	}
	store, done, err := c.env.accounts()
	if err != nil {
		return c.env.fail(err)
	}
	defer done()

	if err := store.UpdatePlan(ctx, c.username, models.PlanType(c.planType), models.PlanDuration(c.duration)); err != nil {
		return c.env.fail(err)
	}
	u, err := store.Get(ctx, c.username)
	if err != nil {
		return c.env.fail(err)
	}
	if err := c.env.render(usersMarkdown([]models.User{*u})); err != nil {
		return c.env.fail(err)
	}
	return subcommands.ExitSuccess
}

type groupsCmd struct {
	env      *Env
	username string
}

func (*groupsCmd) Name() string     { return "groups" }
func (*groupsCmd) Synopsis() string { return "shows an account's saved groups" }
func (*groupsCmd) Usage() string {
	return `splitctl groups -user <name>
`
}
func (c *groupsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "user", "", "The account to inspect.")
}

func (c *groupsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" {
		return c.env.usage("-user is required.")
	}
	store, done, err := c.env.accounts()
	if err != nil {
		return c.env.fail(err)
	}
	defer done()

	u, err := store.Get(ctx, c.username)
	if err != nil {
		return c.env.fail(err)
	}
	if err := c.env.render(groupsMarkdown(u)); err != nil {
		return c.env.fail(err)
	}
	return subcommands.ExitSuccess
}
