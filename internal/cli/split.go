package cli

import (
	"context"
	"errors"
	"flag"

	"github.com/google/subcommands"

	"github.com/mmynk/splitlah/internal/calculator"
)

type splitCmd struct {
	env      *Env
	method   string
	total    float64
	members  string
	inputs   string
	currency string
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "splits a bill evenly, by percentage or by fixed amounts" }
func (*splitCmd) Usage() string {
	return `splitctl split -total <amount> -members a,b,c [-method even|percentage|fixed] [-inputs x,y,z] [-currency CODE]

Prints each member's share. For percentage and fixed splits -inputs holds
one value per member, in the same order as -members.
`
}
func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", string(calculator.MethodEven), "The split method.")
	f.Float64Var(&c.total, "total", 0, "The bill total.")
	f.StringVar(&c.members, "members", "", "Comma separated member names.")
	f.StringVar(&c.inputs, "inputs", "", "Comma separated percentages or amounts.")
	f.StringVar(&c.currency, "currency", "", "Optional ISO code used to format amounts.")
}

func (c *splitCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkAmount(c.total); err != nil {
		return c.env.usage("-total: " + err.Error())
	}
	result, verr, err := runSplit(c.method, c.total, splitList(c.members), c.inputs)
	if err != nil {
		return c.env.usage(err.Error())
	}
	var md string
	if verr != nil {
		md = validationMarkdown(verr)
	} else {
		md = splitMarkdown(result, c.currency)
	}
	if err := c.env.render(md); err != nil {
		return c.env.fail(err)
	}
	if verr != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runSplit parses the inputs and computes the split. A rejected split is
// returned as a *ValidationError, anything else wrong as err.
func runSplit(method string, total float64, members []string, inputs string) (*calculator.Result, *calculator.ValidationError, error) {
	m, err := calculator.ParseMethod(method)
	if err != nil {
		return nil, nil, err
	}
	values, err := parseAmounts(inputs)
	if err != nil {
		return nil, nil, err
	}
	pending, err := calculator.Collect(m, total, members, values)
	if err != nil {
		return nil, nil, err
	}
	result, err := pending.Finalize()
	if v, ok := calculator.AsValidation(err); ok {
		return nil, v, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

type ratesCmd struct {
	env *Env
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "shows current exchange rates against USD" }
func (*ratesCmd) Usage() string {
	return `splitctl rates
`
}
func (*ratesCmd) SetFlags(*flag.FlagSet) {}

func (c *ratesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	src, err := c.env.rates()
	if err != nil {
		return c.env.fail(err)
	}
	if err := c.env.render(ratesMarkdown(src.Rates(ctx))); err != nil {
		return c.env.fail(err)
	}
	return subcommands.ExitSuccess
}

type convertCmd struct {
	env    *Env
	amount float64
	from   string
	to     string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "converts an amount between two currencies" }
func (*convertCmd) Usage() string {
	return `splitctl convert -amount <value> -from USD -to MYR
`
}
func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.amount, "amount", 0, "The amount to convert.")
	f.StringVar(&c.from, "from", "USD", "Source currency code.")
	f.StringVar(&c.to, "to", "", "Target currency code.")
}

func (c *convertCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.to == "" {
		return c.env.usage("-to is required.")
	}
	if err := checkAmount(c.amount); err != nil {
		return c.env.usage("-amount: " + err.Error())
	}
	src, err := c.env.rates()
	if err != nil {
		return c.env.fail(err)
	}
	md, err := convertMarkdown(src.Rates(ctx), c.amount, c.from, c.to)
	if err != nil {
		return c.env.fail(err)
	}
	if err := c.env.render(md); err != nil {
		return c.env.fail(err)
	}
	return subcommands.ExitSuccess
}

var errUnknownCurrency = errors.New("unknown currency")
