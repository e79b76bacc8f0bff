package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mmynk/splitlah/internal/calculator"
	"github.com/mmynk/splitlah/internal/currency"
	"github.com/mmynk/splitlah/internal/models"
)

// render writes md to the env output, styled for the terminal unless Plain.
func (e *Env) render(md string) error {
	if e.Plain {
		_, err := io.WriteString(e.Out, md)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(e.Out, out)
	return err
}

// cell escapes a value for a markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func amount(v float64, code string) string {
	if code == "" {
		return fmt.Sprintf("%.2f", currency.Round(v))
	}
	return currency.Display(v, code)
}

func splitMarkdown(r *calculator.Result, code string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s split of %s\n\n", strings.ToUpper(string(r.Method[:1]))+string(r.Method[1:]), amount(r.Total, code))

	switch r.Method {
	case calculator.MethodPercentage:
		b.WriteString("| Member | Share | Amount |\n|---|---:|---:|\n")
	default:
		b.WriteString("| Member | Amount |\n|---|---:|\n")
	}
	for _, sh := range r.Shares {
		if r.Method == calculator.MethodPercentage {
			var pct float64
			if r.Total > 0 {
				pct = sh.Amount / r.Total * 100
			}
			fmt.Fprintf(&b, "| %s | %.2f%% | %s |\n", cell(sh.Member), pct, amount(sh.Amount, code))
			continue
		}
		fmt.Fprintf(&b, "| %s | %s |\n", cell(sh.Member), amount(sh.Amount, code))
	}
	return b.String()
}

func validationMarkdown(v *calculator.ValidationError) string {
	return fmt.Sprintf("# Split rejected\n\n> **%s**: %s\n", v.Kind, v.Error())
}

func ratesMarkdown(t currency.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Exchange rates (1 %s)\n\n", currency.Base)
	if t.Source == currency.SourceFallback {
		b.WriteString("> Live rates unavailable, showing built-in fallback rates.\n\n")
	}
	b.WriteString("| Code | Country | Rate |\n|---|---|---:|\n")
	for _, code := range t.Rates.Codes() {
		fmt.Fprintf(&b, "| %s | %s | %.4f |\n", code, cell(currency.Name(code)), t.Rates[code])
	}
	return b.String()
}

func usersMarkdown(users []models.User) string {
	var b strings.Builder
	b.WriteString("# Accounts\n\n")
	if len(users) == 0 {
		b.WriteString("No accounts yet.\n")
		return b.String()
	}
	b.WriteString("| Username | Plan | Billing | Groups |\n|---|---|---|---:|\n")
	for _, u := range users {
		fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", cell(u.Username), u.PlanType, u.PlanDuration, len(u.Groups))
	}
	return b.String()
}

func groupsMarkdown(u *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Groups of %s\n\n", u.Username)
	groups := models.SortedGroups(u.Groups)
	if len(groups) == 0 {
		b.WriteString("No saved groups.\n")
		return b.String()
	}
	for _, g := range groups {
		fmt.Fprintf(&b, "## %s\n\n", g.Name)
		for _, m := range g.Members {
			fmt.Fprintf(&b, "- %s\n", m)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func convertMarkdown(t currency.Table, value float64, from, to string) (string, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	fromRate, ok := t.Rates.Rate(from)
	if !ok {
		return "", fmt.Errorf("%w: %s", errUnknownCurrency, from)
	}
	toRate, ok := t.Rates.Rate(to)
	if !ok {
		return "", fmt.Errorf("%w: %s", errUnknownCurrency, to)
	}
	converted, err := calculator.Convert(value, fromRate, toRate)
	if err != nil {
		return "", err
	}
	rate, _ := calculator.CrossRate(fromRate, toRate)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s = %s\n\n", amount(value, from), amount(converted, to))
	fmt.Fprintf(&b, "1 %s = %.4f %s (%s rates)\n", from, rate, to, t.Source)
	return b.String(), nil
}
