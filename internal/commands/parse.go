package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"financas/internal/core"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func newParseCommand() *cobra.Command {
	var (
		salary    string
		normalize bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Summarize 'category: amount' lines from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open expenses: %w", err)
				}
				defer f.Close()
				in = f
			}
			if normalize {
				return runNormalize(in, cmd.OutOrStdout())
			}
			return runParse(in, cmd.OutOrStdout(), salary)
		},
	}

	cmd.Flags().StringVar(&salary, "salary", "", "monthly salary")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "print the cleaned-up expense lines instead of a summary")
	return cmd
}

func runParse(in io.Reader, out io.Writer, salaryText string) error {
	salary, err := core.ParseSalary(salaryText)
	if err != nil {
		return fmt.Errorf("--salary %q: %w", salaryText, err)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read expenses: %w", err)
	}

	res := core.Evaluate(core.LineParser{}, salary, string(data))
	if res.Err != nil {
		return res.Err
	}
	if res.Summary == nil {
		fmt.Fprintln(out, "Enter a salary and expenses to compute the remaining balance.")
		return nil
	}
	sum := *res.Summary

	shares := map[string]float64{}
	for _, sh := range sum.Shares() {
		shares[sh.Name] = sh.Share
	}
	for _, e := range sum.Expenses.Entries() {
		fmt.Fprintf(out, "%-24s %16s %6.1f%%\n", e.Category, core.FormatBRL(e.Amount), shares[e.Category]*100)
	}
	bold.Fprintf(out, "%-24s %16s\n", "Total", core.FormatBRL(sum.Total))

	if !sum.ShowBalance() {
		fmt.Fprintln(out, "Enter a salary and expenses to compute the remaining balance.")
		return nil
	}
	c := green
	if sum.Balance.IsNegative() {
		c = red
	}
	c.Fprintf(out, "%-24s %16s\n", "Balance", core.FormatBRL(sum.Balance))
	return nil
}

// runNormalize rewrites the input as one "category: amount" line per
// category, with duplicates collapsed to their last amount.
func runNormalize(in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read expenses: %w", err)
	}
	m, err := core.ParseExpenses(string(data))
	if err != nil {
		return err
	}
	if m.Len() == 0 {
		return nil
	}
	_, err = fmt.Fprintln(out, core.FormatExpenses(m))
	return err
}
