package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/core"
	"financas/internal/worker"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "parse", "lookup", "events"}, names)

	out, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}

func TestParseFromStdin(t *testing.T) {
	out, err := execute(t, "aluguel: 1200\r\nmercado: 300\n", "parse", "--salary", "2000")
	require.NoError(t, err)

	assert.Contains(t, out, "aluguel")
	assert.Contains(t, out, "80.0%")
	assert.Contains(t, out, "R$ 1.500,00")
	assert.Contains(t, out, "Balance")
	assert.Contains(t, out, "R$ 500,00")
}

func TestParseFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.txt")
	require.NoError(t, os.WriteFile(path, []byte("livros: 50\n"), 0o644))

	out, err := execute(t, "", "parse", path)
	require.NoError(t, err)
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "Enter a salary and expenses")
	assert.NotContains(t, out, "Balance")
}

func TestParseErrors(t *testing.T) {
	_, err := execute(t, "a: 1\nb 2\n", "parse")
	var mle *core.MalformedLineError
	require.ErrorAs(t, err, &mle)
	assert.Equal(t, 2, mle.Line)

	_, err = execute(t, "a: 1\n", "parse", "--salary=-3")
	assert.ErrorIs(t, err, core.ErrInvalidSalary)
}

func TestParseBlankInput(t *testing.T) {
	out, err := execute(t, "\n  \n", "parse", "--salary", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Enter a salary and expenses")
}

func TestParseNormalize(t *testing.T) {
	out, err := execute(t, "  aluguel :1200.50\r\n\nmercado: 300\naluguel: 1300\n", "parse", "--normalize")
	require.NoError(t, err)
	assert.Equal(t, "aluguel: 1300\nmercado: 300\n", out)
}

type stubLookup struct {
	addr core.Address
	err  error
}

func (s stubLookup) Lookup(context.Context, string) (core.Address, error) {
	return s.addr, s.err
}

func TestRunLookup(t *testing.T) {
	var out bytes.Buffer
	err := runLookup(context.Background(), &out, stubLookup{addr: core.Address{
		Street: "Praça da Sé", District: "Sé", City: "São Paulo", Region: "SP",
	}}, "01001000")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "City:     São Paulo")

	out.Reset()
	err = runLookup(context.Background(), &out, stubLookup{err: core.ErrAddressNotFound}, "00000000")
	assert.ErrorIs(t, err, core.ErrAddressNotFound)
	assert.Contains(t, out.String(), "00000000: not found")
}

func TestPrintTotals(t *testing.T) {
	var out bytes.Buffer
	printTotals(&out, worker.Totals{
		Events:   2,
		Rejected: 1,
		Salary:   decimal.NewFromInt(4000),
		Spent:    decimal.NewFromInt(1500),
		Categories: []core.Entry{
			{Category: "aluguel", Amount: decimal.NewFromInt(1200)},
			{Category: "mercado", Amount: decimal.NewFromInt(300)},
		},
	})
	s := out.String()
	assert.Contains(t, s, "2 events, 1 rejected")
	assert.Contains(t, s, "R$ 4.000,00")
	assert.Less(t, strings.Index(s, "aluguel"), strings.Index(s, "mercado"))
}

func TestEventsRequiresBroker(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AMQP_URL", "")
	_, err := execute(t, "", "events")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AMQP_URL")
}
