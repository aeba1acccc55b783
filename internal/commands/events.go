package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"financas/internal/amqp"
	"financas/internal/cli"
	"financas/internal/core"
	"financas/internal/worker"
)

func newEventsCommand() *cobra.Command {
	var queue string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Consume summary events and print running category totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is not set")
			}
			if queue != "" {
				cfg.AMQPQueue = queue
			}
			logger, err := cli.SetupLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			client, err := cli.InitAMQP(logger, cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := cli.GracefulShutdown(cmd.Context(), logger)
			defer stop()

			w := worker.NewSummaryWorker(cmd.OutOrStdout())
			err = client.ConsumeSummaries(ctx, cfg.AMQPQueue, func(m *amqp.SummaryComputedMessage) error {
				return w.HandleSummaryMessage(ctx, m)
			})
			printTotals(cmd.OutOrStdout(), w.Totals())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&queue, "queue", "", "queue to bind (overrides AMQP_QUEUE)")
	return cmd
}

func printTotals(out io.Writer, t worker.Totals) {
	bold.Fprintf(out, "%d events, %d rejected\n", t.Events, t.Rejected)
	fmt.Fprintf(out, "%-24s %16s\n", "Salary", core.FormatBRL(t.Salary))
	fmt.Fprintf(out, "%-24s %16s\n", "Spent", core.FormatBRL(t.Spent))
	for _, c := range t.Categories {
		fmt.Fprintf(out, "  %-22s %16s\n", c.Category, core.FormatBRL(c.Amount))
	}
}
