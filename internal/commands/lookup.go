package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"financas/internal/address"
	"financas/internal/cli"
	"financas/internal/core"
)

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <cep>",
		Short: "Look up the address of a postal code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			client := address.NewClient(cfg.AddressAPIURL, cfg.AddressTimeout)
			return runLookup(cmd.Context(), cmd.OutOrStdout(), client, args[0])
		},
	}
}

func runLookup(ctx context.Context, out io.Writer, l address.Lookuper, code string) error {
	addr, err := l.Lookup(ctx, code)
	if errors.Is(err, core.ErrAddressNotFound) {
		red.Fprintf(out, "%s: not found\n", code)
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Street:   %s\nDistrict: %s\nCity:     %s\nRegion:   %s\n",
		addr.Street, addr.District, addr.City, addr.Region)
	return nil
}
