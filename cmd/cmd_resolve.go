package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/waypoint/internal/address"
	"github.com/UnknownOlympus/waypoint/internal/config"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var errNotLocated = errors.New("address could not be located")

type resolveOutput struct {
	Address  string              `json:"address"`
	Found    bool                `json:"found"`
	Location *models.Coordinates `json:"location,omitempty"`
	Strategy models.Strategy     `json:"strategy,omitempty"`
	Attempts int                 `json:"attempts"`
}

func newResolveCmd() *cobra.Command {
	var addr models.PostalAddress

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one postal address and print the result as JSON",
		Long: `
resolve runs the resolution cascade once for the address given by flags and
prints the outcome on stdout. It exits with status 1 when the address could
not be located. No database is needed.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustLoad()
			logger := setupLogger(cfg.Env, cmd.ErrOrStderr())

			res, err := newResolver(cfg, logger, metrics.NewMetrics(prometheus.NewRegistry()), nil)
			if err != nil {
				return err
			}

			result := res.Resolve(cmd.Context(), addr)

			out := resolveOutput{
				Address:  address.Display(addr),
				Found:    result.Found,
				Strategy: result.Strategy,
				Attempts: result.Attempts,
			}
			if result.Found {
				out.Location = &result.Coordinates
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err = enc.Encode(out); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}

			if !result.Found {
				return errNotLocated
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr.Line1, "line1", "", "first address line")
	flags.StringVar(&addr.Line2, "line2", "", "second address line")
	flags.StringVar(&addr.City, "city", "", "city")
	flags.StringVar(&addr.State, "state", "", "state")
	flags.StringVar(&addr.Pincode, "pincode", "", "postal code")
	flags.StringVar(&addr.Country, "country", "", "country as written on the shipment")

	return cmd
}
