// Package cli implements ticketctl, a terminal client for the PSA backend
// that drives the same ticket store as the dashboard.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/config"
	"github.com/spec-kit/ticket-dashboard/internal/gateway"
	"github.com/spec-kit/ticket-dashboard/internal/store"
)

type rootOptions struct {
	apiBaseURL string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// NewCommand builds the ticketctl command tree.
func NewCommand(name string) *cobra.Command {
	o := &rootOptions{}
	c := &cobra.Command{
		Use:           name,
		Short:         "Inspect and create PSA tickets from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.complete()
		},
	}

	c.PersistentFlags().StringVar(&o.apiBaseURL, "api-base-url", "", "PSA backend base URL (overrides API_BASE_URL)")
	c.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Log backend calls to stderr")

	c.AddCommand(
		newListCmd(o),
		newGetCmd(o),
		newCreateCmd(o),
		newStatsCmd(o),
		newHostTokenCmd(o),
	)
	return c
}

func (o *rootOptions) complete() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.apiBaseURL != "" {
		cfg.Gateway.BaseURL = o.apiBaseURL
	}
	o.cfg = cfg

	o.logger = zap.NewNop()
	if o.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		o.logger = logger
	}

	gw, err := gateway.NewHTTPGateway(gateway.Options{
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: cfg.Gateway.Timeout(),
		Logger:  o.logger,
	})
	if err != nil {
		return err
	}
	o.store = store.New(gw, store.Options{Logger: o.logger})
	return nil
}
