package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ovms-community/ovms-bridge/app"
	"github.com/ovms-community/ovms-bridge/config"
	"github.com/ovms-community/ovms-bridge/core/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Sample the broker and list vehicle id candidates",
	RunE:  runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	candidates, err := app.Discover(ctx, cfg)
	switch {
	case errors.Is(err, discovery.ErrNoTopics):
		return fmt.Errorf("no matching topics on the broker; check prefix and credentials")
	case errors.Is(err, discovery.ErrAccessDenied):
		return fmt.Errorf("broker denied the discovery subscription: %w", err)
	case errors.Is(err, discovery.ErrTimedOut):
		return fmt.Errorf("topics seen but none matched the configured structure")
	case err != nil:
		return err
	}

	for _, c := range candidates {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d topics\n", c.VehicleID, c.MatchCount)
		for _, s := range c.SampleTopics {
			marker := ""
			if s.Retained {
				marker = " (retained)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\t%s%s\n", s.Topic, marker)
		}
	}
	return nil
}
