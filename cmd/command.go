package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovms-community/ovms-bridge/config"
	"github.com/ovms-community/ovms-bridge/core/services"
	"github.com/ovms-community/ovms-bridge/core/topic"
	"github.com/ovms-community/ovms-bridge/infra/mqtt"
)

var (
	commandVehicle string
	commandTimeout int
)

var commandCmd = &cobra.Command{
	Use:   "command <text>...",
	Short: "Send a command to the vehicle and print the response",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCommand,
}

func init() {
	commandCmd.Flags().StringVar(&commandVehicle, "vehicle", "", "vehicle id (defaults to topics.vehicle_id)")
	commandCmd.Flags().IntVar(&commandTimeout, "timeout", 10, "response timeout in seconds")
	rootCmd.AddCommand(commandCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	vehicleID := commandVehicle
	if vehicleID == "" {
		vehicleID = cfg.Topics.VehicleID
	}
	req := services.SendCommand{
		VehicleID: vehicleID,
		Command:   strings.Join(args, " "),
		Timeout:   time.Duration(commandTimeout) * time.Second,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	pattern, err := cfg.Topics.Pattern()
	if err != nil {
		return err
	}
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()

	resp, err := runCommander(ctx, client, pattern, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp)
	return nil
}

func runCommander(ctx context.Context, client *mqtt.PahoClient, pattern *topic.Pattern, req services.SendCommand) (string, error) {
	return mqtt.NewCommander(client, pattern).
		Execute(ctx, req.VehicleID, req.CommandText(), req.CommandID, req.Timeout)
}
