package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovms-community/ovms-bridge/core/topic"
)

var (
	validatePrefix   string
	validateUsername string
)

var validateCmd = &cobra.Command{
	Use:   "validate <template>",
	Short: "Check a custom topic structure template",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validatePrefix, "prefix", "ovms", "topic prefix")
	validateCmd.Flags().StringVar(&validateUsername, "username", "", "mqtt username placeholder value")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	pattern, err := topic.Build(validatePrefix, topic.StructureCustom, args[0], validateUsername)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok\nsubscription filter: %s\n", pattern.SubscriptionFilter())
	return nil
}
