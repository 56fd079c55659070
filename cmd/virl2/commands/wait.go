package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewWaitCommand creates the wait command.
func NewWaitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wait",
		Short: "Wait for the controller's low-level driver",
		Long:  "Block until the controller reports its low-level driver as connected",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			err = client.WaitForLLDConnected(ctx)
			if err != nil {
				return fmt.Errorf("controller not ready: %w", err)
			}

			fmt.Println("Controller ready")

			return nil
		},
	}
}
