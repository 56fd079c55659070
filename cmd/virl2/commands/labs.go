package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/virl2-client/internal/constants"
	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
)

// NewLabsCommand creates the labs command group.
func NewLabsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "labs",
		Aliases: []string{"lab"},
		Short:   "Manage simulation labs",
		Long:    "List, create, start, stop, delete, and import simulation labs",
	}

	cmd.AddCommand(newLabsListCommand())
	cmd.AddCommand(newLabsCreateCommand())
	cmd.AddCommand(newLabsGetCommand())
	cmd.AddCommand(newLabsDeleteCommand())
	cmd.AddCommand(newLabsStartCommand())
	cmd.AddCommand(newLabsStopCommand())
	cmd.AddCommand(newLabsImportCommand())

	return cmd
}

func newLabsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List labs",
		Long:  "List the IDs of all labs visible to the user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			ids, err := client.Labs().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list labs: %w", err)
			}

			labs := make([]*virl2.Lab, 0, len(ids))

			for _, id := range ids {
				lab, err := client.Labs().Get(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to get lab %s: %w", id, err)
				}

				labs = append(labs, lab)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(labs)
			case OutputFormatYAML:
				return StandardYAMLRenderer(labs)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Title", "State")

				for _, lab := range labs {
					_ = table.Append(lab.ID, lab.Title, lab.State)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}

func newLabsCreateCommand() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			lab, err := client.Labs().Create(ctx, title)
			if err != nil {
				return fmt.Errorf("failed to create lab: %w", err)
			}

			fmt.Printf("Created lab %s\n", lab.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "lab title")

	return cmd
}

func newLabsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get LAB_ID",
		Short: "Show a lab's topology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return constants.ErrLabIDRequired
			}

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			lab, err := client.Labs().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get lab: %w", err)
			}

			return outputLab(lab)
		},
	}
}

func newLabsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete LAB_ID",
		Aliases: []string{"rm"},
		Short:   "Delete a lab",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabAction(args[0], "delete", func(ctx context.Context, client virl2.Client, id string) error {
				return client.Labs().Delete(ctx, id)
			})
		},
	}
}

func newLabsStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start LAB_ID",
		Short: "Start a lab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabAction(args[0], "start", func(ctx context.Context, client virl2.Client, id string) error {
				return client.Labs().Start(ctx, id)
			})
		},
	}
}

func newLabsStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop LAB_ID",
		Short: "Stop a lab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabAction(args[0], "stop", func(ctx context.Context, client virl2.Client, id string) error {
				return client.Labs().Stop(ctx, id)
			})
		},
	}
}

func runLabAction(id, verb string, action func(context.Context, virl2.Client, string) error) error {
	if id == "" {
		return constants.ErrLabIDRequired
	}

	ctx := context.Background()

	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	err = action(ctx, client, id)
	if err != nil {
		return fmt.Errorf("failed to %s lab: %w", verb, err)
	}

	fmt.Printf("Lab %s: %s requested\n", id, verb)

	return nil
}

func newLabsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import TOPOLOGY_FILE",
		Short: "Import a topology file as a new lab",
		Long:  "Import a topology file (.ng or .virl) and create a lab from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if path == "" {
				return constants.ErrTopologyPathRequired
			}

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("checking topology file: %w", err)
			}

			if !info.Mode().IsRegular() {
				return fmt.Errorf("%s: %w", path, constants.ErrNotRegularFile)
			}

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			lab, err := client.ImportLabFromPath(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to import lab: %w", err)
			}

			fmt.Printf("Imported lab %s (%s)\n", lab.ID, lab.Title)

			return outputLab(lab)
		},
	}
}

func outputLab(lab *virl2.Lab) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(lab)
	case OutputFormatYAML:
		return StandardYAMLRenderer(lab)
	default:
		return renderLabTable(lab)
	}
}

func renderLabTable(lab *virl2.Lab) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")
	_ = table.Append("ID", lab.ID)
	_ = table.Append("Title", lab.Title)
	_ = table.Append("State", lab.State)
	_ = table.Append("Nodes", strconv.Itoa(len(lab.Nodes)))
	_ = table.Append("Links", strconv.Itoa(len(lab.Links)))

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
