package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/experiment"
)

func newListCmd() *cobra.Command {
	var experimentsDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available experiments",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := experiment.List(experimentsDir)
			if err != nil {
				return fmt.Errorf("failed to list experiments: %w", err)
			}

			if len(names) == 0 {
				fmt.Println("No experiments found.")
				return nil
			}

			fmt.Printf("Available experiments:\n\n")
			for _, name := range names {
				exp, err := experiment.Load(name, experimentsDir)
				if err != nil {
					fmt.Printf("  - %s (error loading: %v)\n", name, err)
					continue
				}
				fmt.Printf("  - %s\n", exp.Name)
				fmt.Printf("    Description: %s\n", exp.Description)
				fmt.Printf("    Model: %s\n", exp.Model.Name)
				fmt.Printf("    Variants: %d\n", len(exp.Variants))
				for _, v := range exp.Variants {
					fmt.Printf("      %s (%s): %s\n", v.ID, v.Design, v.Preview(exp.Query, 60))
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&experimentsDir, "experiments-dir", "", "External experiments directory")

	return cmd
}
