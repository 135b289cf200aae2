package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear --yes",
		Short: "Drop the employee index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errors.New("refusing to drop the index without --yes")
			}

			seeder, err := newSeeder(cmd.Context())
			if err != nil {
				return err
			}
			if err := seeder.ClearData(cmd.Context()); err != nil {
				return fmt.Errorf("clear failed: %w", err)
			}

			fmt.Println("✅ Employee index dropped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm dropping the index")
	return cmd
}
