package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locvowork/performpulse/internal/bootstrap"
	"github.com/locvowork/performpulse/internal/database"
)

type seedOptions struct {
	Preset     string
	Workers    int
	MaxRecords int
	PageSize   int
	BulkSize   int
}

func newSeedCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed [--preset small|medium|full]",
		Short: "Copy the remote directory into the employee index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			seeder, err := newSeeder(ctx)
			if err != nil {
				return err
			}

			maxRecords, pageSize := database.GetPresetConfig(database.SeedPreset(strings.ToLower(opts.Preset)))
			if opts.MaxRecords > 0 {
				maxRecords = opts.MaxRecords
			}
			if opts.PageSize > 0 {
				pageSize = opts.PageSize
			}
			fmt.Printf("📊 Using preset %s: max=%d pageSize=%d workers=%d\n", opts.Preset, maxRecords, pageSize, opts.Workers)

			res, err := seeder.SeedData(ctx, database.SeedOptions{
				PageSize:   pageSize,
				Workers:    opts.Workers,
				MaxRecords: maxRecords,
				BulkSize:   opts.BulkSize,
			})
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}

			fmt.Printf("✅ Indexed %d of %d employees in %v (%d pages failed, %d records skipped)\n",
				res.Indexed, res.Total, res.Elapsed, res.Failed, res.Skipped)
			if res.Mirrored >= 0 {
				fmt.Printf("📦 Index now holds %d employees\n", res.Mirrored)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Preset, "preset", string(database.PresetFull), "Data preset: small, medium, full")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "Parallel page fetchers")
	cmd.Flags().IntVar(&opts.MaxRecords, "max", 0, "Record cap (overrides preset)")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Upstream page size (overrides preset)")
	cmd.Flags().IntVar(&opts.BulkSize, "bulk-size", 0, "Documents per bulk request (defaults to page size)")
	return cmd
}

// newSeeder reads the remote directory and writes to the configured index.
func newSeeder(ctx context.Context) (*database.DataSeeder, error) {
	if err := bootstrap.LoadConfig(ctx); err != nil {
		return nil, err
	}
	es, err := bootstrap.NewElasticClient()
	if err != nil {
		return nil, err
	}
	return database.NewDataSeeder(bootstrap.NewRemoteDirectory(), es), nil
}
