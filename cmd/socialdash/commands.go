package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"social-dashboard-backend/internal/config"
	"social-dashboard-backend/internal/engagement"
	"social-dashboard-backend/internal/store"
)

// newMigrateCmd creates the migrate subcommand.
func newMigrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Long:  "Create the Postgres schema at DATABASE_URL and optionally store a mock dataset when none exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			var ds engagement.Dataset
			if seed {
				ds = engagement.GenerateMock(cfg.MockCount, cfg.MockSeed)
			}
			if err := store.Migrate(cfg.DatabaseURL, ds); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration completed successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", true, "Store a mock dataset when the database is empty")

	return cmd
}

// newSeedDemoCmd creates the seed-demo subcommand.
func newSeedDemoCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Store a demo dataset if none exists (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ds, err := loadDataset(file, cfg)
			if err != nil {
				return err
			}

			db, err := store.OpenDB(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			seeded, err := store.SeedDemo(ctx, store.NewPostgresStore(db), ds)
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "Demo data seeded (%d posts)\n", ds.Len())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Dataset already present, nothing to do")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to seed instead of mock data")

	return cmd
}

// newSummaryCmd creates the summary subcommand.
func newSummaryCmd() *cobra.Command {
	var (
		file     string
		postType string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print engagement totals for a CSV file",
		Long:  "Print the post type breakdown, engagement totals and percentages of a CSV file, or of mock data when no file is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ds, err := loadDataset(file, cfg)
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), engagement.BuildDashboard(ds, engagement.ParseFilter(postType)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to summarize")
	cmd.Flags().StringVarP(&postType, "type", "t", "all", "Only count posts of this type")

	return cmd
}

func writeSummary(w io.Writer, d engagement.Dashboard) {
	fmt.Fprintf(w, "Filter: %s\n", d.Filter)
	if !d.HasData {
		fmt.Fprintln(w, "No posts match, all figures are zero")
	}
	fmt.Fprintf(w, "Posts: %d\n", d.PostCount)
	fmt.Fprintf(w, "Likes: %d  Shares: %d  Comments: %d\n", d.Totals.Likes, d.Totals.Shares, d.Totals.Comments)

	if len(d.Categories) == 0 {
		return
	}
	fmt.Fprintln(w, "Post types:")
	for _, name := range d.Categories {
		fmt.Fprintf(w, "  %-14s %5d  %6.2f%%\n", name, d.Breakdown[name], d.Percentages[name])
	}
}

// newExportCmd creates the export subcommand.
func newExportCmd() *cobra.Command {
	var (
		file string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current dataset as CSV",
		Long:  "Write the dataset stored at DATABASE_URL, or the given CSV file normalized to the standard columns, as CSV.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			var ds engagement.Dataset
			if file != "" || cfg.DatabaseURL == "" {
				ds, err = loadDataset(file, cfg)
			} else {
				ds, err = currentDataset(cmd.Context(), cfg.DatabaseURL)
			}
			if err != nil {
				return err
			}
			return writeCSV(cmd.OutOrStdout(), out, ds)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to export instead of the stored dataset")
	cmd.Flags().StringVarP(&out, "out", "o", engagement.ExportFilename, `Output path, "-" for stdout`)

	return cmd
}

// newGenerateCmd creates the generate subcommand.
func newGenerateCmd() *cobra.Command {
	var (
		count int
		seed  uint64
		out   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a mock engagement CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("invalid count %d: must not be negative", count)
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			return writeCSV(cmd.OutOrStdout(), out, engagement.GenerateMock(count, seed))
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 200, "Number of posts")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (defaults to the current time)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", `Output path, "-" for stdout`)

	return cmd
}

// loadDataset reads a CSV file, or generates mock data when path is empty.
func loadDataset(path string, cfg config.Config) (engagement.Dataset, error) {
	if path == "" {
		return engagement.GenerateMock(cfg.MockCount, cfg.MockSeed), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return engagement.Dataset{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := engagement.Ingest(f)
	if err != nil {
		return engagement.Dataset{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ds, nil
}

func currentDataset(ctx context.Context, databaseURL string) (engagement.Dataset, error) {
	db, err := store.OpenDB(databaseURL)
	if err != nil {
		return engagement.Dataset{}, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	rec, err := store.NewPostgresStore(db).Current(ctx)
	if errors.Is(err, store.ErrNoDataset) {
		return engagement.Dataset{}, nil
	}
	if err != nil {
		return engagement.Dataset{}, err
	}
	return rec.Dataset, nil
}

func writeCSV(stdout io.Writer, path string, ds engagement.Dataset) error {
	if path == "-" {
		return engagement.Export(stdout, ds)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := engagement.Export(f, ds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "Wrote %d posts to %s\n", ds.Len(), path)
	return nil
}
