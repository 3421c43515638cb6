package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BunsoMendoza/dealbot-tech/internal/config"
	"github.com/BunsoMendoza/dealbot-tech/internal/feeds"
)

var (
	fetchCSV    string
	fetchLimit  int
	fetchTags   string
	fetchDryRun bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Harvest deal feeds into the catalog without posting",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if fetchCSV != "" {
			cfg.CSVPath = fetchCSV
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fetcher := feeds.New(cfg, fetchLimit, fetchTags)

		if fetchDryRun {
			rows, err := fetcher.Fetch(ctx)
			if err != nil {
				return err
			}
			for _, row := range rows {
				price := row.DealPrice
				if price == "" {
					price = row.Price
				}
				if price != "" {
					fmt.Printf("%s\t%s%s\t%s\n", row.Title, row.Currency, price, row.URL)
				} else {
					fmt.Printf("%s\t%s\n", row.Title, row.URL)
				}
			}
			fmt.Printf("%d deals found (dry run, catalog untouched)\n", len(rows))
			return nil
		}

		added, err := fetcher.Refresh(ctx, cfg.CSVPath)
		if err != nil {
			return err
		}
		fmt.Printf("%d new deals added to %s\n", added, cfg.CSVPath)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchCSV, "csv", "", "catalog file path (overrides PRODUCTS_CSV)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 50, "maximum items to take per feed")
	fetchCmd.Flags().StringVar(&fetchTags, "tags", "tech", "comma-separated tags applied to harvested rows")
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "print harvested deals without writing the catalog")
}
