package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/heritage-content/pkg/heritage"
	"github.com/tendant/heritage-content/pkg/heritage/api"
)

func NewSeedCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fixture content into empty collections",
		Long: `Seed inserts the fixture content into every content collection that has
no documents. Populated collections are left untouched, so running it again
is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				fixtures, err := s.cfg.Fixtures()
				if err != nil {
					return err
				}
				report, runErr := heritage.NewSeeder(s.store, fixtures).Run(ctx)
				if report == nil {
					return runErr
				}

				if opts.jsonOutput {
					if err := printJSON(cmd.OutOrStdout(), seedReportJSON(report)); err != nil {
						return err
					}
					return runErr
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "COLLECTION\tINSERTED\tRESULT")
				for _, res := range report.Results {
					result := "seeded"
					switch {
					case res.Err != nil:
						result = "error: " + res.Err.Error()
					case res.Skipped:
						result = "skipped (not empty)"
					}
					fmt.Fprintf(tw, "%s\t%d\t%s\n", res.Collection, res.Inserted, result)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				return runErr
			})
		},
	}
	cmd.Flags().StringVar(&opts.seedFile, "file", "", "fixtures YAML file (defaults to the embedded fixtures)")
	return cmd
}

type seedResultJSON struct {
	Collection string `json:"collection"`
	Inserted   int    `json:"inserted"`
	Skipped    bool   `json:"skipped"`
	Error      string `json:"error,omitempty"`
}

func seedReportJSON(report *heritage.SeedReport) []seedResultJSON {
	out := make([]seedResultJSON, 0, len(report.Results))
	for _, res := range report.Results {
		item := seedResultJSON{Collection: res.Collection, Inserted: res.Inserted, Skipped: res.Skipped}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		out = append(out, item)
	}
	return out
}

func NewStatsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show document counts per collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				stats, err := s.service.Stats(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), stats)
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "COLLECTION\tDOCUMENTS")
				fmt.Fprintf(tw, "%s\t%d\n", heritage.HeroSlidesCollection, stats.HeroSlides)
				fmt.Fprintf(tw, "%s\t%d\n", heritage.CulturalCategoriesCollection, stats.CulturalCategories)
				fmt.Fprintf(tw, "%s\t%d\n", heritage.RegionalHighlightsCollection, stats.RegionalHighlights)
				fmt.Fprintf(tw, "%s\t%d\n", heritage.FeaturedStoriesCollection, stats.FeaturedStories)
				fmt.Fprintf(tw, "%s\t%d (%d active)\n", heritage.NewsletterSubscribersCollection, stats.NewsletterSubscribers, stats.ActiveSubscribers)
				return tw.Flush()
			})
		},
	}
}

func NewSubscribersCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "Inspect newsletter subscribers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active subscribers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				subscribers, err := s.service.ListActiveSubscribers(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), subscribers)
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "EMAIL\tSUBSCRIBED AT")
				for _, sub := range subscribers {
					fmt.Fprintf(tw, "%s\t%s\n", sub.Email, sub.SubscribedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Print the number of active subscribers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				n, err := s.service.CountActiveSubscribers(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]int64{"active_subscribers": n})
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	})

	return cmd
}

func NewTokenCommand(opts *globalOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the admin routes",
		Long: `Token signs an admin bearer token with ADMIN_JWT_SECRET. Send it as
"Authorization: Bearer <token>" to the write routes and subscriber listings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.AdminJWTSecret == "" {
				return fmt.Errorf("ADMIN_JWT_SECRET is not configured")
			}
			token, err := api.NewAdminToken(cfg.AdminJWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{"token": token})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime (0 for no expiry)")
	return cmd
}
