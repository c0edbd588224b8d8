package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/empleomatch/empleomatch/internal/occ"
)

var (
	searchLocation string
	searchSalary   int
	searchRemote   bool
	searchVerified bool
	searchByDate   bool
	searchLimit    int
	searchDetails  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search the job board and print offers as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scraper := newScraper()
		defer scraper.Close()

		filters := occ.SearchFilters{
			Keyword:         args[0],
			Location:        searchLocation,
			Salary:          searchSalary,
			CompanyVerified: searchVerified,
		}
		if searchRemote {
			filters.WorkMode = occ.WorkModeRemote
		}
		if searchByDate {
			filters.Sort = occ.SortDate
		}

		jobs, err := scraper.SearchAll(ctx, filters, searchLimit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		slog.Info("search finished", slog.Int("jobs", len(jobs)))

		if searchDetails && len(jobs) > 0 {
			svc, cleanup := newEnrichment(scraper)
			defer cleanup()
			svc.Start(ctx)
			svc.EnqueueSearchResults(ctx, jobs)

			for i := range jobs {
				full, err := svc.Get(ctx, jobs[i].JobID)
				if err != nil {
					slog.Warn("keeping list view", slog.String("job_id", jobs[i].JobID), slog.Any("error", err))
					continue
				}
				jobs[i] = full
			}
			svc.Stop()
		}

		return printJSON(struct {
			Jobs    []occ.JobOffer   `json:"jobs"`
			Total   int              `json:"total"`
			Metrics map[string]int64 `json:"metrics,omitempty"`
		}{Jobs: jobs, Total: len(jobs), Metrics: scraperMetrics()})
	},
}

func scraperMetrics() map[string]int64 {
	if !cfg.Log.Debug {
		return nil
	}
	return occ.Metrics()
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "location filter")
	searchCmd.Flags().IntVar(&searchSalary, "salary", 0, "minimum salary filter")
	searchCmd.Flags().BoolVar(&searchRemote, "remote", false, "remote offers only")
	searchCmd.Flags().BoolVar(&searchVerified, "verified", false, "verified companies only")
	searchCmd.Flags().BoolVar(&searchByDate, "by-date", false, "sort by publication date instead of relevance")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum offers to return")
	searchCmd.Flags().BoolVar(&searchDetails, "details", false, "fetch the full detail view for each offer")
}
