package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/empleomatch/empleomatch/internal/extract"
	"github.com/empleomatch/empleomatch/internal/match"
	"github.com/empleomatch/empleomatch/internal/tfidf"
)

var (
	recommendLocation string
	recommendLimit    int
	recommendProjects []string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <cv-file>",
	Short: "Rank live job offers against a CV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading cv: %w", err)
		}

		pipeline := extract.New().
			WithMaxSkills(cfg.Extract.MaxSkills).
			WithLanguage(cfg.Extract.LanguagePreference)
		profile := pipeline.Profile(string(text))
		if profile.Empty() {
			return fmt.Errorf("no usable profile extracted from %s", args[0])
		}

		candidate := match.NewCandidate(profile)
		candidate.Projects = recommendProjects
		candidate.LastActive = time.Now()

		scraper := newScraper()
		defer scraper.Close()

		scorer := match.NewScorer(
			match.WithVectorizer(tfidf.Default()),
			match.WithWeights(match.Weights{
				Skills:   cfg.Match.Weights.Skills,
				Projects: cfg.Match.Weights.Projects,
				Title:    cfg.Match.Weights.Title,
			}),
			match.WithBoosts(match.Boosts{
				Location:  cfg.Match.Boosts.Location,
				Activity:  cfg.Match.Boosts.Activity,
				Projects:  cfg.Match.Boosts.Projects,
				Diversity: cfg.Match.Boosts.Diversity,
			}),
			match.WithMinScore(cfg.Match.MinScore),
		)
		engine := match.NewEngine(scorer, &match.ScraperProvider{
			Scraper:    scraper,
			MaxResults: recommendLimit * 3,
		})

		ranking := engine.Recommend(ctx, &candidate, recommendLocation, recommendLimit)
		return printJSON(ranking)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVarP(&recommendLocation, "location", "l", "", "preferred location")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 10, "maximum matches to return")
	recommendCmd.Flags().StringSliceVar(&recommendProjects, "project", nil, "project description, repeatable")
}
