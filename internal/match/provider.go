package match

import (
	"context"

	"github.com/empleomatch/empleomatch/internal/occ"
)

// ScraperProvider adapts the job-board scraper to the Provider interface.
type ScraperProvider struct {
	Scraper *occ.Scraper
	// MaxResults bounds pagination per query. Zero means one page.
	MaxResults int
}

func (p *ScraperProvider) Name() string { return "occ" }

func (p *ScraperProvider) Find(ctx context.Context, query Query) ([]occ.JobOffer, error) {
	filters := occ.SearchFilters{
		Keyword:  query.Text(),
		Location: query.Location,
		Sort:     occ.SortRelevance,
	}
	if p.MaxResults > 0 {
		return p.Scraper.SearchAll(ctx, filters, p.MaxResults)
	}
	jobs, _, err := p.Scraper.Search(ctx, filters)
	return jobs, err
}
